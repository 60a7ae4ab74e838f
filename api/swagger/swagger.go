package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Career Guide API",
        "description": "Assessment lifecycle and report delivery service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Signup, login and profile"},
        {"name": "Assessments", "description": "Marks submission and report status"},
        {"name": "Reports", "description": "Career report downloads"},
        {"name": "Admin", "description": "Student listing and admin downloads"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/auth/signup": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a student account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SignupRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange credentials for an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current account profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/marks": {
            "post": {
                "tags": ["Assessments"],
                "summary": "Submit subject marks and start analysis",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitMarksRequest"}}
                ],
                "responses": {
                    "202": {"description": "Analysis started", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Analysis already in progress or report generated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Invalid marks", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/questionnaire/report-status": {
            "get": {
                "tags": ["Assessments"],
                "summary": "Poll report generation status",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/download-report/{handle}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download own career report",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "handle", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "404": {"description": "Unknown report or artifact missing"},
                    "409": {"description": "Report not generated yet"}
                }
            }
        },
        "/api/reports/export/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a report via signed link",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "401": {"description": "Expired or malformed token"}
                }
            }
        },
        "/api/auth/students": {
            "get": {
                "tags": ["Admin"],
                "summary": "List students with assessment state",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "X-Admin-Key", "in": "header", "required": true, "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Admin gate not cleared"}
                }
            }
        },
        "/api/auth/download-report/{handle}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Download any student's report",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "X-Admin-Key", "in": "header", "required": true, "type": "string"},
                    {"name": "handle", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "403": {"description": "Admin gate not cleared"},
                    "404": {"description": "Unknown report"}
                }
            }
        }
    },
    "definitions": {
        "SignupRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "fullName": {"type": "string"},
                "schoolName": {"type": "string"},
                "standard": {"type": "string"},
                "age": {"type": "integer"}
            },
            "required": ["email", "password", "fullName", "schoolName", "standard", "age"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "SubjectScore": {
            "type": "object",
            "properties": {
                "subjectName": {"type": "string"},
                "marks": {"type": "integer"},
                "totalMarks": {"type": "integer"}
            },
            "required": ["subjectName", "marks"]
        },
        "SubmitMarksRequest": {
            "type": "object",
            "properties": {
                "subjects": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubjectScore"}
                }
            },
            "required": ["subjects"]
        },
        "ReportStatusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["Pending", "Analyzing", "Report Generated", "Error"]},
                "reportPath": {"type": "string"}
            }
        },
        "StudentListItem": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "schoolName": {"type": "string"},
                "standard": {"type": "string"},
                "age": {"type": "integer"},
                "status": {"type": "string"},
                "reportPath": {"type": "string"},
                "downloadToken": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
