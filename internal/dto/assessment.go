package dto

import "github.com/enhc-tech/career-guide-api/internal/models"

// SubjectScoreInput is one raw row of a marks submission, prior to
// validation. Pointers distinguish omitted fields from zero values.
type SubjectScoreInput struct {
	SubjectName string `json:"subjectName"`
	Marks       *int   `json:"marks"`
	TotalMarks  *int   `json:"totalMarks"`
}

// SubmitMarksRequest is the marks submission payload.
type SubmitMarksRequest struct {
	Subjects []SubjectScoreInput `json:"subjects"`
}

// SubmitMarksResponse acknowledges an accepted submission.
type SubmitMarksResponse struct {
	Status models.AssessmentStatus `json:"status"`
}

// ReportStatusResponse is the polling contract for the dashboard.
// ReportPath is present only once the report has been generated.
type ReportStatusResponse struct {
	Status     models.AssessmentStatus `json:"status"`
	ReportPath *string                 `json:"reportPath"`
}

// StudentListItem is one row of the admin listing.
type StudentListItem struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	SchoolName    string                  `json:"schoolName"`
	Standard      string                  `json:"standard"`
	Age           int                     `json:"age"`
	Status        models.AssessmentStatus `json:"status"`
	ReportPath    *string                 `json:"reportPath,omitempty"`
	DownloadToken *string                 `json:"downloadToken,omitempty"`
}
