package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enhc-tech/career-guide-api/internal/middleware"
	"github.com/enhc-tech/career-guide-api/internal/models"
	"github.com/enhc-tech/career-guide-api/internal/service"
	"github.com/enhc-tech/career-guide-api/pkg/jobs"
)

type recordStoreMock struct {
	records map[string]*models.AssessmentRecord
	blocked bool
}

func newRecordStoreMock() *recordStoreMock {
	return &recordStoreMock{records: map[string]*models.AssessmentRecord{}}
}

func (m *recordStoreMock) CreatePending(ctx context.Context, studentID string) error { return nil }

func (m *recordStoreMock) GetByStudentID(ctx context.Context, studentID string) (*models.AssessmentRecord, error) {
	record, ok := m.records[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return record, nil
}

func (m *recordStoreMock) BeginAnalysis(ctx context.Context, studentID string, scores models.ScoreList, now time.Time) (bool, error) {
	if m.blocked {
		return false, nil
	}
	m.records[studentID] = &models.AssessmentRecord{StudentID: studentID, Status: models.StatusAnalyzing, Scores: scores}
	return true, nil
}

func (m *recordStoreMock) MarkGenerated(ctx context.Context, studentID, handle string, now time.Time) (bool, error) {
	return true, nil
}

func (m *recordStoreMock) MarkFailed(ctx context.Context, studentID, reason string, now time.Time) (bool, error) {
	return true, nil
}

type enqueueMock struct {
	jobs []jobs.Job
}

func (m *enqueueMock) Enqueue(job jobs.Job) error {
	m.jobs = append(m.jobs, job)
	return nil
}

func newMarksHandlerForTest(store *recordStoreMock) (*MarksHandler, *enqueueMock) {
	queue := &enqueueMock{}
	svc := service.NewAssessmentService(store, queue, nil, nil, nil)
	return NewMarksHandler(svc), queue
}

func marksRequest(t *testing.T, c *gin.Context, body interface{}) {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, "/marks", bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
}

func TestMarksHandlerSubmit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, queue := newMarksHandlerForTest(newRecordStoreMock())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	marksRequest(t, c, map[string]interface{}{
		"subjects": []map[string]interface{}{
			{"subjectName": "Maths", "marks": 80},
			{"subjectName": "Science", "marks": 45, "totalMarks": 50},
		},
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.SubmitMarks(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "student-1", queue.jobs[0].ID)
	assert.Contains(t, w.Body.String(), string(models.StatusAnalyzing))
}

func TestMarksHandlerSubmitInvalidMarks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, queue := newMarksHandlerForTest(newRecordStoreMock())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	marksRequest(t, c, map[string]interface{}{
		"subjects": []map[string]interface{}{
			{"subjectName": "Maths", "marks": -1},
		},
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.SubmitMarks(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, queue.jobs)
	assert.Contains(t, w.Body.String(), "invalid marks entered")
}

func TestMarksHandlerSubmitConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newRecordStoreMock()
	store.blocked = true
	handler, queue := newMarksHandlerForTest(store)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	marksRequest(t, c, map[string]interface{}{
		"subjects": []map[string]interface{}{
			{"subjectName": "Maths", "marks": 80},
		},
	})
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.SubmitMarks(c)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, queue.jobs)
}

func TestMarksHandlerSubmitWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newMarksHandlerForTest(newRecordStoreMock())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	marksRequest(t, c, map[string]interface{}{"subjects": []map[string]interface{}{}})

	handler.SubmitMarks(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMarksHandlerReportStatusPending(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler, _ := newMarksHandlerForTest(newRecordStoreMock())
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/questionnaire/report-status", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.ReportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(models.StatusPending))
}

func TestMarksHandlerReportStatusGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newRecordStoreMock()
	handle := "Asha_Rao_Career_Report.pdf"
	store.records["student-1"] = &models.AssessmentRecord{
		StudentID: "student-1", Status: models.StatusReportGenerated, ReportHandle: &handle,
	}
	handler, _ := newMarksHandlerForTest(store)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/questionnaire/report-status", nil)
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.ReportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), handle)
}
