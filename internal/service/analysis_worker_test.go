package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/enhc-tech/career-guide-api/internal/models"
	"github.com/enhc-tech/career-guide-api/pkg/jobs"
	"github.com/enhc-tech/career-guide-api/pkg/storage"
)

type studentRepoStub struct {
	students map[string]*models.Student
	err      error
}

func (s *studentRepoStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s.err != nil {
		return nil, s.err
	}
	student, ok := s.students[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return student, nil
}

type lifecycleStub struct {
	completed map[string]string
	failed    map[string]string
}

func newLifecycleStub() *lifecycleStub {
	return &lifecycleStub{completed: map[string]string{}, failed: map[string]string{}}
}

func (l *lifecycleStub) Complete(ctx context.Context, studentID, reportHandle string) error {
	l.completed[studentID] = reportHandle
	return nil
}

func (l *lifecycleStub) Fail(ctx context.Context, studentID, reason string) error {
	l.failed[studentID] = reason
	return nil
}

type analyzerStub struct {
	handle string
	err    error
}

func (a analyzerStub) Analyze(ctx context.Context, student *models.Student, scores models.ScoreList) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return a.handle, nil
}

func newWorkerForTest(stub analyzerStub) (*AnalysisWorker, *assessmentStoreStub, *lifecycleStub) {
	records := newAssessmentStoreStub()
	lifecycle := newLifecycleStub()
	students := &studentRepoStub{students: map[string]*models.Student{
		"student-1": {ID: "student-1", FullName: "Asha Rao", SchoolName: "City School", Standard: "10"},
	}}
	worker := NewAnalysisWorker(students, records, lifecycle, stub, 3, zap.NewNop())
	return worker, records, lifecycle
}

func TestAnalysisWorkerHandleSuccess(t *testing.T) {
	worker, records, lifecycle := newWorkerForTest(analyzerStub{handle: "Asha_Rao_Career_Report.pdf"})
	records.records["student-1"] = &models.AssessmentRecord{
		StudentID: "student-1", Status: models.StatusAnalyzing, Scores: sampleScores(),
	}

	err := worker.Handle(context.Background(), jobs.Job{ID: "student-1", Attempt: 1})
	require.NoError(t, err)
	assert.Equal(t, "Asha_Rao_Career_Report.pdf", lifecycle.completed["student-1"])
	assert.Empty(t, lifecycle.failed)
}

func TestAnalysisWorkerSkipsStaleJob(t *testing.T) {
	worker, records, lifecycle := newWorkerForTest(analyzerStub{handle: "ignored.pdf"})
	handle := "existing.pdf"
	records.records["student-1"] = &models.AssessmentRecord{
		StudentID: "student-1", Status: models.StatusReportGenerated, ReportHandle: &handle,
	}

	err := worker.Handle(context.Background(), jobs.Job{ID: "student-1", Attempt: 1})
	require.NoError(t, err)
	assert.Empty(t, lifecycle.completed)
	assert.Empty(t, lifecycle.failed)
}

func TestAnalysisWorkerRetriesBeforeFailing(t *testing.T) {
	worker, records, lifecycle := newWorkerForTest(analyzerStub{err: errors.New("renderer boom")})
	records.records["student-1"] = &models.AssessmentRecord{
		StudentID: "student-1", Status: models.StatusAnalyzing, Scores: sampleScores(),
	}

	err := worker.Handle(context.Background(), jobs.Job{ID: "student-1", Attempt: 1})
	require.Error(t, err)
	// Attempt budget not yet spent: the record stays Analyzing for the
	// queue to retry.
	assert.Empty(t, lifecycle.failed)
}

func TestAnalysisWorkerFailsAfterLastAttempt(t *testing.T) {
	worker, records, lifecycle := newWorkerForTest(analyzerStub{err: errors.New("renderer boom")})
	records.records["student-1"] = &models.AssessmentRecord{
		StudentID: "student-1", Status: models.StatusAnalyzing, Scores: sampleScores(),
	}

	err := worker.Handle(context.Background(), jobs.Job{ID: "student-1", Attempt: 3})
	require.Error(t, err)
	assert.Contains(t, lifecycle.failed["student-1"], "renderer boom")
}

func TestPDFAnalyzer(t *testing.T) {
	store, err := storage.NewReportStore(t.TempDir())
	require.NoError(t, err)
	analyzer := NewPDFAnalyzer(store)

	student := &models.Student{ID: "student-1", FullName: "Asha Rao", SchoolName: "City School", Standard: "10"}
	handle, err := analyzer.Analyze(context.Background(), student, models.ScoreList{
		{Name: "Maths", Obtained: 92, Total: 100},
		{Name: "Science", Obtained: 40, Total: 50},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(handle, "Asha_Rao_Career_Report_"))
	assert.True(t, strings.HasSuffix(handle, ".pdf"))

	assert.True(t, store.Exists(handle))
}
