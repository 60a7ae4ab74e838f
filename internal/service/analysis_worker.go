package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/enhc-tech/career-guide-api/internal/models"
	"github.com/enhc-tech/career-guide-api/pkg/jobs"
	"github.com/enhc-tech/career-guide-api/pkg/report"
	"github.com/enhc-tech/career-guide-api/pkg/storage"
)

// Analyzer turns a student's scores into a stored report artifact and
// returns its handle. The bundled PDF analyzer is the default; a remote
// analysis engine can be swapped in behind the same interface.
type Analyzer interface {
	Analyze(ctx context.Context, student *models.Student, scores models.ScoreList) (string, error)
}

type workerStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type lifecycleCallbacks interface {
	Complete(ctx context.Context, studentID, reportHandle string) error
	Fail(ctx context.Context, studentID, reason string) error
}

type workerAssessmentReader interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.AssessmentRecord, error)
}

// AnalysisWorker bridges queue jobs to the analyzer and reports the
// outcome back into the lifecycle. Callbacks are delivered at least
// once; the lifecycle's transition checks absorb duplicates.
type AnalysisWorker struct {
	students   workerStudentRepository
	records    workerAssessmentReader
	lifecycle  lifecycleCallbacks
	analyzer   Analyzer
	logger     *zap.Logger
	maxRetries int
}

// NewAnalysisWorker constructs a worker.
func NewAnalysisWorker(students workerStudentRepository, records workerAssessmentReader, lifecycle lifecycleCallbacks, analyzer Analyzer, maxRetries int, logger *zap.Logger) *AnalysisWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &AnalysisWorker{
		students:   students,
		records:    records,
		lifecycle:  lifecycle,
		analyzer:   analyzer,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

// Handle processes one queued analysis. The job ID is the student ID.
func (w *AnalysisWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.records.GetByStudentID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load assessment record: %w", err)
	}
	if record.Status != models.StatusAnalyzing {
		// Stale job: the record moved on (or was re-submitted) while
		// this job sat in the queue.
		w.logger.Info("skipping analysis job for record not in Analyzing",
			zap.String("student_id", job.ID), zap.String("status", string(record.Status)))
		return nil
	}

	student, err := w.students.FindByID(ctx, job.ID)
	if err != nil {
		return w.failOrRetry(ctx, job, fmt.Errorf("load student: %w", err))
	}

	handle, err := w.analyzer.Analyze(ctx, student, record.Scores)
	if err != nil {
		return w.failOrRetry(ctx, job, err)
	}

	if err := w.lifecycle.Complete(ctx, job.ID, handle); err != nil {
		w.logger.Error("failed to record analysis completion",
			zap.String("student_id", job.ID), zap.Error(err))
		return err
	}
	return nil
}

// failOrRetry lets the queue retry transient failures and only flips
// the record into Error once the attempt budget is spent.
func (w *AnalysisWorker) failOrRetry(ctx context.Context, job jobs.Job, cause error) error {
	if job.Attempt >= w.maxRetries {
		if err := w.lifecycle.Fail(ctx, job.ID, cause.Error()); err != nil {
			w.logger.Error("failed to record analysis failure",
				zap.String("student_id", job.ID), zap.Error(err))
		}
		return cause
	}
	return cause
}

// PDFAnalyzer renders the career guidance report locally and stores it
// under an opaque handle.
type PDFAnalyzer struct {
	store *storage.ReportStore
}

// NewPDFAnalyzer constructs the default analyzer.
func NewPDFAnalyzer(store *storage.ReportStore) *PDFAnalyzer {
	return &PDFAnalyzer{store: store}
}

// Analyze renders the report and returns the stored handle.
func (a *PDFAnalyzer) Analyze(ctx context.Context, student *models.Student, scores models.ScoreList) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	subjects := make([]report.Subject, 0, len(scores))
	for _, score := range scores {
		subjects = append(subjects, report.Subject{
			Name:     score.Name,
			Obtained: score.Obtained,
			Total:    score.Total,
		})
	}

	data, err := report.RenderPDF(report.Input{
		StudentName: student.FullName,
		School:      student.SchoolName,
		Standard:    student.Standard,
		Subjects:    subjects,
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	handle := reportHandleFor(student.FullName)
	if err := a.store.Put(handle, data); err != nil {
		return "", fmt.Errorf("store report: %w", err)
	}
	return handle, nil
}

func reportHandleFor(fullName string) string {
	base := strings.ReplaceAll(strings.TrimSpace(fullName), " ", "_")
	if base == "" {
		base = "Student"
	}
	return fmt.Sprintf("%s_Career_Report_%s.pdf", base, uuid.NewString())
}
