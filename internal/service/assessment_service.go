package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/enhc-tech/career-guide-api/internal/dto"
	"github.com/enhc-tech/career-guide-api/internal/models"
	appErrors "github.com/enhc-tech/career-guide-api/pkg/errors"
	"github.com/enhc-tech/career-guide-api/pkg/jobs"
)

// JobTypeAnalysis names the queue job kind dispatched per submission.
const JobTypeAnalysis = "analysis"

const listingCachePattern = "students:listing:*"

type assessmentStore interface {
	CreatePending(ctx context.Context, studentID string) error
	GetByStudentID(ctx context.Context, studentID string) (*models.AssessmentRecord, error)
	BeginAnalysis(ctx context.Context, studentID string, scores models.ScoreList, now time.Time) (bool, error)
	MarkGenerated(ctx context.Context, studentID, handle string, now time.Time) (bool, error)
	MarkFailed(ctx context.Context, studentID, reason string, now time.Time) (bool, error)
}

type analysisDispatcher interface {
	Enqueue(job jobs.Job) error
}

type listingInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

type lifecycleObserver interface {
	AnalysisStarted()
	AnalysisFinished(success bool)
}

// AssessmentService owns the per-student assessment state machine:
// Pending -> Analyzing -> Report Generated | Error. All transitions go
// through the repository's compare-and-set updates, so two racing
// requests for the same student cannot both win.
type AssessmentService struct {
	repo    assessmentStore
	queue   analysisDispatcher
	cache   listingInvalidator
	metrics lifecycleObserver
	logger  *zap.Logger
}

// NewAssessmentService constructs the lifecycle service.
func NewAssessmentService(repo assessmentStore, queue analysisDispatcher, cache listingInvalidator, metrics lifecycleObserver, logger *zap.Logger) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{repo: repo, queue: queue, cache: cache, metrics: metrics, logger: logger}
}

// Submit persists validated scores and hands the student off to the
// analysis worker. Allowed only from Pending or Error; a submission
// while Analyzing or after a report was generated is rejected with a
// conflict, never queued.
func (s *AssessmentService) Submit(ctx context.Context, studentID string, scores models.ScoreList) (*dto.SubmitMarksResponse, error) {
	now := time.Now().UTC()
	ok, err := s.repo.BeginAnalysis(ctx, studentID, scores, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record submission")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConflict, "an analysis is already in progress or a report has been generated")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: studentID, Type: JobTypeAnalysis}); err != nil {
		// Roll the record back to Error so the student can re-submit.
		if _, markErr := s.repo.MarkFailed(ctx, studentID, "failed to enqueue analysis", now); markErr != nil {
			s.logger.Error("failed to mark assessment failed after enqueue error",
				zap.String("student_id", studentID), zap.Error(markErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start analysis")
	}

	if s.metrics != nil {
		s.metrics.AnalysisStarted()
	}
	s.invalidateListing(ctx)
	return &dto.SubmitMarksResponse{Status: models.StatusAnalyzing}, nil
}

// Complete is the worker callback for a finished analysis. Valid only
// from Analyzing; anything else is a logged no-op so duplicate or late
// callbacks after a retry cannot clobber state.
func (s *AssessmentService) Complete(ctx context.Context, studentID, reportHandle string) error {
	ok, err := s.repo.MarkGenerated(ctx, studentID, reportHandle, time.Now().UTC())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete analysis")
	}
	if !ok {
		s.logger.Info("ignoring completion callback for record not in Analyzing",
			zap.String("student_id", studentID), zap.String("report_handle", reportHandle))
		return nil
	}
	if s.metrics != nil {
		s.metrics.AnalysisFinished(true)
	}
	s.invalidateListing(ctx)
	return nil
}

// Fail is the worker callback for a failed analysis. Valid only from
// Analyzing; otherwise a logged no-op. The reason is stored for
// operators and never surfaced verbatim to the student.
func (s *AssessmentService) Fail(ctx context.Context, studentID, reason string) error {
	ok, err := s.repo.MarkFailed(ctx, studentID, reason, time.Now().UTC())
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record analysis failure")
	}
	if !ok {
		s.logger.Info("ignoring failure callback for record not in Analyzing",
			zap.String("student_id", studentID), zap.String("reason", reason))
		return nil
	}
	s.logger.Warn("analysis failed", zap.String("student_id", studentID), zap.String("reason", reason))
	if s.metrics != nil {
		s.metrics.AnalysisFinished(false)
	}
	s.invalidateListing(ctx)
	return nil
}

// GetStatus returns the polling view of a student's record. A student
// without a record reads as Pending. The handle is present exactly when
// the report has been generated.
func (s *AssessmentService) GetStatus(ctx context.Context, studentID string) (*dto.ReportStatusResponse, error) {
	record, err := s.repo.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &dto.ReportStatusResponse{Status: models.StatusPending}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment record")
	}
	resp := &dto.ReportStatusResponse{Status: record.Status}
	if record.Status == models.StatusReportGenerated {
		resp.ReportPath = record.ReportHandle
	}
	return resp, nil
}

func (s *AssessmentService) invalidateListing(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, listingCachePattern); err != nil {
		s.logger.Warn("failed to invalidate listing cache", zap.Error(err))
	}
}
