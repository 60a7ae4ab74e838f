package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/enhc-tech/career-guide-api/internal/models"
)

// AssessmentRepository persists per-student assessment records. Every
// transition is a compare-and-set on status so concurrent submits and
// worker callbacks for the same student never interleave destructively.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// CreatePending inserts the initial Pending record for a student. A
// record that already exists is left untouched.
func (r *AssessmentRepository) CreatePending(ctx context.Context, studentID string) error {
	const query = `INSERT INTO assessment_records (student_id, status, scores, updated_at)
VALUES ($1, 'Pending', '[]', $2)
ON CONFLICT (student_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("create pending assessment: %w", err)
	}
	return nil
}

// GetByStudentID returns the record for a student.
func (r *AssessmentRepository) GetByStudentID(ctx context.Context, studentID string) (*models.AssessmentRecord, error) {
	const query = `SELECT student_id, status, scores, report_handle, failure_reason, updated_at
FROM assessment_records WHERE student_id = $1`
	var record models.AssessmentRecord
	if err := r.db.GetContext(ctx, &record, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get assessment record: %w", err)
	}
	return &record, nil
}

// BeginAnalysis atomically moves a student from Pending or Error into
// Analyzing, storing the validated scores and clearing any previous
// handle. The upsert also covers students whose record was never
// pre-created at signup. Returns false when the current status forbids
// the transition.
func (r *AssessmentRepository) BeginAnalysis(ctx context.Context, studentID string, scores models.ScoreList, now time.Time) (bool, error) {
	const query = `INSERT INTO assessment_records (student_id, status, scores, report_handle, failure_reason, updated_at)
VALUES ($1, 'Analyzing', $2, NULL, NULL, $3)
ON CONFLICT (student_id) DO UPDATE
SET status = 'Analyzing', scores = EXCLUDED.scores, report_handle = NULL, failure_reason = NULL, updated_at = EXCLUDED.updated_at
WHERE assessment_records.status IN ('Pending', 'Error')`
	result, err := r.db.ExecContext(ctx, query, studentID, scores, now)
	if err != nil {
		return false, fmt.Errorf("begin analysis: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("begin analysis rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkGenerated completes analysis, recording the report handle. Only
// valid from Analyzing; returns false otherwise (duplicate or late
// worker callback).
func (r *AssessmentRepository) MarkGenerated(ctx context.Context, studentID, handle string, now time.Time) (bool, error) {
	const query = `UPDATE assessment_records
SET status = 'Report Generated', report_handle = $2, failure_reason = NULL, updated_at = $3
WHERE student_id = $1 AND status = 'Analyzing'`
	result, err := r.db.ExecContext(ctx, query, studentID, handle, now)
	if err != nil {
		return false, fmt.Errorf("mark generated: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark generated rows affected: %w", err)
	}
	return affected > 0, nil
}

// MarkFailed records a worker failure. Only valid from Analyzing;
// returns false otherwise.
func (r *AssessmentRepository) MarkFailed(ctx context.Context, studentID, reason string, now time.Time) (bool, error) {
	const query = `UPDATE assessment_records
SET status = 'Error', report_handle = NULL, failure_reason = $2, updated_at = $3
WHERE student_id = $1 AND status = 'Analyzing'`
	result, err := r.db.ExecContext(ctx, query, studentID, reason, now)
	if err != nil {
		return false, fmt.Errorf("mark failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark failed rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetByReportHandle resolves a report handle back to its owning record.
// Used by the admin download path, where only the handle is known.
func (r *AssessmentRepository) GetByReportHandle(ctx context.Context, handle string) (*models.AssessmentRecord, error) {
	const query = `SELECT student_id, status, scores, report_handle, failure_reason, updated_at
FROM assessment_records WHERE report_handle = $1`
	var record models.AssessmentRecord
	if err := r.db.GetContext(ctx, &record, query, handle); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get assessment by handle: %w", err)
	}
	return &record, nil
}

// CountByStatus returns how many records sit in the given status. Used
// by the metrics service to expose in-flight analyses.
func (r *AssessmentRepository) CountByStatus(ctx context.Context, status models.AssessmentStatus) (int, error) {
	const query = `SELECT COUNT(*) FROM assessment_records WHERE status = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, status); err != nil {
		return 0, fmt.Errorf("count assessments by status: %w", err)
	}
	return count, nil
}
