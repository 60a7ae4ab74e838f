package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AssessmentStatus captures the per-student report generation lifecycle.
type AssessmentStatus string

const (
	StatusPending         AssessmentStatus = "Pending"
	StatusAnalyzing       AssessmentStatus = "Analyzing"
	StatusReportGenerated AssessmentStatus = "Report Generated"
	StatusError           AssessmentStatus = "Error"
)

// SubjectScore is one scored subject in a marks submission. Order of a
// submission is preserved for display but carries no semantic weight.
type SubjectScore struct {
	Name     string `json:"subjectName"`
	Obtained int    `json:"marks"`
	Total    int    `json:"totalMarks"`
}

// ScoreList persists an ordered score sequence as JSONB.
type ScoreList []SubjectScore

// Value marshals the scores to JSON for persistence.
func (l ScoreList) Value() (driver.Value, error) {
	if l == nil {
		l = ScoreList{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal scores: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the score list.
func (l *ScoreList) Scan(value interface{}) error {
	if value == nil {
		*l = ScoreList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ScoreList", value)
	}
	if len(data) == 0 {
		*l = ScoreList{}
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("unmarshal scores: %w", err)
	}
	return nil
}

// AssessmentRecord tracks one student's submission through analysis.
// Invariant: ReportHandle is non-nil exactly when Status is
// StatusReportGenerated. Mutated only through the assessment service's
// transition operations.
type AssessmentRecord struct {
	StudentID     string           `db:"student_id" json:"studentId"`
	Status        AssessmentStatus `db:"status" json:"status"`
	Scores        ScoreList        `db:"scores" json:"scores"`
	ReportHandle  *string          `db:"report_handle" json:"reportHandle,omitempty"`
	FailureReason *string          `db:"failure_reason" json:"-"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updatedAt"`
}
