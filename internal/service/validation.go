package service

import (
	"strings"

	"github.com/enhc-tech/career-guide-api/internal/dto"
	"github.com/enhc-tech/career-guide-api/internal/models"
	appErrors "github.com/enhc-tech/career-guide-api/pkg/errors"
)

const defaultTotalMarks = 100

// ValidateScores normalizes a raw marks submission. Rules run in a
// fixed order across the whole sequence and the first failure wins, so
// a given payload always surfaces the same single error. No state is
// touched here; persistence belongs to the assessment service.
func ValidateScores(raw []dto.SubjectScoreInput) (models.ScoreList, error) {
	if len(raw) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one subject is required")
	}

	for _, entry := range raw {
		if strings.TrimSpace(entry.SubjectName) == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, "all subjects must have a name")
		}
	}

	for _, entry := range raw {
		if entry.Marks == nil || *entry.Marks < 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid marks entered")
		}
	}

	for _, entry := range raw {
		if entry.TotalMarks != nil && *entry.TotalMarks <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "total marks must be positive")
		}
	}

	normalized := make(models.ScoreList, 0, len(raw))
	for _, entry := range raw {
		total := defaultTotalMarks
		if entry.TotalMarks != nil {
			total = *entry.TotalMarks
		}
		if *entry.Marks > total {
			return nil, appErrors.Clone(appErrors.ErrValidation, "marks exceed total")
		}
		normalized = append(normalized, models.SubjectScore{
			Name:     strings.TrimSpace(entry.SubjectName),
			Obtained: *entry.Marks,
			Total:    total,
		})
	}

	return normalized, nil
}
