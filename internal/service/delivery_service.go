package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/enhc-tech/career-guide-api/internal/dto"
	"github.com/enhc-tech/career-guide-api/internal/models"
	appErrors "github.com/enhc-tech/career-guide-api/pkg/errors"
)

type artifactOpener interface {
	Open(handle string) (*os.File, error)
}

type deliveryAssessmentStore interface {
	GetByStudentID(ctx context.Context, studentID string) (*models.AssessmentRecord, error)
	GetByReportHandle(ctx context.Context, handle string) (*models.AssessmentRecord, error)
}

type studentLister interface {
	ListOverview(ctx context.Context, filter models.StudentFilter) ([]models.StudentOverview, int, error)
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type downloadSigner interface {
	Generate(studentID, handle string) (string, time.Time, error)
	Parse(token string) (studentID, handle string, expiresAt time.Time, err error)
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File     *os.File
	Filename string
}

// DeliveryService answers "can this principal retrieve this report
// now" and streams the artifact. It also backs the admin listing.
type DeliveryService struct {
	records  deliveryAssessmentStore
	students studentLister
	store    artifactOpener
	cache    listingCache
	signer   downloadSigner
	audit    auditWriter
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDeliveryService constructs the delivery service.
func NewDeliveryService(records deliveryAssessmentStore, students studentLister, store artifactOpener, cache listingCache, signer downloadSigner, audit auditWriter, logger *zap.Logger, cacheTTL time.Duration) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &DeliveryService{
		records:  records,
		students: students,
		store:    store,
		cache:    cache,
		signer:   signer,
		audit:    audit,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// FetchReport authorizes and opens a report for the target student.
// Policy, in order: a student may only fetch their own report; an admin
// must have cleared the shared-secret gate; the record must have a
// generated report; the artifact must still exist in the store.
func (s *DeliveryService) FetchReport(ctx context.Context, claims *models.JWTClaims, targetStudentID, handle string, adminCleared bool) (*ReportDownload, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	switch claims.Role {
	case models.RoleStudent:
		if claims.UserID != targetStudentID {
			return nil, appErrors.ErrForbidden
		}
	case models.RoleAdmin:
		if !adminCleared {
			return nil, appErrors.ErrForbidden
		}
	default:
		return nil, appErrors.ErrForbidden
	}

	record, err := s.records.GetByStudentID(ctx, targetStudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrReportNotReady
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment record")
	}
	if record.Status != models.StatusReportGenerated || record.ReportHandle == nil {
		return nil, appErrors.ErrReportNotReady
	}
	if handle != "" && *record.ReportHandle != handle {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown report")
	}

	download, err := s.open(*record.ReportHandle)
	if err != nil {
		return nil, err
	}

	s.recordAccess(ctx, claims.UserID, targetStudentID, *record.ReportHandle)
	return download, nil
}

// FetchReportByHandle serves the admin download path, where only the
// handle is known; the owning record is resolved first and the same
// policy applies.
func (s *DeliveryService) FetchReportByHandle(ctx context.Context, claims *models.JWTClaims, handle string, adminCleared bool) (*ReportDownload, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	record, err := s.records.GetByReportHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown report")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve report handle")
	}
	return s.FetchReport(ctx, claims, record.StudentID, handle, adminCleared)
}

// ResolveSignedDownload exchanges a signed listing token for the
// artifact. The token itself is the authorization; it was minted for an
// admin who had already cleared the gate.
func (s *DeliveryService) ResolveSignedDownload(ctx context.Context, token string) (*ReportDownload, error) {
	studentID, handle, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}

	record, err := s.records.GetByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrReportNotReady
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment record")
	}
	if record.Status != models.StatusReportGenerated || record.ReportHandle == nil || *record.ReportHandle != handle {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token no longer matches a generated report")
	}

	download, err := s.open(handle)
	if err != nil {
		return nil, err
	}

	s.recordAccess(ctx, "signed-link", studentID, handle)
	return download, nil
}

// ListStudents returns the admin panel listing. Requires an admin
// principal that has cleared the shared-secret gate. Score detail is
// never included. Results are cached briefly and invalidated on
// lifecycle transitions.
func (s *DeliveryService) ListStudents(ctx context.Context, claims *models.JWTClaims, adminCleared bool, filter models.StudentFilter) ([]dto.StudentListItem, *models.Pagination, error) {
	if claims == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleAdmin {
		return nil, nil, appErrors.ErrForbidden
	}
	if !adminCleared {
		return nil, nil, appErrors.ErrForbidden
	}

	key := listingCacheKey(filter)
	var cached cachedListing
	if s.cache != nil {
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached.Items, cached.Pagination, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("listing cache read failed", zap.Error(err))
		}
	}

	overview, total, err := s.students.ListOverview(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	items := make([]dto.StudentListItem, 0, len(overview))
	for _, row := range overview {
		item := dto.StudentListItem{
			ID:         row.ID,
			Name:       row.FullName,
			SchoolName: row.SchoolName,
			Standard:   row.Standard,
			Age:        row.Age,
			Status:     row.Status,
		}
		if row.Status == models.StatusReportGenerated && row.ReportHandle != nil {
			item.ReportPath = row.ReportHandle
			if s.signer != nil {
				if token, _, signErr := s.signer.Generate(row.ID, *row.ReportHandle); signErr == nil {
					item.DownloadToken = &token
				}
			}
		}
		items = append(items, item)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, cachedListing{Items: items, Pagination: pagination}, s.cacheTTL); err != nil {
			s.logger.Warn("listing cache write failed", zap.Error(err))
		}
	}

	s.recordListing(ctx, claims.UserID)
	return items, pagination, nil
}

type cachedListing struct {
	Items      []dto.StudentListItem `json:"items"`
	Pagination *models.Pagination    `json:"pagination"`
}

func listingCacheKey(filter models.StudentFilter) string {
	status := ""
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	return fmt.Sprintf("students:listing:%d:%d:%s:%s:%s:%s",
		filter.Page, filter.PageSize, filter.Search, status, filter.SortBy, filter.SortOrder)
}

func (s *DeliveryService) open(handle string) (*ReportDownload, error) {
	file, err := s.store.Open(handle)
	if err != nil {
		if os.IsNotExist(err) {
			// Generated but lost: distinct from "not ready" so
			// operators can tell the two apart.
			s.logger.Error("report artifact missing from store", zap.String("handle", handle))
			return nil, appErrors.ErrArtifactMissing
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report")
	}
	return &ReportDownload{File: file, Filename: filepath.Base(handle)}, nil
}

func (s *DeliveryService) recordAccess(ctx context.Context, principalID, targetStudentID, handle string) {
	if s.audit == nil {
		return
	}
	detail, _ := json.Marshal(map[string]string{"handle": handle})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &principalID,
		Action:     models.AuditActionReportDownload,
		Resource:   "report",
		ResourceID: &targetStudentID,
		Detail:     detail,
	}); err != nil {
		s.logger.Warn("failed to record report access", zap.Error(err))
	}
}

func (s *DeliveryService) recordListing(ctx context.Context, principalID string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:   &principalID,
		Action:   models.AuditActionAdminListing,
		Resource: "students",
	}); err != nil {
		s.logger.Warn("failed to record listing access", zap.Error(err))
	}
}
