package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/enhc-tech/career-guide-api/internal/models"
	appErrors "github.com/enhc-tech/career-guide-api/pkg/errors"
	"github.com/enhc-tech/career-guide-api/pkg/storage"
)

type deliveryRecordsStub struct {
	byStudent map[string]*models.AssessmentRecord
}

func newDeliveryRecordsStub() *deliveryRecordsStub {
	return &deliveryRecordsStub{byStudent: map[string]*models.AssessmentRecord{}}
}

func (s *deliveryRecordsStub) GetByStudentID(ctx context.Context, studentID string) (*models.AssessmentRecord, error) {
	record, ok := s.byStudent[studentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return record, nil
}

func (s *deliveryRecordsStub) GetByReportHandle(ctx context.Context, handle string) (*models.AssessmentRecord, error) {
	for _, record := range s.byStudent {
		if record.ReportHandle != nil && *record.ReportHandle == handle {
			return record, nil
		}
	}
	return nil, sql.ErrNoRows
}

type listerStub struct {
	rows  []models.StudentOverview
	total int
}

func (l *listerStub) ListOverview(ctx context.Context, filter models.StudentFilter) ([]models.StudentOverview, int, error) {
	return l.rows, l.total, nil
}

func newDeliveryServiceForTest(t *testing.T) (*DeliveryService, *deliveryRecordsStub, *listerStub, *storage.ReportStore) {
	t.Helper()
	records := newDeliveryRecordsStub()
	lister := &listerStub{}
	store, err := storage.NewReportStore(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewDownloadTokenSigner("test-signing-secret", time.Hour)
	svc := NewDeliveryService(records, lister, store, nil, signer, nil, zap.NewNop(), time.Minute)
	return svc, records, lister, store
}

func generatedRecord(t *testing.T, store *storage.ReportStore, studentID, handle string) *models.AssessmentRecord {
	t.Helper()
	require.NoError(t, store.Put(handle, []byte("%PDF-1.4 test")))
	return &models.AssessmentRecord{
		StudentID: studentID, Status: models.StatusReportGenerated, ReportHandle: &handle,
	}
}

func studentClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleStudent}
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func TestDeliveryServiceFetchOwnReport(t *testing.T) {
	svc, records, _, store := newDeliveryServiceForTest(t)
	records.byStudent["student-1"] = generatedRecord(t, store, "student-1", "Asha_Rao_Career_Report.pdf")

	download, err := svc.FetchReport(context.Background(), studentClaims("student-1"), "student-1", "Asha_Rao_Career_Report.pdf", false)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "Asha_Rao_Career_Report.pdf", download.Filename)
}

func TestDeliveryServiceFetchOtherStudentsReport(t *testing.T) {
	svc, records, _, store := newDeliveryServiceForTest(t)
	records.byStudent["student-1"] = generatedRecord(t, store, "student-1", "report.pdf")

	_, err := svc.FetchReport(context.Background(), studentClaims("student-2"), "student-1", "report.pdf", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceAdminWithoutGate(t *testing.T) {
	svc, records, _, store := newDeliveryServiceForTest(t)
	records.byStudent["student-1"] = generatedRecord(t, store, "student-1", "report.pdf")

	_, err := svc.FetchReport(context.Background(), adminClaims(), "student-1", "report.pdf", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceAdminWithGate(t *testing.T) {
	svc, records, _, store := newDeliveryServiceForTest(t)
	records.byStudent["student-1"] = generatedRecord(t, store, "student-1", "report.pdf")

	download, err := svc.FetchReportByHandle(context.Background(), adminClaims(), "report.pdf", true)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "report.pdf", download.Filename)
}

func TestDeliveryServiceReportNotReady(t *testing.T) {
	svc, records, _, _ := newDeliveryServiceForTest(t)
	records.byStudent["student-1"] = &models.AssessmentRecord{StudentID: "student-1", Status: models.StatusAnalyzing}

	_, err := svc.FetchReport(context.Background(), studentClaims("student-1"), "student-1", "", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReportNotReady.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceNoRecordReadsNotReady(t *testing.T) {
	svc, _, _, _ := newDeliveryServiceForTest(t)

	_, err := svc.FetchReport(context.Background(), studentClaims("student-1"), "student-1", "", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrReportNotReady.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceHandleMismatch(t *testing.T) {
	svc, records, _, store := newDeliveryServiceForTest(t)
	records.byStudent["student-1"] = generatedRecord(t, store, "student-1", "actual.pdf")

	_, err := svc.FetchReport(context.Background(), studentClaims("student-1"), "student-1", "guessed.pdf", false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceArtifactMissing(t *testing.T) {
	svc, records, _, _ := newDeliveryServiceForTest(t)
	handle := "vanished.pdf"
	records.byStudent["student-1"] = &models.AssessmentRecord{
		StudentID: "student-1", Status: models.StatusReportGenerated, ReportHandle: &handle,
	}

	_, err := svc.FetchReport(context.Background(), studentClaims("student-1"), "student-1", handle, false)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrArtifactMissing.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceUnknownHandle(t *testing.T) {
	svc, _, _, _ := newDeliveryServiceForTest(t)

	_, err := svc.FetchReportByHandle(context.Background(), adminClaims(), "nothing.pdf", true)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceResolveSignedDownload(t *testing.T) {
	svc, records, _, store := newDeliveryServiceForTest(t)
	records.byStudent["student-1"] = generatedRecord(t, store, "student-1", "report.pdf")

	signer := storage.NewDownloadTokenSigner("test-signing-secret", time.Hour)
	token, _, err := signer.Generate("student-1", "report.pdf")
	require.NoError(t, err)

	download, err := svc.ResolveSignedDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "report.pdf", download.Filename)
}

func TestDeliveryServiceResolveSignedDownloadTampered(t *testing.T) {
	svc, records, _, store := newDeliveryServiceForTest(t)
	records.byStudent["student-1"] = generatedRecord(t, store, "student-1", "report.pdf")

	signer := storage.NewDownloadTokenSigner("another-secret", time.Hour)
	token, _, err := signer.Generate("student-1", "report.pdf")
	require.NoError(t, err)

	_, err = svc.ResolveSignedDownload(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceListStudents(t *testing.T) {
	svc, _, lister, _ := newDeliveryServiceForTest(t)
	handle := "report.pdf"
	lister.rows = []models.StudentOverview{
		{ID: "student-1", FullName: "Asha Rao", SchoolName: "City School", Standard: "10", Age: 15, Status: models.StatusReportGenerated, ReportHandle: &handle},
		{ID: "student-2", FullName: "Ben Kim", SchoolName: "City School", Standard: "9", Age: 14, Status: models.StatusPending},
	}
	lister.total = 2

	items, pagination, err := svc.ListStudents(context.Background(), adminClaims(), true, models.StudentFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, pagination)
	assert.Equal(t, 2, pagination.TotalCount)

	require.NotNil(t, items[0].ReportPath)
	assert.Equal(t, handle, *items[0].ReportPath)
	assert.NotNil(t, items[0].DownloadToken)

	assert.Nil(t, items[1].ReportPath)
	assert.Nil(t, items[1].DownloadToken)
}

func TestDeliveryServiceListStudentsWithoutGate(t *testing.T) {
	svc, _, _, _ := newDeliveryServiceForTest(t)

	_, _, err := svc.ListStudents(context.Background(), adminClaims(), false, models.StudentFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDeliveryServiceListStudentsAsStudent(t *testing.T) {
	svc, _, _, _ := newDeliveryServiceForTest(t)

	_, _, err := svc.ListStudents(context.Background(), studentClaims("student-1"), true, models.StudentFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
