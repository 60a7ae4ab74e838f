package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/enhc-tech/career-guide-api/internal/models"
	appErrors "github.com/enhc-tech/career-guide-api/pkg/errors"
)

type authRepoStub struct {
	byEmail map[string]*models.Student
	byID    map[string]*models.Student
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{byEmail: map[string]*models.Student{}, byID: map[string]*models.Student{}}
}

func (r *authRepoStub) Create(ctx context.Context, student *models.Student) error {
	r.byEmail[student.Email] = student
	r.byID[student.ID] = student
	return nil
}

func (r *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	student, ok := r.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func (r *authRepoStub) FindByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := r.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type pendingInitStub struct {
	created []string
}

func (p *pendingInitStub) CreatePending(ctx context.Context, studentID string) error {
	p.created = append(p.created, studentID)
	return nil
}

func newAuthServiceForTest() (*AuthService, *authRepoStub, *pendingInitStub) {
	repo := newAuthRepoStub()
	pending := &pendingInitStub{}
	svc := NewAuthService(repo, pending, nil, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "test-secret",
		AccessTokenExpiry: time.Hour,
		Issuer:            "career-guide-api",
	})
	return svc, repo, pending
}

func validSignup() models.SignupRequest {
	return models.SignupRequest{
		Email:      "asha@example.com",
		Password:   "secret123",
		FullName:   "Asha Rao",
		SchoolName: "City School",
		Standard:   "10",
		Age:        15,
	}
}

func TestAuthServiceSignup(t *testing.T) {
	svc, repo, pending := newAuthServiceForTest()

	resp, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleStudent, resp.User.Role)

	student := repo.byEmail["asha@example.com"]
	require.NotNil(t, student)
	assert.NotEqual(t, "secret123", student.PasswordHash)
	require.Len(t, pending.created, 1)
	assert.Equal(t, student.ID, pending.created[0])
}

func TestAuthServiceSignupDuplicateEmail(t *testing.T) {
	svc, repo, _ := newAuthServiceForTest()
	repo.byEmail["asha@example.com"] = &models.Student{ID: "existing", Email: "asha@example.com"}

	_, err := svc.Signup(context.Background(), validSignup())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceSignupInvalidPayload(t *testing.T) {
	svc, _, _ := newAuthServiceForTest()
	req := validSignup()
	req.Age = 3

	_, err := svc.Signup(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogin(t *testing.T) {
	svc, repo, _ := newAuthServiceForTest()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.byEmail["asha@example.com"] = &models.Student{
		ID: "student-1", Email: "asha@example.com", PasswordHash: string(hash),
		FullName: "Asha Rao", Role: models.RoleStudent,
	}

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "asha@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "student-1", resp.User.ID)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, repo, _ := newAuthServiceForTest()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.byEmail["asha@example.com"] = &models.Student{
		ID: "student-1", Email: "asha@example.com", PasswordHash: string(hash),
	}

	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "asha@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newAuthServiceForTest()

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc, _, _ := newAuthServiceForTest()

	resp, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestAuthServiceValidateTokenWrongSecret(t *testing.T) {
	issuing, _, _ := newAuthServiceForTest()
	resp, err := issuing.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	verifying := NewAuthService(newAuthRepoStub(), &pendingInitStub{}, nil, nil, zap.NewNop(), AuthConfig{
		AccessTokenSecret: "different-secret",
		AccessTokenExpiry: time.Hour,
	})
	_, err = verifying.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateTokenGarbage(t *testing.T) {
	svc, _, _ := newAuthServiceForTest()

	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
