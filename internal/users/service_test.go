package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bawasa/bawasa-backend/pkg/config"
	"github.com/bawasa/bawasa-backend/pkg/db/models"
	"github.com/bawasa/bawasa-backend/pkg/enums"
	pkgerrors "github.com/bawasa/bawasa-backend/pkg/errors"
	"github.com/bawasa/bawasa-backend/pkg/security"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

type fakeUsersRepo struct {
	byID    map[uuid.UUID]*models.User
	byEmail map[string]*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{
		byID:    map[uuid.UUID]*models.User{},
		byEmail: map[string]*models.User{},
	}
}

func (f *fakeUsersRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	if _, exists := f.byEmail[user.Email]; exists {
		return nil, gorm.ErrDuplicatedKey
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now().UTC()
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return user, nil
}

func (f *fakeUsersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsersRepo) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	user, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = hash
	return nil
}

func (f *fakeUsersRepo) List(_ context.Context, opts listQuery) ([]models.User, error) {
	var rows []models.User
	for _, user := range f.byID {
		if opts.role != "" && user.Role != opts.role {
			continue
		}
		rows = append(rows, *user)
	}
	return rows, nil
}

func TestCreateCashierIssuesTempPassword(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, err := NewService(repo, testPasswordConfig)
	require.NoError(t, err)

	result, err := svc.Create(context.Background(), CreateInput{
		Email:    "Maria.Santos@bawasa.gov.ph",
		FullName: "Maria Santos",
		Role:     "cashier",
	})
	require.NoError(t, err)

	require.Equal(t, "maria.santos@bawasa.gov.ph", result.User.Email)
	require.Equal(t, enums.UserRoleCashier, result.User.Role)
	require.Len(t, result.TempPassword, tempPasswordLength)
	require.NotContains(t, result.User.PasswordHash, result.TempPassword)

	ok, err := security.VerifyPassword(result.TempPassword, result.User.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok, "temporary password must verify against the stored hash")
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, err := NewService(repo, testPasswordConfig)
	require.NoError(t, err)

	input := CreateInput{Email: "cashier@bawasa.gov.ph", FullName: "First Cashier", Role: "cashier"}
	_, err = svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
	require.Equal(t, "email already registered", typed.Message())
}

func TestCreateValidation(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, err := NewService(repo, testPasswordConfig)
	require.NoError(t, err)

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"missing email", CreateInput{FullName: "No Email", Role: "cashier"}},
		{"malformed email", CreateInput{Email: "not-an-email", FullName: "Bad Email", Role: "cashier"}},
		{"missing full name", CreateInput{Email: "a@bawasa.gov.ph", Role: "cashier"}},
		{"unknown role", CreateInput{Email: "a@bawasa.gov.ph", FullName: "Unknown Role", Role: "auditor"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.Error(t, err)
			require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
	require.Empty(t, repo.byID)
}

func TestChangePassword(t *testing.T) {
	repo := newFakeUsersRepo()
	svc, err := NewService(repo, testPasswordConfig)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateInput{
		Email: "rotate@bawasa.gov.ph", FullName: "Rotate Me", Role: "cashier",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), created.User.ID, ChangePasswordInput{
		CurrentPassword: created.TempPassword,
		NewPassword:     "a-much-stronger-password",
	})
	require.NoError(t, err)

	ok, err := security.VerifyPassword("a-much-stronger-password", repo.byID[created.User.ID].PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	err = svc.ChangePassword(context.Background(), created.User.ID, ChangePasswordInput{
		CurrentPassword: created.TempPassword,
		NewPassword:     "another-password",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(err).Code())
}

func TestListRejectsInvalidRole(t *testing.T) {
	svc, err := NewService(newFakeUsersRepo(), testPasswordConfig)
	require.NoError(t, err)

	_, err = svc.List(context.Background(), ListParams{Role: "plumber"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
