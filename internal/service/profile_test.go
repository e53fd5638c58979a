package service

import (
	"context"
	"testing"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProfile_BootstrapAdmin(t *testing.T) {
	tests := []struct {
		email string
		want  domain.Role
	}{
		{"admin@club.test", domain.RoleAdmin},
		{"  ADMIN@club.TEST ", domain.RoleAdmin},
		{"player@club.test", domain.RoleUser},
		{"admin@club.test.evil", domain.RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			f := newFixture(t)
			p, err := f.profiles.EnsureProfile(context.Background(), uuid.New(), tt.email, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Role)
		})
	}
}

func TestEnsureProfile_Idempotent(t *testing.T) {
	f := newFixture(t)
	id := uuid.New()

	first, err := f.profiles.EnsureProfile(context.Background(), id, "asha@example.com", "Asha")
	require.NoError(t, err)
	second, err := f.profiles.EnsureProfile(context.Background(), id, "asha@example.com", "Someone Else")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Asha", second.Name)
	assert.Equal(t, []domain.EventType{domain.EventProfileCreated}, f.store.Outbox.Types())
}

func TestEnsureProfile_DefaultName(t *testing.T) {
	f := newFixture(t)
	p, err := f.profiles.EnsureProfile(context.Background(), uuid.New(), "ravi@example.com", "  ")
	require.NoError(t, err)
	assert.Equal(t, "ravi", p.Name)
}

func TestProfileGet(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "a@example.com")

	p, err := f.profiles.Get(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", p.Email)

	_, err = f.profiles.Get(context.Background(), uuid.New())
	assertCode(t, err, domain.CodeNotFound)
}

func TestUpdateOwn(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "a@example.com")
	other := f.user(t, "b@example.com")
	admin := f.user(t, "admin@club.test")

	name := "  Asha  "
	email := "Asha@Example.com"
	updated, err := f.profiles.UpdateOwn(context.Background(), user, user.ID, domain.ProfileUpdate{Name: &name, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "Asha", updated.Name)
	assert.Equal(t, "asha@example.com", updated.Email)
	assert.Equal(t, domain.RoleUser, updated.Role)

	_, err = f.profiles.UpdateOwn(context.Background(), other, user.ID, domain.ProfileUpdate{Name: &name})
	assertCode(t, err, domain.CodeForbidden)

	_, err = f.profiles.UpdateOwn(context.Background(), admin, user.ID, domain.ProfileUpdate{Name: &name})
	assertCode(t, err, domain.CodeForbidden)

	_, err = f.profiles.UpdateOwn(context.Background(), policy.Anonymous(), user.ID, domain.ProfileUpdate{Name: &name})
	assertCode(t, err, domain.CodeUnauthorized)

	bad := "not-an-email"
	_, err = f.profiles.UpdateOwn(context.Background(), user, user.ID, domain.ProfileUpdate{Email: &bad})
	assertCode(t, err, domain.CodeValidation)
}

func TestProfileList(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "a@example.com")
	admin := f.user(t, "admin@club.test")

	all, err := f.profiles.List(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := f.profiles.List(context.Background(), user)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}
