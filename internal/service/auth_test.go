package service

import (
	"context"
	"testing"

	"github.com/courtside/platform/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, RegisterInput{Email: "Asha@Example.com", Password: "securepass123", Name: "Asha"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "asha@example.com", res.Profile.Email)
	assert.Equal(t, domain.RoleUser, res.Session.Role)
	assert.Equal(t, res.Profile.ID, res.Session.PrincipalID)

	claims, err := f.jwtMgr.ValidateToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Profile.ID.String(), claims.Subject)

	_, err = f.auth.Register(ctx, RegisterInput{Email: "ASHA@example.com", Password: "securepass123"})
	assertCode(t, err, domain.CodeConflict)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"bad email", RegisterInput{Email: "nope", Password: "securepass123"}},
		{"short password", RegisterInput{Email: "a@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(context.Background(), tt.input)
			assertCode(t, err, domain.CodeValidation)
		})
	}
}

func TestRegister_BootstrapAdmin(t *testing.T) {
	f := newFixture(t)
	res, err := f.auth.Register(context.Background(), RegisterInput{Email: "admin@club.test", Password: "securepass123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.Profile.Role)
	assert.Equal(t, domain.RoleAdmin, res.Session.Role)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "securepass123"})
	require.NoError(t, err)

	res, err := f.auth.Login(ctx, LoginInput{Email: " A@example.com", Password: "securepass123"}, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", res.Session.Email)

	_, err = f.auth.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrongpass"}, "127.0.0.1")
	assertCode(t, err, domain.CodeUnauthorized)

	_, err = f.auth.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "securepass123"}, "127.0.0.1")
	assertCode(t, err, domain.CodeUnauthorized)
}

func TestLogin_Lockout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "securepass123"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := f.auth.Login(ctx, LoginInput{Email: "a@example.com", Password: "wrongpass"}, "10.0.0.1")
		assertCode(t, err, domain.CodeUnauthorized)
	}

	_, err = f.auth.Login(ctx, LoginInput{Email: "a@example.com", Password: "securepass123"}, "10.0.0.1")
	assertCode(t, err, domain.CodeAccountLocked)
}

func TestRefreshAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "securepass123"})
	require.NoError(t, err)

	refreshed, err := f.auth.Refresh(ctx, res.Session)
	require.NoError(t, err)
	assert.NotEqual(t, res.Session.TokenID, refreshed.Session.TokenID)

	revoked, err := f.revoked.IsRevoked(ctx, res.Session.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, f.auth.Logout(ctx, refreshed.Session))
	revoked, err = f.revoked.IsRevoked(ctx, refreshed.Session.TokenID)
	require.NoError(t, err)
	assert.True(t, revoked)

	assertCode(t, f.auth.Logout(ctx, nil), domain.CodeUnauthorized)
}

func TestRefresh_PicksUpRoleChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res, err := f.auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "securepass123"})
	require.NoError(t, err)

	promoted := *res.Profile
	promoted.Role = domain.RoleAdmin
	f.store.Profiles.Put(promoted)

	refreshed, err := f.auth.Refresh(ctx, res.Session)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, refreshed.Session.Role)
}
