//go:build integration

package integration

import (
	"net/http"
	"testing"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/test/integration/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_RequiresAdminRole(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.Register("user@example.com")

	for _, path := range []string{"/admin/bookings", "/admin/profiles"} {
		resp := env.AuthGET(path, token)
		testutil.AssertStatus(t, resp, http.StatusForbidden)
		resp.Body.Close()

		resp = env.GET(path)
		testutil.AssertStatus(t, resp, http.StatusUnauthorized)
		resp.Body.Close()
	}
}

func TestAdmin_GameCatalog(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken, _ := env.RegisterAdmin()

	resp := env.POST("/admin/games", map[string]string{"name": "Padel", "description": "Glass court"}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var g domain.Game
	testutil.DecodeJSON(t, resp, &g)
	assert.True(t, g.IsActive)

	resp = env.POST("/admin/games", map[string]string{"name": "   "}, adminToken)
	testutil.AssertErrorCode(t, resp, http.StatusBadRequest, domain.CodeValidation)

	resp = env.AuthPATCH("/admin/games/"+g.ID.String(), map[string]bool{"is_active": false}, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Hidden from the public catalog, still visible to admins.
	resp = env.GET("/games")
	var public []domain.Game
	testutil.DecodeJSON(t, resp, &public)
	assert.Empty(t, public)

	resp = env.AuthGET("/games/all", adminToken)
	var all []domain.Game
	testutil.DecodeJSON(t, resp, &all)
	require.Len(t, all, 1)
	assert.False(t, all[0].IsActive)

	resp = env.GET("/games/" + g.ID.String())
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	resp.Body.Close()
}

func TestAdmin_ListAllBookings(t *testing.T) {
	env := testutil.NewTestEnv(t)
	tokenA, _ := env.Register("a@example.com")
	tokenB, _ := env.Register("b@example.com")
	adminToken, _ := env.RegisterAdmin()
	gameID := env.SeedGame("Badminton", true)

	env.CreateBooking(tokenA, gameID, testDate, "09:00").Body.Close()
	env.CreateBooking(tokenB, gameID, testDate, "10:00").Body.Close()

	resp := env.AuthGET("/admin/bookings", adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []domain.BookingDetail
	testutil.DecodeJSON(t, resp, &all)
	require.Len(t, all, 2)
	for _, b := range all {
		assert.Equal(t, "Badminton", b.GameName)
		assert.NotEmpty(t, b.UserEmail)
	}

	resp = env.AuthGET("/admin/profiles", adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profiles []domain.Profile
	testutil.DecodeJSON(t, resp, &profiles)
	assert.Len(t, profiles, 3)
}
