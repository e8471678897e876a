package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbid/auction-marketplace/internal/role"
	"github.com/openbid/auction-marketplace/internal/utils"
)

const testSecret = "test-secret"

func doRequest(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, handler(c))
	return rec, c
}

func TestJWTAuthAcceptsSignedToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 42, "Bidder", 15)
	require.NoError(t, err)

	rec, c := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), c.Get(CtxAccountID))
	assert.Equal(t, "Bidder", c.Get(CtxRole))
}

func TestJWTAuthRejections(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		rec, _ := doRequest(t, JWTAuth(testSecret), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("wrong secret", func(t *testing.T) {
		tok, err := utils.NewAccessToken("other-secret", 42, "Bidder", 15)
		require.NoError(t, err)
		rec, _ := doRequest(t, JWTAuth(testSecret), "Bearer "+tok.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("garbage token", func(t *testing.T) {
		rec, _ := doRequest(t, JWTAuth(testSecret), "Bearer not.a.jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	run := func(roleClaim string, mw echo.MiddlewareFunc) int {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if roleClaim != "" {
			c.Set(CtxRole, roleClaim)
		}
		handler := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		if err := handler(c); err != nil {
			return http.StatusInternalServerError
		}
		return rec.Code
	}

	bidderOnly := RequireRole(role.Bidder)
	assert.Equal(t, http.StatusOK, run("Bidder", bidderOnly))
	assert.Equal(t, http.StatusForbidden, run("Auctioneer", bidderOnly))
	assert.Equal(t, http.StatusForbidden, run("", bidderOnly))
	assert.Equal(t, http.StatusForbidden, run("made-up", bidderOnly))

	admin := RequireAdmin()
	assert.Equal(t, http.StatusOK, run("Admin", admin))
	assert.Equal(t, http.StatusOK, run("Super Admin", admin))
	assert.Equal(t, http.StatusForbidden, run("Bidder", admin))
}
