package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkazemy/subman/internal/apperr"
)

func doErrorJSON(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, errorJSON(c, err))
	return rec
}

func TestErrorJSONStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		body   string
	}{
		{apperr.ErrSubscriptionNotFound, http.StatusNotFound, "subscription not found"},
		{apperr.ErrInvalidID, http.StatusBadRequest, "invalid identifier format"},
		{apperr.ErrDuplicateActive, http.StatusConflict, "customer already has an active subscription for this product"},
		{apperr.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{apperr.ErrNotOwner, http.StatusForbidden, "subscription belongs to another customer"},
	}

	for _, tt := range tests {
		rec := doErrorJSON(t, tt.err)
		assert.Equal(t, tt.status, rec.Code)
		assert.Contains(t, rec.Body.String(), tt.body)
	}
}

func TestErrorJSONHidesInternalDetail(t *testing.T) {
	rec := doErrorJSON(t, apperr.Store("customer lookup", errors.New("dial tcp: refused")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
	assert.NotContains(t, rec.Body.String(), "dial tcp")

	// unclassified errors also fall back to 500
	rec = doErrorJSON(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}
