package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RbroH99/les-sha-accesories/internal/repository"
	apperrors "github.com/RbroH99/les-sha-accesories/pkg/errors"
	"github.com/RbroH99/les-sha-accesories/pkg/logger"
)

func testServer() *Server {
	return &Server{logger: logger.NewNop()}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) ApiResponse {
	t.Helper()

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleServiceErrorNotFound(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()

	s.handleServiceError(rec, repository.ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "resource not found", resp.Error)
}

func TestHandleServiceErrorInvalidInput(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()

	s.handleServiceError(rec, apperrors.NewInvalidInputError("quantity must be positive"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "quantity must be positive", resp.Error)
}

func TestHandleServiceErrorHidesInternalDetails(t *testing.T) {
	s := testServer()
	rec := httptest.NewRecorder()

	s.handleServiceError(rec, repository.ErrDatabase)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "internal server error", resp.Error)
}

func TestPaginationDefaults(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)

	limit, offset := pagination(r)

	assert.Equal(t, defaultPageSize, limit)
	assert.Equal(t, 0, offset)
}

func TestPaginationParsesQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders?limit=10&offset=20", nil)

	limit, offset := pagination(r)

	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)
}

func TestPaginationCapsLimit(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders?limit=100000", nil)

	limit, _ := pagination(r)

	assert.Equal(t, maxPageSize, limit)
}

func TestPaginationIgnoresBadValues(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders?limit=abc&offset=-5", nil)

	limit, offset := pagination(r)

	assert.Equal(t, defaultPageSize, limit)
	assert.Equal(t, 0, offset)
}

func TestParseDiscountWindow(t *testing.T) {
	start := "2026-01-01T00:00:00Z"
	end := "2026-02-01T00:00:00Z"

	from, to, err := parseDiscountWindow(&start, &end)

	require.NoError(t, err)
	require.NotNil(t, from)
	require.NotNil(t, to)
	assert.True(t, to.After(*from))
}

func TestParseDiscountWindowRejectsInvertedRange(t *testing.T) {
	start := "2026-02-01T00:00:00Z"
	end := "2026-01-01T00:00:00Z"

	_, _, err := parseDiscountWindow(&start, &end)

	require.Error(t, err)
}

func TestParseDiscountWindowRejectsBadFormat(t *testing.T) {
	bad := "01/01/2026"

	_, _, err := parseDiscountWindow(&bad, nil)

	require.Error(t, err)
}

func TestParseDiscountWindowOpenEnded(t *testing.T) {
	from, to, err := parseDiscountWindow(nil, nil)

	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Nil(t, to)
}
