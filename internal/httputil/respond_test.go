package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopops/backoffice/internal/app/storage"
	"github.com/shopops/backoffice/internal/errs"
)

func decodeBody(rec *httptest.ResponseRecorder, v any) error {
	return json.NewDecoder(rec.Body).Decode(v)
}

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantField  string
	}{
		{"validation", errs.Validation("name", "name is required"), http.StatusBadRequest, "name"},
		{"wrapped validation", fmt.Errorf("create: %w", errs.Validation("quantity", "must be positive")), http.StatusBadRequest, "quantity"},
		{"unauthorized", errs.ErrUnauthorized, http.StatusUnauthorized, ""},
		{"not found", storage.ErrNotFound, http.StatusNotFound, ""},
		{"duplicate", storage.ErrDuplicate, http.StatusConflict, ""},
		{"insufficient stock", storage.ErrInsufficientStock, http.StatusConflict, ""},
		{"conflict", errs.Conflict("cannot deactivate your own account"), http.StatusConflict, ""},
		{"unknown", errors.New("pg: connection refused"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, decodeBody(rec, &body))
			assert.NotEmpty(t, body.Message)
			assert.Equal(t, tc.wantField, body.Field)
		})
	}
}

func TestWriteError_NeverLeaksInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("dial tcp 10.0.0.3:5432: i/o timeout"))

	var body ErrorResponse
	require.NoError(t, decodeBody(rec, &body))
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, body.Message, "10.0.0.3")
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Desk Lamp"}`))
		rec := httptest.NewRecorder()

		var p payload
		require.True(t, DecodeJSON(rec, req, &p))
		assert.Equal(t, "Desk Lamp", p.Name)
	})

	t.Run("malformed body writes 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		rec := httptest.NewRecorder()

		var p payload
		require.False(t, DecodeJSON(rec, req, &p))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWriteJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
