package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lihongwen/pgvector-kit/internal/core/apperr"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteError_KindMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{apperr.Validation("bad input"), http.StatusBadRequest, "validation_error"},
		{apperr.NotFound("missing"), http.StatusNotFound, "not_found"},
		{apperr.Embedding(errors.New("api down"), "embed failed"), http.StatusBadGateway, "embedding_error"},
		{apperr.Storage(errors.New("db down"), "insert failed"), http.StatusInternalServerError, "storage_error"},
		{apperr.Configuration("no key"), http.StatusInternalServerError, "configuration_error"},
		{errors.New("plain"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeError(rec, tc.err)
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
		assert.Equal(t, tc.kind, decodeError(t, rec).Kind)
	}
}

func TestWriteError_PartialOverwrite(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &apperr.PartialOverwriteError{Deleted: 7, Cause: errors.New("disk full")})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "partial_overwrite", body.Kind)
	require.NotNil(t, body.VectorsDeleted)
	assert.Equal(t, 7, *body.VectorsDeleted)
}

func TestWriteError_WrappedKind(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := apperr.Storage(apperr.Validation("inner"), "outer")
	writeError(rec, wrapped)
	// The outermost kind wins.
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
