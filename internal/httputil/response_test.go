package httputil

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, map[string]string{"message": "ok"}, 201)

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"ok"}`, rec.Body.String())
}

func TestRespondErrorWithCode(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorWithCode(rec, "invalid session", CodeSessionInvalid, 401)

	assert.Equal(t, 401, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid session", resp.Error)
	assert.Equal(t, CodeSessionInvalid, resp.Code)
}

func TestRespondError_OmitsCode(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, "boom", 500)

	assert.Equal(t, 500, rec.Code)
	assert.NotContains(t, rec.Body.String(), "code")
}
