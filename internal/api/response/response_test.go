package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/examlab/recorder/internal/api/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_WritesBarePayload(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, []string{"a", "b"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestOK_MergesExtras(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, map[string]any{"filename": "a.webm"})

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, true, got["ok"])
	assert.Equal(t, "a.webm", got["filename"])
}

func TestError_Envelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Error(rec, http.StatusBadRequest, "INVALID_REQUEST", "file is required", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var got struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "INVALID_REQUEST", got.Error.Code)
	assert.Equal(t, "file is required", got.Error.Message)
}
