package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

func respond(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	RespondError(c, err)

	assert.True(t, c.IsAborted())
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestStatusFor(t *testing.T) {
	cases := map[models.ErrorKind]int{
		models.KindValidation:        http.StatusBadRequest,
		models.KindUnauthorized:      http.StatusUnauthorized,
		models.KindForbidden:         http.StatusForbidden,
		models.KindNotFound:          http.StatusNotFound,
		models.KindInvalidTransition: http.StatusConflict,
		models.KindConflict:          http.StatusConflict,
		models.KindServer:            http.StatusInternalServerError,
		models.KindShapeMismatch:     http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, StatusFor(kind), kind)
	}
}

func TestRespondError_Validation(t *testing.T) {
	code, body := respond(t, models.NewValidationError("invalid booking request", map[string]string{"endDate": "end date must be after start date"}))

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid booking request", body["error"])
	assert.Equal(t, string(models.KindValidation), body["code"])
	assert.Equal(t, map[string]any{"endDate": "end date must be after start date"}, body["fields"])
}

func TestRespondError_InvalidTransition(t *testing.T) {
	code, body := respond(t, &models.Error{Kind: models.KindInvalidTransition, Message: "cannot change CONFIRMED booking to REJECTED"})

	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, string(models.KindInvalidTransition), body["code"])
	assert.NotContains(t, body, "fields")
}

func TestRespondError_UnknownErrorIsHidden(t *testing.T) {
	code, body := respond(t, errors.New("dial tcp: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body["error"])
	assert.Equal(t, string(models.KindServer), body["code"])
}

func TestJSONPaginated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	JSONPaginated(c, []string{"a"}, models.NewPagination(1, 0, 12, 100, 1))

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Data       []string          `json:"data"`
			Pagination models.Pagination `json:"pagination"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, []string{"a"}, body.Data.Data)
	assert.Equal(t, 12, body.Data.Pagination.Limit)
}
