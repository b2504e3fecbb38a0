package utils

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
)

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

// JSONPaginated nests the page and its pagination block under data.
func JSONPaginated(c *gin.Context, items interface{}, p models.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"data": items, "pagination": p},
	})
}

func JSONMessage(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": true, "message": message})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindValidation:
		return http.StatusBadRequest
	case models.KindUnauthorized:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindInvalidTransition, models.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// RespondError writes err as an error envelope and aborts the chain. Errors
// outside the models taxonomy are logged and reported as a server error.
func RespondError(c *gin.Context, err error) {
	var e *models.Error
	if !errors.As(err, &e) {
		slog.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal server error",
			"code":    models.KindServer,
		})
		return
	}
	status := StatusFor(e.Kind)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	}
	body := gin.H{
		"success": false,
		"error":   e.UserMessage(),
		"code":    e.Kind,
	}
	if len(e.Fields) > 0 {
		body["fields"] = e.Fields
	}
	c.AbortWithStatusJSON(status, body)
}
