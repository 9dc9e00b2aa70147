package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK sends a 200 JSON response: {"ok": true} merged with the given fields.
func OK(c *gin.Context, fields gin.H) {
	body := gin.H{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// BadRequest sends 400 with an error message.
func BadRequest(c *gin.Context, err string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err})
}

// NotFound sends 404 with an error message.
func NotFound(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err})
}

// Internal sends 500 with an error message.
func Internal(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err})
}
