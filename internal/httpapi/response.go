package httpapi

import (
	"net/http"

	"quickbite/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Every endpoint answers with the same envelope: {"success": true, "data":
// ...} or {"success": false, "error": "..."}.

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondErr(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"success": false, "error": err.Error()})
}

func respondBadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}
