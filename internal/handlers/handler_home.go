package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getHome reports that the server is up.
func getHome(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Hello World From Dealer Ledger API v1"})
}
