package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	kindValidation   = "validation"
	kindUnauthorized = "unauthorized"
	kindNotFound     = "not_found"
	kindConflict     = "conflict"
	kindInternal     = "internal"
)

// respondError writes the single structured error shape used across the API.
// Store errors are logged by the caller, never echoed to the client.
func respondError(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
		"error":   gin.H{"kind": kind, "message": message},
	})
}

func respondInternal(c *gin.Context, logger *zap.Logger, route string, err error) {
	logger.Error("request failed", zap.String("route", route), zap.Error(err))
	respondError(c, http.StatusInternalServerError, kindInternal, "something went wrong")
}

func handlePanic(c *gin.Context, logger *zap.Logger, route string) {
	if r := recover(); r != nil {
		logger.Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		respondError(c, http.StatusInternalServerError, kindInternal, "internal server error")
	}
}
