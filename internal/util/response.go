package util

import "github.com/gin-gonic/gin"

// Error writes the standard error body used across the API.
// Every error response is a single "detail" message with a fixed text.
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"detail": msg})
}

// AbortError writes an error body and stops the middleware chain.
func AbortError(c *gin.Context, httpStatus int, msg string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{"detail": msg})
}
