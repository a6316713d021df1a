// Package response renders the JSON envelope every handler speaks:
// {"success": true, "data": ...} on the happy path, {"success": false,
// "error": {"code", "message"[, "details"]}} otherwise. Codes are short
// machine-readable identifiers (VALIDATION_ERROR, SLOT_CONFLICT, ...);
// messages are for humans.
package response

import "github.com/gin-gonic/gin"

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes data under the success envelope with the given status.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error writes a failure envelope carrying a machine-readable code and a
// human-readable message.
func Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   errorBody{Code: code, Message: message},
	})
}

// ErrorWithDetails is Error with a free-form details payload, used for
// field-level validation output.
func ErrorWithDetails(c *gin.Context, statusCode int, code, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   errorBody{Code: code, Message: message, Details: details},
	})
}
