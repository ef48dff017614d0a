package api

import "github.com/gin-gonic/gin"

// envelope is the uniform response shape for every endpoint. Handlers
// never let raw error text (SQL fragments, driver messages) reach
// Error or Message — unexpected faults get a generic message here and
// the detail goes to the server log.
type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Success: true, Data: data})
}

func respondDataMessage(c *gin.Context, status int, data any, message string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: message})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: true, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

// respondErrors carries itemized validation messages (password policy,
// malformed fields) alongside the summary message.
func respondErrors(c *gin.Context, status int, message string, errs []string) {
	c.JSON(status, envelope{Success: false, Message: message, Errors: errs})
}
