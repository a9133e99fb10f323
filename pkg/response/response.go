package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform success body: {success, count?, data}.
// Paginated lists use query.Result instead.
type Envelope[T any] struct {
	Success bool `json:"success"`
	Count   *int `json:"count,omitempty"`
	Data    T    `json:"data"`
}

// TokenEnvelope is returned by login, register, password reset and update.
type TokenEnvelope struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// ErrorEnvelope is the uniform failure body.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Empty renders as {} in "data".
type Empty struct{}

func Success[T any](c *gin.Context, status int, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope[T]{Success: true, Data: data})
}

// List renders a slice with its count.
func List[T any](c *gin.Context, data []T) {
	if data == nil {
		data = []T{}
	}
	n := len(data)
	c.JSON(http.StatusOK, Envelope[[]T]{Success: true, Count: &n, Data: data})
}

func Token(c *gin.Context, status int, token string) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, TokenEnvelope{Success: true, Token: token})
}

func Error(c *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Success: false, Error: message})
}
