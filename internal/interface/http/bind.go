package handlers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/oksasatya/bootcamp-directory/pkg/validation"
)

// bindJSON decodes the body into dst and reports failures through c.Error.
// An empty body binds as an empty object and is still validated.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(dst)
	}
	if err != nil {
		_ = c.Error(validation.FromError(err))
		return false
	}
	return true
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

// requestBaseURL is the scheme and host the client used to reach the API.
func requestBaseURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
