package middleware

import (
	"expvar"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

// ErrorCounts is published on /debug/vars as error counts per kind.
var ErrorCounts = expvar.NewMap("errors_by_kind")

// Errors renders the last error attached with c.Error as the uniform
// {success:false, error} envelope. Handlers never write error bodies themselves.
func Errors(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		ae := apperror.From(c.Errors.Last().Err)
		ErrorCounts.Add(ae.Kind.String(), 1)

		entry := logger.WithFields(logrus.Fields{
			"request_id": c.GetString(CtxRequestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"kind":       ae.Kind.String(),
		})
		if ae.Err != nil {
			entry = entry.WithError(ae.Err)
		}
		if ae.Status() >= http.StatusInternalServerError {
			entry.Error(ae.Error())
		} else {
			entry.Debug(ae.Error())
		}

		response.Error(c, ae.Status(), ae.Error())
	}
}

// Recovery turns a panic into an Internal error handled by Errors.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		_ = c.Error(apperror.Internal(fmt.Errorf("panic: %v", recovered)))
		c.Abort()
	})
}
