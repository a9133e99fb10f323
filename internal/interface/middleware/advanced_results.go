package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
)

// Lister is a collection that can be paged through with a query.Query.
type Lister[T any] interface {
	List(ctx context.Context, q query.Query) ([]T, error)
	Count(ctx context.Context, q query.Query) (int, error)
}

// AdvancedResults serves a list endpoint straight from URL parameters:
// filters, select, sort, page and limit, plus the populate relation fixed for
// the route. The body is {success, count, pagination, data}.
func AdvancedResults[T any](lister Lister[T], populate string) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := query.Parse(c.Request.URL.Query())
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		q.Populate = populate

		ctx := c.Request.Context()
		total, err := lister.Count(ctx, q)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		items, err := lister.List(ctx, q)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		data, err := query.Project(items, q.Select)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.JSON(http.StatusOK, query.Result{
			Success:    true,
			Count:      len(items),
			Pagination: q.Paginate(total),
			Data:       data,
		})
	}
}
