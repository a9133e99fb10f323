package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bootcamp-directory/config"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
	"github.com/oksasatya/bootcamp-directory/pkg/response"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), RealIP(), Errors(helpers.NewNopLogger()), Recovery())
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorEnvelope {
	t.Helper()
	var body response.ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type resolver map[string]*entity.User

func (r resolver) ResolveUser(_ context.Context, token string) (*entity.User, error) {
	if u, ok := r[token]; ok {
		return u, nil
	}
	return nil, apperror.Unauthenticated("Not authorized to access this route")
}

func TestTokenFromRequest(t *testing.T) {
	cases := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "bearer wins over cookie", header: "Bearer abc", cookie: "def", want: "abc"},
		{name: "cookie", cookie: "def", want: "def"},
		{name: "logged out cookie", cookie: "none", want: ""},
		{name: "other scheme", header: "Basic abc", want: ""},
		{name: "nothing", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				c.Request.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				c.Request.AddCookie(&http.Cookie{Name: helpers.TokenCookie, Value: tc.cookie})
			}
			assert.Equal(t, tc.want, TokenFromRequest(c))
		})
	}
}

func TestProtectAndAuthorize(t *testing.T) {
	users := resolver{
		"pub":  {ID: "u1", Role: entity.RolePublisher},
		"user": {ID: "u2", Role: entity.RoleUser},
	}
	r := newEngine()
	r.GET("/me", Protect(users), func(c *gin.Context) {
		response.Success(c, http.StatusOK, CurrentUser(c).ID+":"+c.GetString(CtxUserIDKey))
	})
	r.GET("/publish", Protect(users), Authorize(entity.RolePublisher, entity.RoleAdmin), func(c *gin.Context) {
		response.Success(c, http.StatusOK, "ok")
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrorEnvelope{Success: false, Error: "Not authorized to access this route"}, decodeError(t, w))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer pub")
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":"u1:u1"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/publish", nil)
	req.AddCookie(&http.Cookie{Name: helpers.TokenCookie, Value: "user"})
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "User role user is not authorized to access this route", decodeError(t, w).Error)

	req = httptest.NewRequest(http.MethodGet, "/publish", nil)
	req.Header.Set("Authorization", "Bearer pub")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestErrorsTranslation(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperror.NotFound("Bootcamp not found with id of %s", "x"), http.StatusNotFound, "Bootcamp not found with id of x"},
		{apperror.Validation("Duplicate field value entered"), http.StatusBadRequest, "Duplicate field value entered"},
		{apperror.Conflict("already published"), http.StatusBadRequest, "already published"},
		{apperror.Forbidden("nope"), http.StatusForbidden, "nope"},
		{apperror.Upstream(errors.New("smtp down"), "Email could not be sent"), http.StatusInternalServerError, "Email could not be sent"},
		{errors.New("boom"), http.StatusInternalServerError, "Server Error"},
	}
	for _, tc := range cases {
		r := newEngine()
		r.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tc.status, w.Code, tc.msg)
		assert.Equal(t, response.ErrorEnvelope{Success: false, Error: tc.msg}, decodeError(t, w))
	}
}

func TestRecoveryKeepsServing(t *testing.T) {
	r := newEngine()
	r.GET("/panic", func(*gin.Context) { panic("bad") })
	r.GET("/ok", func(c *gin.Context) { response.Success(c, http.StatusOK, "fine") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server Error", decodeError(t, w).Error)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil)).Code)
}

func TestRequestID(t *testing.T) {
	r := newEngine()
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	id := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "3f1c9a4e-6b0e-4a55-9d8a-2f1e4c2b7a10")
	w = serve(r, req)
	assert.Equal(t, "3f1c9a4e-6b0e-4a55-9d8a-2f1e4c2b7a10", w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "not a uuid")
	w = serve(r, req)
	assert.NotEqual(t, "not a uuid", w.Header().Get(HeaderRequestID))
}

func TestRealIPHonoursOnlyTrustedProxies(t *testing.T) {
	resolveIP := func(proxies []string, platform, remote string, headers map[string]string) (ip, key string, exempt bool) {
		r := newEngine()
		require.NoError(t, TrustProxies(r, proxies, platform))
		r.GET("/x", func(c *gin.Context) {
			ip, key, exempt = ipFromCtx(c), KeyByIPAndPath()(c), AllowPrivateIP()(c)
			c.Status(http.StatusNoContent)
		})
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = remote
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		serve(r, req)
		return ip, key, exempt
	}
	spoofed := map[string]string{"X-Forwarded-For": "10.0.0.1", "CF-Connecting-IP": "10.0.0.2"}

	ip, key, exempt := resolveIP(nil, "", "203.0.113.7:4000", spoofed)
	assert.Equal(t, "203.0.113.7", ip)
	assert.Equal(t, "rl:path:/x:ip:203.0.113.7", key)
	assert.False(t, exempt)

	ip, _, exempt = resolveIP([]string{"10.0.0.0/8"}, "", "198.51.100.9:4000", spoofed)
	assert.Equal(t, "198.51.100.9", ip)
	assert.False(t, exempt)

	ip, _, _ = resolveIP([]string{"10.0.0.0/8"}, "", "10.0.0.5:4000", map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"})
	assert.Equal(t, "203.0.113.7", ip)

	ip, _, _ = resolveIP(nil, "cloudflare", "10.0.0.5:4000", map[string]string{"CF-Connecting-IP": "198.51.100.2"})
	assert.Equal(t, "198.51.100.2", ip)

	ip, _, exempt = resolveIP(nil, "", "127.0.0.1:4000", nil)
	assert.Equal(t, "127.0.0.1", ip)
	assert.True(t, exempt)

	assert.Error(t, TrustProxies(gin.New(), []string{"not-an-ip"}, ""))
}

func TestCORS(t *testing.T) {
	fromOrigin := func(h gin.HandlerFunc) *httptest.ResponseRecorder {
		r := newEngine()
		r.Use(h)
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Origin", "https://app.example.com")
		return serve(r, req)
	}

	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	var h gin.HandlerFunc
	require.NotPanics(t, func() { h = CORS(config.Load().CORSOrigins()) })
	w := fromOrigin(h)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = fromOrigin(CORS([]string{"https://app.example.com"}))
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRateLimitWithoutRedisIsNoop(t *testing.T) {
	r := newEngine()
	r.GET("/", RateLimit(nil, 1, 0, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	for range 3 {
		assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
	}
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	for ip, want := range map[string]bool{"127.0.0.1": true, "10.1.2.3": true, "192.168.0.9": true, "203.0.113.7": false, "": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set(CtxRealIPKey, ip)
		if ip == "" {
			c.Request.RemoteAddr = ""
		}
		assert.Equal(t, want, allow(c), ip)
	}
}

type sliceLister struct {
	items []entity.Course
	seen  query.Query
}

func (l *sliceLister) List(_ context.Context, q query.Query) ([]entity.Course, error) {
	l.seen = q
	end := min(q.Offset()+q.Limit, len(l.items))
	if q.Offset() >= len(l.items) {
		return nil, nil
	}
	return l.items[q.Offset():end], nil
}

func (l *sliceLister) Count(context.Context, query.Query) (int, error) { return len(l.items), nil }

func TestAdvancedResults(t *testing.T) {
	lister := &sliceLister{}
	for i := range 25 {
		lister.items = append(lister.items, entity.Course{ID: string(rune('a' + i)), Title: "t", Tuition: float64(i)})
	}
	r := newEngine()
	r.GET("/courses", AdvancedResults[entity.Course](lister, query.PopulateBootcamp))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/courses?page=2&limit=10&select=title&tuition[gte]=3", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success    bool             `json:"success"`
		Count      int              `json:"count"`
		Pagination query.Pagination `json:"pagination"`
		Data       []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 10, body.Count)
	assert.Equal(t, &query.Page{Page: 3, Limit: 10}, body.Pagination.Next)
	assert.Equal(t, &query.Page{Page: 1, Limit: 10}, body.Pagination.Prev)
	require.Len(t, body.Data, 10)
	assert.Equal(t, map[string]any{"id": "k", "title": "t"}, body.Data[0])

	assert.Equal(t, query.PopulateBootcamp, lister.seen.Populate)
	assert.Equal(t, []query.Filter{{Field: "tuition", Op: query.OpGte, Values: []string{"3"}}}, lister.seen.Filters)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/courses?page=0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "page must be a positive integer", decodeError(t, w).Error)
}
