package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

type recorded struct {
	method, path string
	body         map[string]any
}

// fakeES answers like an Elasticsearch node and records each request.
func fakeES(t *testing.T, respond func(r *http.Request) (int, string)) (*BootcampIndex, *[]recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		rec := recorded{method: r.Method, path: r.URL.Path}
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &rec.body)
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()

		status, body := respond(r)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewBootcampIndex(es, "bootcamps", helpers.NewNopLogger()), &calls
}

func TestPutAndRemove(t *testing.T) {
	idx, calls := fakeES(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodDelete {
			return http.StatusNotFound, `{"result":"not_found"}`
		}
		return http.StatusCreated, `{"result":"created"}`
	})

	b := &entity.Bootcamp{ID: "b1", Name: "Devworks", Careers: []string{"Web Development"}}
	b.Location.City = "Boston"
	require.NoError(t, idx.Put(context.Background(), b))
	require.NoError(t, idx.Remove(context.Background(), "b1"))

	require.Len(t, *calls, 2)
	put := (*calls)[0]
	assert.Equal(t, http.MethodPut, put.method)
	assert.Equal(t, "/bootcamps/_doc/b1", put.path)
	assert.Equal(t, "Devworks", put.body["name"])
	assert.Equal(t, "Boston", put.body["city"])
	assert.Equal(t, "/bootcamps/_doc/b1", (*calls)[1].path)
}

func TestSearch(t *testing.T) {
	idx, calls := fakeES(t, func(r *http.Request) (int, string) {
		return http.StatusOK, `{"hits":{"hits":[
			{"_id":"b1","_score":2.5,"_source":{"name":"Devworks","careers":["Web Development"],"averageCost":9000}}
		]}}`
	})

	hits, err := idx.Search(context.Background(), "web", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "b1", hits[0].ID)
	assert.Equal(t, 2.5, hits[0].Score)
	assert.Equal(t, 9000.0, hits[0].AverageCost)

	req := (*calls)[0]
	assert.True(t, strings.HasSuffix(req.path, "/_search"))
	assert.EqualValues(t, 10, req.body["size"])
}

func TestSearchMissingIndex(t *testing.T) {
	idx, _ := fakeES(t, func(r *http.Request) (int, string) {
		return http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`
	})
	hits, err := idx.Search(context.Background(), "web", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestConnect(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(int(status.Load()))
		_, _ = w.Write([]byte(`{"version":{"number":"8.13.0"}}`))
	}))
	t.Cleanup(srv.Close)

	es, err := Connect(context.Background(), Options{Addrs: []string{srv.URL}})
	require.NoError(t, err)
	assert.NotNil(t, es)

	status.Store(http.StatusUnauthorized)
	_, err = Connect(context.Background(), Options{Addrs: []string{srv.URL}})
	assert.Error(t, err)
}
