package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// BootcampIndex keeps a denormalized copy of bootcamps for full-text search.
type BootcampIndex struct {
	ES     *elasticsearch.Client
	Index  string
	Logger *logrus.Logger
}

func NewBootcampIndex(es *elasticsearch.Client, index string, logger *logrus.Logger) *BootcampIndex {
	return &BootcampIndex{ES: es, Index: index, Logger: logger}
}

func document(b *entity.Bootcamp) map[string]any {
	return map[string]any{
		"id":          b.ID,
		"name":        b.Name,
		"slug":        b.Slug,
		"description": b.Description,
		"careers":     b.Careers,
		"city":        b.Location.City,
		"state":       b.Location.State,
		"averageCost": b.AverageCost,
		"createdAt":   b.CreatedAt.Format(time.RFC3339Nano),
	}
}

// Put indexes or replaces b.
func (x *BootcampIndex) Put(ctx context.Context, b *entity.Bootcamp) error {
	body, err := json.Marshal(document(b))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.Index, DocumentID: b.ID, Body: bytes.NewReader(body), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("search: index bootcamp %s: %s", b.ID, res.Status())
	}
	return nil
}

// Remove deletes the document for id; a missing document is not an error.
func (x *BootcampIndex) Remove(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.Index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: remove bootcamp %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match over name, description and careers.
func (x *BootcampIndex) Search(ctx context.Context, q string, size int) ([]entity.BootcampHit, error) {
	if size <= 0 || size > 50 {
		size = 10
	}
	body, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^3", "description", "careers^2"},
			},
		},
		"size": size,
	})
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		if res.StatusCode == 404 {
			return []entity.BootcampHit{}, nil
		}
		return nil, fmt.Errorf("search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string             `json:"_id"`
				Score  float64            `json:"_score"`
				Source entity.BootcampHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.BootcampHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hit := h.Source
		hit.ID = h.ID
		hit.Score = h.Score
		out = append(out, hit)
	}
	x.Logger.WithFields(logrus.Fields{"q": q, "hits": len(out)}).Debug("bootcamp search")
	return out, nil
}

var _ application.BootcampSearcher = (*BootcampIndex)(nil)
