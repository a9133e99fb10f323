package testutil

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/oksasatya/bootcamp-directory/internal/application"
	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/pkg/mailer"
)

// Geocoder resolves addresses from a fixed table.
type Geocoder struct {
	Points map[string]entity.Location
	Err    error
}

// NewGeocoder knows a Boston and a Los Angeles postal code.
func NewGeocoder() *Geocoder {
	boston := entity.NewPoint(-71.104028, 42.350846)
	boston.City, boston.State, boston.Zipcode, boston.Country = "Boston", "MA", "02215", "US"
	la := entity.NewPoint(-118.243683, 34.052235)
	la.City, la.State, la.Zipcode, la.Country = "Los Angeles", "CA", "90012", "US"
	return &Geocoder{Points: map[string]entity.Location{"02215": boston, "02118": boston, "90012": la}}
}

func (g *Geocoder) Geocode(_ context.Context, address string) (entity.Location, error) {
	if g.Err != nil {
		return entity.Location{}, g.Err
	}
	loc, ok := g.Points[address]
	if !ok {
		return entity.Location{}, application.ErrNoGeocodeMatch
	}
	return loc, nil
}

// Photos keeps uploads in memory.
type Photos struct {
	mu    sync.Mutex
	Files map[string][]byte
	Types map[string]string
	Err   error
}

func NewPhotos() *Photos {
	return &Photos{Files: map[string][]byte{}, Types: map[string]string{}}
}

func (p *Photos) Save(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Files[name] = b
	p.Types[name] = contentType
	return name, nil
}

// Mail records sent jobs, rendering them like a real transport would.
type Mail struct {
	mu   sync.Mutex
	Jobs []mailer.EmailJob
	Err  error
}

func (m *Mail) Send(_ context.Context, job mailer.EmailJob) error {
	if m.Err != nil {
		return m.Err
	}
	if err := job.Render(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Jobs = append(m.Jobs, job)
	return nil
}

func (m *Mail) Last() (mailer.EmailJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Jobs) == 0 {
		return mailer.EmailJob{}, errors.New("no mail sent")
	}
	return m.Jobs[len(m.Jobs)-1], nil
}

// Searcher is an index that matches on exact name.
type Searcher struct {
	mu   sync.Mutex
	Docs map[string]entity.Bootcamp
}

func NewSearcher() *Searcher {
	return &Searcher{Docs: map[string]entity.Bootcamp{}}
}

func (s *Searcher) Put(_ context.Context, b *entity.Bootcamp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Docs[b.ID] = *b
	return nil
}

func (s *Searcher) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Docs, id)
	return nil
}

func (s *Searcher) Search(_ context.Context, q string, _ int) ([]entity.BootcampHit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.BootcampHit{}
	for _, b := range s.Docs {
		if b.Name == q {
			out = append(out, entity.BootcampHit{ID: b.ID, Name: b.Name, Slug: b.Slug, Score: 1})
		}
	}
	return out, nil
}

var (
	_ application.Geocoder         = (*Geocoder)(nil)
	_ application.PhotoStore       = (*Photos)(nil)
	_ application.BootcampSearcher = (*Searcher)(nil)
	_ mailer.Sender                = (*Mail)(nil)
)
