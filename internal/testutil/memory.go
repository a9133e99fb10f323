// Package testutil provides in-memory implementations of the repositories
// and collaborators used by service and handler tests.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/bootcamp-directory/internal/domain/entity"
	"github.com/oksasatya/bootcamp-directory/internal/domain/query"
	"github.com/oksasatya/bootcamp-directory/internal/domain/repository"
	"github.com/oksasatya/bootcamp-directory/pkg/apperror"
)

// Store holds every collection so deletes can cascade like the database does.
type Store struct {
	mu        sync.Mutex
	users     map[string]entity.User
	bootcamps map[string]entity.Bootcamp
	courses   map[string]entity.Course
	clock     time.Time
}

func NewStore() *Store {
	return &Store{
		users:     map[string]entity.User{},
		bootcamps: map[string]entity.Bootcamp{},
		courses:   map[string]entity.Course{},
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick hands out strictly increasing creation times.
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) Users() *UserRepo         { return &UserRepo{s} }
func (s *Store) Bootcamps() *BootcampRepo { return &BootcampRepo{s} }
func (s *Store) Courses() *CourseRepo     { return &CourseRepo{s} }

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return apperror.Validation("Duplicate field value entered")
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.s.tick()
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) GetByResetToken(_ context.Context, hashed string, now time.Time) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ResetTokenValid(hashed, now) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.s.users {
		if id != u.ID && existing.Email == u.Email {
			return apperror.Validation("Duplicate field value entered")
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	for bid, b := range r.s.bootcamps {
		if b.UserID == id {
			r.s.deleteBootcamp(bid)
		}
	}
	for cid, c := range r.s.courses {
		if c.UserID == id {
			delete(r.s.courses, cid)
		}
	}
	return nil
}

func (r *UserRepo) List(_ context.Context, q query.Query) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return apply(values(r.s.users), q)
}

func (r *UserRepo) Count(_ context.Context, q query.Query) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return countMatches(values(r.s.users), q)
}

type BootcampRepo struct{ s *Store }

func (r *BootcampRepo) Create(_ context.Context, b *entity.Bootcamp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.bootcamps {
		if existing.Name == b.Name {
			return apperror.Validation("Duplicate field value entered")
		}
	}
	b.ID = uuid.NewString()
	b.CreatedAt = r.s.tick()
	b.AverageCost = 0
	r.s.bootcamps[b.ID] = *b
	return nil
}

func (r *BootcampRepo) GetByID(_ context.Context, id string) (*entity.Bootcamp, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bootcamps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r *BootcampRepo) CountByOwner(_ context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, b := range r.s.bootcamps {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *BootcampRepo) Update(_ context.Context, b *entity.Bootcamp) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.bootcamps[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored := *b
	stored.AverageCost = old.AverageCost
	stored.Courses = nil
	r.s.bootcamps[b.ID] = stored
	return nil
}

func (r *BootcampRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bootcamps[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteBootcamp(id)
	return nil
}

func (s *Store) deleteBootcamp(id string) {
	delete(s.bootcamps, id)
	for cid, c := range s.courses {
		if c.BootcampID == id {
			delete(s.courses, cid)
		}
	}
}

func (r *BootcampRepo) List(_ context.Context, q query.Query) ([]entity.Bootcamp, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out, err := apply(values(r.s.bootcamps), q)
	if err != nil {
		return nil, err
	}
	if q.Populate == query.PopulateCourses {
		for i := range out {
			out[i].Courses = []entity.Course{}
			for _, c := range sorted(values(r.s.courses)) {
				if c.BootcampID == out[i].ID {
					out[i].Courses = append(out[i].Courses, c)
				}
			}
		}
	}
	return out, nil
}

func (r *BootcampRepo) Count(_ context.Context, q query.Query) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return countMatches(values(r.s.bootcamps), q)
}

// WithinRadius uses the same spherical law of cosines as the SQL query.
func (r *BootcampRepo) WithinRadius(_ context.Context, lng, lat, radius float64) ([]entity.Bootcamp, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	out := []entity.Bootcamp{}
	for _, b := range sorted(values(r.s.bootcamps)) {
		blat, blng := b.Location.Latitude(), b.Location.Longitude()
		cos := math.Sin(rad(lat))*math.Sin(rad(blat)) + math.Cos(rad(lat))*math.Cos(rad(blat))*math.Cos(rad(blng)-rad(lng))
		if math.Acos(math.Max(-1, math.Min(1, cos))) <= radius {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *BootcampRepo) SetAverageCost(_ context.Context, id string, cost float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bootcamps[id]
	if !ok {
		return repository.ErrNotFound
	}
	b.AverageCost = cost
	r.s.bootcamps[id] = b
	return nil
}

type CourseRepo struct{ s *Store }

func (r *CourseRepo) Create(_ context.Context, c *entity.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bootcamps[c.BootcampID]; !ok {
		return apperror.NotFound("Referenced resource not found")
	}
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	stored := *c
	stored.Bootcamp = nil
	r.s.courses[c.ID] = stored
	return nil
}

func (r *CourseRepo) summary(c entity.Course) entity.Course {
	if b, ok := r.s.bootcamps[c.BootcampID]; ok {
		c.Bootcamp = &entity.BootcampSummary{ID: b.ID, Name: b.Name, Description: b.Description}
	}
	return c
}

func (r *CourseRepo) GetByID(_ context.Context, id string) (*entity.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c = r.summary(c)
	return &c, nil
}

func (r *CourseRepo) ListByBootcamp(_ context.Context, bootcampID string) ([]entity.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []entity.Course{}
	for _, c := range sorted(values(r.s.courses)) {
		if c.BootcampID == bootcampID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *CourseRepo) Update(_ context.Context, c *entity.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[c.ID]; !ok {
		return repository.ErrNotFound
	}
	stored := *c
	stored.Bootcamp = nil
	r.s.courses[c.ID] = stored
	return nil
}

func (r *CourseRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.courses, id)
	return nil
}

func (r *CourseRepo) List(_ context.Context, q query.Query) ([]entity.Course, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out, err := apply(values(r.s.courses), q)
	if err != nil {
		return nil, err
	}
	if q.Populate == query.PopulateBootcamp {
		for i := range out {
			out[i] = r.summary(out[i])
		}
	}
	return out, nil
}

func (r *CourseRepo) Count(_ context.Context, q query.Query) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return countMatches(values(r.s.courses), q)
}

func (r *CourseRepo) Tuitions(_ context.Context, bootcampID string) ([]float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []float64
	for _, c := range r.s.courses {
		if c.BootcampID == bootcampID {
			out = append(out, c.Tuition)
		}
	}
	return out, nil
}

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.BootcampRepository = (*BootcampRepo)(nil)
	_ repository.CourseRepository   = (*CourseRepo)(nil)
)

func values[T any](m map[string]T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

// sorted orders items oldest first by their JSON createdAt.
func sorted[T any](items []T) []T {
	sort.SliceStable(items, func(i, j int) bool {
		return field(doc(items[i]), "createdAt").(string) < field(doc(items[j]), "createdAt").(string)
	})
	return items
}

func doc(v any) map[string]any {
	b, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// field resolves a dotted path inside a decoded JSON document.
func field(m map[string]any, path string) any {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = obj[part]
	}
	return cur
}

func matches(m map[string]any, f query.Filter) (bool, error) {
	v := field(m, f.Field)
	if v == nil {
		if _, known := m[strings.Split(f.Field, ".")[0]]; !known {
			return false, apperror.Validation("Unknown filter field %s", f.Field)
		}
	}
	if arr, ok := v.([]any); ok {
		for _, el := range arr {
			for _, want := range f.Values {
				if fmt.Sprint(el) == want {
					return true, nil
				}
			}
		}
		return false, nil
	}
	switch f.Op {
	case query.OpEq:
		return fmt.Sprint(v) == f.Values[0], nil
	case query.OpIn:
		for _, want := range f.Values {
			if fmt.Sprint(v) == want {
				return true, nil
			}
		}
		return false, nil
	}
	n, ok := v.(float64)
	want, err := strconv.ParseFloat(f.Values[0], 64)
	if !ok || err != nil {
		return false, apperror.Validation("%s must be a number", f.Field)
	}
	switch f.Op {
	case query.OpGt:
		return n > want, nil
	case query.OpGte:
		return n >= want, nil
	case query.OpLt:
		return n < want, nil
	default:
		return n <= want, nil
	}
}

func filter[T any](items []T, q query.Query) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		m := doc(it)
		keep := true
		for _, f := range q.Filters {
			ok, err := matches(m, f)
			if err != nil {
				return nil, err
			}
			keep = keep && ok
		}
		if keep {
			out = append(out, it)
		}
	}
	return out, nil
}

func countMatches[T any](items []T, q query.Query) (int, error) {
	out, err := filter(items, q)
	return len(out), err
}

func less(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, _ := b.(float64)
		return x < y
	case bool:
		y, _ := b.(bool)
		return !x && y
	default:
		return fmt.Sprint(a) < fmt.Sprint(b)
	}
}

// apply filters, sorts and pages items the way the SQL builder does.
func apply[T any](items []T, q query.Query) ([]T, error) {
	out, err := filter(sorted(items), q)
	if err != nil {
		return nil, err
	}
	docs := make([]map[string]any, len(out))
	for i := range out {
		docs[i] = doc(out[i])
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		for _, sf := range q.Sort {
			a, b := field(docs[idx[i]], sf.Field), field(docs[idx[j]], sf.Field)
			if fmt.Sprint(a) == fmt.Sprint(b) {
				continue
			}
			if sf.Desc {
				return less(b, a)
			}
			return less(a, b)
		}
		return false
	})

	paged := make([]T, 0, len(out))
	for k, i := range idx {
		if k < q.Offset() {
			continue
		}
		if q.Limit > 0 && len(paged) == q.Limit {
			break
		}
		paged = append(paged, out[i])
	}
	return paged, nil
}
