// Package petstore is a small documented API used by the routedoc command
// to demonstrate serving and generating OpenAPI documents.
package petstore

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("pet not found")
	ErrInvalid  = errors.New("invalid pet")
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusPending   Status = "pending"
	StatusSold      Status = "sold"
)

func (s Status) valid() bool {
	switch s {
	case StatusAvailable, StatusPending, StatusSold:
		return true
	}
	return false
}

type Pet struct {
	ID        string    `json:"id" openapi:"format=uuid,readOnly"`
	Name      string    `json:"name" openapi:"minLength=1,example=Rex"`
	Tag       string    `json:"tag,omitempty" openapi:"description=Free form label"`
	Status    Status    `json:"status" openapi:"enum=available|pending|sold"`
	Photo     string    `json:"photo,omitempty" openapi:"description=Name of the uploaded photo"`
	CreatedAt time.Time `json:"createdAt" openapi:"readOnly"`
}

// OpenAPIExample returns the example shown for Pet schemas.
func (Pet) OpenAPIExample() any {
	return Pet{
		ID:        "9b2c1d4e-5f60-4a7b-8c9d-0e1f2a3b4c5d",
		Name:      "Rex",
		Tag:       "dog",
		Status:    StatusAvailable,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// NewPet is the body of create and update requests.
type NewPet struct {
	Name   string `json:"name" openapi:"minLength=1"`
	Tag    string `json:"tag,omitempty"`
	Status Status `json:"status,omitempty" openapi:"enum=available|pending|sold"`
}

func (n NewPet) validate() error {
	if n.Name == "" {
		return errors.Join(ErrInvalid, errors.New("name is required"))
	}
	if n.Status != "" && !n.Status.valid() {
		return errors.Join(ErrInvalid, errors.New("unknown status "+string(n.Status)))
	}
	return nil
}

type Filter struct {
	Status Status
	Tag    string
	Limit  int
}

type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

// Store keeps pets in memory.
type Store struct {
	mu   sync.RWMutex
	pets map[string]Pet
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		pets: make(map[string]Pet),
		now:  time.Now,
	}
}

func (s *Store) Create(in NewPet) (Pet, error) {
	if err := in.validate(); err != nil {
		return Pet{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Pet{}, err
	}

	p := Pet{
		ID:        id.String(),
		Name:      in.Name,
		Tag:       in.Tag,
		Status:    cmp.Or(in.Status, StatusAvailable),
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.pets[p.ID] = p
	s.mu.Unlock()

	return p, nil
}

func (s *Store) Get(id string) (Pet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pets[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

// List returns the pets matching f ordered by creation time.
func (s *Store) List(f Filter) []Pet {
	s.mu.RLock()
	out := make([]Pet, 0, len(s.pets))
	for _, p := range s.pets {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Tag != "" && p.Tag != f.Tag {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Pet) int {
		return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})

	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}

func (s *Store) Update(id string, in NewPet) (Pet, error) {
	if err := in.validate(); err != nil {
		return Pet{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pets[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	p.Name = in.Name
	p.Tag = in.Tag
	if in.Status != "" {
		p.Status = in.Status
	}
	s.pets[id] = p
	return p, nil
}

func (s *Store) SetPhoto(id, name string) (Pet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pets[id]
	if !ok {
		return Pet{}, ErrNotFound
	}
	p.Photo = name
	s.pets[id] = p
	return p, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pets[id]; !ok {
		return ErrNotFound
	}
	delete(s.pets, id)
	return nil
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{Total: len(s.pets), ByStatus: make(map[string]int)}
	for _, p := range s.pets {
		st.ByStatus[string(p.Status)]++
	}
	return st
}
