// Package notes keeps visitors' private notes on menu items.
package notes

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is wrapped by KV.Get for a missing or expired key.
var ErrNotFound = errors.New("key not found")

// KV is a persistent key-value store with JSON-serializable values.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}

// Note is one visitor's note on one item. Business and item names are
// captured at write time so the list survives renames and deletes.
type Note struct {
	ItemID       int64     `json:"item_id"`
	Text         string    `json:"note"`
	UpdatedAt    time.Time `json:"updated_at"`
	Business     string    `json:"business"`
	BusinessSlug string    `json:"business_slug"`
	ItemName     string    `json:"item_name"`
}

// Service stores notes under "notes:<visitor>:<item id>".
type Service struct {
	kv  KV
	ttl time.Duration
	now func() time.Time
}

// NewService returns a Service whose notes expire ttl after their last
// write. A zero ttl keeps notes forever.
func NewService(kv KV, ttl time.Duration) *Service {
	return &Service{kv: kv, ttl: ttl, now: time.Now}
}

func prefix(visitor string) string {
	return "notes:" + visitor + ":"
}

func key(visitor string, itemID int64) string {
	return prefix(visitor) + strconv.FormatInt(itemID, 10)
}

// Put saves n for the visitor. Blank text removes the note instead.
// It reports whether a note is now stored.
func (s *Service) Put(ctx context.Context, visitor string, n Note) (bool, error) {
	if visitor == "" {
		return false, errors.New("visitor is required")
	}
	n.Text = strings.TrimSpace(n.Text)
	if n.Text == "" {
		return false, s.Remove(ctx, visitor, n.ItemID)
	}
	n.UpdatedAt = s.now().UTC()
	if err := s.kv.Set(ctx, key(visitor, n.ItemID), n, s.ttl); err != nil {
		return false, fmt.Errorf("save note: %w", err)
	}
	return true, nil
}

// Get returns the visitor's note on itemID, or nil.
func (s *Service) Get(ctx context.Context, visitor string, itemID int64) (*Note, error) {
	var n Note
	err := s.kv.Get(ctx, key(visitor, itemID), &n)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return &n, nil
}

func (s *Service) Remove(ctx context.Context, visitor string, itemID int64) error {
	if err := s.kv.Delete(ctx, key(visitor, itemID)); err != nil {
		return fmt.Errorf("remove note: %w", err)
	}
	return nil
}

// List returns the visitor's notes, most recently updated first.
func (s *Service) List(ctx context.Context, visitor string) ([]Note, error) {
	if visitor == "" {
		return nil, nil
	}
	keys, err := s.kv.ListKeys(ctx, prefix(visitor))
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	list := make([]Note, 0, len(keys))
	for _, k := range keys {
		var n Note
		err := s.kv.Get(ctx, k, &n)
		if errors.Is(err, ErrNotFound) {
			continue // expired between list and get
		}
		if err != nil {
			return nil, fmt.Errorf("list notes: %w", err)
		}
		list = append(list, n)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return list[i].UpdatedAt.After(list[j].UpdatedAt)
		}
		return list[i].ItemID < list[j].ItemID
	})
	return list, nil
}

// Map returns the visitor's notes keyed by item id.
func (s *Service) Map(ctx context.Context, visitor string) (map[int64]Note, error) {
	list, err := s.List(ctx, visitor)
	if err != nil {
		return nil, err
	}
	m := make(map[int64]Note, len(list))
	for _, n := range list {
		m[n.ItemID] = n
	}
	return m, nil
}

func (s *Service) Count(ctx context.Context, visitor string) (int, error) {
	if visitor == "" {
		return 0, nil
	}
	keys, err := s.kv.ListKeys(ctx, prefix(visitor))
	if err != nil {
		return 0, fmt.Errorf("count notes: %w", err)
	}
	return len(keys), nil
}

// Clear removes every note the visitor has.
func (s *Service) Clear(ctx context.Context, visitor string) error {
	if visitor == "" {
		return nil
	}
	keys, err := s.kv.ListKeys(ctx, prefix(visitor))
	if err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("clear notes: %w", err)
		}
	}
	return nil
}
