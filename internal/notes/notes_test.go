package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string, dest any) error {
	b, ok := m.data[key]
	if !ok {
		return fmt.Errorf("get %q: %w", key, ErrNotFound)
	}
	return json.Unmarshal(b, dest)
}

func (m *memKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	m.ttls[key] = ttl
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memKV) ListKeys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func newTestService() (*Service, *memKV) {
	kv := newMemKV()
	s := NewService(kv, time.Hour)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}
	return s, kv
}

func TestPutAndList(t *testing.T) {
	ctx := context.Background()
	s, kv := newTestService()

	stored, err := s.Put(ctx, "v1", Note{ItemID: 7, Text: "  no onions ", Business: "Cafe", ItemName: "Latte"})
	require.NoError(t, err)
	assert.True(t, stored)
	_, err = s.Put(ctx, "v1", Note{ItemID: 3, Text: "extra hot"})
	require.NoError(t, err)

	list, err := s.List(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(3), list[0].ItemID, "newest first")
	assert.Equal(t, "no onions", list[1].Text)
	assert.Equal(t, "Cafe", list[1].Business)
	assert.Equal(t, time.Hour, kv.ttls["notes:v1:7"])
}

func TestPutBlankRemoves(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()

	_, err := s.Put(ctx, "v1", Note{ItemID: 7, Text: "x"})
	require.NoError(t, err)

	stored, err := s.Put(ctx, "v1", Note{ItemID: 7, Text: "   "})
	require.NoError(t, err)
	assert.False(t, stored)

	n, err := s.Get(ctx, "v1", 7)
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestVisitorsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()

	_, err := s.Put(ctx, "v1", Note{ItemID: 1, Text: "a"})
	require.NoError(t, err)
	_, err = s.Put(ctx, "v10", Note{ItemID: 2, Text: "b"})
	require.NoError(t, err)

	count, err := s.Count(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.Clear(ctx, "v1"))
	count, err = s.Count(ctx, "v1")
	require.NoError(t, err)
	assert.Zero(t, count)

	m, err := s.Map(ctx, "v10")
	require.NoError(t, err)
	assert.Equal(t, "b", m[2].Text)
}

func TestEmptyVisitor(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestService()

	_, err := s.Put(ctx, "", Note{ItemID: 1, Text: "a"})
	assert.Error(t, err)

	list, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}
