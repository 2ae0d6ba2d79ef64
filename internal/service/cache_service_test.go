package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/MrJittiPat/Timetable2/pkg/errors"
)

type memoryCacheRepo struct {
	values  map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	deleted []string
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.values[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	m.deleted = append(m.deleted, keys...)
	return nil
}

func TestCacheServiceRoundTripAndMetrics(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var dest []string
	assert.False(t, svc.Get(ctx, "k", &dest))

	svc.Set(ctx, "k", []string{"a"}, 0)
	assert.Equal(t, time.Minute, repo.ttls["k"])

	assert.True(t, svc.Get(ctx, "k", &dest))
	assert.Equal(t, []string{"a"}, dest)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)

	svc.Invalidate(ctx, "k")
	assert.Equal(t, []string{"k"}, repo.deleted)
}

func TestCacheServiceErrorsBecomeMisses(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("connection refused")
	svc := NewCacheService(repo, nil, 0, nil, true)

	var dest []string
	assert.False(t, svc.Get(context.Background(), "k", &dest))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)

	svc.Set(context.Background(), "k", "v", 0)

	assert.False(t, svc.Enabled())
	assert.Empty(t, repo.values)
}
