package redis_a_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/ammerola/flowershop-pos/internal/adapters/redis_adapter"
	"github.com/ammerola/flowershop-pos/internal/core/domain"
	"github.com/ammerola/flowershop-pos/test/helpers"
)

func newJobStore(t *testing.T, retention time.Duration) (*redis_a.JobStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())
	return redis_a.NewJobStore(cache, retention, helpers.TestLogger()), mr
}

func TestJobStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store, mr := newJobStore(t, time.Hour)

	job := &domain.Job{ID: "job-1", Type: "sales:export", Status: domain.JobPending}
	require.NoError(t, store.Save(ctx, job))
	assert.False(t, job.CreatedAt.IsZero())
	assert.Equal(t, job.CreatedAt, job.UpdatedAt)
	assert.True(t, mr.Exists("job:job-1"))
	assert.Equal(t, time.Hour, mr.TTL("job:job-1"))

	job.Status = domain.JobCompleted
	job.Result = map[string]interface{}{"url": "https://example.com/exports/job-1.csv"}
	require.NoError(t, store.Save(ctx, job))

	got, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.JobCompleted, got.Status)
	assert.Equal(t, "https://example.com/exports/job-1.csv", got.Result["url"])
	assert.True(t, got.Done())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestJobStore_Get_Unknown(t *testing.T) {
	store, _ := newJobStore(t, 0)

	got, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJobStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newJobStore(t, time.Minute)

	require.NoError(t, store.Save(ctx, &domain.Job{ID: "short", Status: domain.JobFailed}))
	mr.FastForward(2 * time.Minute)

	got, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestJobStore_Save_RequiresID(t *testing.T) {
	store, _ := newJobStore(t, 0)

	err := store.Save(context.Background(), &domain.Job{Status: domain.JobPending})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
