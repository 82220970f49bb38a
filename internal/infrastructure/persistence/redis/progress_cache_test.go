package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
)

func TestProgressKey(t *testing.T) {
	assert.Equal(t, "progress:PLAN01:all", ProgressKey("PLAN01", audit.ViewAll))
	assert.Equal(t, "progress:PLAN01:in_progress", ProgressKey("PLAN01", audit.ViewInProgress))
}

func TestConfigOptions(t *testing.T) {
	opts, err := Config{URL: "redis://:secret@cache:6380/2"}.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = DefaultConfig().Options()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)

	_, err = Config{URL: "http://nope"}.Options()
	assert.Error(t, err)
}

// TestProgressCache_Redis runs against a live server when REDIS_TEST_ADDR is set.
func TestProgressCache_Redis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	pc := NewProgressCache(NewCacheFromClient(client), time.Minute)
	require.NoError(t, pc.InvalidateAll(ctx))

	got, err := pc.GetProgress(ctx, "PLAN01", audit.ViewAll)
	require.NoError(t, err)
	assert.Nil(t, got)

	report := &audit.Report{PlanCode: "PLAN01", View: audit.ViewAll, TotalCreditsEarned: 8, CompletionPercentage: 50}
	require.NoError(t, pc.SetProgress(ctx, "PLAN01", audit.ViewAll, report))
	require.NoError(t, pc.SetProgress(ctx, "PLAN01", audit.ViewCompleted, report))

	got, err = pc.GetProgress(ctx, "PLAN01", audit.ViewAll)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 8, got.TotalCreditsEarned)

	require.NoError(t, pc.InvalidatePlan(ctx, "PLAN01"))
	got, err = pc.GetProgress(ctx, "PLAN01", audit.ViewCompleted)
	require.NoError(t, err)
	assert.Nil(t, got)
}
