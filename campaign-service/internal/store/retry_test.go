package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
)

type flakyStore struct {
	*MemoryStore
	failures int
	calls    int
	err      error
}

func (f *flakyStore) ListCampaigns(ctx context.Context) ([]models.CampaignRecord, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return f.MemoryStore.ListCampaigns(ctx)
}

func (f *flakyStore) GetCampaign(ctx context.Context, id string) (models.CampaignRecord, error) {
	f.calls++
	return f.MemoryStore.GetCampaign(ctx, id)
}

func newTestRetrying(next Store, attempts int) (*Retrying, *[]time.Duration) {
	r := NewRetrying(next, RetryConfig{Attempts: attempts, Delay: 250 * time.Millisecond})
	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return r, &slept
}

func TestRetryingRecoversFromTransientErrors(t *testing.T) {
	mem := NewMemoryStore()
	mem.PutCampaign(models.CampaignRecord{ID: "rec1"})
	flaky := &flakyStore{MemoryStore: mem, failures: 2, err: errors.New("503 service unavailable")}
	r, slept := newTestRetrying(flaky, 3)

	recs, err := r.ListCampaigns(context.Background())
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, 3, flaky.calls)
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}, *slept)
}

func TestRetryingSurfacesLastError(t *testing.T) {
	lastErr := errors.New("503 service unavailable")
	flaky := &flakyStore{MemoryStore: NewMemoryStore(), failures: 10, err: lastErr}
	r, slept := newTestRetrying(flaky, 3)

	_, err := r.ListCampaigns(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, lastErr)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, flaky.calls)
	assert.Len(t, *slept, 2)
}

func TestRetryingDoesNotRetryNotFound(t *testing.T) {
	flaky := &flakyStore{MemoryStore: NewMemoryStore()}
	r, _ := newTestRetrying(flaky, 3)

	_, err := r.GetCampaign(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, flaky.calls)
}

func TestRetryingStopsOnCancelledContext(t *testing.T) {
	flaky := &flakyStore{MemoryStore: NewMemoryStore(), failures: 10, err: errors.New("boom")}
	r, _ := newTestRetrying(flaky, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.ListCampaigns(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, flaky.calls)
}

func TestRetryingDefaults(t *testing.T) {
	r := NewRetrying(NewMemoryStore(), RetryConfig{})
	assert.Equal(t, defaultRetryAttempts, r.attempts)
	assert.Equal(t, defaultRetryDelay, r.delay)
}

func TestSleepContextHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
