package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
)

const (
	defaultRetryAttempts = 3
	defaultRetryDelay    = 500 * time.Millisecond
)

type RetryConfig struct {
	// Attempts is the total number of tries per read. Defaults to 3.
	Attempts int
	// Delay is the fixed pause between tries. Defaults to 500ms.
	Delay  time.Duration
	Logger *zap.Logger
}

// Retrying wraps a Store so reads are retried a fixed number of times with a
// fixed delay. Writes pass straight through: a retried insert could record an
// adoption twice.
type Retrying struct {
	next     Store
	attempts int
	delay    time.Duration
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewRetrying(next Store, cfg RetryConfig) *Retrying {
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultRetryAttempts
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	} else if cfg.Delay == 0 {
		cfg.Delay = defaultRetryDelay
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Retrying{
		next:     next,
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
		logger:   cfg.Logger,
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func retry[T any](ctx context.Context, r *Retrying, op string, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for i := 0; i < r.attempts; i++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err
		r.logger.Warn("store call failed",
			zap.String("op", op),
			zap.Int("attempt", i+1),
			zap.Int("attempts", r.attempts),
			zap.Error(err))
		if i < r.attempts-1 {
			if err := r.sleep(ctx, r.delay); err != nil {
				return zero, err
			}
		}
	}
	return zero, fmt.Errorf("%s: failed after %d attempts: %w", op, r.attempts, lastErr)
}

func (r *Retrying) ListCampaigns(ctx context.Context) ([]models.CampaignRecord, error) {
	return retry(ctx, r, "list campaigns", r.next.ListCampaigns)
}

func (r *Retrying) GetCampaign(ctx context.Context, id string) (models.CampaignRecord, error) {
	return retry(ctx, r, "get campaign", func(ctx context.Context) (models.CampaignRecord, error) {
		return r.next.GetCampaign(ctx, id)
	})
}

func (r *Retrying) ListAttachments(ctx context.Context, campaignIDs []string) ([]models.Attachment, error) {
	return retry(ctx, r, "list attachments", func(ctx context.Context) ([]models.Attachment, error) {
		return r.next.ListAttachments(ctx, campaignIDs)
	})
}

func (r *Retrying) ListCollectionPoints(ctx context.Context) ([]models.CollectionPoint, error) {
	return retry(ctx, r, "list collection points", r.next.ListCollectionPoints)
}

func (r *Retrying) GetCollectionPoint(ctx context.Context, id uuid.UUID) (models.CollectionPoint, error) {
	return retry(ctx, r, "get collection point", func(ctx context.Context) (models.CollectionPoint, error) {
		return r.next.GetCollectionPoint(ctx, id)
	})
}

func (r *Retrying) Ping(ctx context.Context) error {
	_, err := retry(ctx, r, "ping", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.Ping(ctx)
	})
	return err
}

func (r *Retrying) AddAttachment(ctx context.Context, in AttachmentInput) (models.Attachment, error) {
	return r.next.AddAttachment(ctx, in)
}

func (r *Retrying) CreateAdoption(ctx context.Context, in AdoptionInput) (models.Adoption, error) {
	return r.next.CreateAdoption(ctx, in)
}

func (r *Retrying) CreateCollectionPoint(ctx context.Context, in CollectionPointInput) (models.CollectionPoint, error) {
	return r.next.CreateCollectionPoint(ctx, in)
}

func (r *Retrying) UpdateCollectionPoint(ctx context.Context, id uuid.UUID, in CollectionPointInput) (models.CollectionPoint, error) {
	return r.next.UpdateCollectionPoint(ctx, id, in)
}

func (r *Retrying) DeleteCollectionPoint(ctx context.Context, id uuid.UUID) error {
	return r.next.DeleteCollectionPoint(ctx, id)
}
