// Package notify publishes domain events for downstream consumers such as
// the email dispatcher.
package notify

import (
	"context"
	"time"
)

const EventAdoptionCreated = "adoption.created"

// Event is the envelope written to the events topic.
type Event struct {
	Type       string         `json:"type"`
	CampaignID string         `json:"campaignId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Payload    map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, ev Event) error { return nil }
func (NopPublisher) Close() error                               { return nil }
