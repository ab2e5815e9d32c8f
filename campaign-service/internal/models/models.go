package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CampaignRecord is a campaign row as the table store hands it over: an
// opaque id plus a loosely typed field bag.
type CampaignRecord struct {
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Attachment struct {
	ID          uuid.UUID       `json:"id"`
	CampaignID  string          `json:"campaignId"`
	ObjectKey   string          `json:"-"`
	URL         string          `json:"url"`
	Filename    string          `json:"filename"`
	ContentType string          `json:"type"`
	Size        int64           `json:"size"`
	Thumbnails  json.RawMessage `json:"thumbnails,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// CampaignView is the presentation record returned by the listing endpoint.
type CampaignView struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	StartDate         *string      `json:"startDate"`
	ReceivingDeadline *string      `json:"receivingDeadline"`
	EventDate         *string      `json:"eventDate"`
	Status            string       `json:"status"`
	Images            []Attachment `json:"images"`
	TotalLetters      int          `json:"totalLetters"`
	AvailableLetters  int          `json:"availableLetters"`
	AdoptedLetters    int          `json:"adoptedLetters"`
	Featured          bool         `json:"featured"`
}

type Adoption struct {
	ID           uuid.UUID `json:"id"`
	CampaignID   string    `json:"campaignId"`
	AdopterName  string    `json:"adopterName"`
	AdopterEmail string    `json:"adopterEmail"`
	AdopterPhone string    `json:"adopterPhone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CollectionPoint struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	City       string    `json:"city,omitempty"`
	Contact    string    `json:"contact,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	Schedule   string    `json:"schedule,omitempty"`
	CampaignID *string   `json:"campaignId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
