package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
)

// MemoryStore provides an in-memory implementation useful for tests and
// local runs without a database.
type MemoryStore struct {
	mu               sync.RWMutex
	campaigns        map[string]models.CampaignRecord
	campaignOrder    []string
	attachments      []models.Attachment
	adoptions        []models.Adoption
	collectionPoints map[uuid.UUID]models.CollectionPoint

	// NowFunc allows tests to control timestamps.
	NowFunc func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		campaigns:        map[string]models.CampaignRecord{},
		collectionPoints: map[uuid.UUID]models.CollectionPoint{},
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func (m *MemoryStore) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	return time.Now().UTC()
}

// PutCampaign inserts or replaces a campaign record. Fields are copied.
func (m *MemoryStore) PutCampaign(rec models.CampaignRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	rec.Fields = copyFields(rec.Fields)
	if _, ok := m.campaigns[rec.ID]; !ok {
		m.campaignOrder = append(m.campaignOrder, rec.ID)
	}
	m.campaigns[rec.ID] = rec
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// withAdopters mirrors the Postgres store, which exposes recorded adoptions
// as an id list under RecordedAdoptersField.
func (m *MemoryStore) withAdopters(rec models.CampaignRecord) models.CampaignRecord {
	rec.Fields = copyFields(rec.Fields)
	ids := []any{}
	for _, a := range m.adoptions {
		if a.CampaignID == rec.ID {
			ids = append(ids, a.ID.String())
		}
	}
	rec.Fields[models.RecordedAdoptersField] = ids
	return rec
}

func (m *MemoryStore) ListCampaigns(ctx context.Context) ([]models.CampaignRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CampaignRecord, 0, len(m.campaignOrder))
	for _, id := range m.campaignOrder {
		out = append(out, m.withAdopters(m.campaigns[id]))
	}
	return out, nil
}

func (m *MemoryStore) GetCampaign(ctx context.Context, id string) (models.CampaignRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.campaigns[id]
	if !ok {
		return models.CampaignRecord{}, ErrNotFound
	}
	return m.withAdopters(rec), nil
}

func (m *MemoryStore) ListAttachments(ctx context.Context, campaignIDs []string) ([]models.Attachment, error) {
	want := make(map[string]bool, len(campaignIDs))
	for _, id := range campaignIDs {
		want[id] = true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Attachment
	for _, a := range m.attachments {
		if len(want) == 0 || want[a.CampaignID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryStore) AddAttachment(ctx context.Context, in AttachmentInput) (models.Attachment, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	att := models.Attachment{
		ID:          in.ID,
		CampaignID:  in.CampaignID,
		ObjectKey:   in.ObjectKey,
		URL:         in.URL,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Size:        in.Size,
		CreatedAt:   m.now(),
	}
	if len(in.Thumbnails) > 0 {
		att.Thumbnails = append(json.RawMessage(nil), in.Thumbnails...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[in.CampaignID]; !ok {
		return models.Attachment{}, ErrNotFound
	}
	m.attachments = append(m.attachments, att)
	return att, nil
}

func (m *MemoryStore) CreateAdoption(ctx context.Context, in AdoptionInput) (models.Adoption, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	adoption := models.Adoption{
		ID:           in.ID,
		CampaignID:   in.CampaignID,
		AdopterName:  in.AdopterName,
		AdopterEmail: in.AdopterEmail,
		AdopterPhone: in.AdopterPhone,
		CreatedAt:    m.now(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[in.CampaignID]; !ok {
		return models.Adoption{}, ErrNotFound
	}
	m.adoptions = append(m.adoptions, adoption)
	return adoption, nil
}

// Adoptions returns a copy of every recorded adoption.
func (m *MemoryStore) Adoptions() []models.Adoption {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Adoption(nil), m.adoptions...)
}

func (m *MemoryStore) ListCollectionPoints(ctx context.Context) ([]models.CollectionPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CollectionPoint, 0, len(m.collectionPoints))
	for _, cp := range m.collectionPoints {
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (m *MemoryStore) GetCollectionPoint(ctx context.Context, id uuid.UUID) (models.CollectionPoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp, ok := m.collectionPoints[id]
	if !ok {
		return models.CollectionPoint{}, ErrNotFound
	}
	return cp, nil
}

func (m *MemoryStore) CreateCollectionPoint(ctx context.Context, in CollectionPointInput) (models.CollectionPoint, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	now := m.now()
	cp := collectionPointFromInput(in.ID, in)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionPoints[cp.ID] = cp
	return cp, nil
}

func (m *MemoryStore) UpdateCollectionPoint(ctx context.Context, id uuid.UUID, in CollectionPointInput) (models.CollectionPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.collectionPoints[id]
	if !ok {
		return models.CollectionPoint{}, ErrNotFound
	}
	cp := collectionPointFromInput(id, in)
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = m.now()
	m.collectionPoints[id] = cp
	return cp, nil
}

func (m *MemoryStore) DeleteCollectionPoint(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collectionPoints[id]; !ok {
		return ErrNotFound
	}
	delete(m.collectionPoints, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func collectionPointFromInput(id uuid.UUID, in CollectionPointInput) models.CollectionPoint {
	cp := models.CollectionPoint{
		ID:       id,
		Name:     in.Name,
		Address:  in.Address,
		City:     in.City,
		Contact:  in.Contact,
		Phone:    in.Phone,
		Schedule: in.Schedule,
	}
	if in.CampaignID != nil {
		c := *in.CampaignID
		cp.CampaignID = &c
	}
	return cp
}
