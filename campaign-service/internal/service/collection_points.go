package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/store"
)

// CollectionPointRequest creates a collection point.
type CollectionPointRequest struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	Contact    string  `json:"contact"`
	Phone      string  `json:"phone"`
	Schedule   string  `json:"schedule"`
	CampaignID *string `json:"campaignId"`
}

// CollectionPointPatch updates a collection point. Nil fields are left as
// they are.
type CollectionPointPatch struct {
	Name       *string `json:"name"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	Contact    *string `json:"contact"`
	Phone      *string `json:"phone"`
	Schedule   *string `json:"schedule"`
	CampaignID *string `json:"campaignId"`
}

type CollectionPointService struct {
	store  store.Store
	logger *zap.Logger
}

func NewCollectionPointService(st store.Store, logger *zap.Logger) *CollectionPointService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollectionPointService{store: st, logger: logger}
}

func parseID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, ErrMissingID
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id %q", ErrInvalidInput, raw)
	}
	return id, nil
}

func validatePoint(in store.CollectionPointInput) error {
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidInput)
	}
	return nil
}

func trimmedPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func (s *CollectionPointService) List(ctx context.Context) ([]models.CollectionPoint, error) {
	points, err := s.store.ListCollectionPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collection points: %w", err)
	}
	if points == nil {
		points = []models.CollectionPoint{}
	}
	return points, nil
}

func (s *CollectionPointService) Get(ctx context.Context, rawID string) (models.CollectionPoint, error) {
	id, err := parseID(rawID)
	if err != nil {
		return models.CollectionPoint{}, err
	}
	cp, err := s.store.GetCollectionPoint(ctx, id)
	if err != nil {
		return models.CollectionPoint{}, fmt.Errorf("get collection point %s: %w", id, err)
	}
	return cp, nil
}

func (s *CollectionPointService) Create(ctx context.Context, req CollectionPointRequest) (models.CollectionPoint, error) {
	in := store.CollectionPointInput{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(req.Name),
		Address:    strings.TrimSpace(req.Address),
		City:       strings.TrimSpace(req.City),
		Contact:    strings.TrimSpace(req.Contact),
		Phone:      strings.TrimSpace(req.Phone),
		Schedule:   strings.TrimSpace(req.Schedule),
		CampaignID: trimmedPtr(req.CampaignID),
	}
	if err := validatePoint(in); err != nil {
		return models.CollectionPoint{}, err
	}
	cp, err := s.store.CreateCollectionPoint(ctx, in)
	if err != nil {
		return models.CollectionPoint{}, fmt.Errorf("create collection point: %w", err)
	}
	s.logger.Info("collection point created", zap.String("id", cp.ID.String()))
	return cp, nil
}

// Update applies patch over the stored point. An empty campaignId detaches
// the point from its campaign.
func (s *CollectionPointService) Update(ctx context.Context, rawID string, patch CollectionPointPatch) (models.CollectionPoint, error) {
	id, err := parseID(rawID)
	if err != nil {
		return models.CollectionPoint{}, err
	}
	current, err := s.store.GetCollectionPoint(ctx, id)
	if err != nil {
		return models.CollectionPoint{}, fmt.Errorf("get collection point %s: %w", id, err)
	}
	in := store.CollectionPointInput{
		ID:         id,
		Name:       current.Name,
		Address:    current.Address,
		City:       current.City,
		Contact:    current.Contact,
		Phone:      current.Phone,
		Schedule:   current.Schedule,
		CampaignID: current.CampaignID,
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&in.Name, patch.Name)
	apply(&in.Address, patch.Address)
	apply(&in.City, patch.City)
	apply(&in.Contact, patch.Contact)
	apply(&in.Phone, patch.Phone)
	apply(&in.Schedule, patch.Schedule)
	if patch.CampaignID != nil {
		in.CampaignID = trimmedPtr(patch.CampaignID)
	}
	if err := validatePoint(in); err != nil {
		return models.CollectionPoint{}, err
	}
	cp, err := s.store.UpdateCollectionPoint(ctx, id, in)
	if err != nil {
		return models.CollectionPoint{}, fmt.Errorf("update collection point %s: %w", id, err)
	}
	return cp, nil
}

func (s *CollectionPointService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteCollectionPoint(ctx, id); err != nil {
		return fmt.Errorf("delete collection point %s: %w", id, err)
	}
	s.logger.Info("collection point deleted", zap.String("id", id.String()))
	return nil
}
