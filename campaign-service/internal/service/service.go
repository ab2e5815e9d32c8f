package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/attachments"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/availability"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/lifecycle"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/notify"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/store"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrMissingID         = errors.New("id is required")
	ErrCampaignNotActive = errors.New("campaign is not accepting adoptions")
	ErrNoAvailability    = errors.New("no letters left to adopt")
	ErrUploadsDisabled   = errors.New("image uploads are not configured")
)

// Config tunes the campaign service.
type Config struct {
	// Location is the zone campaign dates and "today" are read in.
	Location *time.Location
	// AttachmentBaseURL prefixes uploaded object keys to build public URLs.
	AttachmentBaseURL string
	// AttachmentPrefix is prepended to uploaded object keys.
	AttachmentPrefix string
}

// CampaignService lists campaigns with their derived phase and availability
// and records adoptions. Nothing about a campaign's phase is stored; it is
// derived from the record's dates on every call.
type CampaignService struct {
	store     store.Store
	publisher notify.Publisher
	uploader  attachments.Uploader
	logger    *zap.Logger
	cfg       Config

	// NowFunc allows tests to control "today".
	NowFunc func() time.Time
}

func NewCampaignService(st store.Store, pub notify.Publisher, up attachments.Uploader, logger *zap.Logger, cfg Config) *CampaignService {
	if pub == nil {
		pub = notify.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &CampaignService{
		store:     st,
		publisher: pub,
		uploader:  up,
		logger:    logger,
		cfg:       cfg,
		NowFunc:   time.Now,
	}
}

func (s *CampaignService) today() time.Time {
	return s.NowFunc().In(s.cfg.Location)
}

// Listing is the ranked campaign list handed to the presentation layer.
type Listing struct {
	Campaigns []models.CampaignView
	Filter    lifecycle.Phase
}

// campaign is a record after date normalization and counter reconciliation.
type campaign struct {
	item   lifecycle.Item
	view   models.CampaignView
	counts availability.Counts
}

func project(rec models.CampaignRecord, loc *time.Location) campaign {
	dates := lifecycle.Dates{
		Start:    lifecycle.NormalizeDatePtr(models.StartFields.Lookup(rec.Fields), loc),
		Deadline: lifecycle.NormalizeDatePtr(models.DeadlineFields.Lookup(rec.Fields), loc),
		Event:    lifecycle.NormalizeDatePtr(models.EventFields.Lookup(rec.Fields), loc),
	}
	counts := availability.Reconcile(rec.Fields, models.TotalFields, models.ConsumedFields).
		Consume(availability.Count(rec.Fields[models.RecordedAdoptersField]))
	images := attachments.ShapeInline(rec.ID, models.ImageFields.Lookup(rec.Fields))
	if images == nil {
		images = []models.Attachment{}
	}
	return campaign{
		item:   lifecycle.Item{ID: rec.ID, Dates: dates},
		counts: counts,
		view: models.CampaignView{
			ID:                rec.ID,
			Name:              models.StringField(rec.Fields, models.NameFields),
			Description:       models.StringField(rec.Fields, models.DescriptionFields),
			StartDate:         lifecycle.FormatDate(dates.Start),
			ReceivingDeadline: lifecycle.FormatDate(dates.Deadline),
			EventDate:         lifecycle.FormatDate(dates.Event),
			Images:            images,
			TotalLetters:      counts.Total,
			AvailableLetters:  counts.Available,
			AdoptedLetters:    counts.Consumed,
			Featured:          models.BoolField(rec.Fields, models.FeaturedFields),
		},
	}
}

// List returns campaigns ranked for display. filter names a phase; an empty
// or unrecognized filter returns every campaign.
func (s *CampaignService) List(ctx context.Context, filter string) (Listing, error) {
	var (
		records []models.CampaignRecord
		stored  []models.Attachment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.store.ListCampaigns(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stored, err = s.store.ListAttachments(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return Listing{}, fmt.Errorf("load campaigns: %w", err)
	}

	if _, ok := lifecycle.ParsePhase(filter); !ok && strings.TrimSpace(filter) != "" {
		s.logger.Debug("ignoring unrecognized phase filter", zap.String("filter", filter))
	}
	return RankRecords(s.today(), s.cfg.Location, records, stored, filter), nil
}

// RankRecords projects raw campaign records into views, derives each phase
// against today and returns them in display order. stored attachments are
// appended to each campaign's inline images. Dates are read in loc.
func RankRecords(today time.Time, loc *time.Location, records []models.CampaignRecord, stored []models.Attachment, filter string) Listing {
	if loc == nil {
		loc = time.Local
	}
	phase, _ := lifecycle.ParsePhase(filter)

	// Items are keyed by position so duplicate record ids keep their own view.
	projected := make([]campaign, 0, len(records))
	items := make([]lifecycle.Item, 0, len(records))
	ids := make([]string, 0, len(records))
	for i, rec := range records {
		c := project(rec, loc)
		projected = append(projected, c)
		items = append(items, lifecycle.Item{ID: strconv.Itoa(i), Dates: c.item.Dates})
		ids = append(ids, rec.ID)
	}
	grouped := attachments.GroupByCampaign(ids, stored)

	ranked := lifecycle.Rank(today, items, phase)
	views := make([]models.CampaignView, 0, len(ranked))
	for _, r := range ranked {
		i, _ := strconv.Atoi(r.ID)
		v := projected[i].view
		v.Status = string(r.Phase)
		v.Images = append(v.Images, grouped[v.ID]...)
		views = append(views, v)
	}
	return Listing{Campaigns: views, Filter: phase}
}

// Get returns one campaign with its derived phase.
func (s *CampaignService) Get(ctx context.Context, id string) (models.CampaignView, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.CampaignView{}, ErrMissingID
	}
	var (
		rec    models.CampaignRecord
		stored []models.Attachment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rec, err = s.store.GetCampaign(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		stored, err = s.store.ListAttachments(gctx, []string{id})
		return err
	})
	if err := g.Wait(); err != nil {
		return models.CampaignView{}, fmt.Errorf("load campaign %s: %w", id, err)
	}
	c := project(rec, s.cfg.Location)
	v := c.view
	v.Status = string(lifecycle.Classify(s.today(), c.item.Dates))
	v.Images = append(v.Images, attachments.GroupByCampaign([]string{id}, stored)[id]...)
	return v, nil
}

// AdoptRequest asks to adopt one letter of a campaign.
type AdoptRequest struct {
	CampaignID string `json:"-"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

// Adopt records an adoption against an Active campaign with letters left and
// announces it on the events topic.
func (s *CampaignService) Adopt(ctx context.Context, req AdoptRequest) (models.Adoption, error) {
	req.CampaignID = strings.TrimSpace(req.CampaignID)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.CampaignID == "" {
		return models.Adoption{}, ErrMissingID
	}
	if req.Name == "" {
		return models.Adoption{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return models.Adoption{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}

	rec, err := s.store.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		return models.Adoption{}, fmt.Errorf("load campaign %s: %w", req.CampaignID, err)
	}
	c := project(rec, s.cfg.Location)
	if phase := lifecycle.Classify(s.today(), c.item.Dates); phase != lifecycle.PhaseActive {
		return models.Adoption{}, fmt.Errorf("%w: campaign is %s", ErrCampaignNotActive, phase)
	}
	if c.counts.Available <= 0 {
		return models.Adoption{}, ErrNoAvailability
	}

	adoption, err := s.store.CreateAdoption(ctx, store.AdoptionInput{
		ID:           uuid.New(),
		CampaignID:   req.CampaignID,
		AdopterName:  req.Name,
		AdopterEmail: req.Email,
		AdopterPhone: req.Phone,
	})
	if err != nil {
		return models.Adoption{}, fmt.Errorf("record adoption: %w", err)
	}

	ev := notify.Event{
		Type:       notify.EventAdoptionCreated,
		CampaignID: adoption.CampaignID,
		OccurredAt: adoption.CreatedAt,
		Payload: map[string]any{
			"adoptionId":   adoption.ID.String(),
			"campaignName": c.view.Name,
			"adopterName":  adoption.AdopterName,
			"adopterEmail": adoption.AdopterEmail,
			"eventDate":    c.view.EventDate,
			"deadline":     c.view.ReceivingDeadline,
		},
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("publish adoption event failed",
			zap.String("campaign_id", adoption.CampaignID),
			zap.String("adoption_id", adoption.ID.String()),
			zap.Error(err))
	}
	s.logger.Info("adoption recorded",
		zap.String("campaign_id", adoption.CampaignID),
		zap.String("adoption_id", adoption.ID.String()))
	return adoption, nil
}

// ImageUpload is an image to attach to a campaign.
type ImageUpload struct {
	CampaignID  string
	Filename    string
	ContentType string
	Body        io.Reader
}

// AttachImage uploads an image to object storage and records it against the
// campaign.
func (s *CampaignService) AttachImage(ctx context.Context, in ImageUpload) (models.Attachment, error) {
	if s.uploader == nil {
		return models.Attachment{}, ErrUploadsDisabled
	}
	if strings.TrimSpace(in.CampaignID) == "" {
		return models.Attachment{}, ErrMissingID
	}
	if !attachments.ImageContentType(in.ContentType) {
		return models.Attachment{}, fmt.Errorf("%w: unsupported content type %q", ErrInvalidInput, in.ContentType)
	}
	if _, err := s.store.GetCampaign(ctx, in.CampaignID); err != nil {
		return models.Attachment{}, fmt.Errorf("load campaign %s: %w", in.CampaignID, err)
	}

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("%w: read upload: %v", ErrInvalidInput, err)
	}
	if len(body) == 0 {
		return models.Attachment{}, fmt.Errorf("%w: empty upload", ErrInvalidInput)
	}

	id := uuid.New()
	key := attachments.ObjectKey(s.cfg.AttachmentPrefix, in.CampaignID, id, in.Filename)
	if err := s.uploader.Upload(ctx, key, in.ContentType, bytes.NewReader(body)); err != nil {
		return models.Attachment{}, fmt.Errorf("upload image: %w", err)
	}
	att, err := s.store.AddAttachment(ctx, store.AttachmentInput{
		ID:          id,
		CampaignID:  in.CampaignID,
		ObjectKey:   key,
		URL:         attachments.ObjectURL(s.cfg.AttachmentBaseURL, key),
		Filename:    attachments.SafeName(in.Filename),
		ContentType: in.ContentType,
		Size:        int64(len(body)),
	})
	if err != nil {
		return models.Attachment{}, fmt.Errorf("record attachment: %w", err)
	}
	return att, nil
}
