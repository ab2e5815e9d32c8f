package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
)

var ErrNotFound = errors.New("record not found")

// Store is the persistence contract of the campaign service.
type Store interface {
	ListCampaigns(ctx context.Context) ([]models.CampaignRecord, error)
	GetCampaign(ctx context.Context, id string) (models.CampaignRecord, error)
	ListAttachments(ctx context.Context, campaignIDs []string) ([]models.Attachment, error)
	AddAttachment(ctx context.Context, in AttachmentInput) (models.Attachment, error)
	CreateAdoption(ctx context.Context, in AdoptionInput) (models.Adoption, error)
	ListCollectionPoints(ctx context.Context) ([]models.CollectionPoint, error)
	GetCollectionPoint(ctx context.Context, id uuid.UUID) (models.CollectionPoint, error)
	CreateCollectionPoint(ctx context.Context, in CollectionPointInput) (models.CollectionPoint, error)
	UpdateCollectionPoint(ctx context.Context, id uuid.UUID, in CollectionPointInput) (models.CollectionPoint, error)
	DeleteCollectionPoint(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

type AttachmentInput struct {
	ID          uuid.UUID
	CampaignID  string
	ObjectKey   string
	URL         string
	Filename    string
	ContentType string
	Size        int64
	Thumbnails  json.RawMessage
}

type AdoptionInput struct {
	ID           uuid.UUID
	CampaignID   string
	AdopterName  string
	AdopterEmail string
	AdopterPhone string
}

type CollectionPointInput struct {
	ID         uuid.UUID
	Name       string
	Address    string
	City       string
	Contact    string
	Phone      string
	Schedule   string
	CampaignID *string
}

type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

const campaignSelect = `
	SELECT c.id, c.fields, c.created_at,
	       COALESCE(array_agg(a.id::text ORDER BY a.created_at) FILTER (WHERE a.id IS NOT NULL), '{}') AS adopters
	FROM campaigns c
	LEFT JOIN adoptions a ON a.campaign_id = c.id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (models.CampaignRecord, error) {
	var (
		rec      models.CampaignRecord
		raw      []byte
		adopters []string
	)
	if err := row.Scan(&rec.ID, &raw, &rec.CreatedAt, pq.Array(&adopters)); err != nil {
		return models.CampaignRecord{}, err
	}
	rec.Fields = map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec.Fields); err != nil {
			return models.CampaignRecord{}, fmt.Errorf("decode campaign %s fields: %w", rec.ID, err)
		}
	}
	ids := make([]any, 0, len(adopters))
	for _, id := range adopters {
		ids = append(ids, id)
	}
	rec.Fields[models.RecordedAdoptersField] = ids
	return rec, nil
}

func (s *PGStore) ListCampaigns(ctx context.Context) ([]models.CampaignRecord, error) {
	query := campaignSelect + `
	GROUP BY c.id, c.fields, c.created_at
	ORDER BY c.created_at, c.id
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()
	var out []models.CampaignRecord
	for rows.Next() {
		rec, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	return out, nil
}

func (s *PGStore) GetCampaign(ctx context.Context, id string) (models.CampaignRecord, error) {
	query := campaignSelect + `
	WHERE c.id = $1
	GROUP BY c.id, c.fields, c.created_at
	`
	rec, err := scanCampaign(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CampaignRecord{}, ErrNotFound
		}
		return models.CampaignRecord{}, fmt.Errorf("get campaign: %w", err)
	}
	return rec, nil
}

// ListAttachments returns the attachments of the given campaigns, or of
// every campaign when campaignIDs is empty.
func (s *PGStore) ListAttachments(ctx context.Context, campaignIDs []string) ([]models.Attachment, error) {
	query := `
		SELECT id, campaign_id, object_key, url, filename, content_type, size, thumbnails, created_at
		FROM campaign_attachments
	`
	var args []any
	if len(campaignIDs) > 0 {
		query += ` WHERE campaign_id = ANY($1)`
		args = append(args, pq.Array(campaignIDs))
	}
	query += ` ORDER BY created_at, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()
	var out []models.Attachment
	for rows.Next() {
		var (
			att    models.Attachment
			thumbs []byte
		)
		if err := rows.Scan(&att.ID, &att.CampaignID, &att.ObjectKey, &att.URL, &att.Filename, &att.ContentType, &att.Size, &thumbs, &att.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		if len(thumbs) > 0 {
			att.Thumbnails = append(json.RawMessage(nil), thumbs...)
		}
		out = append(out, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return out, nil
}

func (s *PGStore) AddAttachment(ctx context.Context, in AttachmentInput) (models.Attachment, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	var thumbs any
	if len(in.Thumbnails) > 0 {
		thumbs = []byte(in.Thumbnails)
	}
	query := `
		INSERT INTO campaign_attachments (id, campaign_id, object_key, url, filename, content_type, size, thumbnails)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`
	var created time.Time
	if err := s.db.QueryRowContext(ctx, query, in.ID, in.CampaignID, in.ObjectKey, in.URL, in.Filename, in.ContentType, in.Size, thumbs).Scan(&created); err != nil {
		return models.Attachment{}, fmt.Errorf("insert attachment: %w", err)
	}
	return models.Attachment{
		ID:          in.ID,
		CampaignID:  in.CampaignID,
		ObjectKey:   in.ObjectKey,
		URL:         in.URL,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Size:        in.Size,
		Thumbnails:  in.Thumbnails,
		CreatedAt:   created,
	}, nil
}

func (s *PGStore) CreateAdoption(ctx context.Context, in AdoptionInput) (models.Adoption, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	query := `
		INSERT INTO adoptions (id, campaign_id, adopter_name, adopter_email, adopter_phone)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`
	var created time.Time
	if err := s.db.QueryRowContext(ctx, query, in.ID, in.CampaignID, in.AdopterName, in.AdopterEmail, in.AdopterPhone).Scan(&created); err != nil {
		return models.Adoption{}, fmt.Errorf("insert adoption: %w", err)
	}
	return models.Adoption{
		ID:           in.ID,
		CampaignID:   in.CampaignID,
		AdopterName:  in.AdopterName,
		AdopterEmail: in.AdopterEmail,
		AdopterPhone: in.AdopterPhone,
		CreatedAt:    created,
	}, nil
}

const collectionPointColumns = `id, name, address, city, contact, phone, schedule, campaign_id, created_at, updated_at`

func scanCollectionPoint(row rowScanner) (models.CollectionPoint, error) {
	var (
		cp       models.CollectionPoint
		campaign sql.NullString
	)
	if err := row.Scan(&cp.ID, &cp.Name, &cp.Address, &cp.City, &cp.Contact, &cp.Phone, &cp.Schedule, &campaign, &cp.CreatedAt, &cp.UpdatedAt); err != nil {
		return models.CollectionPoint{}, err
	}
	if campaign.Valid {
		cp.CampaignID = &campaign.String
	}
	return cp, nil
}

func (s *PGStore) ListCollectionPoints(ctx context.Context) ([]models.CollectionPoint, error) {
	query := `SELECT ` + collectionPointColumns + ` FROM collection_points ORDER BY name, id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list collection points: %w", err)
	}
	defer rows.Close()
	var out []models.CollectionPoint
	for rows.Next() {
		cp, err := scanCollectionPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection point: %w", err)
		}
		out = append(out, cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list collection points: %w", err)
	}
	return out, nil
}

func (s *PGStore) GetCollectionPoint(ctx context.Context, id uuid.UUID) (models.CollectionPoint, error) {
	query := `SELECT ` + collectionPointColumns + ` FROM collection_points WHERE id=$1`
	cp, err := scanCollectionPoint(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CollectionPoint{}, ErrNotFound
		}
		return models.CollectionPoint{}, fmt.Errorf("get collection point: %w", err)
	}
	return cp, nil
}

func (s *PGStore) CreateCollectionPoint(ctx context.Context, in CollectionPointInput) (models.CollectionPoint, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	query := `
		INSERT INTO collection_points (id, name, address, city, contact, phone, schedule, campaign_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING ` + collectionPointColumns
	cp, err := scanCollectionPoint(s.db.QueryRowContext(ctx, query, in.ID, in.Name, in.Address, in.City, in.Contact, in.Phone, in.Schedule, in.CampaignID))
	if err != nil {
		return models.CollectionPoint{}, fmt.Errorf("insert collection point: %w", err)
	}
	return cp, nil
}

func (s *PGStore) UpdateCollectionPoint(ctx context.Context, id uuid.UUID, in CollectionPointInput) (models.CollectionPoint, error) {
	query := `
		UPDATE collection_points
		SET name=$2,
		    address=$3,
		    city=$4,
		    contact=$5,
		    phone=$6,
		    schedule=$7,
		    campaign_id=$8,
		    updated_at=NOW()
		WHERE id=$1
		RETURNING ` + collectionPointColumns
	cp, err := scanCollectionPoint(s.db.QueryRowContext(ctx, query, id, in.Name, in.Address, in.City, in.Contact, in.Phone, in.Schedule, in.CampaignID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.CollectionPoint{}, ErrNotFound
		}
		return models.CollectionPoint{}, fmt.Errorf("update collection point: %w", err)
	}
	return cp, nil
}

func (s *PGStore) DeleteCollectionPoint(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM collection_points WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete collection point: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PGStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	return nil
}
