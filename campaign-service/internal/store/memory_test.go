package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/models"
	"github.com/ILLUVRSE/adoptions/campaign-service/internal/store"
)

func TestMemoryStoreExposesAdoptersAsArray(t *testing.T) {
	mem := store.NewMemoryStore()
	mem.PutCampaign(models.CampaignRecord{ID: "rec1", Fields: map[string]any{"Total Letters": 5, "Adopters": []any{"imported"}}})
	ctx := context.Background()

	_, err := mem.CreateAdoption(ctx, store.AdoptionInput{CampaignID: "rec1", AdopterName: "Ana", AdopterEmail: "a@example.com"})
	require.NoError(t, err)
	_, err = mem.CreateAdoption(ctx, store.AdoptionInput{CampaignID: "missing"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	rec, err := mem.GetCampaign(ctx, "rec1")
	require.NoError(t, err)
	assert.Len(t, rec.Fields[models.RecordedAdoptersField], 1)
	assert.Equal(t, 5, rec.Fields["Total Letters"])
	assert.Equal(t, []any{"imported"}, rec.Fields["Adopters"])
}

func TestMemoryStoreListKeepsInsertionOrder(t *testing.T) {
	mem := store.NewMemoryStore()
	for _, id := range []string{"c", "a", "b"} {
		mem.PutCampaign(models.CampaignRecord{ID: id})
	}
	mem.PutCampaign(models.CampaignRecord{ID: "a", Fields: map[string]any{"Name": "again"}})

	recs, err := mem.ListCampaigns(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "c", recs[0].ID)
	assert.Equal(t, "again", recs[1].Fields["Name"])
}

func TestMemoryStoreCollectionPoints(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	cp, err := mem.CreateCollectionPoint(ctx, store.CollectionPointInput{Name: "Escuela", Address: "Av. 5"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, cp.ID)

	updated, err := mem.UpdateCollectionPoint(ctx, cp.ID, store.CollectionPointInput{Name: "Escuela", Address: "Av. 6"})
	require.NoError(t, err)
	assert.Equal(t, "Av. 6", updated.Address)
	assert.Equal(t, cp.CreatedAt, updated.CreatedAt)

	require.NoError(t, mem.DeleteCollectionPoint(ctx, cp.ID))
	_, err = mem.GetCollectionPoint(ctx, cp.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, mem.DeleteCollectionPoint(ctx, cp.ID), store.ErrNotFound)
}
