package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/crucial707/inventory/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestFilterDoc_EqualityAndLiteralSearch(t *testing.T) {
	f := query.AssetParams{Status: "Assigned", Area: "Finance", Search: "A+B(1)"}.Build()

	doc, err := filterDoc(f, assetFields)
	require.NoError(t, err)

	assert.Equal(t, "Assigned", doc["status"])
	assert.Equal(t, "Finance", doc["area"])
	or, ok := doc["$or"].([]bson.M)
	require.True(t, ok)
	require.Len(t, or, len(query.AssetSearchFields))
	assert.Equal(t, primitive.Regex{Pattern: `A\+B\(1\)`, Options: "i"}, or[0]["_id"])
	assert.Contains(t, or[3], "assignedUserName")
}

func TestFilterDoc_Empty(t *testing.T) {
	doc, err := filterDoc(query.Filter{}, assetFields)
	require.NoError(t, err)
	assert.Empty(t, doc)
}

func TestFilterDoc_UnknownFieldRejected(t *testing.T) {
	_, err := filterDoc(query.Filter{Equals: []query.Eq{{Field: "$where", Value: "1"}}}, assetFields)
	assert.ErrorIs(t, err, apperr.ErrInternal)
}

func TestHistorySort_NewestFirstWithIDTieBreak(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}, historySort)
}

func TestAssetUpdate_SetAndUnset(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	p := models.AssetPatch{
		Status:          models.Ptr(models.StatusInWarehouse),
		CollaboratorRef: models.Ptr(""),
		DeliveryDate:    &models.Date{},
		Notes:           models.Ptr("returned"),
	}

	update := assetUpdate(p, at)

	set := update["$set"].(bson.M)
	assert.Equal(t, "InWarehouse", set["status"])
	assert.Equal(t, "returned", set["notes"])
	assert.Equal(t, at, set["updatedAt"])
	assert.NotContains(t, set, "brand")
	unset := update["$unset"].(bson.M)
	assert.Contains(t, unset, "collaboratorRef")
	assert.Contains(t, unset, "deliveryDate")
}

func TestAssetUpdate_NoUnsetWhenNothingCleared(t *testing.T) {
	update := assetUpdate(models.AssetPatch{Brand: models.Ptr("HP")}, time.Now())
	assert.NotContains(t, update, "$unset")
}

func TestAssetDoc_RoundTrip(t *testing.T) {
	d, err := models.ParseDate("2025-06-30")
	require.NoError(t, err)
	a := models.Asset{
		ID: "LAP-9", EquipmentType: models.EquipmentLaptop, Status: models.StatusAssigned,
		Location: models.LocationOffice, CollaboratorRef: models.Ptr("c-1"), DeliveryDate: &d,
	}
	back := toAssetDoc(a).asset()
	assert.Equal(t, a.ID, back.ID)
	assert.Equal(t, "2025-06-30", back.DeliveryDate.String())
	assert.Equal(t, "c-1", *back.CollaboratorRef)
}

func TestStores_WithMockDeployment(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create duplicate asset", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))
		_, err := NewAssets(mt.DB).Create(context.Background(), models.Asset{ID: "lt001", EquipmentType: models.EquipmentLaptop})
		assert.ErrorIs(mt, err, apperr.ErrDuplicateKey)
	})

	mt.Run("create asset", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		a, err := NewAssets(mt.DB).Create(context.Background(), models.Asset{ID: "lt001", EquipmentType: models.EquipmentLaptop})
		require.NoError(mt, err)
		assert.Equal(mt, "LT001", a.ID)
		assert.False(mt, a.CreatedAt.IsZero())
	})

	mt.Run("get asset not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.assets", mtest.FirstBatch))
		_, err := NewAssets(mt.DB).Get(context.Background(), "nope")
		assert.ErrorIs(mt, err, apperr.ErrNotFound)
	})

	mt.Run("get asset", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.assets", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "LT001"},
			{Key: "equipmentType", Value: "Laptop"},
			{Key: "status", Value: "Assigned"},
			{Key: "location", Value: "Office"},
			{Key: "assignedUserName", Value: "JANE DOE"},
		}))
		a, err := NewAssets(mt.DB).Get(context.Background(), "lt001")
		require.NoError(mt, err)
		assert.Equal(mt, "JANE DOE", a.AssignedUserName)
		assert.Nil(mt, a.CollaboratorRef)
	})

	mt.Run("summarize", func(mt *mtest.T) {
		group := func(status, typ, area, loc string, n int32) bson.D {
			return bson.D{
				{Key: "_id", Value: bson.D{
					{Key: "status", Value: status},
					{Key: "equipmentType", Value: typ},
					{Key: "area", Value: area},
					{Key: "location", Value: loc},
				}},
				{Key: "count", Value: n},
			}
		}
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.assets", mtest.FirstBatch,
			group("Assigned", "Laptop", "Finance", "Office", 2),
			group("InWarehouse", "Mouse", "", "Warehouse", 3),
		))
		stats, err := NewAssets(mt.DB).Summarize(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, 5, stats.Total)
		assert.Equal(mt, 3, stats.ByLocation["Warehouse"])
		assert.Equal(mt, 2, stats.ByArea["Finance"])
	})

	mt.Run("history newest first", func(mt *mtest.T) {
		later := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "inventory.asset_history", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "h2"}, {Key: "assetId", Value: "LT001"}, {Key: "kind", Value: "Edit"},
				{Key: "description", Value: "Modified: status"}, {Key: "actor", Value: "system"},
				{Key: "changes", Value: bson.A{bson.D{{Key: "field", Value: "status"}, {Key: "previousValue", Value: "InWarehouse"}, {Key: "newValue", Value: "Assigned"}}}},
				{Key: "timestamp", Value: later},
			},
		))
		entries, err := NewHistory(mt.DB).ListByAsset(context.Background(), "lt001", 0)
		require.NoError(mt, err)
		require.Len(mt, entries, 1)
		assert.Equal(mt, models.HistoryEdit, entries[0].Kind)
		require.Len(mt, entries[0].Changes, 1)
		assert.Equal(mt, "Assigned", entries[0].Changes[0].NewValue)
	})
}
