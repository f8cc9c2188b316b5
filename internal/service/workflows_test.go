package service

import (
	"context"
	"testing"

	"github.com/crucial707/inventory/internal/apperr"
	"github.com/crucial707/inventory/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliverExchangeReturn(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, s, laptop("LT001"))

	delivered, err := s.Deliver(ctx, "lt001", DeliverRequest{
		AssignedUserName: " jane doe ",
		Location:         models.Ptr(models.LocationHomeRemote),
		DeliveryDate:     &models.Date{},
		ProofOfDelivery:  models.Ptr("https://docs.example.com/d.pdf"),
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, delivered.Status)
	assert.Equal(t, "JANE DOE", delivered.AssignedUserName)
	assert.Nil(t, delivered.DeliveryDate)

	exchanged, err := s.Exchange(ctx, "LT001", ExchangeRequest{AssignedUserName: "John Roe"}, admin)
	require.NoError(t, err)
	assert.Equal(t, "JOHN ROE", exchanged.AssignedUserName)

	returned, err := s.Return(ctx, "LT001", ReturnRequest{ProofOfReturn: models.Ptr("https://docs.example.com/r.pdf")}, admin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInWarehouse, returned.Status)
	assert.Equal(t, models.LocationWarehouse, returned.Location)
	assert.Empty(t, returned.AssignedUserName)
	assert.Nil(t, returned.CollaboratorRef)

	entries, err := s.HistoryFor(ctx, "LT001")
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, models.HistoryReturn, entries[0].Kind)
	assert.Equal(t, "Returned by JOHN ROE", entries[0].Description)
	assert.Equal(t, models.HistoryExchange, entries[1].Kind)
	assert.Equal(t, "Exchanged from JANE DOE to JOHN ROE", entries[1].Description)
	assert.Equal(t, []models.Change{{Field: "assignedUserName", PreviousValue: "JANE DOE", NewValue: "JOHN ROE"}}, entries[1].Changes)
	assert.Equal(t, models.HistoryDelivery, entries[2].Kind)
	assert.Equal(t, "Delivered to JANE DOE", entries[2].Description)
}

func TestDeliver_RequiresHolder(t *testing.T) {
	s, stores := newTestService(t)
	mustCreate(t, s, laptop("LT001"))

	_, err := s.Deliver(context.Background(), "LT001", DeliverRequest{AssignedUserName: "  "}, admin)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, 1, historyLen(stores))
}

func TestDeliver_SameHolderRecordsNothing(t *testing.T) {
	s, stores := newTestService(t)
	ctx := context.Background()
	mustCreate(t, s, laptop("LT001"))

	_, err := s.Deliver(ctx, "LT001", DeliverRequest{AssignedUserName: "Jane Doe"}, admin)
	require.NoError(t, err)
	_, err = s.Deliver(ctx, "LT001", DeliverRequest{AssignedUserName: "JANE DOE"}, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, historyLen(stores))
}

func TestDeliver_NewHolderDropsPreviousCollaboratorRef(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, s, laptop("LT001"))
	jane, err := s.CreateCollaborator(ctx, models.Collaborator{EmployeeID: "E100", FullName: "Jane Doe"})
	require.NoError(t, err)

	delivered, err := s.Deliver(ctx, "LT001", DeliverRequest{AssignedUserName: "Jane Doe", CollaboratorRef: &jane.ID}, admin)
	require.NoError(t, err)
	require.NotNil(t, delivered.CollaboratorRef)
	assert.Equal(t, jane.ID, *delivered.CollaboratorRef)

	same, err := s.Deliver(ctx, "LT001", DeliverRequest{AssignedUserName: "jane doe", ProofOfDelivery: models.Ptr("https://docs.example.com/d.pdf")}, admin)
	require.NoError(t, err)
	require.NotNil(t, same.CollaboratorRef, "re-delivering to the same holder keeps the reference")
	assert.Equal(t, jane.ID, *same.CollaboratorRef)

	moved, err := s.Deliver(ctx, "LT001", DeliverRequest{AssignedUserName: "John Roe"}, admin)
	require.NoError(t, err)
	assert.Equal(t, "JOHN ROE", moved.AssignedUserName)
	assert.Nil(t, moved.CollaboratorRef)

	stored, err := s.GetAsset(ctx, "LT001")
	require.NoError(t, err)
	assert.Nil(t, stored.CollaboratorRef)
}

func TestExchangeAndReturn_RequireAssignedAsset(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	mustCreate(t, s, laptop("LT001"))

	_, err := s.Exchange(ctx, "LT001", ExchangeRequest{AssignedUserName: "John Roe"}, admin)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Return(ctx, "LT001", ReturnRequest{}, admin)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = s.Return(ctx, "GHOST", ReturnRequest{}, admin)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestExchange_DropsOldCollaboratorRef(t *testing.T) {
	s, _ := newTestService(t)
	ctx := context.Background()
	jane, err := s.CreateCollaborator(ctx, models.Collaborator{EmployeeID: "E1", FullName: "Jane Doe"})
	require.NoError(t, err)
	mustCreate(t, s, laptop("LT001"))

	_, err = s.Deliver(ctx, "LT001", DeliverRequest{AssignedUserName: jane.FullName, CollaboratorRef: &jane.ID}, admin)
	require.NoError(t, err)

	exchanged, err := s.Exchange(ctx, "LT001", ExchangeRequest{AssignedUserName: "John Roe"}, admin)
	require.NoError(t, err)
	assert.Nil(t, exchanged.CollaboratorRef)
}
