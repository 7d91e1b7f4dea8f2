package service

import (
	"context"
	"testing"

	"veredapos/internal/dto"
	"veredapos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableService_CreateDefaults(t *testing.T) {
	f := newFixture(t)
	svc := NewTableService(f.store)

	tb, err := svc.Create(context.Background(), dto.CreateTableRequest{Name: "Esplanada"})
	require.NoError(t, err)
	assert.Equal(t, 6, tb.ID)
	assert.Equal(t, model.ZoneInterior, tb.Zone)
	assert.Equal(t, 4, tb.Seats)
	assert.Equal(t, model.TableFree, tb.Status)
}

func TestTableService_CreateRejects(t *testing.T) {
	f := newFixture(t)
	svc := NewTableService(f.store)

	_, err := svc.Create(context.Background(), dto.CreateTableRequest{ID: 3, Name: "Dup"})
	assert.ErrorIs(t, err, ErrDuplicateID)
	_, err = svc.Create(context.Background(), dto.CreateTableRequest{Name: "X", Zone: "TERRACO"})
	assert.ErrorIs(t, err, ErrInvalidZone)
}

func TestTableService_CreateAdoptsOrphanOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewTableService(f.store)

	// orders may reference a table number before it exists on the floor plan
	_, err := f.orders.CreateOrder(ctx, intPtr(12), "", "")
	require.NoError(t, err)

	tb, err := svc.Create(ctx, dto.CreateTableRequest{ID: 12, Name: "Mesa 12"})
	require.NoError(t, err)
	assert.Equal(t, model.TableOccupied, tb.Status)
}

func TestTableService_UpdateAndMove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewTableService(f.store)

	zone := model.ZoneExterior
	tb, err := svc.Update(ctx, 2, dto.UpdateTableRequest{Name: strPtr("Varanda"), Zone: &zone, Seats: intPtr(6)})
	require.NoError(t, err)
	assert.Equal(t, "Varanda", tb.Name)
	assert.Equal(t, model.ZoneExterior, tb.Zone)
	assert.Equal(t, 6, tb.Seats)

	tb, err = svc.Move(ctx, 2, 120, 48.5)
	require.NoError(t, err)
	assert.Equal(t, 120.0, tb.X)
	assert.Equal(t, 48.5, tb.Y)

	_, err = svc.Move(ctx, 77, 0, 0)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestTableService_DeleteRefusesOpenOrders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewTableService(f.store)
	o := f.openWith(t, 4, "d-cuca", 1)

	assert.ErrorIs(t, svc.Delete(ctx, 4), ErrTableOccupied)

	_, err := f.orders.Checkout(ctx, o.ID, model.PayCash, nil)
	require.NoError(t, err)
	require.NoError(t, f.orders.SetActiveTable(ctx, intPtr(4)))
	require.NoError(t, svc.Delete(ctx, 4))

	_, err = svc.Get(ctx, 4)
	assert.ErrorIs(t, err, ErrTableNotFound)
	assert.Nil(t, f.orders.Selection(ctx).TableID)
	assert.Len(t, svc.List(ctx), 4)
}
