package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Marga-Ghale/ora-crm-backend/internal/socket"
	"github.com/Marga-Ghale/ora-crm-backend/internal/types"
)

func TestCustomer_CreateListGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@crm.test")
	bob := f.user(t, "bob@crm.test")

	view, err := f.svc.Customer.Create(ctx, alice, CustomerInput{Name: "Acme", Email: "Buyer@Acme.test", Company: "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "buyer@acme.test", view.Customer.Email)
	assert.Equal(t, alice, view.Customer.CreatedBy.Hex())
	require.NotNil(t, view.CreatedBy)
	assert.Equal(t, "alice", view.CreatedBy.Name)
	assert.Empty(t, view.Customer.Interactions)

	f.customer(t, bob, "other@bob.test")

	list, err := f.svc.Customer.List(ctx, alice, "")
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = f.svc.Customer.List(ctx, alice, "corp")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.svc.Customer.List(ctx, alice, "nomatch")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.svc.Customer.Get(ctx, bob, view.Customer.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Customer.Get(ctx, alice, "not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Customer.Get(ctx, alice, bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomer_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@crm.test")

	_, err := f.svc.Customer.Create(ctx, alice, CustomerInput{Email: "x@y.test"})
	requireValidation(t, err, "name")

	_, err = f.svc.Customer.Create(ctx, alice, CustomerInput{Name: "X", Email: "nope"})
	requireValidation(t, err, "email")

	f.customer(t, alice, "taken@y.test")
	_, err = f.svc.Customer.Create(ctx, alice, CustomerInput{Name: "Y", Email: "taken@y.test"})
	requireValidation(t, err, "email")
}

func TestCustomer_UpdateIsOwnerScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@crm.test")
	bob := f.user(t, "bob@crm.test")
	id := f.customer(t, alice, "c@acme.test")

	name := "Acme Renamed"
	_, err := f.svc.Customer.Update(ctx, bob, id, CustomerPatch{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := f.svc.Customer.Update(ctx, alice, id, CustomerPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Acme Renamed", view.Customer.Name)
	assert.Equal(t, "c@acme.test", view.Customer.Email)
	assert.Equal(t, alice, view.Customer.CreatedBy.Hex())

	empty := ""
	_, err = f.svc.Customer.Update(ctx, alice, id, CustomerPatch{Name: &empty})
	requireValidation(t, err, "name")
}

func TestCustomer_AddInteraction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@crm.test")
	id := f.customer(t, alice, "c@acme.test")

	view, err := f.svc.Customer.AddInteraction(ctx, alice, id, InteractionInput{Type: types.InteractionCall, Notes: "intro call"})
	require.NoError(t, err)
	require.Len(t, view.Customer.Interactions, 1)
	assert.Equal(t, types.InteractionCall, view.Customer.Interactions[0].Type)
	assert.True(t, view.Customer.Interactions[0].Date.Equal(fixedNow))

	_, err = f.svc.Customer.AddInteraction(ctx, alice, id, InteractionInput{Type: "fax"})
	requireValidation(t, err, "type")

	_, err = f.svc.Customer.AddInteraction(ctx, alice, bson.NewObjectID().Hex(), InteractionInput{Type: types.InteractionEmail})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCustomer_DeleteEmitsEventAndInvalidatesStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@crm.test")
	bob := f.user(t, "bob@crm.test")
	id := f.customer(t, alice, "c@acme.test")

	_, err := f.svc.Dashboard.Stats(ctx, alice)
	require.NoError(t, err)
	require.True(t, f.cache.has("dashboard:"+alice))

	assert.ErrorIs(t, f.svc.Customer.Delete(ctx, bob, id), ErrNotFound)
	assert.True(t, f.cache.has("dashboard:"+alice))

	require.NoError(t, f.svc.Customer.Delete(ctx, alice, id))
	assert.False(t, f.cache.has("dashboard:"+alice))
	assert.ErrorIs(t, f.svc.Customer.Delete(ctx, alice, id), ErrNotFound)

	assert.Equal(t, []socket.MessageType{socket.MessageCustomerCreated, socket.MessageCustomerDeleted}, f.events.types())
}
