package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nota0515/bhakti/internal/model"
	"github.com/Nota0515/bhakti/internal/repository"
)

type fakeOrderStore struct {
	created     *model.Order
	items       []model.OrderItem
	transitions [][2]string

	createErr error
	statusErr error
}

func (s *fakeOrderStore) Create(ctx context.Context, o *model.Order, items []model.OrderItem) error {
	if s.createErr != nil {
		return s.createErr
	}
	cp := *o
	s.created = &cp
	s.items = items
	return nil
}

func (s *fakeOrderStore) UpdateStatus(ctx context.Context, orderID, from, to string) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.transitions = append(s.transitions, [2]string{from, to})
	return nil
}

type fakeFlagger struct {
	marked []uint64
	err    error
}

func (f *fakeFlagger) MarkPrasadOrdered(ctx context.Context, userID uint64) error {
	if f.err != nil {
		return f.err
	}
	f.marked = append(f.marked, userID)
	return nil
}

type fakeReceipts struct {
	done chan model.Order
}

func (f *fakeReceipts) OrderCompleted(ctx context.Context, o model.Order, items []model.OrderItem) error {
	f.done <- o
	return nil
}

func newTestCheckout(store *fakeOrderStore, flagger *fakeFlagger, n Notifier) *Checkout {
	ck := NewCheckout(store, flagger, n)
	ck.StepDelay = 0 // no simulated gateway latency in tests
	return ck
}

func testMandal(delivery bool) model.Mandal {
	return model.Mandal{ID: 3, Name: "Shree Ganesh Mandal", UpiID: "ganesh@upi", DeliveryAvailable: delivery}
}

func TestPlaceRunsFullFlow(t *testing.T) {
	store := &fakeOrderStore{}
	flagger := &fakeFlagger{}
	ck := newTestCheckout(store, flagger, nil)

	cart := NewCart()
	require.NoError(t, cart.AddN("modak", 2))
	require.NoError(t, cart.Add("ladoo"))

	o, err := ck.Place(context.Background(), model.Profile{UserID: 7}, testMandal(false), cart)
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, model.OrderStatusCompleted, o.Status)
	assert.Equal(t, uint32(110), o.Subtotal)
	assert.Equal(t, uint32(0), o.DeliveryFee)
	assert.Equal(t, uint32(110), o.Total)
	assert.Equal(t, "ganesh@upi", o.PayeeUpiID)

	// Persisted as CREATED, then advanced step by step.
	require.NotNil(t, store.created)
	assert.Equal(t, model.OrderStatusCreated, store.created.Status)
	assert.Equal(t, [][2]string{
		{model.OrderStatusCreated, model.OrderStatusProcessing},
		{model.OrderStatusProcessing, model.OrderStatusCompleted},
	}, store.transitions)

	require.Len(t, store.items, 2)
	assert.Equal(t, "modak", store.items[0].ItemID)
	assert.Equal(t, uint32(2), store.items[0].Quantity)
	assert.Equal(t, uint32(30), store.items[0].Price)

	assert.Equal(t, []uint64{7}, flagger.marked)
}

func TestPlaceWithDeliveryAddsFee(t *testing.T) {
	store := &fakeOrderStore{}
	ck := newTestCheckout(store, &fakeFlagger{}, nil)

	cart := NewCart()
	require.NoError(t, cart.Add("special"))
	cart.SetDelivery(true)

	o, err := ck.Place(context.Background(), model.Profile{UserID: 7}, testMandal(true), cart)
	require.NoError(t, err)
	assert.Equal(t, uint32(100), o.Subtotal)
	assert.Equal(t, DeliveryFee, o.DeliveryFee)
	assert.Equal(t, uint32(100)+DeliveryFee, o.Total)
}

func TestPlaceRejectsRepeatBuyerBeforeAnyWrite(t *testing.T) {
	// A store that fails loudly if touched proves the gate fires on
	// the cached profile alone.
	store := &fakeOrderStore{createErr: errors.New("store must not be called")}
	ck := newTestCheckout(store, &fakeFlagger{}, nil)

	cart := NewCart()
	require.NoError(t, cart.Add("modak"))

	_, err := ck.Place(context.Background(), model.Profile{UserID: 7, HasOrderedPrasad: true}, testMandal(false), cart)
	assert.ErrorIs(t, err, ErrAlreadyOrdered)
	assert.Nil(t, store.created)
}

func TestPlaceRejectsEmptyCart(t *testing.T) {
	ck := newTestCheckout(&fakeOrderStore{}, &fakeFlagger{}, nil)

	_, err := ck.Place(context.Background(), model.Profile{UserID: 7}, testMandal(false), NewCart())
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = ck.Place(context.Background(), model.Profile{UserID: 7}, testMandal(false), nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceRejectsDeliveryWhenUnavailable(t *testing.T) {
	ck := newTestCheckout(&fakeOrderStore{}, &fakeFlagger{}, nil)

	cart := NewCart()
	require.NoError(t, cart.Add("modak"))
	cart.SetDelivery(true)

	_, err := ck.Place(context.Background(), model.Profile{UserID: 7}, testMandal(false), cart)
	assert.ErrorIs(t, err, ErrDeliveryUnavailable)
}

func TestPlaceSurfacesTransitionConflict(t *testing.T) {
	store := &fakeOrderStore{statusErr: errors.New("status conflict")}
	ck := newTestCheckout(store, &fakeFlagger{}, nil)

	cart := NewCart()
	require.NoError(t, cart.Add("modak"))

	o, err := ck.Place(context.Background(), model.Profile{UserID: 7}, testMandal(false), cart)
	require.Error(t, err)
	// The created order is still returned so the caller can report it.
	assert.NotEmpty(t, o.ID)
}

func TestPlaceLosingFlagClaimNeverCompletes(t *testing.T) {
	// Two checkouts for the same user can both pass the cached-profile
	// gate; the guarded flag UPDATE admits exactly one. The loser must
	// surface ErrAlreadyOrdered with its order stuck in PROCESSING.
	store := &fakeOrderStore{}
	ck := newTestCheckout(store, &fakeFlagger{err: repository.ErrConflict}, nil)

	cart := NewCart()
	require.NoError(t, cart.Add("ladoo"))

	o, err := ck.Place(context.Background(), model.Profile{UserID: 7}, testMandal(false), cart)
	assert.ErrorIs(t, err, ErrAlreadyOrdered)
	assert.Equal(t, model.OrderStatusProcessing, o.Status)
	require.Len(t, store.transitions, 1)
	assert.Equal(t, [2]string{model.OrderStatusCreated, model.OrderStatusProcessing}, store.transitions[0])
}

func TestPlaceFlagInfraFailureBlocksCompletion(t *testing.T) {
	store := &fakeOrderStore{}
	ck := newTestCheckout(store, &fakeFlagger{err: errors.New("profiles table unreachable")}, nil)

	cart := NewCart()
	require.NoError(t, cart.Add("ladoo"))

	o, err := ck.Place(context.Background(), model.Profile{UserID: 7}, testMandal(false), cart)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyOrdered)
	assert.Equal(t, model.OrderStatusProcessing, o.Status)
	assert.Len(t, store.transitions, 1)
}

func TestPlaceSendsReceipt(t *testing.T) {
	receipts := &fakeReceipts{done: make(chan model.Order, 1)}
	ck := newTestCheckout(&fakeOrderStore{}, &fakeFlagger{}, receipts)

	cart := NewCart()
	require.NoError(t, cart.Add("modak"))

	o, err := ck.Place(context.Background(), model.Profile{UserID: 7}, testMandal(false), cart)
	require.NoError(t, err)

	select {
	case got := <-receipts.done:
		assert.Equal(t, o.ID, got.ID)
		assert.Equal(t, model.OrderStatusCompleted, got.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("receipt notification never fired")
	}
}
