package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Nota0515/bhakti/internal/model"
	"github.com/Nota0515/bhakti/internal/repository"
)

// ErrAlreadyOrdered rejects a checkout for a user whose profile is
// already flagged. The flag is terminal: there is no second order.
var ErrAlreadyOrdered = errors.New("prasad already ordered")

// ErrEmptyCart rejects a checkout with nothing in the cart.
var ErrEmptyCart = errors.New("cart is empty")

// ErrDeliveryUnavailable rejects delivery opt-in for a mandal that
// does not deliver.
var ErrDeliveryUnavailable = errors.New("mandal does not offer delivery")

// Store persists orders. *repository.OrderRepo is the production
// implementation.
type Store interface {
	Create(ctx context.Context, o *model.Order, items []model.OrderItem) error
	UpdateStatus(ctx context.Context, orderID, from, to string) error
}

// ProfileFlagger owns the one-way has-ordered flag. It returns
// repository.ErrConflict when the flag was already claimed.
// *repository.ProfileRepo is the production implementation.
type ProfileFlagger interface {
	MarkPrasadOrdered(ctx context.Context, userID uint64) error
}

// Notifier delivers the order receipt, best effort.
type Notifier interface {
	OrderCompleted(ctx context.Context, o model.Order, items []model.OrderItem) error
}

// Checkout runs the mock payment flow: persist the order as CREATED,
// advance it to PROCESSING, claim the buyer's one-way prasad flag, and
// only then complete the order.
type Checkout struct {
	Orders   Store
	Profiles ProfileFlagger
	Notifier Notifier

	// StepDelay simulates payment gateway latency between status
	// transitions. Tests set it to zero.
	StepDelay time.Duration
	// NotifyTimeout bounds the fire-and-forget receipt attempt.
	NotifyTimeout time.Duration
}

func NewCheckout(orders Store, profiles ProfileFlagger, notifier Notifier) *Checkout {
	return &Checkout{
		Orders:        orders,
		Profiles:      profiles,
		Notifier:      notifier,
		StepDelay:     1500 * time.Millisecond,
		NotifyTimeout: 10 * time.Second,
	}
}

// Place validates the cart against the buyer's profile and the target
// mandal and runs the whole flow. The already-ordered gate fires on
// the caller's cached profile before anything is written or any
// provider is contacted.
func (ck *Checkout) Place(ctx context.Context, buyer model.Profile, mandal model.Mandal, cart *Cart) (model.Order, error) {
	if buyer.HasOrderedPrasad {
		return model.Order{}, ErrAlreadyOrdered
	}
	if cart == nil || cart.Empty() {
		return model.Order{}, ErrEmptyCart
	}
	if cart.Delivery() && !mandal.DeliveryAvailable {
		return model.Order{}, ErrDeliveryUnavailable
	}

	now := time.Now().UTC()
	o := model.Order{
		ID:         uuid.NewString(),
		UserID:     buyer.UserID,
		MandalID:   mandal.ID,
		Subtotal:   cart.Subtotal(),
		Total:      cart.Total(),
		PayeeUpiID: mandal.UpiID,
		Status:     model.OrderStatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if cart.Delivery() {
		o.DeliveryFee = DeliveryFee
	}
	items := make([]model.OrderItem, 0, len(cart.Lines()))
	for _, ln := range cart.Lines() {
		items = append(items, model.OrderItem{
			OrderID:  o.ID,
			ItemID:   ln.Item.ID,
			ItemName: ln.Item.Name,
			Quantity: ln.Quantity,
			Price:    ln.Item.Price,
		})
	}

	if err := ck.Orders.Create(ctx, &o, items); err != nil {
		return model.Order{}, fmt.Errorf("create order: %w", err)
	}

	// Mock payment: two guarded, irreversible transitions with
	// simulated latency in between.
	ck.wait(ctx)
	if err := ck.Orders.UpdateStatus(ctx, o.ID, model.OrderStatusCreated, model.OrderStatusProcessing); err != nil {
		return o, fmt.Errorf("advance to processing: %w", err)
	}
	o.Status = model.OrderStatusProcessing

	// Claim the one-way flag before completing. Two concurrent
	// checkouts both pass the cached-profile gate; the guarded UPDATE
	// picks exactly one winner, and the loser's order never completes.
	if err := ck.Profiles.MarkPrasadOrdered(ctx, buyer.UserID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return o, ErrAlreadyOrdered
		}
		return o, fmt.Errorf("mark prasad ordered: %w", err)
	}

	ck.wait(ctx)
	if err := ck.Orders.UpdateStatus(ctx, o.ID, model.OrderStatusProcessing, model.OrderStatusCompleted); err != nil {
		return o, fmt.Errorf("advance to completed: %w", err)
	}
	o.Status = model.OrderStatusCompleted

	if ck.Notifier != nil {
		go func(o model.Order, items []model.OrderItem) {
			nctx, cancel := context.WithTimeout(context.Background(), ck.NotifyTimeout)
			defer cancel()
			if err := ck.Notifier.OrderCompleted(nctx, o, items); err != nil {
				log.Printf("order: receipt notification failed for %s: %v", o.ID, err)
			}
		}(o, items)
	}
	return o, nil
}

func (ck *Checkout) wait(ctx context.Context) {
	if ck.StepDelay <= 0 {
		return
	}
	select {
	case <-time.After(ck.StepDelay):
	case <-ctx.Done():
	}
}
