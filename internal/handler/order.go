package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Nota0515/bhakti/internal/order"
	"github.com/Nota0515/bhakti/internal/repository"
)

// OrderHandler exposes the prasad catalog and the mock checkout.
type OrderHandler struct {
	Checkout *order.Checkout
	Orders   *repository.OrderRepo
	Mandals  *repository.MandalRepo
	Profiles *repository.ProfileRepo
}

func NewOrderHandler(ck *order.Checkout, o *repository.OrderRepo, m *repository.MandalRepo, p *repository.ProfileRepo) *OrderHandler {
	return &OrderHandler{Checkout: ck, Orders: o, Mandals: m, Profiles: p}
}

// Catalog handles GET /v1/prasad/items (public).
func (h *OrderHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"items":        order.Catalog(),
		"delivery_fee": order.DeliveryFee,
	})
}

type placeOrderReq struct {
	MandalID uint64            `json:"mandal_id"`
	Items    map[string]uint32 `json:"items"` // item id -> quantity
	Delivery bool              `json:"delivery"`
}

// Place handles POST /v1/orders (protected). It rebuilds the cart from
// the request, runs the mock payment flow and returns the completed
// order. A user whose profile already carries the prasad flag is
// rejected before anything is written.
func (h *OrderHandler) Place(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MandalID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "mandal_id required"})
	}

	cart := order.NewCart()
	for id, qty := range req.Items {
		if err := cart.AddN(id, qty); err != nil {
			if errors.Is(err, order.ErrQuantityLimit) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity too large: " + id})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown item: " + id})
		}
	}
	cart.SetDelivery(req.Delivery)
	if cart.Empty() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	profile, err := h.Profiles.GetByUserID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load profile failed"})
	}
	mandal, err := h.Mandals.GetByID(ctx, req.MandalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "mandal not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load mandal failed"})
	}

	o, err := h.Checkout.Place(ctx, profile, mandal, cart)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrAlreadyOrdered):
			return c.JSON(http.StatusConflict, echo.Map{"error": "prasad already ordered"})
		case errors.Is(err, order.ErrEmptyCart):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cart is empty"})
		case errors.Is(err, order.ErrDeliveryUnavailable):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "mandal does not offer delivery"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"order": echo.Map{
			"id":           o.ID,
			"mandal_id":    o.MandalID,
			"subtotal":     o.Subtotal,
			"delivery_fee": o.DeliveryFee,
			"total":        o.Total,
			"payee_upi_id": o.PayeeUpiID,
			"status":       o.Status,
		},
	})
}

// ListMine handles GET /v1/my-orders (protected).
func (h *OrderHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": orders})
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
