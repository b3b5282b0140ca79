package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/autoparts-storefront/api/middleware"
	"github.com/angelmondragon/autoparts-storefront/api/responses"
	"github.com/angelmondragon/autoparts-storefront/api/validators"
	"github.com/angelmondragon/autoparts-storefront/internal/cart"
	"github.com/angelmondragon/autoparts-storefront/internal/catalog"
	"github.com/angelmondragon/autoparts-storefront/internal/pricing"
	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

// CartSessions resolves a shopper's cart.
type CartSessions interface {
	Get(ctx context.Context, sessionID string) (*cart.Store, error)
}

type cartLineView struct {
	cart.Line
	PartNumber string          `json:"part_number"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

type cartView struct {
	SessionID string          `json:"session_id"`
	Lines     []cartLineView  `json:"lines"`
	Count     int             `json:"count"`
	Summary   pricing.Summary `json:"summary"`
	Display   pricing.Display `json:"display"`
}

func newCartView(sessionID string, lines []cart.Line, rules pricing.Rules) cartView {
	summary := cart.Summarize(lines, rules)
	views := make([]cartLineView, len(lines))
	for i, l := range lines {
		views[i] = cartLineView{Line: l, PartNumber: l.PartNumber(), LineTotal: l.Total().Round(2)}
	}
	return cartView{
		SessionID: sessionID,
		Lines:     views,
		Count:     summary.ItemCount,
		Summary:   summary,
		Display:   summary.Display(),
	}
}

func sessionStore(r *http.Request, sessions CartSessions) (*cart.Store, error) {
	sessionID := middleware.CartSessionFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}
	return sessions.Get(r.Context(), sessionID)
}

// GetCart returns the session's lines with the priced summary.
func GetCart(sessions CartSessions, rules pricing.Rules, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store.SessionID(), store.Lines(), rules))
	}
}

type addCartItemRequest struct {
	ProductID int  `json:"product_id" validate:"required"`
	Quantity  *int `json:"quantity,omitempty"`
}

// AddCartItem adds a catalog product to the cart. Quantity defaults to one.
func AddCartItem(sessions CartSessions, cat *catalog.Catalog, rules pricing.Rules, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty := 1
		if payload.Quantity != nil {
			qty = *payload.Quantity
		}

		product, err := cat.Get(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !product.InStock {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeStateConflict, "product is out of stock").WithDetails(map[string]any{
				"product_id": product.ID,
			}))
			return
		}

		store, err := sessionStore(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := store.Add(r.Context(), product, qty)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store.SessionID(), lines, rules))
	}
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// UpdateCartItem sets the quantity of a line already in the cart. Unknown products are left alone.
func UpdateCartItem(sessions CartSessions, rules pricing.Rules, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := sessionStore(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := store.UpdateQuantity(r.Context(), productID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store.SessionID(), lines, rules))
	}
}

// RemoveCartItem drops a product's line from the cart if present.
func RemoveCartItem(sessions CartSessions, rules pricing.Rules, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store, err := sessionStore(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := store.Remove(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store.SessionID(), lines, rules))
	}
}

// ClearCart empties the session's cart.
func ClearCart(sessions CartSessions, rules pricing.Rules, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lines, err := store.Clear(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartView(store.SessionID(), lines, rules))
	}
}
