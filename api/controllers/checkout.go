package controllers

import (
	"net/http"

	"github.com/angelmondragon/autoparts-storefront/api/responses"
	"github.com/angelmondragon/autoparts-storefront/api/validators"
	"github.com/angelmondragon/autoparts-storefront/internal/checkout"
	pkgerrors "github.com/angelmondragon/autoparts-storefront/pkg/errors"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

// PlaceOrder runs the simulated checkout for the caller's cart and returns the
// confirmation with 201.
func PlaceOrder(sessions CartSessions, svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var form checkout.Form
		if err := validators.DecodeJSON(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := sessionStore(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.PlaceOrder(r.Context(), store, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}
