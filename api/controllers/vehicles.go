package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/autoparts-storefront/api/responses"
	"github.com/angelmondragon/autoparts-storefront/api/validators"
	"github.com/angelmondragon/autoparts-storefront/internal/catalog"
	"github.com/angelmondragon/autoparts-storefront/internal/vehicles"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

func VehicleMakes() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, vehicles.Makes())
	}
}

func VehicleModels(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		models, err := vehicles.Models(chi.URLParam(r, "make"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, models)
	}
}

func VehicleYears(now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, vehicles.Years(now()))
	}
}

type vehicleSelectionResponse struct {
	Vehicle  vehicles.Selection `json:"vehicle"`
	Products []productView      `json:"products"`
	Count    int                `json:"count"`
}

// SelectVehicle validates a make/model/year choice and returns the parts that fit it.
func SelectVehicle(cat *catalog.Catalog, now func() time.Time, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload vehicles.Selection
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sel, err := vehicles.Validate(payload, now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products := cat.Filter(catalog.FilterState{
			Vehicle: catalog.Vehicle{Make: sel.Make, Model: sel.Model, Year: sel.Year},
		})
		responses.WriteSuccess(w, vehicleSelectionResponse{
			Vehicle:  sel,
			Products: newProductViews(products),
			Count:    len(products),
		})
	}
}
