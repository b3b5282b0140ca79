package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/autoparts-storefront/api/responses"
	"github.com/angelmondragon/autoparts-storefront/api/validators"
	"github.com/angelmondragon/autoparts-storefront/internal/newsletter"
	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

const maxEmailLen = 254

type subscribeRequest struct {
	Email string `json:"email"`
}

func NewsletterSubscribe(svc *newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload subscribeRequest
		if err := validators.DecodeJSON(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := svc.Subscribe(r.Context(), validators.SanitizeString(payload.Email, maxEmailLen))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, status)
	}
}

func NewsletterStatus(svc *newsletter.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.Status(chi.URLParam(r, "email"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
