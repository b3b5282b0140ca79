package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/autoparts-storefront/pkg/logger"
)

// CartSessionHeader carries the shopper's cart session between requests.
const CartSessionHeader = "X-Cart-Session"

const maxCartSessionLen = 64

// CartSession resolves the shopper session from the request, minting one when the
// client has none, and echoes it back so the client can keep using it.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if sessionID == "" || len(sessionID) > maxCartSessionLen {
				sessionID = uuid.NewString()
			}

			w.Header().Set(CartSessionHeader, sessionID)

			ctx := logg.WithSessionID(WithCartSession(r.Context(), sessionID), sessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
