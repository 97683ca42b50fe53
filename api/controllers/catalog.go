package controllers

import (
	"net/http"

	"github.com/storefrontlab/storefront-backend/api/middleware"
	"github.com/storefrontlab/storefront-backend/api/responses"
	catalogsvc "github.com/storefrontlab/storefront-backend/internal/catalog"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
)

func viewerID(r *http.Request) *int64 {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == 0 {
		return nil
	}
	return &userID
}

// CatalogList returns all products, annotated with the viewer's cart rows
// when the request carries a valid token.
func CatalogList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.Build(r.Context(), viewerID(r), nil)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entries)
	}
}

// CatalogGet returns a single annotated product.
func CatalogGet(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := pathID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Get(r.Context(), viewerID(r), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}
