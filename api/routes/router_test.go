package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/storefrontlab/storefront-backend/internal/cart"
	"github.com/storefrontlab/storefront-backend/internal/catalog"
	"github.com/storefrontlab/storefront-backend/internal/store"
	"github.com/storefrontlab/storefront-backend/internal/store/memstore"
	pkgAuth "github.com/storefrontlab/storefront-backend/pkg/auth"
	"github.com/storefrontlab/storefront-backend/pkg/config"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
	"github.com/storefrontlab/storefront-backend/pkg/types"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()

	cfg := &config.Config{
		App:  config.AppConfig{Env: config.AppEnvDev, Port: "8080"},
		Auth: config.AuthConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 60},
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: &bytes.Buffer{}})

	selector, err := store.NewSelector(store.SelectorParams{
		Fallback: memstore.New(memstore.DefaultCatalog()),
		Logger:   logg,
	})
	require.NoError(t, err)

	cartService, err := cart.NewService(selector)
	require.NoError(t, err)
	catalogService, err := catalog.NewService(selector)
	require.NoError(t, err)

	return NewRouter(cfg, logg, selector, cartService, catalogService), cfg
}

func bearerFor(t *testing.T, cfg *config.Config, userID int64) string {
	t.Helper()

	token, err := pkgAuth.MintAccessToken(cfg.Auth, time.Now().UTC(), pkgAuth.AccessTokenPayload{UserID: userID})
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, h http.Handler, method, path, authz string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()

	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	raw, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dest))
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/health/live", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, "/health/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ready map[string]string
	decodeData(t, w, &ready)
	require.Equal(t, store.ModeFallback, ready["store_mode"])
}

func TestCartRequiresAuth(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/cart"},
		{http.MethodPost, "/api/v1/cart"},
		{http.MethodPatch, "/api/v1/cart/1"},
		{http.MethodDelete, "/api/v1/cart/1"},
	} {
		w := doJSON(t, h, tc.method, tc.path, "", nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCatalogAnonymous(t *testing.T) {
	h, _ := newTestRouter(t)

	w := doJSON(t, h, http.MethodGet, "/api/v1/catalog", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []catalog.Entry
	decodeData(t, w, &entries)
	require.Len(t, entries, len(memstore.DefaultCatalog()))
	for _, entry := range entries {
		require.False(t, entry.InCart)
	}
}

func TestCartFlow(t *testing.T) {
	h, cfg := newTestRouter(t)
	authz := bearerFor(t, cfg, 1)

	// empty cart
	w := doJSON(t, h, http.MethodGet, "/api/v1/cart", authz, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []cart.ItemDTO
	decodeData(t, w, &items)
	require.Empty(t, items)

	// add twice merges
	w = doJSON(t, h, http.MethodPost, "/api/v1/cart", authz, map[string]any{"product_id": 1, "quantity": 2})
	require.Equal(t, http.StatusCreated, w.Code)
	var row cart.RowDTO
	decodeData(t, w, &row)
	require.Equal(t, 2, row.Quantity)

	w = doJSON(t, h, http.MethodPost, "/api/v1/cart", authz, map[string]any{"product_id": 1, "quantity": 3})
	require.Equal(t, http.StatusCreated, w.Code)
	var merged cart.RowDTO
	decodeData(t, w, &merged)
	require.Equal(t, row.ID, merged.ID)
	require.Equal(t, 5, merged.Quantity)

	// the catalog now carries the annotation
	w = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/v1/catalog/%d", row.ProductID), authz, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entry catalog.Entry
	decodeData(t, w, &entry)
	require.True(t, entry.InCart)
	require.Equal(t, 5, entry.Quantity)

	// patch to zero deletes the row
	w = doJSON(t, h, http.MethodPatch, fmt.Sprintf("/api/v1/cart/%d", row.ID), authz, map[string]any{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, http.MethodGet, "/api/v1/cart", authz, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, w, &items)
	require.Empty(t, items)
}

func TestCartUnknownProduct(t *testing.T) {
	h, cfg := newTestRouter(t)
	authz := bearerFor(t, cfg, 1)

	w := doJSON(t, h, http.MethodPost, "/api/v1/cart", authz, map[string]any{"product_id": 99999, "quantity": 1})
	require.Equal(t, http.StatusNotFound, w.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	require.Equal(t, "PRODUCT_NOT_FOUND", envelope.Error.Code)
}

func TestCartForeignRowLooksMissing(t *testing.T) {
	h, cfg := newTestRouter(t)
	owner := bearerFor(t, cfg, 1)
	intruder := bearerFor(t, cfg, 2)

	w := doJSON(t, h, http.MethodPost, "/api/v1/cart", owner, map[string]any{"product_id": 1, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	var row cart.RowDTO
	decodeData(t, w, &row)

	w = doJSON(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/cart/%d", row.ID), intruder, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, h, http.MethodPatch, fmt.Sprintf("/api/v1/cart/%d", row.ID), intruder, map[string]any{"quantity": 9})
	require.Equal(t, http.StatusNotFound, w.Code)

	// the owner's row is untouched
	w = doJSON(t, h, http.MethodGet, "/api/v1/cart", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []cart.ItemDTO
	decodeData(t, w, &items)
	require.Len(t, items, 1)
	require.Equal(t, 1, items[0].Quantity)
}

func TestCartValidation(t *testing.T) {
	h, cfg := newTestRouter(t)
	authz := bearerFor(t, cfg, 1)

	w := doJSON(t, h, http.MethodPost, "/api/v1/cart", authz, map[string]any{"product_id": 0, "quantity": 1})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPost, "/api/v1/cart", authz, map[string]any{"product_id": 1, "quantity": -2})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodPatch, "/api/v1/cart/not-a-number", authz, map[string]any{"quantity": 1})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
