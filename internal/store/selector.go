package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
	pkgerrors "github.com/storefrontlab/storefront-backend/pkg/errors"
	"github.com/storefrontlab/storefront-backend/pkg/logger"
	"github.com/storefrontlab/storefront-backend/pkg/metrics"
	"go.uber.org/multierr"
)

const (
	ModePrimary  = "primary"
	ModeFallback = "fallback"
)

// Selector multiplexes between the durable primary store and the in-process
// fallback. An availability failure on the primary flips a process-wide sticky
// mode flag and re-issues the same operation against the fallback; data-level
// errors pass through untouched. A background re-probe restores the primary
// once it answers pings again.
type Selector struct {
	primary  Store
	fallback Store
	logg     *logger.Logger
	metrics  *metrics.StoreMetrics
	reprobe  time.Duration

	degraded atomic.Bool
}

// SelectorParams groups the selector dependencies.
type SelectorParams struct {
	Primary  Store
	Fallback Store
	Logger   *logger.Logger
	Metrics  *metrics.StoreMetrics
	// ReprobeInterval of zero disables primary re-probing (sticky fallback).
	ReprobeInterval time.Duration
}

// NewSelector builds a selector. A nil primary starts the process directly in
// fallback mode (the backing store was unreachable at boot).
func NewSelector(params SelectorParams) (*Selector, error) {
	if params.Fallback == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "fallback store is required")
	}
	s := &Selector{
		primary:  params.Primary,
		fallback: params.Fallback,
		logg:     params.Logger,
		metrics:  params.Metrics,
		reprobe:  params.ReprobeInterval,
	}
	if params.Primary == nil {
		s.degraded.Store(true)
		s.metrics.IncTransition(ModeFallback)
		if s.logg != nil {
			ctx := s.logg.WithStoreMode(context.Background(), ModeFallback)
			s.logg.Warn(ctx, "primary store unavailable at boot, starting on fallback")
		}
	}
	return s, nil
}

// Mode reports which store currently serves operations.
func (s *Selector) Mode() string {
	if s.degraded.Load() {
		return ModeFallback
	}
	return ModePrimary
}

// StartReprobe launches the background primary health probe. It returns
// immediately; the probe stops when ctx is cancelled.
func (s *Selector) StartReprobe(ctx context.Context) {
	if s.reprobe <= 0 || s.primary == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(s.reprobe)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if !s.degraded.Load() {
				continue
			}
			backoff := retry.WithMaxRetries(2, retry.NewFibonacci(250*time.Millisecond))
			err := retry.Do(ctx, backoff, func(ctx context.Context) error {
				if err := s.primary.Ping(ctx); err != nil {
					return retry.RetryableError(err)
				}
				return nil
			})
			if err == nil {
				s.restorePrimary(ctx)
			}
		}
	}()
}

func (s *Selector) markDegraded(ctx context.Context, cause error) {
	if !s.degraded.CompareAndSwap(false, true) {
		return
	}
	s.metrics.IncTransition(ModeFallback)
	if s.logg != nil {
		ctx = s.logg.WithStoreMode(ctx, ModeFallback)
		s.logg.Error(ctx, "primary store unavailable, switching to fallback", cause)
	}
}

func (s *Selector) restorePrimary(ctx context.Context) {
	if !s.degraded.CompareAndSwap(true, false) {
		return
	}
	s.metrics.IncTransition(ModePrimary)
	if s.logg != nil {
		ctx = s.logg.WithStoreMode(ctx, ModePrimary)
		s.logg.Info(ctx, "primary store reachable again, restoring")
	}
}

// selectorDo runs one logical operation: against the fallback when degraded,
// otherwise against the primary with a single fallback retry on availability
// failure. Both stores failing surfaces a StoreUnavailable error carrying both
// causes.
func selectorDo[T any](ctx context.Context, s *Selector, op string, fn func(Store) (T, error)) (T, error) {
	if s.degraded.Load() || s.primary == nil {
		out, err := fn(s.fallback)
		if err != nil && IsUnavailable(err) {
			s.metrics.IncOperation(op, ModeFallback, "unavailable")
			return out, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "fallback store failed")
		}
		s.metrics.IncOperation(op, ModeFallback, outcome(err))
		return out, err
	}

	out, err := fn(s.primary)
	if err == nil || !IsUnavailable(err) {
		s.metrics.IncOperation(op, ModePrimary, outcome(err))
		return out, err
	}

	s.markDegraded(ctx, err)

	out, fbErr := fn(s.fallback)
	if fbErr != nil && IsUnavailable(fbErr) {
		s.metrics.IncOperation(op, ModeFallback, "unavailable")
		return out, pkgerrors.Wrap(pkgerrors.CodeUnavailable, multierr.Combine(err, fbErr), "both stores failed")
	}
	s.metrics.IncOperation(op, ModeFallback, outcome(fbErr))
	return out, fbErr
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (s *Selector) UpsertRow(ctx context.Context, userID, productID int64, quantity int) (models.CartRow, error) {
	return selectorDo(ctx, s, "upsert_row", func(st Store) (models.CartRow, error) {
		return st.UpsertRow(ctx, userID, productID, quantity)
	})
}

func (s *Selector) UpdateQuantity(ctx context.Context, userID, rowID int64, quantity int) (int64, error) {
	return selectorDo(ctx, s, "update_quantity", func(st Store) (int64, error) {
		return st.UpdateQuantity(ctx, userID, rowID, quantity)
	})
}

func (s *Selector) DeleteRow(ctx context.Context, userID, rowID int64) (int64, error) {
	return selectorDo(ctx, s, "delete_row", func(st Store) (int64, error) {
		return st.DeleteRow(ctx, userID, rowID)
	})
}

func (s *Selector) RowsByUser(ctx context.Context, userID int64) ([]models.CartRow, error) {
	return selectorDo(ctx, s, "rows_by_user", func(st Store) ([]models.CartRow, error) {
		return st.RowsByUser(ctx, userID)
	})
}

func (s *Selector) RowsWithProducts(ctx context.Context, userID int64) ([]CartProductRow, error) {
	return selectorDo(ctx, s, "rows_with_products", func(st Store) ([]CartProductRow, error) {
		return st.RowsWithProducts(ctx, userID)
	})
}

func (s *Selector) ProductByID(ctx context.Context, productID int64) (models.Product, error) {
	return selectorDo(ctx, s, "product_by_id", func(st Store) (models.Product, error) {
		return st.ProductByID(ctx, productID)
	})
}

func (s *Selector) Products(ctx context.Context, productID *int64) ([]models.Product, error) {
	return selectorDo(ctx, s, "products", func(st Store) ([]models.Product, error) {
		return st.Products(ctx, productID)
	})
}

func (s *Selector) Ping(ctx context.Context) error {
	_, err := selectorDo(ctx, s, "ping", func(st Store) (struct{}, error) {
		return struct{}{}, st.Ping(ctx)
	})
	return err
}

var _ Store = (*Selector)(nil)
