package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/storefrontlab/storefront-backend/internal/store"
	"github.com/storefrontlab/storefront-backend/pkg/db/models"
)

type rowKey struct {
	userID    int64
	productID int64
}

// Store is the in-process fallback row store. It mirrors the relational row
// shape and enforces the same invariants as the backing store (one row per
// user/product pair, positive quantities, id+owner scoping); only durability
// differs, contents are lost when the process exits.
type Store struct {
	mu            sync.RWMutex
	rows          map[int64]models.CartRow
	byUserProduct map[rowKey]int64
	products      map[int64]models.Product
	nextRowID     int64

	upsertKeys keyedMutex
}

// New builds a fallback store seeded with the given product catalog.
func New(products []models.Product) *Store {
	s := &Store{
		rows:          make(map[int64]models.CartRow),
		byUserProduct: make(map[rowKey]int64),
		products:      make(map[int64]models.Product, len(products)),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

// UpsertRow serializes concurrent adds per (userID, productID) key, replacing
// the backing store's unique-index upsert with a keyed mutex.
func (s *Store) UpsertRow(ctx context.Context, userID, productID int64, quantity int) (models.CartRow, error) {
	if quantity <= 0 {
		return models.CartRow{}, store.ErrNonPositiveQuantity
	}

	unlock := s.upsertKeys.lock(rowKey{userID: userID, productID: productID})
	defer unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := rowKey{userID: userID, productID: productID}
	if id, ok := s.byUserProduct[key]; ok {
		row := s.rows[id]
		row.Quantity += quantity
		s.rows[id] = row
		return row, nil
	}

	s.nextRowID++
	row := models.CartRow{
		ID:        s.nextRowID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	s.rows[row.ID] = row
	s.byUserProduct[key] = row.ID
	return row, nil
}

func (s *Store) UpdateQuantity(ctx context.Context, userID, rowID int64, quantity int) (int64, error) {
	if quantity <= 0 {
		return 0, store.ErrNonPositiveQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[rowID]
	if !ok || row.UserID != userID {
		return 0, nil
	}
	row.Quantity = quantity
	s.rows[rowID] = row
	return 1, nil
}

func (s *Store) DeleteRow(ctx context.Context, userID, rowID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[rowID]
	if !ok || row.UserID != userID {
		return 0, nil
	}
	delete(s.rows, rowID)
	delete(s.byUserProduct, rowKey{userID: row.UserID, productID: row.ProductID})
	return 1, nil
}

func (s *Store) RowsByUser(ctx context.Context, userID int64) ([]models.CartRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]models.CartRow, 0)
	for _, row := range s.rows {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (s *Store) RowsWithProducts(ctx context.Context, userID int64) ([]store.CartProductRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	joined := make([]store.CartProductRow, 0)
	for _, row := range s.rows {
		if row.UserID != userID {
			continue
		}
		product, ok := s.products[row.ProductID]
		if !ok {
			// Inner-join semantics, matching the backing store's cart query.
			continue
		}
		joined = append(joined, store.CartProductRow{
			RowID:     row.ID,
			UserID:    row.UserID,
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			Name:      product.Name,
			Price:     product.Price,
			Category:  product.Category,
			ImageURL:  product.ImageURL,
		})
	}
	sort.Slice(joined, func(i, j int) bool { return joined[i].RowID < joined[j].RowID })
	return joined, nil
}

func (s *Store) ProductByID(ctx context.Context, productID int64) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[productID]
	if !ok {
		return models.Product{}, store.ErrNotFound
	}
	return product, nil
}

func (s *Store) Products(ctx context.Context, productID *int64) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if productID != nil {
		if product, ok := s.products[*productID]; ok {
			return []models.Product{product}, nil
		}
		return []models.Product{}, nil
	}

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// Ping never fails: the fallback store lives in-process.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

var _ store.Store = (*Store)(nil)

// keyedMutex hands out one mutex per key so upserts on distinct
// (user, product) pairs never contend with each other.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[rowKey]*sync.Mutex
}

func (k *keyedMutex) lock(key rowKey) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[rowKey]*sync.Mutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
