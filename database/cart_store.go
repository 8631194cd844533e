package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	"go.uber.org/zap"
)

// ErrInvalidQuantity is returned when a cart mutation is asked to add a
// non-positive quantity.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// CartStore owns the quantity-keyed carts, one per client session, each
// persisted under SessionKey(ctx, key). Every mutation writes through before
// returning.
type CartStore struct {
	kv     KVStore
	key    string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewCartStore(kv KVStore, key string, logger *zap.Logger) *CartStore {
	return &CartStore{
		kv:     kv,
		key:    key,
		logger: logger,
	}
}

// Get returns the current cart. A missing, corrupt or unreadable value
// yields an empty cart.
func (s *CartStore) Get(ctx context.Context) models.Cart {
	cart, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("Failed to read cart, returning empty cart", zap.String("key", SessionKey(ctx, s.key)), zap.Error(err))
		return models.Cart{}
	}
	return cart
}

// Add increments the quantity of productID, creating the entry if needed.
func (s *CartStore) Add(ctx context.Context, productID, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("add %d of product %d: %w", quantity, productID, ErrInvalidQuantity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.read(ctx)
	if err != nil {
		return err
	}
	cart[productID] += quantity
	return s.write(ctx, cart)
}

// AddOne adds a single unit of productID.
func (s *CartStore) AddOne(ctx context.Context, productID int) error {
	return s.Add(ctx, productID, 1)
}

// RemoveOne decrements productID by one unit and drops the entry when it
// reaches zero. Absent products are left alone.
func (s *CartStore) RemoveOne(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.read(ctx)
	if err != nil {
		return err
	}
	qty, ok := cart[productID]
	if !ok {
		return nil
	}
	if qty-1 <= 0 {
		delete(cart, productID)
	} else {
		cart[productID] = qty - 1
	}
	return s.write(ctx, cart)
}

// RemoveAll drops productID from the cart regardless of its quantity.
func (s *CartStore) RemoveAll(ctx context.Context, productID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.read(ctx)
	if err != nil {
		return err
	}
	if _, ok := cart[productID]; !ok {
		return nil
	}
	delete(cart, productID)
	return s.write(ctx, cart)
}

// Clear replaces the stored cart with an empty one.
func (s *CartStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, models.Cart{})
}

// read only fails when the store itself fails; an undecodable value is
// treated as an empty cart.
func (s *CartStore) read(ctx context.Context) (models.Cart, error) {
	key := SessionKey(ctx, s.key)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if !ok || raw == "" {
		return models.Cart{}, nil
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil || cart == nil {
		s.logger.Warn("Discarding corrupt cart value", zap.String("key", key), zap.Error(err))
		return models.Cart{}, nil
	}
	for id, qty := range cart {
		if qty <= 0 {
			delete(cart, id)
		}
	}
	return cart, nil
}

func (s *CartStore) write(ctx context.Context, cart models.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	if err := s.kv.Set(ctx, SessionKey(ctx, s.key), string(data)); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}
