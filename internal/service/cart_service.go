package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tillpoint/internal/domain"
	"tillpoint/internal/money"
	"tillpoint/internal/repository"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidDiscount = errors.New("discount must not be negative")
)

// CartService owns the in-progress carts, one per operator. Carts are plain
// in-process state held by an explicit container injected where needed; only
// invoices and hold sales ever touch the persistence layer.
type CartService interface {
	Add(userID uuid.UUID, product *domain.Product, quantity decimal.Decimal) error
	SetQuantity(userID uuid.UUID, productID uuid.UUID, quantity decimal.Decimal) error
	Remove(userID uuid.UUID, productID uuid.UUID) error
	Clear(userID uuid.UUID)
	SetDiscount(userID uuid.UUID, discount money.Amount) error
	Items(userID uuid.UUID) []domain.CartItem
	Append(userID uuid.UUID, items []domain.CartItem) error
	Totals(userID uuid.UUID) (domain.Totals, error)
}

type cartState struct {
	items    []domain.CartItem
	discount money.Amount
}

type cartService struct {
	mu         sync.Mutex
	carts      map[uuid.UUID]*cartState
	taxRateBps int64
}

// NewCartService creates a cart container computing tax at the given rate in
// basis points (1300 = 13%). The rate is configuration, constant within a
// session, never a per-item property.
func NewCartService(taxRateBps int64) CartService {
	return &cartService{
		carts:      make(map[uuid.UUID]*cartState),
		taxRateBps: taxRateBps,
	}
}

func (s *cartService) cart(userID uuid.UUID) *cartState {
	c, ok := s.carts[userID]
	if !ok {
		c = &cartState{}
		s.carts[userID] = c
	}
	return c
}

// Add merges into an existing line when the product is already in the cart,
// otherwise appends a new line. Stock is advisory and owned by the catalog;
// no stock check happens here.
func (s *cartService) Add(userID uuid.UUID, product *domain.Product, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cart(userID)
	for i := range cart.items {
		if cart.items[i].ProductID == product.ID {
			newQty := cart.items[i].Quantity.Add(quantity)
			total, err := money.MulQuantity(cart.items[i].UnitPrice, newQty)
			if err != nil {
				return fmt.Errorf("failed to price cart item: %w", err)
			}
			cart.items[i].Quantity = newQty
			cart.items[i].TotalPrice = total
			return nil
		}
	}

	total, err := money.MulQuantity(product.Price, quantity)
	if err != nil {
		return fmt.Errorf("failed to price cart item: %w", err)
	}
	cart.items = append(cart.items, domain.CartItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		UnitPrice:   product.Price,
		Quantity:    quantity,
		TotalPrice:  total,
	})
	return nil
}

// SetQuantity sets the absolute quantity of an existing line. A quantity of
// zero removes the line.
func (s *cartService) SetQuantity(userID uuid.UUID, productID uuid.UUID, quantity decimal.Decimal) error {
	if quantity.IsNegative() {
		return ErrInvalidQuantity
	}
	if quantity.IsZero() {
		return s.Remove(userID, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cart(userID)
	for i := range cart.items {
		if cart.items[i].ProductID == productID {
			total, err := money.MulQuantity(cart.items[i].UnitPrice, quantity)
			if err != nil {
				return fmt.Errorf("failed to price cart item: %w", err)
			}
			cart.items[i].Quantity = quantity
			cart.items[i].TotalPrice = total
			return nil
		}
	}
	return repository.ErrProductNotFound
}

// Remove deletes a line. Removing a product that is not in the cart is an
// error, matching SetQuantity; callers that want idempotent removal check
// first.
func (s *cartService) Remove(userID uuid.UUID, productID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cart(userID)
	for i := range cart.items {
		if cart.items[i].ProductID == productID {
			cart.items = append(cart.items[:i], cart.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrProductNotFound
}

// Clear empties the cart unconditionally and drops any discount.
func (s *cartService) Clear(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
}

func (s *cartService) SetDiscount(userID uuid.UUID, discount money.Amount) error {
	if discount < 0 {
		return ErrInvalidDiscount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart(userID).discount = discount
	return nil
}

// Items returns a copy of the cart lines in insertion order.
func (s *cartService) Items(userID uuid.UUID) []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.CloneItems(s.cart(userID).items)
}

// Append adds already-priced lines, merging by product id. Used by hold-sale
// recovery, which resolves products against the catalog before calling this.
func (s *cartService) Append(userID uuid.UUID, items []domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cart(userID)
	for _, item := range items {
		merged := false
		for i := range cart.items {
			if cart.items[i].ProductID == item.ProductID {
				newQty := cart.items[i].Quantity.Add(item.Quantity)
				total, err := money.MulQuantity(cart.items[i].UnitPrice, newQty)
				if err != nil {
					return fmt.Errorf("failed to price cart item: %w", err)
				}
				cart.items[i].Quantity = newQty
				cart.items[i].TotalPrice = total
				merged = true
				break
			}
		}
		if !merged {
			cart.items = append(cart.items, item)
		}
	}
	return nil
}

// Totals derives the cart totals: subtotal is the sum of line totals, tax is
// the configured rate applied to the subtotal rounded half up, and the total
// is subtotal plus tax minus discount. Never stored, always recomputed.
func (s *cartService) Totals(userID uuid.UUID) (domain.Totals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.cart(userID)
	return computeTotals(cart.items, cart.discount, s.taxRateBps)
}

func computeTotals(items []domain.CartItem, discount money.Amount, taxRateBps int64) (domain.Totals, error) {
	var subtotal money.Amount
	for _, item := range items {
		var err error
		subtotal, err = money.Add(subtotal, item.TotalPrice)
		if err != nil {
			return domain.Totals{}, fmt.Errorf("failed to sum cart: %w", err)
		}
	}

	tax, err := money.ApplyRateBps(subtotal, taxRateBps)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("failed to compute tax: %w", err)
	}

	total, err := money.Add(subtotal, tax)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("failed to compute total: %w", err)
	}
	total, err = money.Sub(total, discount)
	if err != nil {
		return domain.Totals{}, fmt.Errorf("failed to apply discount: %w", err)
	}

	return domain.Totals{
		SubtotalWithoutTax: subtotal,
		TaxAmount:          tax,
		DiscountAmount:     discount,
		Total:              total,
	}, nil
}
