package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

// OrderAssembler joins the cart with the catalog and the checkout form into
// an order payload. It performs no I/O and never fails.
type OrderAssembler struct {
	now    func() time.Time
	newRef func() string
}

func NewOrderAssembler() *OrderAssembler {
	return &OrderAssembler{
		now:    time.Now,
		newRef: func() string { return uuid.NewString() },
	}
}

// Build assembles the payload for one checkout attempt. Cart entries whose
// product is gone from the catalog keep their quantity but are priced at zero.
func (a *OrderAssembler) Build(cart models.Cart, products []models.Product, form models.CustomerForm) models.OrderPayload {
	items, total := PriceCart(cart, products)

	summary := make([]string, 0, len(items))
	for _, it := range items {
		summary = append(summary, fmt.Sprintf("%s (x%d) - %s each", it.Name, it.Quantity, formatMoney(it.UnitPrice)))
	}

	return models.OrderPayload{
		Reference:       a.newRef(),
		Timestamp:       a.now().UTC().Format(time.RFC3339Nano),
		Name:            strings.TrimSpace(form.Name),
		Phone:           strings.TrimSpace(form.Phone),
		City:            strings.TrimSpace(form.City),
		Address:         strings.TrimSpace(form.Address),
		Notes:           strings.TrimSpace(form.Notes),
		ProductsSummary: strings.Join(summary, "; "),
		TotalValue:      total,
		Items:           items,
	}
}

// BuildCartView prices the cart for display.
func BuildCartView(cart models.Cart, products []models.Product) models.CartView {
	items, total := PriceCart(cart, products)
	return models.CartView{
		Items:      items,
		TotalValue: total,
		Units:      cart.Units(),
	}
}

// PriceCart returns one line per cart entry, ordered by product id, and the
// total rounded to two decimals.
func PriceCart(cart models.Cart, products []models.Product) ([]models.OrderLineItem, float64) {
	byID := make(map[int]models.Product, len(products))
	for _, p := range products {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}

	items := make([]models.OrderLineItem, 0, len(cart))
	total := decimal.Zero
	for _, id := range cart.ProductIDs() {
		qty := cart[id]
		p, ok := byID[id]
		if !ok {
			items = append(items, models.OrderLineItem{
				ProductID: id,
				Name:      fmt.Sprintf("id:%d", id),
				Quantity:  qty,
			})
			continue
		}

		subtotal := decimal.NewFromFloat(p.UnitPrice).Mul(decimal.NewFromInt(int64(qty)))
		total = total.Add(subtotal)
		items = append(items, models.OrderLineItem{
			ProductID: id,
			Name:      p.Name,
			Quantity:  qty,
			UnitPrice: p.UnitPrice,
			Subtotal:  subtotal.InexactFloat64(),
		})
	}

	return items, total.Round(2).InexactFloat64()
}

func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
