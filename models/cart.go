package models

import "sort"

// Cart maps a product id to the desired quantity. A key is present only
// while its quantity is positive.
type Cart map[int]int

// ProductIDs returns the cart keys in ascending order.
func (c Cart) ProductIDs() []int {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Units returns the total number of units across all entries.
func (c Cart) Units() int {
	total := 0
	for _, qty := range c {
		total += qty
	}
	return total
}

// CartView is the priced cart shown to the shopper.
type CartView struct {
	Items      []OrderLineItem `json:"items"`
	TotalValue float64         `json:"total_value"`
	Units      int             `json:"units"`
}

// AddCartItemRequest is the body of POST /cart/items.
type AddCartItemRequest struct {
	ProductID *int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity"`
}
