package models

// Product is a normalized catalog entry. It only lives for the lifetime of
// one catalog load.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price"`
	ImageRef    string  `json:"image_ref"`
	Category    string  `json:"category"`
}

// UncategorizedLabel groups products that carry no category.
const UncategorizedLabel = "Uncategorized"

// CategoryGroup is a set of products sharing a category, used by the
// grouped catalog listing.
type CategoryGroup struct {
	Category string    `json:"category"`
	Products []Product `json:"products"`
}
