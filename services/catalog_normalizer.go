package services

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

// Raw catalog records arrive from a spreadsheet-backed endpoint with
// loosely typed fields under several spellings; the first present key wins.
var (
	idKeys          = []string{"IdProducto", "id", "Id", "ID"}
	nameKeys        = []string{"Nombre", "nombre", "name", "Name"}
	descriptionKeys = []string{"Descripción", "Descripcion", "descripción", "descripcion", "description", "Description"}
	priceKeys       = []string{"Precio", "precio", "price", "Price"}
	imageKeys       = []string{"Imagen", "imagen", "image", "Image"}
	categoryKeys    = []string{"Categoria", "Categoría", "categoria", "category", "Category"}
)

// NormalizeProducts turns raw catalog records into products. Records that
// are not objects, have no name, or carry an unusable price are dropped.
func NormalizeProducts(rows []any) []models.Product {
	products := make([]models.Product, 0, len(rows))
	for idx, row := range rows {
		rec, ok := row.(map[string]any)
		if !ok {
			continue
		}
		if p, ok := NormalizeProduct(rec, idx+1); ok {
			products = append(products, p)
		}
	}
	return products
}

// NormalizeProduct converts one raw record; position is its 1-based index,
// used as the id when the record has no numeric id.
func NormalizeProduct(rec map[string]any, position int) (models.Product, bool) {
	name := strings.TrimSpace(stringField(rec, nameKeys))
	if name == "" {
		return models.Product{}, false
	}

	price, err := parsePrice(firstPresent(rec, priceKeys))
	if err != nil {
		return models.Product{}, false
	}

	id, ok := intValue(firstPresent(rec, idKeys))
	if !ok {
		id = position
	}

	return models.Product{
		ID:          id,
		Name:        name,
		Description: stringField(rec, descriptionKeys),
		UnitPrice:   price,
		ImageRef:    strings.TrimSpace(stringField(rec, imageKeys)),
		Category:    strings.TrimSpace(stringField(rec, categoryKeys)),
	}, true
}

// GroupByCategory buckets products by category, categories sorted by name.
func GroupByCategory(products []models.Product) []models.CategoryGroup {
	index := map[string]int{}
	var groups []models.CategoryGroup
	for _, p := range products {
		cat := p.Category
		if cat == "" {
			cat = models.UncategorizedLabel
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, models.CategoryGroup{Category: cat})
		}
		groups[i].Products = append(groups[i].Products, p)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Category < groups[j].Category })
	return groups
}

// parsePrice accepts JSON numbers as-is and cleans price strings written
// with thousands dots and decimal commas ("1.234,50"). An absent or empty
// price is zero.
func parsePrice(v any) (float64, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return checkPrice(val)
	case string:
		return parsePriceString(val)
	case bool:
		return 0, fmt.Errorf("price %v is not a number", val)
	default:
		return parsePriceString(fmt.Sprint(val))
	}
}

func parsePriceString(raw string) (float64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	cleaned := CleanPriceString(raw)
	if cleaned == "" {
		return 0, fmt.Errorf("price %q is not a number", raw)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a number: %w", raw, err)
	}
	return checkPrice(d.InexactFloat64())
}

func checkPrice(p float64) (float64, error) {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("price %v is not finite", p)
	}
	if p < 0 {
		return 0, fmt.Errorf("price %v is negative", p)
	}
	return p, nil
}

// CleanPriceString keeps digits, '.', ',' and '-', strips dots used as
// thousands separators and turns the first comma into the decimal point.
func CleanPriceString(raw string) string {
	var kept []byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if isDigit(c) || c == '.' || c == ',' || c == '-' {
			kept = append(kept, c)
		}
	}

	var b strings.Builder
	for i := 0; i < len(kept); i++ {
		if kept[i] == '.' && isThousandsDot(kept, i) {
			continue
		}
		b.WriteByte(kept[i])
	}

	return strings.Replace(b.String(), ",", ".", 1)
}

// isThousandsDot reports whether the dot at i is followed by exactly three
// digits and then a non-digit or the end of the string.
func isThousandsDot(s []byte, i int) bool {
	for k := 1; k <= 3; k++ {
		if i+k >= len(s) || !isDigit(s[i+k]) {
			return false
		}
	}
	return i+4 >= len(s) || !isDigit(s[i+4])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func firstPresent(rec map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func stringField(rec map[string]any, keys []string) string {
	switch v := firstPresent(rec, keys).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func intValue(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) || val != math.Trunc(val) {
			return 0, false
		}
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
