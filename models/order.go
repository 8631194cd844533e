package models

// OrderLineItem is one cart entry joined with the catalog.
type OrderLineItem struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// CustomerForm holds the checkout form fields.
type CustomerForm struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Phone   string `json:"phone" form:"phone" validate:"required"`
	City    string `json:"city" form:"city" validate:"required"`
	Address string `json:"address" form:"address" validate:"required"`
	Notes   string `json:"notes" form:"notes"`
}

// OrderPayload is an assembled order. It goes over the wire as IntakeOrder.
type OrderPayload struct {
	Reference       string
	Timestamp       string
	Name            string
	Phone           string
	City            string
	Address         string
	Notes           string
	ProductsSummary string
	TotalValue      float64
	Items           []OrderLineItem
}

// IntakeOrder is the body posted to the order-intake endpoint. The keys are
// the intake sheet's column names, which OrderRecord is read back from.
type IntakeOrder struct {
	Reference  string       `json:"reference"`
	Timestamp  string       `json:"timestamp"`
	Nombre     string       `json:"nombre"`
	Telefono   string       `json:"telefono"`
	Ciudad     string       `json:"ciudad"`
	Direccion  string       `json:"direccion"`
	OtrosDatos string       `json:"otros_datos"`
	Productos  string       `json:"productos"`
	ValorTotal float64      `json:"valor_total"`
	Items      []IntakeLine `json:"items"`
}

type IntakeLine struct {
	ID         int     `json:"id"`
	Nombre     string  `json:"nombre"`
	Cantidad   int     `json:"cantidad"`
	PrecioUnit float64 `json:"precioUnit"`
	Subtotal   float64 `json:"subtotal"`
}

// Intake converts the order to its wire form.
func (p OrderPayload) Intake() IntakeOrder {
	lines := make([]IntakeLine, 0, len(p.Items))
	for _, it := range p.Items {
		lines = append(lines, IntakeLine{
			ID:         it.ProductID,
			Nombre:     it.Name,
			Cantidad:   it.Quantity,
			PrecioUnit: it.UnitPrice,
			Subtotal:   it.Subtotal,
		})
	}
	return IntakeOrder{
		Reference:  p.Reference,
		Timestamp:  p.Timestamp,
		Nombre:     p.Name,
		Telefono:   p.Phone,
		Ciudad:     p.City,
		Direccion:  p.Address,
		OtrosDatos: p.Notes,
		Productos:  p.ProductsSummary,
		ValorTotal: p.TotalValue,
		Items:      lines,
	}
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusFulfilled OrderStatus = "fulfilled"
)

// OrderRecord is an order as listed back from the intake endpoint.
type OrderRecord struct {
	ID              int         `json:"id"`
	Timestamp       string      `json:"timestamp"`
	Name            string      `json:"name"`
	Phone           string      `json:"phone"`
	City            string      `json:"city"`
	Address         string      `json:"address"`
	Notes           string      `json:"notes"`
	ProductsSummary string      `json:"products_summary"`
	TotalValue      float64     `json:"total_value"`
	Status          OrderStatus `json:"status"`
}

// CheckoutResponse is returned by POST /checkout.
type CheckoutResponse struct {
	Outcome    string  `json:"outcome"`
	Reference  string  `json:"reference"`
	TotalValue float64 `json:"total_value"`
	Items      int     `json:"items"`
}
