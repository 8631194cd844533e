package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

var (
	orderTimestampKeys = []string{"timestamp", "fecha"}
	orderNameKeys      = []string{"nombre", "name"}
	orderPhoneKeys     = []string{"telefono", "phone"}
	orderCityKeys      = []string{"ciudad", "city"}
	orderAddressKeys   = []string{"direccion", "address"}
	orderNotesKeys     = []string{"otros_datos", "otros", "notes"}
	orderSummaryKeys   = []string{"productos", "products_summary"}
	orderTotalKeys     = []string{"valor_total", "total_value"}
	orderStatusKeys    = []string{"estado", "status"}
)

// OrderLister reads back the orders recorded by the intake endpoint.
type OrderLister struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewOrderLister(url string, httpClient *http.Client, logger *zap.Logger) *OrderLister {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OrderLister{url: url, httpClient: httpClient, logger: logger}
}

// List fetches every order and splits them into pending and fulfilled.
func (l *OrderLister) List(ctx context.Context) (pending, fulfilled []models.OrderRecord, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("orders request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, nil, fmt.Errorf("orders body read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, fmt.Errorf("orders endpoint returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	rows, err := decodeDataEnvelope(body)
	if err != nil {
		return nil, nil, err
	}

	pending = []models.OrderRecord{}
	fulfilled = []models.OrderRecord{}
	for i, row := range rows {
		rec, ok := row.(map[string]any)
		if !ok {
			continue
		}
		order := NormalizeOrder(rec, i+1)
		if order.Status == models.OrderStatusFulfilled {
			fulfilled = append(fulfilled, order)
		} else {
			pending = append(pending, order)
		}
	}

	l.logger.Info("Orders listed",
		zap.Int("pending", len(pending)),
		zap.Int("fulfilled", len(fulfilled)),
	)
	return pending, fulfilled, nil
}

// NormalizeOrder maps a raw order record. The id falls back to the 1-based
// position and an unreadable total to 0.
func NormalizeOrder(rec map[string]any, position int) models.OrderRecord {
	id, ok := intValue(firstPresent(rec, idKeys))
	if !ok || id == 0 {
		id = position
	}

	total, err := parsePrice(firstPresent(rec, orderTotalKeys))
	if err != nil {
		total = 0
	}

	return models.OrderRecord{
		ID:              id,
		Timestamp:       stringField(rec, orderTimestampKeys),
		Name:            stringField(rec, orderNameKeys),
		Phone:           stringField(rec, orderPhoneKeys),
		City:            stringField(rec, orderCityKeys),
		Address:         stringField(rec, orderAddressKeys),
		Notes:           stringField(rec, orderNotesKeys),
		ProductsSummary: stringField(rec, orderSummaryKeys),
		TotalValue:      total,
		Status:          orderStatus(stringField(rec, orderStatusKeys)),
	}
}

func orderStatus(raw string) models.OrderStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "fulfilled", "atendido":
		return models.OrderStatusFulfilled
	default:
		return models.OrderStatusPending
	}
}
