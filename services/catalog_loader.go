package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

var (
	// ErrCatalogUnavailable wraps the last attempt's error once the retry
	// budget is spent. An empty catalog returned with it means "no catalog",
	// not "no products".
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrMalformedResponse marks a body that is not a JSON object with a
	// "data" array.
	ErrMalformedResponse = errors.New("malformed response")
)

const (
	catalogMaxAttempts = 2
	maxResponseBody    = 10 << 20
)

type CatalogLoaderConfig struct {
	URL          string
	FetchTimeout time.Duration
	RetryDelay   time.Duration
	MinBusy      time.Duration
}

// CatalogLoader fetches the product list once per load and keeps the
// normalized result as the current catalog.
type CatalogLoader struct {
	cfg        CatalogLoaderConfig
	httpClient *http.Client
	notifier   Notifier
	busy       BusyIndicator
	logger     *zap.Logger

	mu       sync.RWMutex
	products []models.Product
	byID     map[int]models.Product
}

func NewCatalogLoader(cfg CatalogLoaderConfig, httpClient *http.Client, notifier Notifier, busy BusyIndicator, logger *zap.Logger) *CatalogLoader {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &CatalogLoader{
		cfg:        cfg,
		httpClient: httpClient,
		notifier:   notifier,
		busy:       busy,
		logger:     logger,
		byID:       map[int]models.Product{},
	}
}

// Load fetches and normalizes the catalog. The first failed attempt is
// retried once after RetryDelay; a second failure empties the catalog,
// notifies the shopper and is returned. The busy indicator stays up for at
// least MinBusy on every path.
func (l *CatalogLoader) Load(ctx context.Context) ([]models.Product, error) {
	start := time.Now()
	l.busy.Show()

	attempt := 0
	rows, err := backoff.Retry(ctx, func() ([]any, error) {
		attempt++
		return l.fetchOnce(ctx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(l.cfg.RetryDelay)),
		backoff.WithMaxTries(catalogMaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			l.logger.Warn("Catalog fetch failed, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("retry_in", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		l.logger.Error("Catalog load failed", zap.Int("attempts", attempt), zap.Error(err))
		l.setProducts(nil)
		l.finishBusy(ctx, start)
		l.notifier.Notify(ctx, fmt.Sprintf("Products could not be loaded.\n%v", err))
		return []models.Product{}, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	products := NormalizeProducts(rows)
	l.setProducts(products)
	l.logger.Info("Catalog loaded",
		zap.Int("attempts", attempt),
		zap.Int("records", len(rows)),
		zap.Int("products", len(products)),
	)
	l.finishBusy(ctx, start)
	return l.Products(), nil
}

// Products returns a copy of the current catalog.
func (l *CatalogLoader) Products() []models.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Product, len(l.products))
	copy(out, l.products)
	return out
}

// FindProduct looks up a product of the current catalog by id.
func (l *CatalogLoader) FindProduct(id int) (models.Product, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.byID[id]
	return p, ok
}

func (l *CatalogLoader) setProducts(products []models.Product) {
	byID := make(map[int]models.Product, len(products))
	for _, p := range products {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}
	l.mu.Lock()
	l.products = products
	l.byID = byID
	l.mu.Unlock()
}

// finishBusy delays only the "done" signal; the work is already finished.
func (l *CatalogLoader) finishBusy(ctx context.Context, start time.Time) {
	sleepCtx(ctx, l.cfg.MinBusy-time.Since(start))
	l.busy.Hide()
}

func (l *CatalogLoader) fetchOnce(ctx context.Context) ([]any, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, l.cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, l.cfg.URL, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("catalog body read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("catalog endpoint returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	return decodeDataEnvelope(body)
}

// decodeDataEnvelope extracts the "data" array of a {data: [...]} body.
func decodeDataEnvelope(body []byte) ([]any, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: body is not a JSON object: %s", ErrMalformedResponse, truncate(body, 200))
	}
	raw, ok := envelope["data"]
	if !ok {
		return nil, fmt.Errorf("%w: missing \"data\" field", ErrMalformedResponse)
	}
	var rows []any
	if err := json.Unmarshal(raw, &rows); err != nil || rows == nil {
		return nil, fmt.Errorf("%w: \"data\" is not an array", ErrMalformedResponse)
	}
	return rows, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
