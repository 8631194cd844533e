package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

// SubmitOutcome tags which branch of the submit race won.
type SubmitOutcome string

const (
	// SubmitCompleted means the write finished (successfully or not) before the ceiling.
	SubmitCompleted SubmitOutcome = "completed"
	// SubmitTimedOut means the ceiling elapsed first; the write keeps running.
	SubmitTimedOut SubmitOutcome = "timed_out"
)

// SubmitResult reports how the race ended. Err is informational only: it
// carries the write error when the write completed with one.
type SubmitResult struct {
	Outcome SubmitOutcome
	Err     error
}

// CartClearer is the part of the cart store the submitter needs.
type CartClearer interface {
	Clear(ctx context.Context) error
}

type OrderSubmitterConfig struct {
	URL          string
	Ceiling      time.Duration
	WriteTimeout time.Duration
}

// OrderSubmitter posts orders without letting checkout block on the
// order-intake endpoint.
type OrderSubmitter struct {
	cfg        OrderSubmitterConfig
	httpClient *http.Client
	cart       CartClearer
	logger     *zap.Logger
}

func NewOrderSubmitter(cfg OrderSubmitterConfig, httpClient *http.Client, cart CartClearer, logger *zap.Logger) *OrderSubmitter {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &OrderSubmitter{
		cfg:        cfg,
		httpClient: httpClient,
		cart:       cart,
		logger:     logger,
	}
}

// Submit races the order write against the ceiling and then clears the
// cart, whichever branch won. A write still in flight when the ceiling hits
// is not cancelled and its outcome is only logged.
func (s *OrderSubmitter) Submit(ctx context.Context, payload models.OrderPayload) SubmitResult {
	done := make(chan error, 1)

	// The write outlives the caller's cancellation; only WriteTimeout aborts it.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	go func() {
		defer cancel()
		err := s.post(writeCtx, payload)
		if err != nil {
			s.logger.Warn("Order write failed",
				zap.String("reference", payload.Reference),
				zap.Error(err),
			)
		} else {
			s.logger.Info("Order write delivered", zap.String("reference", payload.Reference))
		}
		done <- err
	}()

	ceiling := time.NewTimer(s.cfg.Ceiling)
	defer ceiling.Stop()

	var result SubmitResult
	select {
	case err := <-done:
		result = SubmitResult{Outcome: SubmitCompleted, Err: err}
	case <-ceiling.C:
		result = SubmitResult{Outcome: SubmitTimedOut}
		s.logger.Info("Order write still pending at ceiling, continuing checkout",
			zap.String("reference", payload.Reference),
			zap.Duration("ceiling", s.cfg.Ceiling),
		)
	}

	// Clearing does not depend on the delivery outcome.
	if err := s.cart.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error("Failed to clear cart after checkout",
			zap.String("reference", payload.Reference),
			zap.Error(err),
		)
	}

	return result
}

func (s *OrderSubmitter) post(ctx context.Context, payload models.OrderPayload) error {
	body, err := json.Marshal(payload.Intake())
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Idempotency-Key", payload.Reference)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	// Status is logged but not relied upon: the endpoint may answer with an
	// opaque redirect.
	if resp.StatusCode >= 400 {
		return fmt.Errorf("order endpoint returned %d", resp.StatusCode)
	}
	return nil
}
