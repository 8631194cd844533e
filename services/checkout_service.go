package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/database"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCheckoutInProgress = errors.New("checkout already in progress")
)

// CartReader is the read side of the cart store.
type CartReader interface {
	Get(ctx context.Context) models.Cart
}

// ProductSource provides the current catalog.
type ProductSource interface {
	Products() []models.Product
}

// OrderSubmission is the non-blocking order write.
type OrderSubmission interface {
	Submit(ctx context.Context, payload models.OrderPayload) SubmitResult
}

// CheckoutResult is what a finished checkout reports back to the caller.
type CheckoutResult struct {
	Payload models.OrderPayload
	Submit  SubmitResult
}

// CheckoutService drives a checkout click: Idle -> Submitting -> (cart
// cleared) -> Idle. Only one submission per session may be in flight.
type CheckoutService struct {
	cart      CartReader
	catalog   ProductSource
	assembler *OrderAssembler
	submitter OrderSubmission
	logger    *zap.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCheckoutService(cart CartReader, catalog ProductSource, assembler *OrderAssembler, submitter OrderSubmission, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		cart:      cart,
		catalog:   catalog,
		assembler: assembler,
		submitter: submitter,
		logger:    logger,
		inFlight:  make(map[string]struct{}),
	}
}

// Checkout assembles the order from the current cart and catalog and submits
// it. It returns ErrCheckoutInProgress without doing anything if another
// checkout for the same session has not finished yet.
func (s *CheckoutService) Checkout(ctx context.Context, form models.CustomerForm) (*CheckoutResult, error) {
	session := database.SessionID(ctx)
	if !s.begin(session) {
		return nil, ErrCheckoutInProgress
	}
	defer s.finish(session)

	cart := s.cart.Get(ctx)
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	payload := s.assembler.Build(cart, s.catalog.Products(), form)
	s.logger.Info("Submitting order",
		zap.String("reference", payload.Reference),
		zap.Int("items", len(payload.Items)),
		zap.Float64("total_value", payload.TotalValue),
	)

	result := s.submitter.Submit(ctx, payload)
	s.logger.Info("Checkout finished",
		zap.String("reference", payload.Reference),
		zap.String("outcome", string(result.Outcome)),
	)

	return &CheckoutResult{Payload: payload, Submit: result}, nil
}

// Submitting reports whether a checkout for the session in ctx is in flight.
func (s *CheckoutService) Submitting(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[database.SessionID(ctx)]
	return ok
}

func (s *CheckoutService) begin(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[session]; busy {
		return false
	}
	s.inFlight[session] = struct{}{}
	return true
}

func (s *CheckoutService) finish(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, session)
}
