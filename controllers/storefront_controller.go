package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/database"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/logger"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	"github.com/yashrajoria/E-Commerce-backend/storefront/services"
)

// Catalog is what the storefront needs from the catalog loader.
type Catalog interface {
	Load(ctx context.Context) ([]models.Product, error)
	Products() []models.Product
	FindProduct(id int) (models.Product, bool)
}

// Cart is the cart store.
type Cart interface {
	Get(ctx context.Context) models.Cart
	Add(ctx context.Context, productID, quantity int) error
	RemoveOne(ctx context.Context, productID int) error
	RemoveAll(ctx context.Context, productID int) error
	Clear(ctx context.Context) error
}

// Checkout runs one checkout attempt.
type Checkout interface {
	Checkout(ctx context.Context, form models.CustomerForm) (*services.CheckoutResult, error)
}

// NoticeBoard exposes the last user-facing notification, if any.
type NoticeBoard interface {
	Last() string
}

type StorefrontController struct {
	catalog   Catalog
	cart      Cart
	checkout  Checkout
	notices   NoticeBoard
	validator *RequestValidator
	logger    *zap.Logger
}

func NewStorefrontController(catalog Catalog, cart Cart, checkout Checkout, notices NoticeBoard, validator *RequestValidator, logger *zap.Logger) *StorefrontController {
	return &StorefrontController{
		catalog:   catalog,
		cart:      cart,
		checkout:  checkout,
		notices:   notices,
		validator: validator,
		logger:    logger,
	}
}

// Health reports liveness and the size of the loaded catalog.
func (sc *StorefrontController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"products": len(sc.catalog.Products()),
	})
}

// GetProducts lists the current catalog, grouped by category on ?grouped=true.
func (sc *StorefrontController) GetProducts(c *gin.Context) {
	products := sc.catalog.Products()
	resp := gin.H{"count": len(products)}
	if c.Query("grouped") == "true" {
		resp["data"] = services.GroupByCategory(products)
	} else {
		resp["data"] = products
	}
	if len(products) == 0 && sc.notices != nil {
		if notice := sc.notices.Last(); notice != "" {
			resp["notice"] = notice
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ReloadProducts re-runs the catalog loader.
func (sc *StorefrontController) ReloadProducts(c *gin.Context) {
	products, err := sc.catalog.Load(c.Request.Context())
	if err != nil {
		logger.Warn(c, "Catalog reload failed", zap.Error(err))
		_ = c.Error(apperrors.Wrap(apperrors.ErrCatalogUnavailable, err))
		return
	}
	sc.logger.Info("Catalog reloaded", zap.Int("products", len(products)))
	c.JSON(http.StatusOK, gin.H{"data": products, "count": len(products)})
}

// GetCart returns the priced cart.
func (sc *StorefrontController) GetCart(c *gin.Context) {
	sc.respondWithCart(c)
}

// AddItem adds units of a catalog product to the cart.
func (sc *StorefrontController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, "product_id is required"))
		return
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}
	id := *req.ProductID
	if _, ok := sc.catalog.FindProduct(id); !ok {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrNotFound, "Product not found"))
		return
	}

	if err := sc.cart.Add(c.Request.Context(), id, req.Quantity); err != nil {
		sc.cartError(c, "add", err)
		return
	}
	sc.respondWithCart(c)
}

// DecrementItem removes one unit of a product.
func (sc *StorefrontController) DecrementItem(c *gin.Context) {
	id, err := sc.validator.ParseProductID(c)
	if err != nil {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := sc.cart.RemoveOne(c.Request.Context(), id); err != nil {
		sc.cartError(c, "decrement", err)
		return
	}
	sc.respondWithCart(c)
}

// RemoveItem drops a product from the cart.
func (sc *StorefrontController) RemoveItem(c *gin.Context) {
	id, err := sc.validator.ParseProductID(c)
	if err != nil {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	if err := sc.cart.RemoveAll(c.Request.Context(), id); err != nil {
		sc.cartError(c, "remove", err)
		return
	}
	sc.respondWithCart(c)
}

// ClearCart empties the cart.
func (sc *StorefrontController) ClearCart(c *gin.Context) {
	if err := sc.cart.Clear(c.Request.Context()); err != nil {
		sc.cartError(c, "clear", err)
		return
	}
	sc.respondWithCart(c)
}

// Checkout validates the customer form and submits the order.
func (sc *StorefrontController) Checkout(c *gin.Context) {
	form, err := sc.validator.BindCustomerForm(c)
	if err != nil {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrValidation, err.Error()))
		return
	}

	result, err := sc.checkout.Checkout(c.Request.Context(), form)
	switch {
	case errors.Is(err, services.ErrCheckoutInProgress):
		_ = c.Error(apperrors.ErrCheckoutInProgress)
		return
	case errors.Is(err, services.ErrEmptyCart):
		_ = c.Error(apperrors.ErrEmptyCart)
		return
	case err != nil:
		logger.Error(c, "Checkout failed", err)
		_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}

	c.JSON(http.StatusOK, models.CheckoutResponse{
		Outcome:    string(result.Submit.Outcome),
		Reference:  result.Payload.Reference,
		TotalValue: result.Payload.TotalValue,
		Items:      len(result.Payload.Items),
	})
}

func (sc *StorefrontController) respondWithCart(c *gin.Context) {
	cart := sc.cart.Get(c.Request.Context())
	c.JSON(http.StatusOK, services.BuildCartView(cart, sc.catalog.Products()))
}

func (sc *StorefrontController) cartError(c *gin.Context, op string, err error) {
	if errors.Is(err, database.ErrInvalidQuantity) {
		_ = c.Error(apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	logger.Error(c, "Cart update failed", err, zap.String("op", op))
	_ = c.Error(apperrors.Wrap(apperrors.ErrServiceUnavailable, err))
}
