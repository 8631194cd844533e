package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/logger"
	"github.com/yashrajoria/E-Commerce-backend/storefront/middleware"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
)

// OrderSource lists recorded orders.
type OrderSource interface {
	List(ctx context.Context) (pending, fulfilled []models.OrderRecord, err error)
}

type OrderController struct {
	orders OrderSource
	logger *zap.Logger
}

func NewOrderController(orders OrderSource, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, logger: logger}
}

// ListOrders returns recorded orders split by status.
func (oc *OrderController) ListOrders(c *gin.Context) {
	pending, fulfilled, err := oc.orders.List(c.Request.Context())
	if err != nil {
		logger.Error(c, "Order listing failed", err)
		_ = c.Error(apperrors.Wrap(apperrors.ErrBadGateway, err))
		return
	}

	if user, err := middleware.GetUser(c); err == nil {
		oc.logger.Info("Orders viewed", zap.String("username", user.Username))
	}

	c.JSON(http.StatusOK, gin.H{
		"pending":         pending,
		"fulfilled":       fulfilled,
		"pending_count":   len(pending),
		"fulfilled_count": len(fulfilled),
	})
}
