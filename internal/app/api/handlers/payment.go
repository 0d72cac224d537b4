package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	nh "github.com/amarajasa/weddingpay/internal/app/service/notification_handler"
	"github.com/amarajasa/weddingpay/internal/app/service/transaction"
	"github.com/amarajasa/weddingpay/internal/platform/midtrans"
	"github.com/amarajasa/weddingpay/pkg/config"
	"github.com/amarajasa/weddingpay/pkg/metrics"
)

type paymentConfigResp struct {
	ClientKey    string `json:"client_key"`
	IsProduction bool   `json:"is_production"`
}

// @Summary      Gateway config
// @Description  Returns the public gateway client key and environment for the browser SDK.
// @Tags         Payment
// @Produce      json
// @Success      200  {object}  handlers.paymentConfigResp
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/payment/config [get]
func ApiGetPaymentConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Midtrans.ClientKey == "" {
			// The front end turns this into a disabled checkout state.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "gateway client key is not configured"})
			return
		}
		c.JSON(http.StatusOK, paymentConfigResp{
			ClientKey:    cfg.Midtrans.ClientKey,
			IsProduction: cfg.Midtrans.IsProduction,
		})
	}
}

type createTransactionReq struct {
	PaymentID string `json:"payment_id"`
}

// @Summary      Create gateway transaction
// @Description  Creates a Snap transaction for a payment and returns the checkout token.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body handlers.createTransactionReq true "Payment to open checkout for"
// @Success      200  {object}  transaction.CreateTransactionResult
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]any
// @Router       /api/v1/payment/transaction [post]
func ApiCreateTransaction(mgr transaction.Manager, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTransactionReq
		if err := c.ShouldBindJSON(&req); err != nil || req.PaymentID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "payment_id is required"})
			return
		}

		res, err := mgr.CreateTransaction(c.Request.Context(), &transaction.CreateTransactionRequest{
			PaymentID: req.PaymentID,
			Origin:    c.GetHeader("Origin"),
		})
		if err != nil {
			if errors.Is(err, transaction.ErrPaymentNotFound) {
				m.SnapTransactions.WithLabelValues("not_found").Inc()
				c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
				return
			}
			var apiErr *midtrans.APIError
			if errors.As(err, &apiErr) {
				m.SnapTransactions.WithLabelValues("gateway_error").Inc()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction", "details": apiErr})
				return
			}
			m.SnapTransactions.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		m.SnapTransactions.WithLabelValues("ok").Inc()
		c.JSON(http.StatusOK, res)
	}
}

func RegisterPaymentRoutes(r gin.IRouter, cfg *config.Config, mgr transaction.Manager, notifHandler *nh.NotificationHandler, m *metrics.Metrics) {
	r.GET("/config", ApiGetPaymentConfig(cfg))
	r.POST("/transaction", ApiCreateTransaction(mgr, m))
	r.POST("/webhook/midtrans", ApiMidtransWebhook(notifHandler))
}
