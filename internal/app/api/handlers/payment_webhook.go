package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	nh "github.com/amarajasa/weddingpay/internal/app/service/notification_handler"
	"github.com/amarajasa/weddingpay/internal/platform/midtrans"
	"github.com/amarajasa/weddingpay/pkg/logctx"
)

// @Summary      Midtrans Webhook
// @Description  Handles asynchronous Midtrans transaction notifications. The gateway redelivers on any non-2xx answer.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body midtrans.Notification true "Midtrans notification body"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/payment/webhook/midtrans [post]
// ApiMidtransWebhook handles Midtrans payment notifications
func ApiMidtransWebhook(h *nh.NotificationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, h.Logger)

		var n midtrans.Notification
		if err := c.ShouldBindJSON(&n); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed notification body"})
			return
		}
		log.Infow("webhook_midtrans_received", "order_id", n.OrderID, "transaction_status", n.TransactionStatus)

		err := h.HandleNotification(c.Request.Context(), &n)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		case errors.Is(err, nh.ErrInvalidSignature):
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid signature"})
		case errors.Is(err, nh.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		default:
			log.Errorw("webhook_midtrans_handle_error", "order_id", n.OrderID, "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment"})
		}
	}
}
