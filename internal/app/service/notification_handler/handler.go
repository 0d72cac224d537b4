package notification_handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	notificationlog "github.com/amarajasa/weddingpay/internal/app/service/notification_log"
	"github.com/amarajasa/weddingpay/internal/models"
	"github.com/amarajasa/weddingpay/internal/platform/midtrans"
	"github.com/amarajasa/weddingpay/pkg/config"
	"github.com/amarajasa/weddingpay/pkg/logctx"
	"github.com/amarajasa/weddingpay/pkg/metrics"
	"github.com/amarajasa/weddingpay/pkg/types"
)

var (
	// ErrInvalidSignature means the notification failed the SHA-512 check.
	// Logged distinctly: it can indicate a spoofed or misconfigured source.
	ErrInvalidSignature = errors.New("invalid notification signature")
	// ErrOrderNotFound is expected noise for superseded order ids; the
	// gateway retries and keeps getting 404, which is acceptable.
	ErrOrderNotFound = errors.New("no payment matches order id")
)

// NotificationHandler reconciles gateway webhook notifications onto payment
// rows. It is stateless per request; idempotency comes from the mapping
// converging to the same row values on redelivery.
type NotificationHandler struct {
	cfg      *config.Config
	db       *gorm.DB
	notifSvc *notificationlog.Service
	metrics  *metrics.Metrics
	Logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewNotificationHandler(cfg *config.Config, db *gorm.DB, notif *notificationlog.Service, m *metrics.Metrics, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{cfg: cfg, db: db, notifSvc: notif, metrics: m, Logger: log, now: time.Now}
}

// MapStatus maps a gateway transaction_status/fraud_status pair to the
// payment status. Unrecognized values return the current status unchanged;
// that fallback keeps unknown gateway states from corrupting the row.
func MapStatus(current types.PaymentStatus, transactionStatus, fraudStatus string) types.PaymentStatus {
	switch transactionStatus {
	case midtrans.TransactionStatusCapture, midtrans.TransactionStatusSettlement:
		if fraudStatus == "" || fraudStatus == midtrans.FraudStatusAccept {
			return types.PaymentStatusPaid
		}
		return current
	case midtrans.TransactionStatusPending:
		return types.PaymentStatusPending
	case midtrans.TransactionStatusDeny, midtrans.TransactionStatusCancel, midtrans.TransactionStatusExpire:
		return types.PaymentStatusOverdue
	default:
		return current
	}
}

// HandleNotification verifies, correlates and applies one notification.
// Errors map to HTTP codes at the handler layer: ErrInvalidSignature -> 403,
// ErrOrderNotFound -> 404, anything else -> 500.
func (h *NotificationHandler) HandleNotification(ctx context.Context, n *midtrans.Notification) (resErr error) {
	log := logctx.FromCtx(ctx, h.Logger)

	var traceID string
	if v, ok := ctx.Value("traceID").(string); ok {
		traceID = v
	}
	dataBytes, _ := json.Marshal(n)

	h.notifSvc.Save(ctx, &models.PaymentNotificationLog{
		OrderID:           n.OrderID,
		TransactionID:     n.TransactionID,
		TransactionStatus: n.TransactionStatus,
		TraceID:           traceID,
		Data:              datatypes.JSON(dataBytes),
		Status:            models.PaymentNotificationLogStatusReceived,
	})

	var outcome string
	defer func() {
		if outcome == "" {
			outcome = "error"
		}
		h.metrics.WebhookNotifications.WithLabelValues(outcome).Inc()

		resMap := map[string]any{"outcome": outcome}
		if resErr != nil {
			resMap["error"] = resErr.Error()
		}
		resBytes, _ := json.Marshal(resMap)
		status := models.PaymentNotificationLogStatusHandled
		if resErr != nil {
			status = models.PaymentNotificationLogStatusHandleFailed
		}
		h.notifSvc.Save(ctx, &models.PaymentNotificationLog{
			OrderID:           n.OrderID,
			TransactionID:     n.TransactionID,
			TransactionStatus: n.TransactionStatus,
			TraceID:           traceID,
			Data:              datatypes.JSON(dataBytes),
			Result:            lo.ToPtr(datatypes.JSON(resBytes)),
			Status:            status,
		})
	}()

	if !n.VerifySignature(h.cfg.Midtrans.ServerKey) {
		outcome = "invalid_signature"
		log.Errorw("webhook_signature_mismatch", "order_id", n.OrderID, "status_code", n.StatusCode)
		return ErrInvalidSignature
	}

	var payment models.Payment
	err := h.db.WithContext(ctx).First(&payment, "midtrans_order_id = ?", n.OrderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			outcome = "unknown_order"
			log.Infow("webhook_order_unmatched", "order_id", n.OrderID)
			return ErrOrderNotFound
		}
		return fmt.Errorf("find payment by order id: %w", err)
	}

	newStatus := MapStatus(payment.Status, n.TransactionStatus, n.FraudStatus)

	var paidDate *time.Time
	if newStatus == types.PaymentStatusPaid {
		paidDate = lo.ToPtr(h.now())
	}

	updates := map[string]any{
		"status":                  newStatus,
		"midtrans_transaction_id": n.TransactionID,
		"payment_method":          n.PaymentType,
		"paid_date":               paidDate,
	}
	if err := h.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("update payment %s: %w", payment.ID, err)
	}

	if newStatus == payment.Status {
		outcome = "retained"
	} else {
		outcome = string(newStatus)
	}
	log.Infow("webhook_payment_reconciled",
		"payment_id", payment.ID,
		"order_id", n.OrderID,
		"transaction_status", n.TransactionStatus,
		"from", payment.Status,
		"to", newStatus,
	)
	return nil
}
