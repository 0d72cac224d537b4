package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	nh "github.com/amarajasa/weddingpay/internal/app/service/notification_handler"
	notificationlog "github.com/amarajasa/weddingpay/internal/app/service/notification_log"
	"github.com/amarajasa/weddingpay/internal/platform/midtrans"
	"github.com/amarajasa/weddingpay/pkg/config"
	"github.com/amarajasa/weddingpay/pkg/metrics"
)

const webhookTestServerKey = "SB-Mid-server-test"

func newWebhookRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	open := func() (*gorm.DB, sqlmock.Sqlmock) {
		conn, mock, err := sqlmock.New()
		require.NoError(t, err)
		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, PreferSimpleProtocol: true}), &gorm.Config{
			SkipDefaultTransaction: true,
			Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		})
		require.NoError(t, err)
		return gdb, mock
	}

	gdb, mock := open()
	logDB, _ := open()

	cfg := &config.Config{Midtrans: config.MidtransConfig{ServerKey: webhookTestServerKey}}
	handler := nh.NewNotificationHandler(cfg, gdb, notificationlog.New(logDB, zap.NewNop().Sugar()), metrics.New(), zap.NewNop().Sugar())

	r := gin.New()
	r.POST("/api/v1/payment/webhook/midtrans", ApiMidtransWebhook(handler))
	return r, mock
}

func webhookBody(t *testing.T, sign bool) []byte {
	t.Helper()
	n := midtrans.Notification{
		OrderID:           "WO-abcd1234-1700000000000",
		TransactionID:     "mt-txn-1",
		TransactionStatus: midtrans.TransactionStatusSettlement,
		FraudStatus:       midtrans.FraudStatusAccept,
		PaymentType:       "gopay",
		GrossAmount:       "5000000.00",
		StatusCode:        "200",
		SignatureKey:      "bogus",
	}
	if sign {
		n.SignatureKey = midtrans.Signature(n.OrderID, n.StatusCode, n.GrossAmount, webhookTestServerKey)
	}
	body, err := json.Marshal(n)
	require.NoError(t, err)
	return body
}

func postWebhook(r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payment/webhook/midtrans", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiMidtransWebhook_OK(t *testing.T) {
	r, mock := newWebhookRouter(t)
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE midtrans_order_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "type", "status", "midtrans_order_id"}).
			AddRow("p1", int64(5000000), "dp", "pending", "WO-abcd1234-1700000000000"))
	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postWebhook(r, webhookBody(t, true))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestApiMidtransWebhook_BadSignatureAnswers403(t *testing.T) {
	r, _ := newWebhookRouter(t)
	w := postWebhook(r, webhookBody(t, false))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestApiMidtransWebhook_UnknownOrderAnswers404(t *testing.T) {
	r, mock := newWebhookRouter(t)
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE midtrans_order_id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	w := postWebhook(r, webhookBody(t, true))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestApiMidtransWebhook_PersistenceFailureAnswers500(t *testing.T) {
	r, mock := newWebhookRouter(t)
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE midtrans_order_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "amount", "type", "status", "midtrans_order_id"}).
			AddRow("p1", int64(5000000), "dp", "pending", "WO-abcd1234-1700000000000"))
	mock.ExpectExec(`UPDATE "payments" SET`).
		WillReturnError(gorm.ErrInvalidTransaction)

	// Non-2xx makes the gateway redeliver later.
	w := postWebhook(r, webhookBody(t, true))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestApiMidtransWebhook_MalformedBodyAnswers400(t *testing.T) {
	r, _ := newWebhookRouter(t)
	w := postWebhook(r, []byte(`{not json`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}
