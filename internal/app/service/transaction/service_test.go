package transaction

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/amarajasa/weddingpay/internal/platform/midtrans"
	"github.com/amarajasa/weddingpay/pkg/config"
)

type stubSnap struct {
	lastReq *midtrans.SnapRequest
	resp    *midtrans.SnapResponse
	err     error
	calls   int
}

func (s *stubSnap) CreateTransaction(_ context.Context, req *midtrans.SnapRequest) (*midtrans.SnapResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn, PreferSimpleProtocol: true}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return gdb, mock
}

func newTestService(t *testing.T, snap *stubSnap, at time.Time) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	gdb, mock := newMockGorm(t)
	return &Service{
		cfg:  &config.Config{},
		log:  zap.NewNop().Sugar(),
		snap: snap,
		db:   gdb,
		now:  func() time.Time { return at },
	}, mock
}

func expectPaymentWithJoins(mock sqlmock.Sqlmock, withVendor bool) {
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1`).
		WithArgs("abcd1234-e5f6-7890-abcd-ef1234567890", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "vendor_id", "amount", "type", "status"}).
			AddRow("abcd1234-e5f6-7890-abcd-ef1234567890", "c1", "v1", int64(5000000), "dp", "pending"))

	mock.ExpectQuery(`SELECT \* FROM "clients"`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone"}).
			AddRow("c1", "Dewi & Bima", "dewi@example.com", "+6281234567890"))

	vendorRows := sqlmock.NewRows([]string{"id", "name", "category"})
	if withVendor {
		vendorRows.AddRow("v1", "Studio Kenangan", "photography")
	}
	mock.ExpectQuery(`SELECT \* FROM "vendors"`).
		WithArgs("v1").
		WillReturnRows(vendorRows)
}

func TestCreateTransaction_BuildsSnapRequestFromPayment(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	snap := &stubSnap{resp: &midtrans.SnapResponse{Token: "tok-1", RedirectURL: "https://redirect"}}
	svc, mock := newTestService(t, snap, at)

	expectPaymentWithJoins(mock, true)
	mock.ExpectExec(`UPDATE "payments" SET "midtrans_order_id"=\$1`).
		WithArgs("WO-abcd1234-1700000000000", sqlmock.AnyArg(), "abcd1234-e5f6-7890-abcd-ef1234567890").
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := svc.CreateTransaction(context.Background(), &CreateTransactionRequest{
		PaymentID: "abcd1234-e5f6-7890-abcd-ef1234567890",
		Origin:    "https://wedding.example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "tok-1", res.SnapToken)
	require.Equal(t, "https://redirect", res.RedirectURL)
	require.Equal(t, "WO-abcd1234-1700000000000", res.OrderID)

	req := snap.lastReq
	require.NotNil(t, req)
	// The gateway validates gross == sum of item lines; both come from Amount.
	require.Equal(t, int64(5000000), req.TransactionDetails.GrossAmount)
	require.Equal(t, req.TransactionDetails.GrossAmount, req.ItemDetails[0].Price)
	require.Equal(t, 1, req.ItemDetails[0].Quantity)
	require.Equal(t, "Studio Kenangan - Down Payment", req.ItemDetails[0].Name)
	require.Equal(t, "Dewi & Bima", req.CustomerDetails.FirstName)
	require.Equal(t, "dewi@example.com", req.CustomerDetails.Email)
	require.Equal(t, "https://wedding.example.com/payment/success", req.Callbacks.Finish)
	require.Equal(t, "https://wedding.example.com/payment/failed", req.Callbacks.Error)
	require.Equal(t, "https://wedding.example.com/payment/pending", req.Callbacks.Pending)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTransaction_ConsecutiveCallsMintDistinctOrderIDs(t *testing.T) {
	snap := &stubSnap{resp: &midtrans.SnapResponse{Token: "tok"}}
	ms := int64(1700000000000)
	gdb, mock := newMockGorm(t)
	svc := &Service{
		cfg: &config.Config{}, log: zap.NewNop().Sugar(), snap: snap, db: gdb,
		now: func() time.Time { ms++; return time.UnixMilli(ms) },
	}

	var orderIDs []string
	for i := 0; i < 2; i++ {
		expectPaymentWithJoins(mock, true)
		mock.ExpectExec(`UPDATE "payments" SET "midtrans_order_id"=\$1`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		res, err := svc.CreateTransaction(context.Background(), &CreateTransactionRequest{
			PaymentID: "abcd1234-e5f6-7890-abcd-ef1234567890",
			Origin:    "https://wedding.example.com",
		})
		require.NoError(t, err)
		orderIDs = append(orderIDs, res.OrderID)
	}
	require.NotEqual(t, orderIDs[0], orderIDs[1])
}

func TestCreateTransaction_PaymentNotFound(t *testing.T) {
	svc, mock := newTestService(t, &stubSnap{}, time.Now())
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1`).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := svc.CreateTransaction(context.Background(), &CreateTransactionRequest{PaymentID: "missing"})
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestCreateTransaction_MissingVendorJoinIsNotFound(t *testing.T) {
	snap := &stubSnap{resp: &midtrans.SnapResponse{Token: "tok"}}
	svc, mock := newTestService(t, snap, time.Now())
	expectPaymentWithJoins(mock, false)

	_, err := svc.CreateTransaction(context.Background(), &CreateTransactionRequest{
		PaymentID: "abcd1234-e5f6-7890-abcd-ef1234567890",
	})
	require.ErrorIs(t, err, ErrPaymentNotFound)
	require.Zero(t, snap.calls)
}

func TestCreateTransaction_OrderIDPersistFailureStillCallsGateway(t *testing.T) {
	snap := &stubSnap{resp: &midtrans.SnapResponse{Token: "tok-2", RedirectURL: "https://redirect"}}
	svc, mock := newTestService(t, snap, time.UnixMilli(1700000000000))

	expectPaymentWithJoins(mock, true)
	mock.ExpectExec(`UPDATE "payments" SET "midtrans_order_id"=\$1`).
		WillReturnError(fmt.Errorf("connection reset"))

	res, err := svc.CreateTransaction(context.Background(), &CreateTransactionRequest{
		PaymentID: "abcd1234-e5f6-7890-abcd-ef1234567890",
		Origin:    "https://wedding.example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "tok-2", res.SnapToken)
	require.Equal(t, 1, snap.calls)
}

func TestCreateTransaction_GatewayErrorPropagates(t *testing.T) {
	apiErr := &midtrans.APIError{StatusCode: 401, ErrorMessages: []string{"unauthorized"}}
	svc, mock := newTestService(t, &stubSnap{err: apiErr}, time.Now())

	expectPaymentWithJoins(mock, true)
	mock.ExpectExec(`UPDATE "payments" SET "midtrans_order_id"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := svc.CreateTransaction(context.Background(), &CreateTransactionRequest{
		PaymentID: "abcd1234-e5f6-7890-abcd-ef1234567890",
	})
	require.Error(t, err)

	var got *midtrans.APIError
	require.True(t, errors.As(err, &got))
	require.Equal(t, 401, got.StatusCode)
}
