package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amarajasa/weddingpay/internal/models"
	"github.com/amarajasa/weddingpay/internal/platform/midtrans"
	"github.com/amarajasa/weddingpay/pkg/config"
	"github.com/amarajasa/weddingpay/pkg/logctx"
	"github.com/amarajasa/weddingpay/pkg/types"
)

// ErrPaymentNotFound means the payment id (or its client/vendor joins)
// could not be resolved.
var ErrPaymentNotFound = errors.New("payment not found")

// SnapAPI is the slice of the gateway client this service needs.
type SnapAPI interface {
	CreateTransaction(ctx context.Context, req *midtrans.SnapRequest) (*midtrans.SnapResponse, error)
}

type CreateTransactionRequest struct {
	PaymentID string `json:"payment_id"`
	// Origin is the browser origin the redirect callbacks are derived from.
	Origin string `json:"-"`
}

type CreateTransactionResult struct {
	SnapToken   string `json:"snap_token"`
	RedirectURL string `json:"redirect_url"`
	OrderID     string `json:"order_id"`
}

// Manager creates gateway transactions and serves admin payment listings.
type Manager interface {
	CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResult, error)
	ScanPayments(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error)
}

type Service struct {
	cfg  *config.Config
	log  *zap.SugaredLogger
	snap SnapAPI
	db   *gorm.DB
	now  func() time.Time
}

func NewService(cfg *config.Config, log *zap.SugaredLogger, snap *midtrans.Client, db *gorm.DB) Manager {
	return &Service{cfg: cfg, log: log, snap: snap, db: db, now: time.Now}
}

// CreateTransaction mints a new order id for the payment, persists it
// best-effort, and opens a Snap transaction with the gateway. Repeated calls
// for the same payment produce distinct order ids; the latest one wins as
// the webhook correlation key.
func (s *Service) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResult, error) {
	log := logctx.FromCtx(ctx, s.log)

	var payment models.Payment
	err := s.db.WithContext(ctx).
		Preload("Client").
		Preload("Vendor").
		First(&payment, "id = ?", req.PaymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if payment.Client == nil || payment.Vendor == nil {
		return nil, ErrPaymentNotFound
	}

	orderID := NewOrderID(payment.ID, s.now())

	// Best-effort: the authoritative link is the gateway call below, so a
	// failed write only logs. A success here followed by a gateway failure
	// leaves a dangling order id that simply never matches a webhook.
	if err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("id = ?", payment.ID).
		Update("midtrans_order_id", orderID).Error; err != nil {
		log.Errorw("order_id_persist_failed", "payment_id", payment.ID, "order_id", orderID, "error", err.Error())
	}

	snapReq := s.buildSnapRequest(&payment, orderID, req.Origin)

	resp, err := s.snap.CreateTransaction(ctx, snapReq)
	if err != nil {
		return nil, fmt.Errorf("create snap transaction: %w", err)
	}

	log.Infow("snap_transaction_created", "payment_id", payment.ID, "order_id", orderID)
	return &CreateTransactionResult{
		SnapToken:   resp.Token,
		RedirectURL: resp.RedirectURL,
		OrderID:     orderID,
	}, nil
}

func (s *Service) buildSnapRequest(p *models.Payment, orderID, origin string) *midtrans.SnapRequest {
	vendorName := "Vendor"
	if p.Vendor != nil && p.Vendor.Name != "" {
		vendorName = p.Vendor.Name
	}
	customer := midtrans.CustomerDetails{FirstName: "Customer"}
	if p.Client != nil {
		if p.Client.Name != "" {
			customer.FirstName = p.Client.Name
		}
		customer.Email = p.Client.Email
		customer.Phone = p.Client.Phone
	}

	// The gateway rejects transactions whose gross amount differs from the
	// sum of item lines, so both come from Payment.Amount.
	return &midtrans.SnapRequest{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:     orderID,
			GrossAmount: p.Amount,
		},
		ItemDetails: []midtrans.ItemDetail{{
			ID:       p.ID,
			Price:    p.Amount,
			Quantity: 1,
			Name:     fmt.Sprintf("%s - %s", vendorName, p.Type.Label()),
		}},
		CustomerDetails: customer,
		Callbacks: midtrans.Callbacks{
			Finish:  origin + "/payment/success",
			Error:   origin + "/payment/failed",
			Pending: origin + "/payment/pending",
		},
	}
}

// Scan payment request/response for admin list pages.
type ScanPaymentsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanPaymentsResponse struct {
	Items []*models.Payment `json:"items"`
	Total int64             `json:"total"`
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// ScanPayments implements paginated admin listing with filters.
func (s *Service) ScanPayments(ctx context.Context, req *ScanPaymentsRequest) (*ScanPaymentsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.Payment{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	var rows []*models.Payment

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	return &ScanPaymentsResponse{Items: rows, Total: total}, nil
}
