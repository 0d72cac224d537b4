package statistics

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/amarajasa/weddingpay/internal/models"
	"github.com/amarajasa/weddingpay/pkg/types"
)

// PaymentTotals is one aggregation bucket for the report screens.
type PaymentTotals struct {
	Status types.PaymentStatus `json:"status"`
	Count  int64               `json:"count"`
	Amount int64               `json:"amount"`
}

type PaymentStatisticsResult struct {
	ByStatus    []*PaymentTotals `json:"by_status"`
	TotalCount  int64            `json:"total_count"`
	TotalAmount int64            `json:"total_amount"`
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// PaymentStatistics aggregates payment counts and amounts per status.
func (s *Service) PaymentStatistics(ctx context.Context) (*PaymentStatisticsResult, error) {
	var rows []*PaymentTotals
	err := s.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("status, count(*) as count, coalesce(sum(amount), 0) as amount").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate payments: %w", err)
	}

	return &PaymentStatisticsResult{
		ByStatus:    rows,
		TotalCount:  lo.SumBy(rows, func(r *PaymentTotals) int64 { return r.Count }),
		TotalAmount: lo.SumBy(rows, func(r *PaymentTotals) int64 { return r.Amount }),
	}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
