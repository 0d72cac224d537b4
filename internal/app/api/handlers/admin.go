package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amarajasa/weddingpay/internal/app/service/statistics"
	"github.com/amarajasa/weddingpay/internal/app/service/transaction"
	"github.com/amarajasa/weddingpay/pkg/response"
)

// @Summary      Scan payments
// @Description  Paginated payment listing with filters for the admin dashboard.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body transaction.ScanPaymentsRequest true "Filters, pagination and sorting"
// @Success      200  {object}  handlers.RespScanPayments
// @Router       /api/v1/admin/payments/scan [post]
func ApiScanPayments(mgr transaction.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transaction.ScanPaymentsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		res, err := mgr.ScanPayments(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Payment statistics
// @Description  Counts and amount sums per payment status for report screens.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespPaymentStatistics
// @Router       /api/v1/admin/payments/statistics [get]
func ApiPaymentStatistics(stats *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := stats.PaymentStatistics(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminPaymentRoutes(r gin.IRouter, mgr transaction.Manager, stats *statistics.Service) {
	r.POST("/payments/scan", ApiScanPayments(mgr))
	r.GET("/payments/statistics", ApiPaymentStatistics(stats))
}
