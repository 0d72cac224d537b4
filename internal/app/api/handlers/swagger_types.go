package handlers

import (
	"github.com/amarajasa/weddingpay/internal/app/service/statistics"
	"github.com/amarajasa/weddingpay/internal/app/service/transaction"
	"github.com/amarajasa/weddingpay/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespScanPayments wraps ScanPaymentsResponse in the standard envelope.
type RespScanPayments struct {
	Code    response.APIResponseCode         `json:"code"`
	Message string                           `json:"message"`
	Data    transaction.ScanPaymentsResponse `json:"data"`
}

// RespPaymentStatistics wraps PaymentStatisticsResult in the standard envelope.
type RespPaymentStatistics struct {
	Code    response.APIResponseCode           `json:"code"`
	Message string                             `json:"message"`
	Data    statistics.PaymentStatisticsResult `json:"data"`
}
