package types

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

type PaymentType string

const (
	PaymentTypeDownPayment PaymentType = "dp"
	PaymentTypeInstallment PaymentType = "installment"
	PaymentTypeFull        PaymentType = "full"
)

// Label returns the human text sent to the gateway item line.
func (t PaymentType) Label() string {
	switch t {
	case PaymentTypeDownPayment:
		return "Down Payment"
	case PaymentTypeInstallment:
		return "Cicilan"
	default:
		return "Pembayaran Penuh"
	}
}
