package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a savings transaction.
type TransactionType string

const (
	TypeController  TransactionType = "controller"
	TypeMobileMoney TransactionType = "mobile_money"
	TypeInterest    TransactionType = "interest"
)

// PaymentMethodController marks deductions collected through the payroll controller.
const PaymentMethodController = "controller"

// Status of a posted transaction.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// Transaction is a single ledger posting.
type Transaction struct {
	ID              int64
	UserID          string
	Type            TransactionType
	Amount          decimal.Decimal
	Description     string
	TransactionDate time.Time
	ReferenceID     string // Unique across the ledger
	Status          Status
	PaymentMethod   string
	CreatedAt       time.Time
}

// ControllerReferenceID is the deterministic reference used for controller deductions,
// e.g. CTRL_2025_03_EMP001.
func ControllerReferenceID(year, month int, employeeID string) string {
	return fmt.Sprintf("CTRL_%d_%02d_%s", year, month, employeeID)
}
