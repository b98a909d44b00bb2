package ledger

import (
	"context"
	"errors"
)

// ErrDuplicateReference is returned when a transaction with the same ReferenceID was already posted.
var ErrDuplicateReference = errors.New("transaction reference already posted")

// Repository persists ledger transactions. Insert must reject a repeated ReferenceID.
//
//go:generate mockgen -destination=../../app/mocks/mock_ledger_repository.go -package=mocks -mock_names=Repository=MockLedgerRepository teacher_savings_portal/internal/domain/ledger Repository
type Repository interface {
	Insert(ctx context.Context, tx *Transaction) error
}
