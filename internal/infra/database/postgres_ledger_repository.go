package database

import (
	"context"
	"database/sql"
	"fmt"

	"teacher_savings_portal/internal/domain/ledger"
)

type PostgresLedgerRepository struct {
	db *sql.DB
}

func NewPostgresLedgerRepository(db *sql.DB) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{db: db}
}

// Insert posts a transaction. A repeated reference ID returns ledger.ErrDuplicateReference.
func (r *PostgresLedgerRepository) Insert(ctx context.Context, tx *ledger.Transaction) error {
	query := `INSERT INTO transactions (user_id, type, amount, description, transaction_date, reference_id, status, payment_method)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
               RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		tx.UserID, tx.Type, tx.Amount, tx.Description, tx.TransactionDate, tx.ReferenceID, tx.Status, tx.PaymentMethod,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "transactions_reference_id_key") {
			return ledger.ErrDuplicateReference
		}
		return fmt.Errorf("error inserting transaction %s: %w", tx.ReferenceID, err)
	}
	return nil
}
