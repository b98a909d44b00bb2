package database

import (
	"context"
	"database/sql"
	"fmt"

	"teacher_savings_portal/internal/domain/teacher"
)

type PostgresTeacherRepository struct {
	db *sql.DB
}

func NewPostgresTeacherRepository(db *sql.DB) *PostgresTeacherRepository {
	return &PostgresTeacherRepository{db: db}
}

// ListByRole returns every user with the role in a stable order, oldest first.
// Matching tie-breaks depend on this order.
func (r *PostgresTeacherRepository) ListByRole(ctx context.Context, role string) ([]*teacher.Teacher, error) {
	query := `SELECT id, full_name, COALESCE(employee_id, ''), COALESCE(management_unit, ''), role, created_at
               FROM users WHERE role = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("error listing users with role %s: %w", role, err)
	}
	defer rows.Close()

	teachers := make([]*teacher.Teacher, 0)
	for rows.Next() {
		t := &teacher.Teacher{}
		if err := rows.Scan(&t.ID, &t.FullName, &t.EmployeeID, &t.ManagementUnit, &t.Role, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		teachers = append(teachers, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return teachers, nil
}
