package teacher

import (
	"context"
)

// Repository defines read access to the teacher directory.
//
//go:generate mockgen -destination=../../app/mocks/mock_teacher_repository.go -package=mocks -mock_names=Repository=MockTeacherRepository teacher_savings_portal/internal/domain/teacher Repository
type Repository interface {
	// ListByRole returns every user with the given role in a stable order.
	ListByRole(ctx context.Context, role string) ([]*Teacher, error)
}
