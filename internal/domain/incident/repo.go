package incident

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	List(ctx context.Context, limit, offset int) ([]*Report, int, error)
	CountSince(ctx context.Context, beneficiaryID uuid.UUID, since time.Time) (int, error)
}
