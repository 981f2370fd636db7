package registry

import (
	"context"

	"github.com/google/uuid"
)

// BeneficiaryRepository is the read interface onto the beneficiary registry.
// The engine never writes back to this store.
type BeneficiaryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Beneficiary, error)
	List(ctx context.Context, limit, offset int) ([]*Beneficiary, int, error)
	ListActive(ctx context.Context) ([]*Beneficiary, error)
}
