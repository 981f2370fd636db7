package registry

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/basira/care-server/internal/platform/db"
)

// querier covers the pgx read surface the repo uses, so it can run against
// a pool, an acquired conn, or a transaction from the context.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type beneficiaryRepoPG struct{ pool *pgxpool.Pool }

func NewBeneficiaryRepoPG(pool *pgxpool.Pool) BeneficiaryRepository {
	return &beneficiaryRepoPG{pool: pool}
}

func (r *beneficiaryRepoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const beneficiaryCols = `id, national_id, full_name, room_number, bed_number,
	medical_diagnosis, psychiatric_diagnosis, alerts, bedridden, status,
	created_at, updated_at`

func scanBeneficiary(row pgx.Row) (*Beneficiary, error) {
	var b Beneficiary
	err := row.Scan(&b.ID, &b.NationalID, &b.FullName, &b.RoomNumber, &b.BedNumber,
		&b.MedicalDiagnosis, &b.PsychiatricDiagnosis, &b.Alerts, &b.Bedridden, &b.Status,
		&b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *beneficiaryRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Beneficiary, error) {
	return scanBeneficiary(r.conn(ctx).QueryRow(ctx,
		`SELECT `+beneficiaryCols+` FROM beneficiaries WHERE id = $1`, id))
}

func (r *beneficiaryRepoPG) List(ctx context.Context, limit, offset int) ([]*Beneficiary, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM beneficiaries`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+beneficiaryCols+` FROM beneficiaries ORDER BY full_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Beneficiary
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	return items, total, rows.Err()
}

func (r *beneficiaryRepoPG) ListActive(ctx context.Context) ([]*Beneficiary, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+beneficiaryCols+` FROM beneficiaries WHERE status = 'active' ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Beneficiary
	for rows.Next() {
		b, err := scanBeneficiary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
