package conscience

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/basira/care-server/internal/platform/db"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type decisionLogPG struct{ pool *pgxpool.Pool }

// NewDecisionLogPG returns the Postgres-backed append-only decision log.
func NewDecisionLogPG(pool *pgxpool.Pool) DecisionLog {
	return &decisionLogPG{pool: pool}
}

func (r *decisionLogPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const logCols = `id, idempotency_key, beneficiary_id, proposed_action, reason, initiated_by,
	ethical_score, dignity_impact, autonomy_impact, requires_human_approval,
	alternatives, reasoning, outcome, human_approver, final_action, recorded_at`

func scanEntry(row pgx.Row) (*LogEntry, error) {
	var e LogEntry
	err := row.Scan(&e.ID, &e.IdempotencyKey, &e.BeneficiaryID, &e.ProposedAction, &e.Reason, &e.InitiatedBy,
		&e.EthicalScore, &e.DignityImpact, &e.AutonomyImpact, &e.RequiresHumanApproval,
		&e.Alternatives, &e.Reasoning, &e.Outcome, &e.HumanApprover, &e.FinalAction, &e.RecordedAt)
	return &e, err
}

// Insert appends a log entry. The recorded_at timestamp is assigned by the
// store, and the idempotency key makes retries duplicate-safe.
func (r *decisionLogPG) Insert(ctx context.Context, entry *LogEntry) error {
	entry.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO conscience_log (id, idempotency_key, beneficiary_id, proposed_action, reason, initiated_by,
			ethical_score, dignity_impact, autonomy_impact, requires_human_approval,
			alternatives, reasoning, outcome, human_approver, final_action)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		entry.ID, entry.IdempotencyKey, entry.BeneficiaryID, entry.ProposedAction, entry.Reason, entry.InitiatedBy,
		entry.EthicalScore, entry.DignityImpact, entry.AutonomyImpact, entry.RequiresHumanApproval,
		entry.Alternatives, entry.Reasoning, entry.Outcome, entry.HumanApprover, entry.FinalAction)
	return err
}

func (r *decisionLogPG) List(ctx context.Context, limit, offset int) ([]*LogEntry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM conscience_log`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+logCols+` FROM conscience_log ORDER BY recorded_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectEntries(rows, total)
}

func (r *decisionLogPG) ListByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID, limit, offset int) ([]*LogEntry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM conscience_log WHERE beneficiary_id = $1`, beneficiaryID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+logCols+` FROM conscience_log WHERE beneficiary_id = $1 ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`,
		beneficiaryID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectEntries(rows, total)
}

func collectEntries(rows pgx.Rows, total int) ([]*LogEntry, int, error) {
	var items []*LogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}
