package incident

import (
	"time"

	"github.com/google/uuid"
)

// Report maps to the incident_reports table. Reports feed the risk engine's
// recent-incident factor and the facility's just-culture review process.
type Report struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	BeneficiaryID *uuid.UUID `db:"beneficiary_id" json:"beneficiary_id,omitempty"`
	Category      string     `db:"category" json:"category"`
	Severity      string     `db:"severity" json:"severity"`
	Description   string     `db:"description" json:"description"`
	OccurredAt    time.Time  `db:"occurred_at" json:"occurred_at"`
	Anonymous     bool       `db:"anonymous" json:"anonymous"`
	ReporterID    *string    `db:"reporter_id" json:"reporter_id,omitempty"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

var validCategories = map[string]bool{
	"medication_error": true, "fall": true, "behavioral": true, "equipment": true, "other": true,
}

var validSeverities = map[string]bool{
	"near_miss": true, "minor": true, "moderate": true, "major": true, "sentinel": true,
}

var validStatuses = map[string]bool{
	"open": true, "investigating": true, "closed": true,
}
