package registry

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Beneficiary maps to the beneficiaries table. It is the registry's master
// record; the engine only ever sees the Snapshot derived from it.
type Beneficiary struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	NationalID           *string   `db:"national_id" json:"national_id,omitempty"`
	FullName             string    `db:"full_name" json:"full_name"`
	RoomNumber           *string   `db:"room_number" json:"room_number,omitempty"`
	BedNumber            *string   `db:"bed_number" json:"bed_number,omitempty"`
	MedicalDiagnosis     *string   `db:"medical_diagnosis" json:"medical_diagnosis,omitempty"`
	PsychiatricDiagnosis *string   `db:"psychiatric_diagnosis" json:"psychiatric_diagnosis,omitempty"`
	Alerts               []string  `db:"alerts" json:"alerts"`
	Bedridden            bool      `db:"bedridden" json:"bedridden"`
	Status               string    `db:"status" json:"status"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// Snapshot is the immutable read of a beneficiary used by the scoring and
// conscience engines. The engines never mutate it and never reach back into
// the registry.
type Snapshot struct {
	SubjectID      uuid.UUID `json:"subject_id"`
	Diagnosis      string    `json:"diagnosis"`
	Alerts         []string  `json:"alerts"`
	Bedridden      bool      `json:"bedridden"`
	Psychiatric    bool      `json:"psychiatric"`
	RecentIncident bool      `json:"recent_incident"`
}

// HasAlert reports whether the given alert flag is active on the snapshot.
func (s Snapshot) HasAlert(tag string) bool {
	for _, a := range s.Alerts {
		if a == tag {
			return true
		}
	}
	return false
}

// DiagnosisContains reports a case-insensitive substring match against the
// free-text diagnosis. A missing diagnosis never matches.
func (s Snapshot) DiagnosisContains(term string) bool {
	if term == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s.Diagnosis), strings.ToLower(term))
}

// ToSnapshot derives the engine view of a beneficiary. RecentIncident is left
// false here; the incident collaborator fills it in.
func (b *Beneficiary) ToSnapshot() Snapshot {
	snap := Snapshot{
		SubjectID:   b.ID,
		Bedridden:   b.Bedridden,
		Psychiatric: b.PsychiatricDiagnosis != nil && *b.PsychiatricDiagnosis != "",
	}
	if b.MedicalDiagnosis != nil {
		snap.Diagnosis = *b.MedicalDiagnosis
	}
	snap.Alerts = append(snap.Alerts, b.Alerts...)
	return snap
}
