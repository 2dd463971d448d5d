package patients

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. It is the registry's source of truth for
// matching; the matcher only ever reads it.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	FullName   string     `db:"full_name" json:"full_name"`
	NationalID string     `db:"national_id" json:"-"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// BirthDateString renders the birth date in ISO form for comparison, empty
// when unknown.
func (p *Patient) BirthDateString() string {
	if p.BirthDate == nil {
		return ""
	}
	return p.BirthDate.Format("2006-01-02")
}
