package analysis

import (
	"fmt"
	"time"
)

// BusinessTypes are the accepted values for BusinessProfile.BusinessType.
var BusinessTypes = []string{"Makanan", "Fashion", "Elektronik", "Jasa", "Lainnya"}

// MinFoundingYear is the earliest accepted founding year.
const MinFoundingYear = 1950

// BusinessProfile describes the business the data belongs to. It is
// display metadata only and never alters the analysis.
type BusinessProfile struct {
	Name         string `json:"name" validate:"required"`
	BusinessType string `json:"business_type" validate:"required,oneof=Makanan Fashion Elektronik Jasa Lainnya"`
	FoundingYear int    `json:"founding_year" validate:"gte=1950,not_future_year"`
}

// Validate checks the profile fields.
func (p BusinessProfile) Validate() error {
	if err := validate.Struct(p); err != nil {
		if fe, ok := firstViolation(err); ok {
			return fmt.Errorf("business profile: %s %s", fe.Field(), describeTag(fe))
		}
		return fmt.Errorf("business profile: %w", err)
	}
	return nil
}

// Age returns the business age in whole years at now.
func (p BusinessProfile) Age(now time.Time) int {
	age := now.Year() - p.FoundingYear
	if age < 0 {
		return 0
	}
	return age
}
