// Package fields turns extracted résumé text into a structured candidate
// profile. A primary model-backed extractor may fail or return partial data;
// the pattern-based fallback never fails and returns a best-effort profile.
package fields

import (
	"context"
	"strings"

	"github.com/austenknu/TalentTriage/internal/types"
)

// Profile is the best-effort structured view of a résumé. Any field may be
// empty.
type Profile struct {
	Name           string                 `json:"name"`
	Email          string                 `json:"email"`
	Phone          string                 `json:"phone"`
	Skills         []string               `json:"skills"`
	WorkExperience []types.WorkExperience `json:"work_experience"`
	Education      []types.Education      `json:"education"`
	TotalYearsExp  float64                `json:"total_years_exp"`
}

// HasName reports whether the extractor produced a usable candidate name.
func (p *Profile) HasName() bool {
	return p != nil && strings.TrimSpace(p.Name) != ""
}

// Extractor is the field-extraction contract the pipeline consumes.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Profile, error)
}
