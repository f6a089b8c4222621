// Package scoring computes the composite candidate-job match score. Every
// function here is pure and deterministic given its inputs; persistence and
// collaborator calls live in the pipeline package.
package scoring

import (
	"math"
	"strings"

	"github.com/austenknu/TalentTriage/internal/types"
)

// Composite score weights. Fixed constants of the design, not per-job
// configuration. They sum to 1.0.
const (
	semanticWeight   = 0.50
	skillsWeight     = 0.30
	experienceWeight = 0.15
	educationWeight  = 0.05
)

// Skills sub-score weights: required-skill overlap counts more than preferred.
const (
	requiredSkillsWeight  = 0.7
	preferredSkillsWeight = 0.3
)

// DefaultTargetYears is the experience target used when a job specifies no
// minimum. Callers may pre-empt it with their own fallback; the engine never
// chooses silently between the two.
const DefaultTargetYears = 5.0

// Thresholds holds the category breakpoints. Boundary values map to the upper
// category.
type Thresholds struct {
	Top      float64
	Moderate float64
}

// DefaultThresholds returns the standard category breakpoints.
func DefaultThresholds() Thresholds {
	return Thresholds{Top: 0.75, Moderate: 0.5}
}

// Inputs bundles everything the engine needs to produce a CandidateScore.
// Distance is the raw vector distance reported by the record store's
// nearest-neighbor query; the engine converts it to a similarity.
type Inputs struct {
	Resume      *types.ParsedResume
	Job         *types.JobDescription
	Distance    float64
	TargetYears float64
	Thresholds  Thresholds
}

// Score computes all sub-scores, the composite, and the category for a
// candidate-job pair. Sub-scores are rounded to four decimal places so stored
// values stay stable across recomputation.
func Score(in Inputs) types.CandidateScore {
	semantic := clamp01(1.0 - in.Distance)
	skills := SkillsScore(in.Resume.Skills, in.Job.RequiredSkills, in.Job.PreferredSkills)
	experience := ScaleExperience(in.Resume.TotalYearsExp, in.TargetYears)
	education := EducationMatch(in.Resume.Education, in.Job.PreferredEducation)

	composite := semanticWeight*semantic +
		skillsWeight*skills +
		experienceWeight*experience +
		educationWeight*education

	return types.CandidateScore{
		CandidateID:     in.Resume.CandidateID,
		JobID:           in.Job.ID,
		SemanticScore:   Round4(semantic),
		SkillsScore:     Round4(skills),
		ExperienceScore: Round4(experience),
		EducationScore:  Round4(education),
		CompositeScore:  Round4(composite),
		Category:        DetermineCategory(composite, in.Thresholds),
	}
}

// Jaccard computes the intersection-over-union similarity of two skill sets,
// case-insensitively. Returns 0.0 when either set is empty rather than the
// undefined 0/0.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	setA := lowerSet(a)
	setB := lowerSet(b)

	intersection := 0
	for s := range setA {
		if setB[s] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// SkillsScore combines required- and preferred-skill overlap into one score.
func SkillsScore(candidate, required, preferred []string) float64 {
	return requiredSkillsWeight*Jaccard(candidate, required) +
		preferredSkillsWeight*Jaccard(candidate, preferred)
}

// ScaleExperience maps candidate years of experience onto [0,1] against a
// target. Years at or above the target saturate at 1.0; non-positive years
// score 0.0. A non-positive target also yields 1.0 (nothing was asked for).
func ScaleExperience(years, target float64) float64 {
	if target <= 0 {
		return 1.0
	}
	if years <= 0 {
		return 0.0
	}
	if years >= target {
		return 1.0
	}
	return years / target
}

// EducationMatch returns the fraction of the candidate's education entries
// whose degree or institution contains one of the job's preferred-education
// tokens, case-insensitively. Returns 0.0 when either list is empty.
func EducationMatch(entries []types.Education, preferred []string) float64 {
	if len(entries) == 0 || len(preferred) == 0 {
		return 0.0
	}

	matches := 0
	for _, edu := range entries {
		degree := strings.ToLower(edu.Degree)
		institution := strings.ToLower(edu.Institution)
		for _, token := range preferred {
			t := strings.ToLower(token)
			if t == "" {
				continue
			}
			if strings.Contains(degree, t) || strings.Contains(institution, t) {
				matches++
				break
			}
		}
	}

	return clamp01(float64(matches) / float64(len(entries)))
}

// DetermineCategory maps a composite score onto a category. It is a step
// function with exactly two breakpoints; a score equal to a threshold maps to
// the upper category.
func DetermineCategory(composite float64, t Thresholds) string {
	switch {
	case composite >= t.Top:
		return types.CategoryTop
	case composite >= t.Moderate:
		return types.CategoryModerate
	default:
		return types.CategoryReject
	}
}

// Round4 rounds a score to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0.0
	}
	if v > 1 {
		return 1.0
	}
	return v
}

func lowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			set[s] = true
		}
	}
	return set
}
