package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/austenknu/TalentTriage/internal/types"
)

func TestJaccard_KnownOverlap(t *testing.T) {
	candidate := []string{"python", "javascript", "react", "fastapi", "sql"}
	required := []string{"python", "fastapi", "postgresql", "docker", "aws"}

	// Intersection 2, union 8.
	assert.InDelta(t, 0.25, Jaccard(candidate, required), 1e-9)
}

func TestJaccard_EdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []string
		expected float64
	}{
		{"both empty", nil, nil, 0.0},
		{"first empty", nil, []string{"go"}, 0.0},
		{"second empty", []string{"go"}, nil, 0.0},
		{"no overlap", []string{"a", "b"}, []string{"c", "d"}, 0.0},
		{"identical", []string{"a", "b"}, []string{"a", "b"}, 1.0},
		{"case insensitive", []string{"Go", "SQL"}, []string{"go", "sql"}, 1.0},
		{"duplicates collapse", []string{"go", "go", "sql"}, []string{"go"}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestJaccard_Bounds(t *testing.T) {
	sets := [][]string{
		nil,
		{"go"},
		{"go", "sql", "docker"},
		{"python", "go"},
	}
	for _, a := range sets {
		for _, b := range sets {
			score := Jaccard(a, b)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestScaleExperience_Scenarios(t *testing.T) {
	assert.InDelta(t, 0.6, ScaleExperience(3, 5), 1e-9)
	assert.InDelta(t, 1.0, ScaleExperience(5, 5), 1e-9)
	assert.InDelta(t, 0.0, ScaleExperience(0, 5), 1e-9)
	assert.InDelta(t, 1.0, ScaleExperience(5, 0), 1e-9)
	assert.InDelta(t, 1.0, ScaleExperience(10, 5), 1e-9)
}

func TestScaleExperience_Monotonic(t *testing.T) {
	prev := 0.0
	for years := 0.0; years <= 12; years += 0.5 {
		score := ScaleExperience(years, 8)
		assert.GreaterOrEqual(t, score, prev, "score must not decrease at years=%v", years)
		prev = score
	}
	// Saturates at and beyond the target.
	assert.Equal(t, 1.0, ScaleExperience(8, 8))
	assert.Equal(t, 1.0, ScaleExperience(30, 8))
}

func TestEducationMatch(t *testing.T) {
	entries := []types.Education{
		{Degree: "BSc Computer Science", Institution: "State University"},
		{Degree: "Diploma in Accounting"},
	}

	assert.InDelta(t, 0.5, EducationMatch(entries, []string{"computer science"}), 1e-9)
	assert.InDelta(t, 1.0, EducationMatch(entries, []string{"computer science", "accounting"}), 1e-9)
	assert.InDelta(t, 0.0, EducationMatch(entries, []string{"physics"}), 1e-9)
	assert.InDelta(t, 0.0, EducationMatch(nil, []string{"computer science"}), 1e-9)
	assert.InDelta(t, 0.0, EducationMatch(entries, nil), 1e-9)

	// Institution text matches too, case-insensitively.
	assert.InDelta(t, 0.5, EducationMatch(entries, []string{"STATE UNIVERSITY"}), 1e-9)
}

func TestDetermineCategory_Defaults(t *testing.T) {
	th := DefaultThresholds()

	assert.Equal(t, types.CategoryTop, DetermineCategory(0.8, th))
	assert.Equal(t, types.CategoryModerate, DetermineCategory(0.6, th))
	assert.Equal(t, types.CategoryReject, DetermineCategory(0.4, th))

	// Boundary values map to the upper category.
	assert.Equal(t, types.CategoryTop, DetermineCategory(0.75, th))
	assert.Equal(t, types.CategoryModerate, DetermineCategory(0.5, th))
	assert.Equal(t, types.CategoryReject, DetermineCategory(0.0, th))
	assert.Equal(t, types.CategoryTop, DetermineCategory(1.0, th))
}

func TestDetermineCategory_CustomThresholds(t *testing.T) {
	th := Thresholds{Top: 0.8, Moderate: 0.6}

	assert.Equal(t, types.CategoryModerate, DetermineCategory(0.76, th))
	assert.Equal(t, types.CategoryReject, DetermineCategory(0.55, th))
	assert.Equal(t, types.CategoryTop, DetermineCategory(0.85, th))
}

func TestScore_CompositeWeights(t *testing.T) {
	resume := &types.ParsedResume{
		CandidateID:   uuid.New(),
		Skills:        []string{"go", "sql"},
		TotalYearsExp: 4,
		Education:     []types.Education{{Degree: "BSc Computer Science"}},
	}
	job := &types.JobDescription{
		ID:                 uuid.New(),
		RequiredSkills:     []string{"go", "sql"},
		PreferredSkills:    []string{"docker"},
		PreferredEducation: []string{"computer science"},
	}

	result := Score(Inputs{
		Resume:      resume,
		Job:         job,
		Distance:    0.2,
		TargetYears: 8,
		Thresholds:  DefaultThresholds(),
	})

	// semantic = 1 - 0.2 = 0.8; skills = 0.7*1.0 + 0.3*0.0 = 0.7;
	// experience = 4/8 = 0.5; education = 1.0.
	require.InDelta(t, 0.8, result.SemanticScore, 1e-9)
	require.InDelta(t, 0.7, result.SkillsScore, 1e-9)
	require.InDelta(t, 0.5, result.ExperienceScore, 1e-9)
	require.InDelta(t, 1.0, result.EducationScore, 1e-9)

	expected := 0.5*0.8 + 0.3*0.7 + 0.15*0.5 + 0.05*1.0
	assert.InDelta(t, Round4(expected), result.CompositeScore, 1e-9)
	assert.Equal(t, types.CategoryModerate, result.Category)
	assert.Equal(t, resume.CandidateID, result.CandidateID)
	assert.Equal(t, job.ID, result.JobID)
}

func TestScore_ClampsSemantic(t *testing.T) {
	resume := &types.ParsedResume{CandidateID: uuid.New()}
	job := &types.JobDescription{ID: uuid.New()}

	// A distance above 1 would push the similarity negative without clamping.
	result := Score(Inputs{Resume: resume, Job: job, Distance: 1.7, Thresholds: DefaultThresholds()})
	assert.Equal(t, 0.0, result.SemanticScore)

	// A negative distance would push it above 1.
	result = Score(Inputs{Resume: resume, Job: job, Distance: -0.3, Thresholds: DefaultThresholds()})
	assert.Equal(t, 1.0, result.SemanticScore)
}

func TestRound4(t *testing.T) {
	assert.Equal(t, 0.1235, Round4(0.12345))
	assert.Equal(t, 0.1234, Round4(0.12344))
	assert.Equal(t, 1.0, Round4(1.0))
	assert.Equal(t, 0.0, Round4(0.0))
}
