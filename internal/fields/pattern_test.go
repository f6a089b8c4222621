package fields

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jane Doe
jane.doe@example.com | (555) 123-4567

Senior software engineer with 7 years of experience building
distributed systems in Go and Python. Comfortable with PostgreSQL,
Docker, Kubernetes and Kafka.

Education
Bachelor of Science in Computer Science, State University, 2015
`

func TestPatternExtractor_Extract(t *testing.T) {
	p, err := NewPatternExtractor().Extract(context.Background(), sampleResume)
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "Jane Doe", p.Name)
	assert.True(t, p.HasName())
	assert.Equal(t, "jane.doe@example.com", p.Email)
	assert.Equal(t, "(555) 123-4567", p.Phone)
	assert.InDelta(t, 7.0, p.TotalYearsExp, 1e-9)

	assert.Contains(t, p.Skills, "go")
	assert.Contains(t, p.Skills, "python")
	assert.Contains(t, p.Skills, "postgresql")
	assert.Contains(t, p.Skills, "kafka")

	require.Len(t, p.Education, 1)
	assert.Contains(t, p.Education[0].Degree, "Bachelor of Science")
	require.NotNil(t, p.Education[0].Year)
	assert.Equal(t, 2015, *p.Education[0].Year)
}

func TestPatternExtractor_EmptyText(t *testing.T) {
	p, err := NewPatternExtractor().Extract(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.False(t, p.HasName())
	assert.Empty(t, p.Email)
	assert.Empty(t, p.Skills)
	assert.Empty(t, p.Education)
	assert.Zero(t, p.TotalYearsExp)
}

func TestGuessName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"two words", "John Smith\nEngineer", "John Smith"},
		{"leading blank lines", "\n\n  Ana Maria Costa\nrest", "Ana Maria Costa"},
		{"digits disqualify", "12 Main Street\nJohn Smith", ""},
		{"single word", "Resume\nJohn Smith", ""},
		{"lowercase", "john smith", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guessName(tt.text))
		})
	}
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("built services in go and python", "go"))
	assert.False(t, containsWord("worked with django daily", "go"))
	assert.True(t, containsWord("c++ and rust", "c++"))
}

func TestCleanJSONBlock(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONBlock(`{"a":1}`))
}
