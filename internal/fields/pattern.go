package fields

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/austenknu/TalentTriage/internal/types"
)

var (
	emailRe = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`(\+?\d{1,3}[\s.\-]?)?\(?\d{3}\)?[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	yearsRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\+?\s*years?\s+(?:of\s+)?(?:professional\s+|work\s+|industry\s+)?experience`)
	yearRe  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// knownSkills is the dictionary scanned against résumé text. Matches are
// whole-word and case-insensitive.
var knownSkills = []string{
	"python", "java", "javascript", "typescript", "go", "golang", "rust",
	"c++", "c#", "ruby", "php", "swift", "kotlin", "scala", "sql",
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"docker", "kubernetes", "terraform", "ansible", "aws", "gcp", "azure",
	"react", "angular", "vue", "node.js", "django", "flask", "spring",
	"git", "linux", "ci/cd", "jenkins", "kafka", "rabbitmq", "grpc",
	"machine learning", "deep learning", "nlp", "tensorflow", "pytorch",
	"pandas", "numpy", "spark", "hadoop", "airflow", "tableau", "excel",
	"agile", "scrum", "rest", "graphql", "microservices",
}

var degreeKeywords = []string{
	"bachelor", "master", "phd", "ph.d", "doctorate", "associate",
	"b.s.", "b.a.", "m.s.", "m.a.", "mba", "b.sc", "m.sc",
	"bs ", "ba ", "ms ", "ma ",
}

var institutionKeywords = []string{
	"university", "college", "institute", "school of",
}

// PatternExtractor is the regex and dictionary fallback used when the
// model-backed extractor fails or yields no usable name. It never returns
// an error: missing fields are simply left empty.
type PatternExtractor struct{}

var _ Extractor = (*PatternExtractor)(nil)

func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

func (e *PatternExtractor) Extract(_ context.Context, text string) (*Profile, error) {
	p := &Profile{
		Name:   guessName(text),
		Email:  emailRe.FindString(text),
		Phone:  strings.TrimSpace(phoneRe.FindString(text)),
		Skills: scanSkills(text),
	}
	if m := yearsRe.FindStringSubmatch(text); m != nil {
		if years, err := strconv.ParseFloat(m[1], 64); err == nil {
			p.TotalYearsExp = years
		}
	}
	p.Education = scanEducation(text)
	return p, nil
}

// guessName takes the first short line that looks like a personal name:
// two to four capitalized words with no digits or contact markers.
func guessName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.ContainsAny(line, "@0123456789") {
			return ""
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			return ""
		}
		for _, w := range words {
			r := []rune(w)
			if len(r) == 0 || !strings.ContainsRune("ABCDEFGHIJKLMNOPQRSTUVWXYZ", r[0]) {
				return ""
			}
		}
		return line
	}
	return ""
}

func scanSkills(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, skill := range knownSkills {
		if containsWord(lower, skill) {
			found = append(found, skill)
		}
	}
	return found
}

// containsWord reports whether needle occurs in haystack bounded by
// non-alphanumeric characters, so "go" does not match inside "Django".
func containsWord(haystack, needle string) bool {
	for start := 0; ; {
		i := strings.Index(haystack[start:], needle)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(needle)
		leftOK := i == 0 || !isWordChar(haystack[i-1])
		rightOK := end == len(haystack) || !isWordChar(haystack[end])
		if leftOK && rightOK {
			return true
		}
		start = i + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// scanEducation collects lines mentioning a degree keyword, pairing them
// with an institution and graduation year when present on the same line.
func scanEducation(text string) []types.Education {
	var entries []types.Education
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if !containsAny(lower, degreeKeywords) {
			continue
		}
		entry := types.Education{Degree: line}
		if containsAny(lower, institutionKeywords) {
			entry.Institution = line
		}
		if m := yearRe.FindString(line); m != "" {
			if y, err := strconv.Atoi(m); err == nil {
				entry.Year = &y
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
