package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Corpus file names expected inside the knowledge directory.
const (
	InjuriesFile = "first_aid_knowledge.json"
	KeywordsFile = "emergency_keywords.json"
)

// Index answers emergency checks and ranked injury retrieval over the
// immutable corpus. All methods are pure reads and safe for concurrent use.
type Index struct {
	base     Base
	keywords EmergencyKeywords
}

// NewIndex wraps already-parsed corpus data.
func NewIndex(base Base, keywords EmergencyKeywords) *Index {
	return &Index{base: base, keywords: keywords}
}

// Load parses the two corpus files from dir. Callers treat any failure as a
// fatal startup error; a half-loaded corpus is never served.
func Load(dir string) (*Index, error) {
	var base Base
	if err := readJSON(filepath.Join(dir, InjuriesFile), &base); err != nil {
		return nil, err
	}

	var keywords EmergencyKeywords
	if err := readJSON(filepath.Join(dir, KeywordsFile), &keywords); err != nil {
		return nil, err
	}

	if len(base.Injuries) == 0 {
		return nil, fmt.Errorf("knowledge corpus contains no injuries")
	}
	if len(keywords.CriticalKeywords) == 0 || keywords.EmergencyResponse.Message == "" {
		return nil, fmt.Errorf("emergency keyword set is incomplete")
	}

	return &Index{base: base, keywords: keywords}, nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// CheckForEmergency reports whether text contains any configured critical
// keyword. Matching is a case-insensitive substring test over every phrase.
func (idx *Index) CheckForEmergency(text string) bool {
	lower := strings.ToLower(text)
	for _, keyword := range idx.keywords.CriticalKeywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Search ranks injuries against the query and returns at most three matches.
// Each keyword hit scores 10, a name mention 15, each symptom phrase 5.
// The sort is stable so equal scores keep corpus order and the suggested
// injury stays deterministic.
func (idx *Index) Search(query string) []Injury {
	lower := strings.ToLower(query)

	type match struct {
		injury Injury
		score  int
	}

	var matches []match
	for _, injury := range idx.base.Injuries {
		score := 0
		for _, keyword := range injury.Keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				score += 10
			}
		}
		if strings.Contains(lower, strings.ToLower(injury.Name)) {
			score += 15
		}
		for _, symptom := range injury.Symptoms {
			if strings.Contains(lower, strings.ToLower(symptom)) {
				score += 5
			}
		}
		if score > 0 {
			matches = append(matches, match{injury: injury, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > 3 {
		matches = matches[:3]
	}

	result := make([]Injury, len(matches))
	for i, m := range matches {
		result[i] = m.injury
	}
	return result
}

// FormatInjuryInfo renders one injury as retrieval context for the prompt
// composer. The shape is fixed: name and severity, numbered symptoms,
// numbered steps, then escalation triggers when present.
func (idx *Index) FormatInjuryInfo(injury Injury) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s** (Severity: %s)\n\n", injury.Name, injury.Severity)

	b.WriteString("**Symptoms:**\n")
	for i, symptom := range injury.Symptoms {
		fmt.Fprintf(&b, "%d. %s\n", i+1, symptom)
	}

	b.WriteString("\n**First Aid Steps:**\n")
	for _, step := range injury.FirstAidSteps {
		fmt.Fprintf(&b, "%d. %s\n", step.Step, step.Instruction)
	}

	if len(injury.EmergencyTriggers) > 0 {
		b.WriteString("\n⚠️ **Seek Emergency Help If:**\n")
		for _, trigger := range injury.EmergencyTriggers {
			fmt.Fprintf(&b, "• %s\n", trigger)
		}
	}

	return b.String()
}

// EmergencyResponse returns the canned emergency message.
func (idx *Index) EmergencyResponse() string {
	return idx.keywords.EmergencyResponse.Message
}

// InjuryByID looks up a corpus entry by identifier.
func (idx *Index) InjuryByID(id string) (Injury, bool) {
	for _, injury := range idx.base.Injuries {
		if injury.ID == id {
			return injury, true
		}
	}
	return Injury{}, false
}

// Injuries returns a copy of the full corpus list.
func (idx *Index) Injuries() []Injury {
	return append([]Injury(nil), idx.base.Injuries...)
}

// Disclaimer returns the corpus-wide guidance disclaimer.
func (idx *Index) Disclaimer() string {
	return idx.base.GeneralDisclaimer
}

// Numbers returns the configured emergency contact numbers.
func (idx *Index) Numbers() EmergencyNumbers {
	return idx.base.EmergencyNumbers
}
