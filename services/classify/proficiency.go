package classify

import "strings"

// Canonical proficiency vocabulary
const (
	ProficiencyNovice       = "Novice"
	ProficiencyIntermediate = "Intermediate"
	ProficiencyAdvanced     = "Advanced"
	ProficiencyExpert       = "Expert"
)

// proficiencySynonyms maps lowered free-text values to the canonical
// vocabulary. Single letters cover the upstream b/i/a/e shorthand.
var proficiencySynonyms = map[string]string{
	"1": ProficiencyNovice,
	"2": ProficiencyIntermediate,
	"3": ProficiencyIntermediate,
	"4": ProficiencyAdvanced,
	"5": ProficiencyExpert,

	"b": ProficiencyNovice,
	"i": ProficiencyIntermediate,
	"a": ProficiencyAdvanced,
	"e": ProficiencyExpert,

	"novice":       ProficiencyNovice,
	"beginner":     ProficiencyNovice,
	"basic":        ProficiencyNovice,
	"junior":       ProficiencyNovice,
	"learning":     ProficiencyNovice,
	"intermediate": ProficiencyIntermediate,
	"mid":          ProficiencyIntermediate,
	"mid-level":    ProficiencyIntermediate,
	"medium":       ProficiencyIntermediate,
	"competent":    ProficiencyIntermediate,
	"advanced":     ProficiencyAdvanced,
	"senior":       ProficiencyAdvanced,
	"proficient":   ProficiencyAdvanced,
	"strong":       ProficiencyAdvanced,
	"expert":       ProficiencyExpert,
	"master":       ProficiencyExpert,
	"guru":         ProficiencyExpert,
	"specialist":   ProficiencyExpert,
}

// NormalizeProficiency maps numeric, single-letter, and free-text proficiency
// values to the canonical vocabulary. Unrecognized input is title-cased and
// passed through rather than rejected.
func NormalizeProficiency(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if canonical, ok := proficiencySynonyms[strings.ToLower(trimmed)]; ok {
		return canonical
	}

	return titleCase(trimmed)
}

// titleCase upper-cases the first letter of each space-separated word
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
