package format

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// HumanizeField turns a raw column name into a display label:
// underscores become spaces, words are title-cased
func HumanizeField(field string) string {
	words := strings.Fields(strings.ReplaceAll(field, "_", " "))
	for i, word := range words {
		words[i] = titleWord(word)
	}
	return strings.Join(words, " ")
}

func titleWord(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}

// HumanizeValue renders a loosely-typed diff value for display. Nil becomes
// "None", booleans become Yes/No, objects collapse to their name when they
// carry one, anything else is JSON-stringified and truncated to the budget.
func HumanizeValue(value interface{}, budget int) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case string:
		if v == "" {
			return "None"
		}
		return truncate(v, budget)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case map[string]interface{}:
		if name, ok := v["name"].(string); ok && name != "" {
			return truncate(name, budget)
		}
		return truncate(jsonString(v), budget)
	default:
		return truncate(jsonString(v), budget)
	}
}

func jsonString(value interface{}) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

func truncate(s string, budget int) string {
	if budget <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + "…"
}

// IsIdentifierField reports whether a field is a bare identifier column
// whose raw values carry no meaning for readers. Upstream producers spell
// these as "id", "skill_id", "skill id", "skillId" or "skillid"; a trailing
// "id" only counts as a suffix when the stem is a word on its own, so
// "identity", "paid" and "grid" stay visible.
func IsIdentifierField(field string) bool {
	trimmed := strings.TrimSpace(field)
	lower := strings.ToLower(trimmed)
	if lower == "id" {
		return true
	}
	if strings.HasSuffix(lower, "_id") || strings.HasSuffix(lower, " id") || strings.HasSuffix(lower, "-id") {
		return true
	}
	// Camel-case boundary: non-empty stem followed by Id/ID
	if (strings.HasSuffix(trimmed, "Id") || strings.HasSuffix(trimmed, "ID")) && len(trimmed) > 2 {
		return true
	}
	return strings.HasSuffix(lower, "id") && isEntityStem(strings.TrimSuffix(lower, "id"))
}

// Separator-free stems seen in producer column names ("skillid",
// "personid"). Anything else ending in plain lowercase "id" is a word.
var entityIDStems = map[string]bool{
	"skill":        true,
	"person":       true,
	"user":         true,
	"organization": true,
	"org":          true,
	"customer":     true,
	"company":      true,
	"entity":       true,
	"actor":        true,
}

func isEntityStem(stem string) bool {
	return entityIDStems[strings.TrimSuffix(stem, "_")]
}

// RelativeTime renders a timestamp relative to now ("just now",
// "5 minutes ago", "2 days ago"); future timestamps render as "just now"
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/(24*30)), "month")
	default:
		return plural(int(diff.Hours()/(24*365)), "year")
	}
}

func plural(n int, unit string) string {
	if n <= 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
