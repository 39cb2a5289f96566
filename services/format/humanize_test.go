package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanizeField(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"name", "Name"},
		{"first_name", "First Name"},
		{"proficiency_level", "Proficiency Level"},
		{"UPDATED_AT", "Updated At"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumanizeField(tt.input))
		})
	}
}

func TestHumanizeValue(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected string
	}{
		{"nil becomes None", nil, "None"},
		{"empty string becomes None", "", "None"},
		{"plain string", "Jane", "Jane"},
		{"true becomes Yes", true, "Yes"},
		{"false becomes No", false, "No"},
		{"integral float renders without decimal", float64(42), "42"},
		{"fractional float", 2.5, "2.5"},
		{"object collapses to its name", map[string]interface{}{"id": "s-1", "name": "React"}, "React"},
		{"object without name is json", map[string]interface{}{"id": "s-1"}, `{"id":"s-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumanizeValue(tt.value, 120))
		})
	}
}

func TestHumanizeValue_Truncation(t *testing.T) {
	long := "abcdefghij"

	assert.Equal(t, "abcde…", HumanizeValue(long, 5))
	assert.Equal(t, long, HumanizeValue(long, 10))
	assert.Equal(t, long, HumanizeValue(long, 0))

	// Budget counts runes, not bytes
	assert.Equal(t, "héllô…", HumanizeValue("héllô wörld", 5))
}

func TestIsIdentifierField(t *testing.T) {
	tests := []struct {
		field    string
		expected bool
	}{
		{"id", true},
		{"ID", true},
		{"person_id", true},
		{"organization_id", true},
		{"skill id", true},
		{"skillId", true},
		{"SkillID", true},
		{"skillid", true},
		{"organizationid", true},
		{"name", false},
		{"identity", false},
		{"idea", false},
		{"valid", false},
		{"paid", false},
		{"grid", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsIdentifierField(tt.field))
		})
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		t        time.Time
		expected string
	}{
		{"seconds ago", now.Add(-30 * time.Second), "just now"},
		{"future timestamp", now.Add(time.Minute), "just now"},
		{"one minute", now.Add(-90 * time.Second), "1 minute ago"},
		{"minutes", now.Add(-5 * time.Minute), "5 minutes ago"},
		{"one hour", now.Add(-time.Hour), "1 hour ago"},
		{"hours", now.Add(-7 * time.Hour), "7 hours ago"},
		{"days", now.Add(-3 * 24 * time.Hour), "3 days ago"},
		{"months", now.Add(-65 * 24 * time.Hour), "2 months ago"},
		{"years", now.Add(-2 * 365 * 24 * time.Hour), "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RelativeTime(tt.t, now))
		})
	}
}
