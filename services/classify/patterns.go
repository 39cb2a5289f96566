package classify

import (
	"regexp"
	"strings"
)

// Ordered description patterns, first match wins per field. Kept independent
// so each can be unit-tested and skipped when the text lacks its shape.
var (
	// "Applied React at Acme with EXPERT proficiency" / "applied React at Acme"
	appliedAtPattern = regexp.MustCompile(`(?i)applied\s+(.+?)\s+at\s+(.+?)(?:\s+with\s+([\w-]+)\s+proficiency)?\s*\.?$`)

	// quoted names: skill 'React', skill "React"
	quotedSkillPattern = regexp.MustCompile(`(?i)skill\s+['"]([^'"]+)['"]`)
	quotedOrgPattern   = regexp.MustCompile(`(?i)(?:at|for|organization|customer|company)\s+['"]([^'"]+)['"]`)

	// bare names up to a stop word
	bareSkillPattern = regexp.MustCompile(`(?i)skill\s+([^'"]+?)(?:\s+(?:at|for|to|with|from)\s+|\s*\.?$)`)
	bareOrgPattern   = regexp.MustCompile(`(?i)(?:\bat|\bfor)\s+([A-Z][\w&.-]*(?:\s+[A-Z][\w&.-]*)*)`)

	// "assigned Jane to Acme" / "assigned Jane Smith to Acme Corp"
	assignedPattern = regexp.MustCompile(`(?i)assigned\s+(.+?)\s+to\s+(.+?)\s*\.?$`)

	// "requires React" / "required skill React"
	requiredPattern = regexp.MustCompile(`(?i)require[sd]?\s+(?:skill\s+)?(.+?)\s*\.?$`)

	// trailing proficiency mention when not part of the applied form
	proficiencyPattern = regexp.MustCompile(`(?i)(?:with\s+)?([\w-]+)\s+proficiency`)
)

// textExtraction holds whatever the description patterns could recover
type textExtraction struct {
	SkillName   string
	OrgName     string
	PersonName  string
	Proficiency string
	Applied     bool
	Assigned    bool
	Required    bool
}

// extractFromDescription runs the ordered pattern chain over free text.
// Missing fields stay empty; callers treat absence as a valid outcome.
func extractFromDescription(description string) textExtraction {
	var out textExtraction
	text := strings.TrimSpace(description)
	if text == "" {
		return out
	}

	if m := appliedAtPattern.FindStringSubmatch(text); m != nil {
		out.Applied = true
		out.SkillName = cleanName(m[1])
		out.OrgName = cleanName(m[2])
		out.Proficiency = m[3]
		return out
	}

	if m := assignedPattern.FindStringSubmatch(text); m != nil {
		out.Assigned = true
		out.PersonName = cleanName(m[1])
		out.OrgName = cleanName(m[2])
		return out
	}

	if m := requiredPattern.FindStringSubmatch(text); m != nil {
		out.Required = true
		out.SkillName = cleanName(m[1])
	}

	if out.SkillName == "" {
		if m := quotedSkillPattern.FindStringSubmatch(text); m != nil {
			out.SkillName = cleanName(m[1])
		} else if m := bareSkillPattern.FindStringSubmatch(text); m != nil {
			out.SkillName = cleanName(m[1])
		}
	}

	if out.OrgName == "" {
		if m := quotedOrgPattern.FindStringSubmatch(text); m != nil {
			out.OrgName = cleanName(m[1])
		} else if m := bareOrgPattern.FindStringSubmatch(text); m != nil {
			out.OrgName = cleanName(m[1])
		}
	}

	if out.Proficiency == "" {
		if m := proficiencyPattern.FindStringSubmatch(text); m != nil {
			out.Proficiency = m[1]
		}
	}

	return out
}

// cleanName strips quotes and trailing punctuation from a recovered name
func cleanName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Trim(name, `'".,;:`)
	return strings.TrimSpace(name)
}
