package classify

import (
	"fmt"
	"strings"

	"github.com/upb/skillboard/backend/models"
)

// Alias lists for flat metadata keys. Upstream producers are inconsistent
// about casing and separators, so every known spelling is checked.
var (
	skillIDAliases   = []string{"skill_id", "skillId", "skillID", "skill-id"}
	skillNameAliases = []string{"skill_name", "skillName", "skill", "skill_title"}

	orgIDAliases = []string{
		"organization_id", "organizationId", "org_id", "orgId",
		"customer_id", "customerId", "company_id", "companyId",
	}
	orgNameAliases = []string{
		"organization_name", "organizationName", "organization",
		"customer_name", "customerName", "customer",
		"company_name", "companyName", "company",
	}

	proficiencyAliases = []string{"proficiency", "proficiency_level", "proficiencyLevel", "level"}
	notesAliases       = []string{"notes", "note", "comment", "comments"}
)

// Nested object keys probed for structured references
var (
	skillObjectKeys = []string{"skill"}
	orgObjectKeys   = []string{"organization", "customer", "company"}
)

// metadataSkill extracts a skill reference from metadata, nested objects
// first, flat aliases second. Returns nil when nothing usable is present.
func metadataSkill(metadata map[string]interface{}) *models.EntityReference {
	if ref := nestedReference(metadata, models.KindSkill, skillObjectKeys); ref != nil {
		return ref
	}
	return flatReference(metadata, models.KindSkill, skillIDAliases, skillNameAliases)
}

// metadataOrganization extracts an organization reference from metadata
func metadataOrganization(metadata map[string]interface{}) *models.EntityReference {
	if ref := nestedReference(metadata, models.KindOrganization, orgObjectKeys); ref != nil {
		return ref
	}
	return flatReference(metadata, models.KindOrganization, orgIDAliases, orgNameAliases)
}

// HasEntityReference reports whether metadata carries any usable skill or
// organization reference, nested or flat
func HasEntityReference(metadata map[string]interface{}) bool {
	return metadataSkill(metadata) != nil || metadataOrganization(metadata) != nil
}

// metadataProficiency extracts a raw proficiency value from metadata
func metadataProficiency(metadata map[string]interface{}) string {
	return flatString(metadata, proficiencyAliases)
}

// metadataNotes extracts free-text notes from metadata
func metadataNotes(metadata map[string]interface{}) string {
	return flatString(metadata, notesAliases)
}

// nestedReference probes metadata for an object value carrying id/name fields
func nestedReference(metadata map[string]interface{}, kind models.EntityKind, keys []string) *models.EntityReference {
	for _, key := range keys {
		value, ok := metadata[key]
		if !ok {
			continue
		}
		obj, ok := value.(map[string]interface{})
		if !ok {
			continue
		}

		id := stringValue(obj["id"])
		name := stringValue(obj["name"])
		if id == "" && name == "" {
			continue
		}
		return &models.EntityReference{Kind: kind, ID: id, Name: name}
	}
	return nil
}

// flatReference builds a reference from flat alias keys. Either an id or a
// name alone is enough; both are carried when present.
func flatReference(metadata map[string]interface{}, kind models.EntityKind, idAliases, nameAliases []string) *models.EntityReference {
	id := flatString(metadata, idAliases)
	name := flatString(metadata, nameAliases)
	if id == "" && name == "" {
		return nil
	}
	return &models.EntityReference{Kind: kind, ID: id, Name: name}
}

// flatString returns the first non-empty string value among alias keys
func flatString(metadata map[string]interface{}, aliases []string) string {
	for _, alias := range aliases {
		if value, ok := metadata[alias]; ok {
			if s := stringValue(value); s != "" {
				return s
			}
		}
	}
	return ""
}

// stringValue coerces a loosely-typed metadata value to a display string.
// JSON numbers arrive as float64; integral values render without a decimal.
func stringValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return ""
	}
}
