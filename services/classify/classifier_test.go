package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/skillboard/backend/models"
	"go.uber.org/zap"
)

func TestClassifier_Classify_KindSelection(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	tests := []struct {
		name         string
		event        *models.ChangeEvent
		expectedKind models.EventKind
	}{
		{
			name: "skill application table insert",
			event: &models.ChangeEvent{
				EventType:  models.EventInsert,
				EntityType: "skill_applications",
			},
			expectedKind: models.KindSkillApplication,
		},
		{
			name: "skill application table delete becomes removal",
			event: &models.ChangeEvent{
				EventType:  models.EventDelete,
				EntityType: "skill_applications",
			},
			expectedKind: models.KindSkillRemoval,
		},
		{
			name: "legacy person_skills alias",
			event: &models.ChangeEvent{
				EventType:  models.EventInsert,
				EntityType: "person_skills",
			},
			expectedKind: models.KindSkillApplication,
		},
		{
			name: "assignment table",
			event: &models.ChangeEvent{
				EventType:  models.EventInsert,
				EntityType: "user_customers",
			},
			expectedKind: models.KindRelationshipAssignment,
		},
		{
			name: "required skill table",
			event: &models.ChangeEvent{
				EventType:  models.EventUpdate,
				EntityType: "organization_skills",
			},
			expectedKind: models.KindRequiredSkillSet,
		},
		{
			name: "applied description on generic table",
			event: &models.ChangeEvent{
				EventType:   models.EventInsert,
				EntityType:  "events",
				Description: "Applied React at Acme with EXPERT proficiency",
			},
			expectedKind: models.KindSkillApplication,
		},
		{
			name: "requirement wording on generic table",
			event: &models.ChangeEvent{
				EventType:   models.EventUpdate,
				EntityType:  "events",
				Description: "Updated skill requirement for Acme",
			},
			expectedKind: models.KindRequiredSkillSet,
		},
		{
			name: "assigned wording on generic table",
			event: &models.ChangeEvent{
				EventType:   models.EventInsert,
				EntityType:  "events",
				Description: "Assigned Jane Smith to Acme Corp",
			},
			expectedKind: models.KindRelationshipAssignment,
		},
		{
			name: "plain insert",
			event: &models.ChangeEvent{
				EventType:   models.EventInsert,
				EntityType:  "people",
				Description: "Created person 'Jane'",
			},
			expectedKind: models.KindGenericInsert,
		},
		{
			name: "plain delete",
			event: &models.ChangeEvent{
				EventType:  models.EventDelete,
				EntityType: "skills",
			},
			expectedKind: models.KindGenericDelete,
		},
		{
			name: "plain update",
			event: &models.ChangeEvent{
				EventType:  models.EventUpdate,
				EntityType: "organizations",
			},
			expectedKind: models.KindGenericUpdate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifier.Classify(tt.event)
			assert.Equal(t, tt.expectedKind, result.Kind)
		})
	}
}

func TestClassifier_Classify_MetadataPriority(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	t.Run("nested objects win over flat aliases and text", func(t *testing.T) {
		event := &models.ChangeEvent{
			EventType:   models.EventInsert,
			EntityType:  "skill_applications",
			Description: "Applied Vue at Globex with basic proficiency",
			Metadata: map[string]interface{}{
				"skill": map[string]interface{}{
					"id":   "skill-1",
					"name": "React",
				},
				"organization": map[string]interface{}{
					"id":   "org-1",
					"name": "Acme",
				},
				"skill_name": "Angular",
			},
		}

		result := classifier.Classify(event)
		require.NotNil(t, result.PrimaryTarget)
		assert.Equal(t, "skill-1", result.PrimaryTarget.ID)
		assert.Equal(t, "React", result.PrimaryTarget.Name)
		require.NotNil(t, result.SecondaryTarget)
		assert.Equal(t, "org-1", result.SecondaryTarget.ID)
		assert.Equal(t, "Acme", result.SecondaryTarget.Name)
	})

	t.Run("flat aliases cover inconsistent producer casing", func(t *testing.T) {
		event := &models.ChangeEvent{
			EventType:  models.EventInsert,
			EntityType: "skill_applications",
			Metadata: map[string]interface{}{
				"skillId":      "skill-2",
				"customerName": "Globex",
			},
		}

		result := classifier.Classify(event)
		require.NotNil(t, result.PrimaryTarget)
		assert.Equal(t, "skill-2", result.PrimaryTarget.ID)
		require.NotNil(t, result.SecondaryTarget)
		assert.Equal(t, "Globex", result.SecondaryTarget.Name)
	})

	t.Run("numeric metadata ids coerce to strings", func(t *testing.T) {
		event := &models.ChangeEvent{
			EventType:  models.EventInsert,
			EntityType: "skill_applications",
			Metadata: map[string]interface{}{
				"skill_id": float64(42),
			},
		}

		result := classifier.Classify(event)
		require.NotNil(t, result.PrimaryTarget)
		assert.Equal(t, "42", result.PrimaryTarget.ID)
	})

	t.Run("entity type supplies the reference for reference tables", func(t *testing.T) {
		event := &models.ChangeEvent{
			EventType:  models.EventUpdate,
			EntityType: "skills",
			EntityID:   "abc-123",
		}

		result := classifier.Classify(event)
		require.NotNil(t, result.PrimaryTarget)
		assert.Equal(t, models.KindSkill, result.PrimaryTarget.Kind)
		assert.Equal(t, "abc-123", result.PrimaryTarget.ID)
	})

	t.Run("description text is the last resort", func(t *testing.T) {
		event := &models.ChangeEvent{
			EventType:   models.EventInsert,
			EntityType:  "skill_applications",
			Description: "Applied Go at Initech",
		}

		result := classifier.Classify(event)
		require.NotNil(t, result.PrimaryTarget)
		assert.Equal(t, "Go", result.PrimaryTarget.Name)
		assert.Empty(t, result.PrimaryTarget.ID)
		require.NotNil(t, result.SecondaryTarget)
		assert.Equal(t, "Initech", result.SecondaryTarget.Name)
	})

	t.Run("absent references stay absent", func(t *testing.T) {
		event := &models.ChangeEvent{
			EventType:  models.EventUpdate,
			EntityType: "people",
		}

		result := classifier.Classify(event)
		assert.Nil(t, result.PrimaryTarget)
		assert.Nil(t, result.SecondaryTarget)
	})
}

func TestClassifier_Classify_ProficiencyAndNotes(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	t.Run("metadata proficiency wins over text", func(t *testing.T) {
		event := &models.ChangeEvent{
			EventType:   models.EventInsert,
			EntityType:  "skill_applications",
			Description: "Applied React at Acme with expert proficiency",
			Metadata: map[string]interface{}{
				"proficiency": "3",
				"notes":       "peer reviewed",
			},
		}

		result := classifier.Classify(event)
		assert.Equal(t, ProficiencyIntermediate, result.Proficiency)
		assert.Equal(t, "peer reviewed", result.Notes)
	})

	t.Run("proficiency recovered from description", func(t *testing.T) {
		event := &models.ChangeEvent{
			EventType:   models.EventInsert,
			EntityType:  "skill_applications",
			Description: "Applied React at Acme with EXPERT proficiency",
		}

		result := classifier.Classify(event)
		assert.Equal(t, ProficiencyExpert, result.Proficiency)
	})
}

func TestClassifier_Classify_AssignmentPerson(t *testing.T) {
	classifier := NewClassifier(zap.NewNop())

	event := &models.ChangeEvent{
		EventType:   models.EventInsert,
		EntityType:  "user_customers",
		Description: "Assigned Jane Smith to Acme Corp",
	}

	result := classifier.Classify(event)
	assert.Equal(t, models.KindRelationshipAssignment, result.Kind)
	require.NotNil(t, result.PrimaryTarget)
	assert.Equal(t, models.KindUser, result.PrimaryTarget.Kind)
	assert.Equal(t, "Jane Smith", result.PrimaryTarget.Name)
	require.NotNil(t, result.SecondaryTarget)
	assert.Equal(t, "Acme Corp", result.SecondaryTarget.Name)
}

func TestExtractFromDescription(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    textExtraction
	}{
		{
			name:        "empty text",
			description: "",
			expected:    textExtraction{},
		},
		{
			name:        "applied with proficiency",
			description: "Applied React at Acme with EXPERT proficiency",
			expected: textExtraction{
				Applied:     true,
				SkillName:   "React",
				OrgName:     "Acme",
				Proficiency: "EXPERT",
			},
		},
		{
			name:        "applied without proficiency",
			description: "applied Go at Initech",
			expected: textExtraction{
				Applied:   true,
				SkillName: "Go",
				OrgName:   "Initech",
			},
		},
		{
			name:        "applied multiword names with trailing period",
			description: "Applied Machine Learning at Acme Corp.",
			expected: textExtraction{
				Applied:   true,
				SkillName: "Machine Learning",
				OrgName:   "Acme Corp",
			},
		},
		{
			name:        "assigned person to organization",
			description: "Assigned Jane Smith to Acme Corp",
			expected: textExtraction{
				Assigned:   true,
				PersonName: "Jane Smith",
				OrgName:    "Acme Corp",
			},
		},
		{
			name:        "required skill",
			description: "Requires skill React",
			expected: textExtraction{
				Required:  true,
				SkillName: "React",
			},
		},
		{
			name:        "quoted skill name",
			description: "Created skill 'React'",
			expected: textExtraction{
				SkillName: "React",
			},
		},
		{
			name:        "quoted organization name",
			description: `Updated record for "Acme Corp"`,
			expected: textExtraction{
				OrgName: "Acme Corp",
			},
		},
		{
			name:        "standalone proficiency mention",
			description: "Changed to advanced proficiency",
			expected: textExtraction{
				Proficiency: "advanced",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractFromDescription(tt.description))
		})
	}
}

func TestNormalizeProficiency(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"  ", ""},
		{"1", ProficiencyNovice},
		{"2", ProficiencyIntermediate},
		{"3", ProficiencyIntermediate},
		{"4", ProficiencyAdvanced},
		{"5", ProficiencyExpert},
		{"b", ProficiencyNovice},
		{"I", ProficiencyIntermediate},
		{"a", ProficiencyAdvanced},
		{"E", ProficiencyExpert},
		{"beginner", ProficiencyNovice},
		{"EXPERT", ProficiencyExpert},
		{"Senior", ProficiencyAdvanced},
		{"mid-level", ProficiencyIntermediate},
		{"guru", ProficiencyExpert},
		{"world class", "World Class"},
		{"custom", "Custom"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeProficiency(tt.input))
		})
	}
}
