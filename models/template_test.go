package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTemplate() *Template {
	return &Template{
		Name: "Site Safety Audit Checklist",
		Categories: []Category{
			{
				Name: "Safety",
				Questions: []Question{
					{Keyword: "helmets", QuestionEN: "Are helmets worn?", QuestionRU: "Носят ли каски?", Options: []string{"Yes", "No", "N/A"}},
					{Keyword: "signage", QuestionEN: "Is signage posted?", QuestionRU: "Размещены ли знаки?", Options: []string{"Yes", "No", "N/A"}},
				},
			},
			{
				Name: "Equipment",
				Questions: []Question{
					{Keyword: "cranes", QuestionEN: "Are cranes inspected?", QuestionRU: "Проверены ли краны?", Options: []string{"Yes", "No"}},
				},
			},
		},
	}
}

func TestTemplate_Flattening(t *testing.T) {
	tmpl := sampleTemplate()

	assert.Equal(t, 3, tmpl.QuestionCount())

	flat := tmpl.FlatQuestions()
	assert.Len(t, flat, 3)

	// Declared order: both Safety questions before the Equipment one.
	assert.Equal(t, 0, flat[0].Index)
	assert.Equal(t, "Safety", flat[0].Category)
	assert.Equal(t, "helmets", flat[0].Question.Keyword)
	assert.Equal(t, "Safety", flat[1].Category)
	assert.Equal(t, "signage", flat[1].Question.Keyword)
	assert.Equal(t, 2, flat[2].Index)
	assert.Equal(t, "Equipment", flat[2].Category)
	assert.Equal(t, "cranes", flat[2].Question.Keyword)
}

func TestTemplate_QuestionAt(t *testing.T) {
	tmpl := sampleTemplate()

	t.Run("Crosses the category boundary", func(t *testing.T) {
		fq, err := tmpl.QuestionAt(2)
		assert.NoError(t, err)
		assert.Equal(t, "Equipment", fq.Category)
		assert.Equal(t, "cranes", fq.Question.Keyword)
	})

	t.Run("Rejects out-of-range indices", func(t *testing.T) {
		_, err := tmpl.QuestionAt(3)
		assert.Error(t, err)
		_, err = tmpl.QuestionAt(-1)
		assert.Error(t, err)
	})
}

func TestQuestion_HasOption(t *testing.T) {
	q := sampleTemplate().Categories[0].Questions[0]
	assert.True(t, q.HasOption("Yes"))
	assert.True(t, q.HasOption("N/A"))
	assert.False(t, q.HasOption("Maybe"))
	assert.False(t, q.HasOption("yes")) // options are exact-match
}

func TestTemplate_Clone(t *testing.T) {
	tmpl := sampleTemplate()
	clone := tmpl.Clone()

	assert.Equal(t, tmpl, clone)

	// Mutating the clone must not touch the original.
	clone.Categories[0].Questions[0].Options[0] = "Changed"
	clone.Categories[1].Name = "Renamed"
	assert.Equal(t, "Yes", tmpl.Categories[0].Questions[0].Options[0])
	assert.Equal(t, "Equipment", tmpl.Categories[1].Name)
}

func TestTemplate_Validate(t *testing.T) {
	t.Run("Accepts a well-formed template", func(t *testing.T) {
		assert.NoError(t, sampleTemplate().Validate())
	})

	t.Run("Rejects a missing name", func(t *testing.T) {
		tmpl := sampleTemplate()
		tmpl.Name = ""
		assert.Error(t, tmpl.Validate())
	})

	t.Run("Rejects a question without options", func(t *testing.T) {
		tmpl := sampleTemplate()
		tmpl.Categories[0].Questions[0].Options = nil
		assert.Error(t, tmpl.Validate())
	})

	t.Run("Rejects an empty checklist", func(t *testing.T) {
		tmpl := &Template{Name: "Empty", Categories: []Category{{Name: "Safety"}}}
		assert.Error(t, tmpl.Validate())
	})
}

func TestParseTemplate(t *testing.T) {
	t.Run("Decodes the checklist file shape", func(t *testing.T) {
		data := []byte(`{
			"template_name": "Site Safety Audit Checklist",
			"categories": [
				{
					"name": "Safety",
					"questions": [
						{
							"keyword": "helmets",
							"question_en": "Are helmets worn?",
							"question_ru": "Носят ли каски?",
							"options": ["Yes", "No", "N/A"]
						}
					]
				}
			]
		}`)

		tmpl, err := ParseTemplate(data)
		assert.NoError(t, err)
		assert.Equal(t, "Site Safety Audit Checklist", tmpl.Name)
		assert.Equal(t, 1, tmpl.QuestionCount())
		assert.Equal(t, "helmets", tmpl.Categories[0].Questions[0].Keyword)
	})

	t.Run("Rejects malformed JSON", func(t *testing.T) {
		_, err := ParseTemplate([]byte("{broken"))
		assert.Error(t, err)
	})

	t.Run("Rejects JSON that fails validation", func(t *testing.T) {
		_, err := ParseTemplate([]byte(`{"template_name": "X", "categories": []}`))
		assert.Error(t, err)
	})
}
