package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Question is a single checklist item. Text is bilingual; Options is the
// closed set of permissible answers for this question.
type Question struct {
	Keyword    string   `json:"keyword"`
	QuestionEN string   `json:"question_en"`
	QuestionRU string   `json:"question_ru"`
	Options    []string `json:"options"`
}

// Category groups an ordered list of questions under a name.
type Category struct {
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Template is an audit checklist: ordered categories, each with ordered
// questions. It is immutable once admitted to the registry; sessions bind
// a deep copy so later registry changes never affect them.
type Template struct {
	Name       string     `json:"template_name"`
	Categories []Category `json:"categories"`
}

// FlatQuestion pairs a question with its category name at a flattened
// 0-based index. The flattened index is the unit of navigation.
type FlatQuestion struct {
	Index    int
	Category string
	Question Question
}

// FlatQuestions returns all questions in declared order, concatenating the
// categories' question lists.
func (t *Template) FlatQuestions() []FlatQuestion {
	flat := make([]FlatQuestion, 0, t.QuestionCount())
	i := 0
	for _, cat := range t.Categories {
		for _, q := range cat.Questions {
			flat = append(flat, FlatQuestion{Index: i, Category: cat.Name, Question: q})
			i++
		}
	}
	return flat
}

// QuestionCount returns the total number of questions across all categories.
func (t *Template) QuestionCount() int {
	n := 0
	for _, cat := range t.Categories {
		n += len(cat.Questions)
	}
	return n
}

// QuestionAt returns the question at the given flattened index along with
// its category name. Returns an error if the index is out of range.
func (t *Template) QuestionAt(index int) (*FlatQuestion, error) {
	if index < 0 {
		return nil, fmt.Errorf("question index %d out of range", index)
	}
	i := index
	for _, cat := range t.Categories {
		if i < len(cat.Questions) {
			return &FlatQuestion{Index: index, Category: cat.Name, Question: cat.Questions[i]}, nil
		}
		i -= len(cat.Questions)
	}
	return nil, fmt.Errorf("question index %d out of range (template has %d questions)", index, t.QuestionCount())
}

// HasOption reports whether value is one of the question's permissible choices.
func (q *Question) HasOption(value string) bool {
	for _, opt := range q.Options {
		if opt == value {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the template. Sessions bind clones so an
// in-flight audit is unaffected by registry edits.
func (t *Template) Clone() *Template {
	clone := &Template{Name: t.Name, Categories: make([]Category, len(t.Categories))}
	for i, cat := range t.Categories {
		questions := make([]Question, len(cat.Questions))
		for j, q := range cat.Questions {
			questions[j] = Question{
				Keyword:    q.Keyword,
				QuestionEN: q.QuestionEN,
				QuestionRU: q.QuestionRU,
				Options:    append([]string(nil), q.Options...),
			}
		}
		clone.Categories[i] = Category{Name: cat.Name, Questions: questions}
	}
	return clone
}

// Validate checks that the template is usable for an audit session.
func (t *Template) Validate() error {
	if t.Name == "" {
		return errors.New("template has no name")
	}
	if len(t.Categories) == 0 {
		return errors.New("template has no categories")
	}
	for _, cat := range t.Categories {
		if cat.Name == "" {
			return errors.New("template has a category without a name")
		}
		for _, q := range cat.Questions {
			if q.QuestionEN == "" {
				return fmt.Errorf("category '%s' has a question without text", cat.Name)
			}
			if len(q.Options) == 0 {
				return fmt.Errorf("question '%s' has no answer options", q.Keyword)
			}
		}
	}
	if t.QuestionCount() == 0 {
		return errors.New("template has no questions")
	}
	return nil
}

// ParseTemplate decodes a checklist definition from its JSON file shape.
func ParseTemplate(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("invalid template JSON: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// TemplateMeta is the registry's listing view of a stored template.
type TemplateMeta struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CategoryCount int    `json:"categories_count"`
	QuestionCount int    `json:"questions_count"`
	IsActive      bool   `json:"is_active"`
}
