package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/anasmostafa23/Safety-Hub/models"

	openai "github.com/sashabaranov/go-openai"
)

// maxParserInput caps the extracted document text sent to the model,
// roughly 3000 tokens.
const maxParserInput = 12000

const parserSystemPrompt = "You are a safety audit expert. Convert safety guidelines into structured audit checklists. Return ONLY JSON."

const parserPromptTemplate = `Convert the following safety guidelines text into a structured JSON safety audit checklist.

TEXT TO PROCESS:
%s

OUTPUT REQUIREMENTS:
- Return ONLY valid JSON, no other text
- for keyword field write the keyword in this format "keyword": "short_snake_case_id/key_word_in_Russian"
- Follow this exact structure:
{
  "template_name": "Site Safety Audit Checklist",
  "categories": [
    {
      "name": "Category Name",
      "questions": [
        {
          "keyword": "short_snake_case_id/key_word_in_Russian",
          "question_en": "Clear safety audit question",
          "question_ru": "Очищенный вопрос безопасности",
          "options": ["Yes", "No", "N/A"]
        }
      ]
    }
  ]
}`

// ChecklistParser turns extracted document text into a structured audit
// checklist. Text extraction (OCR etc.) happens upstream; this service
// only classifies.
type ChecklistParser interface {
	Parse(ctx context.Context, text string) (*models.Template, error)
}

type parserService struct {
	client *openai.Client
	model  string
}

// NewParserService creates an OpenAI-backed checklist parser. Returns an
// unconfigured parser if apiKey is empty; Parse then fails fast.
func NewParserService(apiKey, model string) ChecklistParser {
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &parserService{client: client, model: model}
}

func (s *parserService) Parse(ctx context.Context, text string) (*models.Template, error) {
	if s.client == nil {
		return nil, errors.New("checklist parsing is not configured (missing OpenAI API key)")
	}
	if len(text) < 50 {
		return nil, errors.New("insufficient text to build a checklist")
	}
	if len(text) > maxParserInput {
		log.Printf("WARN: [ParserService] Input text too long (%d chars), truncating.", len(text))
		text = text[:maxParserInput] + "..."
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.1,
		MaxTokens:   2000,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: parserSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(parserPromptTemplate, text)},
		},
	})
	if err != nil {
		log.Printf("ERROR: [ParserService] OpenAI processing failed: %v", err)
		return nil, fmt.Errorf("checklist extraction failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("checklist extraction returned no choices")
	}

	template, err := models.ParseTemplate([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		log.Printf("ERROR: [ParserService] Model returned an unusable checklist: %v", err)
		return nil, fmt.Errorf("model returned an unusable checklist: %w", err)
	}
	log.Printf("INFO: [ParserService] Extracted checklist '%s' (%d questions).", template.Name, template.QuestionCount())
	return template, nil
}
