package models

// ActionType enumerates the outbound actions the core hands to the
// messaging transport.
type ActionType string

const (
	ActionShowPrompt   ActionType = "show_prompt"   // Send a new prompt with buttons
	ActionEditPrompt   ActionType = "edit_prompt"   // Update the live prompt in place
	ActionSendDocument ActionType = "send_document" // Deliver a generated report
	ActionSendNotice   ActionType = "send_notice"   // Plain informational text
)

// ChoiceButton is one answer option. Selected marks the recorded answer
// when a question is re-rendered.
type ChoiceButton struct {
	Label    string `json:"label"`
	Callback string `json:"callback"` // e.g. "ans:Yes"
	Selected bool   `json:"selected,omitempty"`
}

// NavButton is a navigation affordance (prev/next/finalize). The set of
// buttons is computed from session state, never stored.
type NavButton struct {
	Label    string `json:"label"`
	Callback string `json:"callback"` // e.g. "nav:prev"
}

// Action is one outbound instruction for the transport. For
// ActionEditPrompt, PromptID names the live prompt to update; the
// transport falls back to delete-and-resend, then send-new, if the edit
// is not possible.
type Action struct {
	Type         ActionType     `json:"type"`
	UserID       string         `json:"user_id"`
	PromptID     string         `json:"prompt_id,omitempty"`
	Text         string         `json:"text,omitempty"`
	Choices      []ChoiceButton `json:"choices,omitempty"`
	Nav          []NavButton    `json:"nav,omitempty"`
	DocumentPath string         `json:"document_path,omitempty"`
}
