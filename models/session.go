package models

import "time"

// SessionPhase tracks where a user is in the audit conversation.
type SessionPhase string

const (
	PhaseAwaitingName SessionPhase = "awaiting_name" // Waiting for the engineer's full name
	PhaseAwaitingSite SessionPhase = "awaiting_site" // Waiting for the site identifier
	PhaseInProgress   SessionPhase = "in_progress"   // Walking through the checklist
	PhaseCompleted    SessionPhase = "completed"     // Finalized; session is about to be destroyed
)

// AuditSession is the mutable per-user progress record through one
// in-flight audit. Sessions live in process memory only; they are not
// persisted across restarts.
type AuditSession struct {
	UserID   string
	Phase    SessionPhase
	FullName string
	SiteID   string

	// Template is a snapshot bound at the moment the session enters
	// PhaseInProgress. Registry changes never affect it.
	Template *Template

	// CurrentIndex is the flattened question index.
	// Invariant: 0 <= CurrentIndex <= Template.QuestionCount();
	// CurrentIndex == QuestionCount signals completion.
	CurrentIndex int

	// Answers maps flattened question index to the selected option.
	// Sparse: indices never visited have no entry. Every recorded value
	// is a member of that question's Options.
	Answers map[int]string

	// PromptID identifies the last-rendered live prompt, used to decide
	// edit-in-place vs. send-new. Empty until the first prompt is shown.
	PromptID string

	StartedAt time.Time
	UpdatedAt time.Time
}

// NewAuditSession creates a session in the initial onboarding phase.
func NewAuditSession(userID string) *AuditSession {
	now := time.Now()
	return &AuditSession{
		UserID:    userID,
		Phase:     PhaseAwaitingName,
		Answers:   make(map[int]string),
		StartedAt: now,
		UpdatedAt: now,
	}
}

// Answer returns the recorded answer for a flattened index, if any.
func (s *AuditSession) Answer(index int) (string, bool) {
	v, ok := s.Answers[index]
	return v, ok
}

// AnsweredCurrent reports whether the question at CurrentIndex has a
// recorded answer.
func (s *AuditSession) AnsweredCurrent() bool {
	_, ok := s.Answers[s.CurrentIndex]
	return ok
}

// AtLastQuestion reports whether CurrentIndex points at the final question.
func (s *AuditSession) AtLastQuestion() bool {
	return s.Template != nil && s.CurrentIndex == s.Template.QuestionCount()-1
}

// Touch refreshes the activity timestamp used by the TTL sweeper.
func (s *AuditSession) Touch() {
	s.UpdatedAt = time.Now()
}
