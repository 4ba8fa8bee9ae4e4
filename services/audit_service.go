package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/anasmostafa23/Safety-Hub/models"
	"github.com/anasmostafa23/Safety-Hub/repository"

	"github.com/google/uuid"
)

// Session errors are user-visible and never corrupt session state.
// Configuration and collaborator failures are wrapped separately.
var (
	ErrSessionExpired   = errors.New("session expired, use /start to begin a new audit")
	ErrInvalidChoice    = errors.New("that answer is not one of the available options")
	ErrNoAnswerYet      = errors.New("please answer the current question first")
	ErrAtFirstQuestion  = errors.New("already at the first question")
	ErrNoActiveTemplate = errors.New("no audit checklist is currently active, please try again later")
)

// Command is an inbound operation for the session state machine. The
// transport decodes its event shape into one of these before dispatch.
type Command interface {
	isCommand()
}

// StartCommand begins a brand-new session, replacing any existing one.
type StartCommand struct{}

// TextCommand carries free-text input (name, site id).
type TextCommand struct {
	Text string
}

// AnswerCommand records a choice for the current question.
type AnswerCommand struct {
	Choice string
}

// NextCommand moves past an already-answered question.
type NextCommand struct{}

// PrevCommand revisits the previous question.
type PrevCommand struct{}

// FinalizeCommand completes the audit from the last answered question.
type FinalizeCommand struct{}

func (StartCommand) isCommand()    {}
func (TextCommand) isCommand()     {}
func (AnswerCommand) isCommand()   {}
func (NextCommand) isCommand()     {}
func (PrevCommand) isCommand()     {}
func (FinalizeCommand) isCommand() {}

// AuditService is the audit session state machine. Dispatch applies one
// command to the user's session and returns the outbound actions the
// transport should deliver. On session errors it returns both the
// corrective actions (notice and/or re-rendered prompt) and the sentinel
// error, so callers can classify without losing the user-facing reply.
type AuditService interface {
	Dispatch(userID string, cmd Command) ([]models.Action, error)
}

type auditService struct {
	sessions  repository.SessionRepository
	templates TemplateService
	audits    repository.AuditRepository
	reports   ReportRenderer
}

// NewAuditService creates a new instance of AuditService.
func NewAuditService(
	sessions repository.SessionRepository,
	templates TemplateService,
	audits repository.AuditRepository,
	reports ReportRenderer,
) AuditService {
	return &auditService{
		sessions:  sessions,
		templates: templates,
		audits:    audits,
		reports:   reports,
	}
}

func (s *auditService) Dispatch(userID string, cmd Command) ([]models.Action, error) {
	switch c := cmd.(type) {
	case StartCommand:
		return s.start(userID)
	case TextCommand:
		return s.handleText(userID, c.Text)
	case AnswerCommand:
		return s.handleAnswer(userID, c.Choice)
	case NextCommand:
		return s.handleNext(userID)
	case PrevCommand:
		return s.handlePrev(userID)
	case FinalizeCommand:
		return s.handleFinalize(userID)
	default:
		return nil, fmt.Errorf("unknown command type %T", cmd)
	}
}

// start creates a fresh session in the onboarding phase. Any previous
// session for the user is discarded.
func (s *auditService) start(userID string) ([]models.Action, error) {
	session := models.NewAuditSession(userID)
	s.sessions.Put(session)
	log.Printf("INFO: [AuditService] Started new session for user '%s'.", userID)
	return []models.Action{notice(userID, "👷 Please enter your full name:")}, nil
}

func (s *auditService) handleText(userID, text string) ([]models.Action, error) {
	session, exists := s.sessions.Get(userID)
	if !exists {
		return []models.Action{notice(userID, "Session expired. Please /start again.")}, ErrSessionExpired
	}

	text = strings.TrimSpace(text)
	switch session.Phase {
	case models.PhaseAwaitingName:
		session.FullName = text
		session.Phase = models.PhaseAwaitingSite
		session.Touch()
		return []models.Action{notice(userID, "📍 Now enter the Site ID:")}, nil

	case models.PhaseAwaitingSite:
		return s.bindTemplate(session, text)

	default:
		// Mid-checklist free text: answers come through buttons only.
		return []models.Action{notice(userID, "Please use the buttons to respond.")}, nil
	}
}

// bindTemplate snapshots the active checklist and moves the session into
// question traversal. If no template is active the session is aborted.
func (s *auditService) bindTemplate(session *models.AuditSession, siteID string) ([]models.Action, error) {
	session.SiteID = siteID

	template, err := s.templates.GetActive()
	if err != nil {
		s.sessions.Remove(session.UserID)
		log.Printf("ERROR: [AuditService] Failed to resolve active template for user '%s': %v", session.UserID, err)
		return []models.Action{notice(session.UserID, "❌ Could not load the audit checklist. Please try again later.")},
			fmt.Errorf("failed to resolve active template: %w", err)
	}
	if template == nil {
		s.sessions.Remove(session.UserID)
		log.Printf("WARN: [AuditService] No active template; aborting session for user '%s'.", session.UserID)
		return []models.Action{notice(session.UserID, "❌ No audit checklist is active right now. Please try again later.")},
			ErrNoActiveTemplate
	}

	session.Template = template
	session.CurrentIndex = 0
	session.Answers = make(map[int]string)
	session.Phase = models.PhaseInProgress
	session.Touch()

	actions := []models.Action{
		notice(session.UserID, fmt.Sprintf("✅ Thanks, %s!\n📄 Starting audit for Site ID: %s", session.FullName, session.SiteID)),
	}
	prompt, err := s.renderPrompt(session)
	if err != nil {
		return actions, err
	}
	log.Printf("INFO: [AuditService] User '%s' began audit '%s' (%d questions) for site '%s'.",
		session.UserID, template.Name, template.QuestionCount(), session.SiteID)
	return append(actions, prompt), nil
}

func (s *auditService) handleAnswer(userID, choice string) ([]models.Action, error) {
	session, exists := s.inProgress(userID)
	if !exists {
		return []models.Action{notice(userID, "Session expired. Please /start again.")}, ErrSessionExpired
	}

	fq, err := session.Template.QuestionAt(session.CurrentIndex)
	if err != nil {
		return nil, err
	}
	if !fq.Question.HasOption(choice) {
		// Signal only: no answer recorded, index unchanged, prompt re-shown.
		log.Printf("WARN: [AuditService] User '%s' sent invalid choice '%s' for question %d.", userID, choice, session.CurrentIndex)
		prompt, renderErr := s.renderPrompt(session)
		if renderErr != nil {
			return nil, renderErr
		}
		return []models.Action{prompt}, ErrInvalidChoice
	}

	session.Answers[session.CurrentIndex] = choice
	if !session.AtLastQuestion() {
		// Recording and advancing happen in the same step; Next exists only
		// to move past an already-answered question without changing it.
		session.CurrentIndex++
	}
	session.Touch()

	prompt, err := s.renderPrompt(session)
	if err != nil {
		return nil, err
	}
	return []models.Action{prompt}, nil
}

func (s *auditService) handleNext(userID string) ([]models.Action, error) {
	session, exists := s.inProgress(userID)
	if !exists {
		return []models.Action{notice(userID, "Session expired. Please /start again.")}, ErrSessionExpired
	}
	if !session.AnsweredCurrent() {
		prompt, err := s.renderPrompt(session)
		if err != nil {
			return nil, err
		}
		return []models.Action{prompt}, ErrNoAnswerYet
	}
	if !session.AtLastQuestion() {
		session.CurrentIndex++
		session.Touch()
	}
	// On the last question Next is a no-op re-render; completion goes
	// through Finalize only.
	prompt, err := s.renderPrompt(session)
	if err != nil {
		return nil, err
	}
	return []models.Action{prompt}, nil
}

func (s *auditService) handlePrev(userID string) ([]models.Action, error) {
	session, exists := s.inProgress(userID)
	if !exists {
		return []models.Action{notice(userID, "Session expired. Please /start again.")}, ErrSessionExpired
	}
	if session.CurrentIndex == 0 {
		prompt, err := s.renderPrompt(session)
		if err != nil {
			return nil, err
		}
		return []models.Action{prompt}, ErrAtFirstQuestion
	}
	session.CurrentIndex--
	session.Touch()
	prompt, err := s.renderPrompt(session)
	if err != nil {
		return nil, err
	}
	return []models.Action{prompt}, nil
}

func (s *auditService) handleFinalize(userID string) ([]models.Action, error) {
	session, exists := s.inProgress(userID)
	if !exists {
		return []models.Action{notice(userID, "Session expired. Please /start again.")}, ErrSessionExpired
	}
	if !session.AtLastQuestion() || !session.AnsweredCurrent() {
		prompt, err := s.renderPrompt(session)
		if err != nil {
			return nil, err
		}
		return []models.Action{prompt}, ErrNoAnswerYet
	}

	session.CurrentIndex = session.Template.QuestionCount()
	session.Phase = models.PhaseCompleted
	return s.complete(session)
}

// complete persists the audit, renders the report, and destroys the
// session. Persist runs before render so a rendering failure never loses
// durable data. The session is destroyed regardless of either outcome;
// completion is terminal.
func (s *auditService) complete(session *models.AuditSession) ([]models.Action, error) {
	defer s.sessions.Remove(session.UserID)

	userID := session.UserID
	if err := s.audits.UpsertUser(userID, session.FullName, session.SiteID); err != nil {
		return []models.Action{notice(userID, "❌ Failed to save your audit. Please /start again.")},
			fmt.Errorf("completion persist failed: %w", err)
	}
	auditID, err := s.audits.CreateAudit(userID, session.SiteID, session.Template.Name)
	if err != nil {
		return []models.Action{notice(userID, "❌ Failed to save your audit. Please /start again.")},
			fmt.Errorf("completion persist failed: %w", err)
	}
	if err := s.audits.SaveResponses(auditID, session.Template, session.Answers); err != nil {
		return []models.Action{notice(userID, "❌ Failed to save your audit responses. Please /start again.")},
			fmt.Errorf("completion persist failed: %w", err)
	}

	actions := []models.Action{notice(userID, "✅ Audit complete! Generating PDF...")}

	path, err := s.reports.Render(session.FullName, session.Template, session.Answers, session.SiteID)
	if err != nil {
		log.Printf("ERROR: [AuditService] Report rendering failed for audit %d (user '%s'): %v", auditID, userID, err)
		actions = append(actions, notice(userID, "⚠️ Your audit was saved, but the PDF report could not be generated."))
		return actions, fmt.Errorf("completion render failed: %w", err)
	}

	actions = append(actions,
		models.Action{Type: models.ActionSendDocument, UserID: userID, DocumentPath: path},
		notice(userID, "Use /start to start a new audit."),
	)
	log.Printf("INFO: [AuditService] Audit %d completed for user '%s'; session destroyed.", auditID, userID)
	return actions, nil
}

// inProgress fetches the user's session if it is in the traversal phase.
func (s *auditService) inProgress(userID string) (*models.AuditSession, bool) {
	session, exists := s.sessions.Get(userID)
	if !exists || session.Phase != models.PhaseInProgress {
		return nil, false
	}
	return session, true
}

// renderPrompt builds the prompt for the current question: 1-based index
// and total, bilingual text, a marker on the recorded choice, and the
// navigation affordances computed from session state. The first render
// sends a new prompt; later renders edit the live one in place so the
// user never sees two live prompts.
func (s *auditService) renderPrompt(session *models.AuditSession) (models.Action, error) {
	fq, err := session.Template.QuestionAt(session.CurrentIndex)
	if err != nil {
		return models.Action{}, err
	}

	total := session.Template.QuestionCount()
	text := fmt.Sprintf("Q%d/%d: %s\n\n🇷🇺 %s", session.CurrentIndex+1, total, fq.Question.QuestionEN, fq.Question.QuestionRU)

	recorded, answered := session.Answer(session.CurrentIndex)
	choices := make([]models.ChoiceButton, 0, len(fq.Question.Options))
	for _, opt := range fq.Question.Options {
		btn := models.ChoiceButton{Label: opt, Callback: "ans:" + opt}
		if answered && opt == recorded {
			btn.Label = "✅ " + opt
			btn.Selected = true
		}
		choices = append(choices, btn)
	}

	var nav []models.NavButton
	if session.CurrentIndex > 0 {
		nav = append(nav, models.NavButton{Label: "⬅️ Previous", Callback: "nav:prev"})
	}
	if answered && !session.AtLastQuestion() {
		nav = append(nav, models.NavButton{Label: "➡️ Next", Callback: "nav:next"})
	}
	if answered && session.AtLastQuestion() {
		nav = append(nav, models.NavButton{Label: "🏁 Finalize", Callback: "nav:finalize"})
	}

	actionType := models.ActionEditPrompt
	if session.PromptID == "" {
		session.PromptID = uuid.NewString()
		actionType = models.ActionShowPrompt
	}
	return models.Action{
		Type:     actionType,
		UserID:   session.UserID,
		PromptID: session.PromptID,
		Text:     text,
		Choices:  choices,
		Nav:      nav,
	}, nil
}

func notice(userID, text string) models.Action {
	return models.Action{Type: models.ActionSendNotice, UserID: userID, Text: text}
}
