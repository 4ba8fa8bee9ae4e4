package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anasmostafa23/Safety-Hub/models"
	"github.com/anasmostafa23/Safety-Hub/services"
	"github.com/anasmostafa23/Safety-Hub/utils"

	"github.com/gin-gonic/gin"
)

// APIHandler holds all dependencies for API handlers.
type APIHandler struct {
	auditService     services.AuditService
	templateService  services.TemplateService
	analyticsService services.AnalyticsService
	checklistParser  services.ChecklistParser
	exportsDir       string
}

// NewAPIHandler creates a new APIHandler with necessary dependencies.
func NewAPIHandler(
	auditService services.AuditService,
	templateService services.TemplateService,
	analyticsService services.AnalyticsService,
	checklistParser services.ChecklistParser,
	exportsDir string,
) *APIHandler {
	return &APIHandler{
		auditService:     auditService,
		templateService:  templateService,
		analyticsService: analyticsService,
		checklistParser:  checklistParser,
		exportsDir:       exportsDir,
	}
}

// MessageEventRequest is an inbound free-text message from the transport.
type MessageEventRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// CallbackEventRequest is an inbound button press. Data encodes either an
// answer choice ("ans:<choice>") or a navigation directive ("nav:prev",
// "nav:next", "nav:finalize").
type CallbackEventRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Data   string `json:"data" binding:"required"`
}

// MessageEventHandler handles POST /api/events/message.
// The returned actions are what the transport should deliver; session
// errors surface as a code alongside the corrective actions, never as an
// HTTP failure.
func (h *APIHandler) MessageEventHandler(c *gin.Context) {
	var req MessageEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	var cmd services.Command
	if strings.TrimSpace(req.Text) == "/start" {
		cmd = services.StartCommand{}
	} else {
		cmd = services.TextCommand{Text: req.Text}
	}
	h.dispatch(c, req.UserID, cmd)
}

// CallbackEventHandler handles POST /api/events/callback.
func (h *APIHandler) CallbackEventHandler(c *gin.Context) {
	var req CallbackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	kind, payload, found := strings.Cut(req.Data, ":")
	if !found {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid callback data.", fmt.Errorf("malformed callback token '%s'", req.Data))
		return
	}

	var cmd services.Command
	switch {
	case kind == "ans":
		cmd = services.AnswerCommand{Choice: payload}
	case kind == "nav" && payload == "prev":
		cmd = services.PrevCommand{}
	case kind == "nav" && payload == "next":
		cmd = services.NextCommand{}
	case kind == "nav" && payload == "finalize":
		cmd = services.FinalizeCommand{}
	default:
		utils.SendJSONError(c, http.StatusBadRequest, "Unknown callback directive.", fmt.Errorf("unknown callback token '%s'", req.Data))
		return
	}
	h.dispatch(c, req.UserID, cmd)
}

// dispatch runs one command through the state machine and translates the
// outcome into the event-response envelope.
func (h *APIHandler) dispatch(c *gin.Context, userID string, cmd services.Command) {
	actions, err := h.auditService.Dispatch(userID, cmd)
	code := errorCode(err)
	if err != nil && code == "" {
		// Not a session-level condition: configuration or collaborator
		// failure. The user still gets the notices the service produced.
		log.Printf("ERROR: [API] Dispatch failed for user '%s': %v", userID, err)
	}

	if actions == nil {
		actions = []models.Action{}
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "ok",
		"data": gin.H{
			"actions":    actions,
			"error_code": code,
		},
	})
}

// errorCode maps the session-error taxonomy onto stable codes for the
// transport. Non-session errors map to the empty string.
func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, services.ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, services.ErrInvalidChoice):
		return "invalid_choice"
	case errors.Is(err, services.ErrNoAnswerYet):
		return "no_answer_yet"
	case errors.Is(err, services.ErrAtFirstQuestion):
		return "at_first_question"
	case errors.Is(err, services.ErrNoActiveTemplate):
		return "no_active_template"
	default:
		return ""
	}
}

// ListTemplatesHandler handles GET /api/templates.
func (h *APIHandler) ListTemplatesHandler(c *gin.Context) {
	metas, err := h.templateService.ListAvailable()
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to list templates.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "Templates retrieved successfully",
		"data":    metas,
	})
}

// AdmitTemplateRequest carries a checklist definition to register.
type AdmitTemplateRequest struct {
	CreatedBy  string          `json:"created_by"`
	Definition models.Template `json:"definition" binding:"required"`
}

// AdmitTemplateHandler handles POST /api/templates. The template is
// registered but not activated.
func (h *APIHandler) AdmitTemplateHandler(c *gin.Context) {
	var req AdmitTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	id, err := h.templateService.Admit(&req.Definition, req.CreatedBy)
	if err != nil {
		if strings.Contains(err.Error(), "rejected") {
			utils.SendJSONError(c, http.StatusBadRequest, "Template definition is invalid.", err)
		} else {
			utils.SendJSONError(c, http.StatusInternalServerError, "Failed to admit template.", err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "Template admitted successfully",
		"data":    gin.H{"id": id},
	})
}

// ActivateTemplateHandler handles POST /api/templates/:id/activate.
func (h *APIHandler) ActivateTemplateHandler(c *gin.Context) {
	id := c.Param("id")
	if err := h.templateService.SetActive(id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			utils.SendJSONError(c, http.StatusNotFound, "Template not found.", err)
		} else {
			utils.SendJSONError(c, http.StatusInternalServerError, "Failed to activate template.", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "Template activated",
		"data":    gin.H{"id": id},
	})
}

// ParseTemplateRequest carries extracted document text for AI
// classification into a checklist.
type ParseTemplateRequest struct {
	Text      string `json:"text" binding:"required"`
	CreatedBy string `json:"created_by"`
}

// ParseTemplateHandler handles POST /api/templates/parse: classify the
// text into a checklist and admit it (inactive) in one step.
func (h *APIHandler) ParseTemplateHandler(c *gin.Context) {
	var req ParseTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}

	template, err := h.checklistParser.Parse(c.Request.Context(), req.Text)
	if err != nil {
		utils.SendJSONError(c, http.StatusBadGateway, "Failed to process the document into a checklist.", err)
		return
	}

	id, err := h.templateService.Admit(template, req.CreatedBy)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to admit parsed template.", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "Checklist extracted and admitted",
		"data": gin.H{
			"id":              id,
			"name":            template.Name,
			"questions_count": template.QuestionCount(),
		},
	})
}

// DashboardSummaryHandler handles GET /api/dashboard/summary.
func (h *APIHandler) DashboardSummaryHandler(c *gin.Context) {
	summary, err := h.analyticsService.Summary()
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to compute dashboard summary.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "Summary generated successfully",
		"data":    summary,
	})
}

// ListAuditsHandler handles GET /api/dashboard/audits.
func (h *APIHandler) ListAuditsHandler(c *gin.Context) {
	audits, err := h.analyticsService.ListAudits()
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to fetch audits.", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "Audits retrieved successfully",
		"data":    audits,
	})
}

// AuditDetailHandler handles GET /api/dashboard/audits/:auditID.
func (h *APIHandler) AuditDetailHandler(c *gin.Context) {
	auditID, err := parseUint(c.Param("auditID"))
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid AuditID parameter.", err)
		return
	}

	detail, err := h.analyticsService.AuditDetail(auditID)
	if err != nil {
		utils.SendJSONError(c, http.StatusInternalServerError, "Failed to fetch audit details.", err)
		return
	}
	if detail == nil {
		utils.SendJSONError(c, http.StatusNotFound, "Audit not found.", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    200,
		"message": "Audit details retrieved successfully",
		"data":    detail,
	})
}

// ReportFileHandler handles GET /api/reports/:filename, serving a
// generated PDF. Only base filenames are accepted.
func (h *APIHandler) ReportFileHandler(c *gin.Context) {
	filename := filepath.Base(c.Param("filename"))
	if filename == "." || filename == "/" || !strings.HasSuffix(filename, ".pdf") {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid report filename.", nil)
		return
	}
	c.FileAttachment(filepath.Join(h.exportsDir, filename), filename)
}

// parseUint parses a numeric path parameter.
func parseUint(s string) (uint, error) {
	u, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric ID: %s. Error: %w", s, err)
	}
	return uint(u), nil
}
