package services

import (
	"fmt"
	"log"
	"time"

	"github.com/anasmostafa23/Safety-Hub/models"
	"github.com/anasmostafa23/Safety-Hub/repository"
)

// AnalyticsService aggregates stored audit responses for the dashboard.
type AnalyticsService interface {
	Summary() (*models.DashboardSummary, error)
	ListAudits() ([]models.AuditListItem, error)
	AuditDetail(auditID uint) (*models.AuditDetail, error)
}

type analyticsService struct {
	repo repository.AuditRepository
}

// NewAnalyticsService creates a new instance of AnalyticsService.
func NewAnalyticsService(repo repository.AuditRepository) AnalyticsService {
	return &analyticsService{repo: repo}
}

// Summary computes the dashboard aggregates: totals, response-value
// breakdown with percentages, and audits per site.
func (s *analyticsService) Summary() (*models.DashboardSummary, error) {
	totalAudits, err := s.repo.CountAudits()
	if err != nil {
		return nil, err
	}
	totalResponses, err := s.repo.CountResponses()
	if err != nil {
		return nil, err
	}
	breakdown, err := s.repo.ResponseBreakdown()
	if err != nil {
		return nil, err
	}
	for i := range breakdown {
		if totalResponses > 0 {
			breakdown[i].Percentage = float64(breakdown[i].Count) / float64(totalResponses) * 100
		}
	}
	bySite, err := s.repo.AuditsBySite()
	if err != nil {
		return nil, err
	}

	return &models.DashboardSummary{
		TotalAudits:    totalAudits,
		TotalResponses: totalResponses,
		Breakdown:      breakdown,
		AuditsBySite:   bySite,
		GeneratedAt:    time.Now(),
	}, nil
}

// ListAudits returns all stored audits, newest first.
func (s *analyticsService) ListAudits() ([]models.AuditListItem, error) {
	return s.repo.ListAudits()
}

// AuditDetail returns one audit with its responses in flattened order.
// Returns (nil, nil) when the audit does not exist.
func (s *analyticsService) AuditDetail(auditID uint) (*models.AuditDetail, error) {
	audit, err := s.repo.GetAudit(auditID)
	if err != nil {
		return nil, err
	}
	if audit == nil {
		log.Printf("INFO: [AnalyticsService] Audit %d not found.", auditID)
		return nil, nil
	}
	responses, err := s.repo.GetResponses(auditID)
	if err != nil {
		return nil, err
	}

	assessor := audit.UserID
	user, err := s.repo.GetUser(audit.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assessor for audit %d: %w", auditID, err)
	}
	if user != nil && user.FullName != "" {
		assessor = user.FullName
	}

	return &models.AuditDetail{Audit: *audit, Assessor: assessor, Responses: responses}, nil
}
