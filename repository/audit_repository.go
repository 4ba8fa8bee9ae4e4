package repository

import (
	"errors"
	"fmt"
	"log"

	"github.com/anasmostafa23/Safety-Hub/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AuditRepository is the persistence gateway for completed audits and the
// read side of the analytics dashboard.
type AuditRepository interface {
	UpsertUser(userID, fullName, siteID string) error
	CreateAudit(userID, siteID, title string) (uint, error)
	SaveResponses(auditID uint, template *models.Template, answers map[int]string) error

	ListAudits() ([]models.AuditListItem, error)
	GetAudit(auditID uint) (*models.Audit, error)
	GetResponses(auditID uint) ([]models.Response, error)
	CountAudits() (int64, error)
	CountResponses() (int64, error)
	ResponseBreakdown() ([]models.ResponseBreakdown, error)
	AuditsBySite() ([]models.SiteCount, error)
	GetUser(userID string) (*models.User, error)
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a GORM-backed audit repository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

// UpsertUser creates or refreshes the engineer's profile row.
func (r *auditRepository) UpsertUser(userID, fullName, siteID string) error {
	user := models.User{ID: userID, FullName: fullName, SiteID: siteID}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "site_id"}),
	}).Create(&user).Error
	if err != nil {
		log.Printf("ERROR: [AuditRepository] Failed to upsert user '%s': %v", userID, err)
		return fmt.Errorf("failed to upsert user '%s': %w", userID, err)
	}
	return nil
}

// CreateAudit inserts the audit header row and returns its id.
func (r *auditRepository) CreateAudit(userID, siteID, title string) (uint, error) {
	audit := models.Audit{UserID: userID, SiteID: siteID, Title: title}
	if err := r.db.Create(&audit).Error; err != nil {
		log.Printf("ERROR: [AuditRepository] Failed to create audit for user '%s': %v", userID, err)
		return 0, fmt.Errorf("failed to create audit for user '%s': %w", userID, err)
	}
	log.Printf("INFO: [AuditRepository] Created audit ID %d for user '%s' (site '%s').", audit.ID, userID, siteID)
	return audit.ID, nil
}

// SaveResponses writes one row per flattened question index in a single
// transaction. Unanswered indices are persisted as "N/A" so response rows
// always align 1:1 with the template's flattened question count.
func (r *auditRepository) SaveResponses(auditID uint, template *models.Template, answers map[int]string) error {
	flat := template.FlatQuestions()
	rows := make([]models.Response, 0, len(flat))
	for _, fq := range flat {
		value, ok := answers[fq.Index]
		if !ok {
			value = "N/A"
		}
		rows = append(rows, models.Response{
			AuditID:       auditID,
			QuestionIndex: fq.Index,
			Category:      fq.Category,
			Question:      fq.Question.QuestionEN,
			QuestionRU:    fq.Question.QuestionRU,
			Keyword:       fq.Question.Keyword,
			ResponseValue: value,
		})
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&rows).Error
	})
	if err != nil {
		log.Printf("ERROR: [AuditRepository] Failed to save %d responses for audit %d: %v", len(rows), auditID, err)
		return fmt.Errorf("failed to save responses for audit %d: %w", auditID, err)
	}
	log.Printf("INFO: [AuditRepository] Saved %d responses for audit %d.", len(rows), auditID)
	return nil
}

// ListAudits returns all audits joined with their assessor, newest first.
func (r *auditRepository) ListAudits() ([]models.AuditListItem, error) {
	var items []models.AuditListItem
	err := r.db.Model(&models.Audit{}).
		Select("audits.id, users.full_name AS assessor, audits.site_id, audits.title, audits.timestamp").
		Joins("JOIN users ON users.id = audits.user_id").
		Order("audits.timestamp DESC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audits: %w", err)
	}
	return items, nil
}

func (r *auditRepository) GetAudit(auditID uint) (*models.Audit, error) {
	var audit models.Audit
	err := r.db.First(&audit, auditID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit %d: %w", auditID, err)
	}
	return &audit, nil
}

func (r *auditRepository) GetResponses(auditID uint) ([]models.Response, error) {
	var responses []models.Response
	err := r.db.Where("audit_id = ?", auditID).Order("question_index ASC").Find(&responses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch responses for audit %d: %w", auditID, err)
	}
	return responses, nil
}

func (r *auditRepository) CountAudits() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Audit{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count audits: %w", err)
	}
	return n, nil
}

func (r *auditRepository) CountResponses() (int64, error) {
	var n int64
	if err := r.db.Model(&models.Response{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return n, nil
}

// ResponseBreakdown groups stored response values with their counts.
func (r *auditRepository) ResponseBreakdown() ([]models.ResponseBreakdown, error) {
	var breakdown []models.ResponseBreakdown
	err := r.db.Model(&models.Response{}).
		Select("response AS value, COUNT(*) AS count").
		Group("response").
		Order("count DESC").
		Scan(&breakdown).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute response breakdown: %w", err)
	}
	return breakdown, nil
}

// AuditsBySite counts audits per site identifier.
func (r *auditRepository) AuditsBySite() ([]models.SiteCount, error) {
	var counts []models.SiteCount
	err := r.db.Model(&models.Audit{}).
		Select("site_id, COUNT(*) AS count").
		Group("site_id").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count audits by site: %w", err)
	}
	return counts, nil
}

func (r *auditRepository) GetUser(userID string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user '%s': %w", userID, err)
	}
	return &user, nil
}
