package services

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/anasmostafa23/Safety-Hub/models"
	"github.com/anasmostafa23/Safety-Hub/repository"

	"github.com/google/uuid"
)

// TemplateService is the registry resolving which checklist is active
// process-wide. Templates are append-only once admitted; sessions bind a
// deep-copied snapshot, so registry changes never affect in-flight audits.
type TemplateService interface {
	GetActive() (*models.Template, error)
	ListAvailable() ([]models.TemplateMeta, error)
	SetActive(id string) error
	Admit(template *models.Template, createdBy string) (string, error)
	LoadFromDir(dir string) error
}

type templateService struct {
	repo repository.TemplateRepository
}

// NewTemplateService creates a new instance of TemplateService.
func NewTemplateService(repo repository.TemplateRepository) TemplateService {
	return &templateService{repo: repo}
}

// GetActive returns a snapshot of the currently active checklist, or nil
// if no template is active. Callers own the returned copy.
func (s *templateService) GetActive() (*models.Template, error) {
	record, err := s.repo.GetActive()
	if err != nil {
		log.Printf("ERROR: [TemplateService] Failed to resolve active template: %v", err)
		return nil, fmt.Errorf("failed to resolve active template: %w", err)
	}
	if record == nil {
		return nil, nil
	}
	template, err := models.ParseTemplate([]byte(record.Definition))
	if err != nil {
		log.Printf("ERROR: [TemplateService] Stored definition for template '%s' is invalid: %v", record.ID, err)
		return nil, fmt.Errorf("stored definition for template '%s' is invalid: %w", record.ID, err)
	}
	return template, nil
}

// ListAvailable returns metadata for every admitted template.
func (s *templateService) ListAvailable() ([]models.TemplateMeta, error) {
	records, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	metas := make([]models.TemplateMeta, 0, len(records))
	for _, record := range records {
		meta := models.TemplateMeta{ID: record.ID, Name: record.Name, IsActive: record.IsActive}
		if template, parseErr := models.ParseTemplate([]byte(record.Definition)); parseErr == nil {
			meta.CategoryCount = len(template.Categories)
			meta.QuestionCount = template.QuestionCount()
		} else {
			log.Printf("WARN: [TemplateService] Skipping counts for unparseable template '%s': %v", record.ID, parseErr)
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

// SetActive makes the given template the process-wide active one,
// deactivating all others.
func (s *templateService) SetActive(id string) error {
	return s.repo.SetActive(id)
}

// Admit registers a new checklist definition without activating it and
// returns its identifier.
func (s *templateService) Admit(template *models.Template, createdBy string) (string, error) {
	if err := template.Validate(); err != nil {
		return "", fmt.Errorf("template rejected: %w", err)
	}
	definition, err := json.Marshal(template)
	if err != nil {
		return "", fmt.Errorf("failed to encode template '%s': %w", template.Name, err)
	}
	record := &models.TemplateRecord{
		ID:         uuid.NewString(),
		Name:       template.Name,
		Definition: string(definition),
		CreatedBy:  createdBy,
	}
	if err := s.repo.Insert(record); err != nil {
		return "", err
	}
	return record.ID, nil
}

// LoadFromDir admits every checklist JSON file in dir that is not already
// registered under the same name. If nothing is active afterwards, the
// first seed template is activated so new sessions can start.
func (s *templateService) LoadFromDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		log.Printf("WARN: [TemplateService] Templates directory '%s' does not exist, skipping seed load.", dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read templates directory '%s': %w", dir, err)
	}

	var firstAdmitted string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			log.Printf("WARN: [TemplateService] Failed to read seed template '%s': %v", path, readErr)
			continue
		}
		template, parseErr := models.ParseTemplate(data)
		if parseErr != nil {
			log.Printf("WARN: [TemplateService] Skipping invalid seed template '%s': %v", path, parseErr)
			continue
		}
		exists, existsErr := s.repo.ExistsByName(template.Name)
		if existsErr != nil {
			return existsErr
		}
		if exists {
			continue
		}
		id, admitErr := s.Admit(template, "seed")
		if admitErr != nil {
			log.Printf("WARN: [TemplateService] Failed to admit seed template '%s': %v", path, admitErr)
			continue
		}
		if firstAdmitted == "" {
			firstAdmitted = id
		}
		log.Printf("INFO: [TemplateService] Seeded template '%s' from '%s'.", template.Name, entry.Name())
	}

	active, err := s.repo.GetActive()
	if err != nil {
		return err
	}
	if active == nil && firstAdmitted != "" {
		log.Printf("INFO: [TemplateService] No active template; activating first seed '%s'.", firstAdmitted)
		return s.repo.SetActive(firstAdmitted)
	}
	return nil
}
