package models

import "time"

// User is the engineer's durable profile, upserted on every completed audit.
type User struct {
	ID       string `json:"id" gorm:"primaryKey"` // Opaque stable user identity from the transport
	FullName string `json:"full_name"`
	SiteID   string `json:"site_id"`

	Audits []Audit `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// Audit is the durable result of one completed session.
type Audit struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	SiteID    string    `json:"site_id"`
	Title     string    `json:"title" gorm:"not null"` // Bound template's display name
	Timestamp time.Time `json:"timestamp" gorm:"autoCreateTime"`

	Responses []Response `json:"responses,omitempty" gorm:"foreignKey:AuditID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName specifies the table name for the Audit model.
func (Audit) TableName() string {
	return "audits"
}

// Response is one answered (or sentinel "N/A") checklist row. Rows are
// written in one bulk operation at completion and never mutated.
type Response struct {
	ID            uint   `json:"id" gorm:"primaryKey"`
	AuditID       uint   `json:"audit_id" gorm:"index;not null"`
	QuestionIndex int    `json:"question_index"`
	Category      string `json:"category"`
	Question      string `json:"question" gorm:"type:text"`
	QuestionRU    string `json:"question_ru"`
	Keyword       string `json:"keyword"`
	ResponseValue string `json:"response_value" gorm:"column:response;type:text"`
}

// TableName specifies the table name for the Response model.
func (Response) TableName() string {
	return "responses"
}

// TemplateRecord is a stored checklist definition in the registry.
// Definition holds the template JSON; exactly one record is active
// process-wide at a time.
type TemplateRecord struct {
	ID         string    `json:"id" gorm:"primaryKey"` // UUID assigned at admit time
	Name       string    `json:"name" gorm:"not null"`
	Definition string    `json:"-" gorm:"type:text;not null"`
	CreatedBy  string    `json:"created_by"`
	IsActive   bool      `json:"is_active" gorm:"index"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the TemplateRecord model.
func (TemplateRecord) TableName() string {
	return "templates"
}
