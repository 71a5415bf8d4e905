package template

import (
	"time"

	"github.com/google/uuid"
)

// EmailTemplate is a reusable HTML body administrators curate for the
// compose form. Templates are a content source only; the send workflow
// receives the final HTML and does not resolve templates itself.
type EmailTemplate struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description *string   `json:"description,omitempty"`
	HTMLContent string    `json:"html_content" gorm:"column:html_content;not null"`
	CreatedByID uuid.UUID `json:"created_by_id" gorm:"type:uuid;column:created_by"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (EmailTemplate) TableName() string {
	return "email_templates"
}

func NewEmailTemplate(name string, description *string, htmlContent string, createdByID uuid.UUID) *EmailTemplate {
	now := time.Now()
	return &EmailTemplate{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		HTMLContent: htmlContent,
		CreatedByID: createdByID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
