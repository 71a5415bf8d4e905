package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/template"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) template.RepositoryAPI {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) GetAll() ([]*template.EmailTemplate, error) {
	var templates []*template.EmailTemplate
	err := r.db.Order("created_at DESC").Find(&templates).Error
	return templates, err
}

func (r *TemplateRepository) GetByID(id uuid.UUID) (*template.EmailTemplate, error) {
	var tmpl template.EmailTemplate
	err := r.db.Where("id = ?", id).First(&tmpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTemplateNotFound
		}
		return nil, err
	}
	return &tmpl, nil
}

func (r *TemplateRepository) Create(tmpl *template.EmailTemplate) error {
	return r.db.Create(tmpl).Error
}

func (r *TemplateRepository) Update(tmpl *template.EmailTemplate) error {
	return r.db.Save(tmpl).Error
}

func (r *TemplateRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&template.EmailTemplate{}).Error
}
