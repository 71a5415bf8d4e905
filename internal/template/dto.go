package template

import (
	"github.com/mailroom-io/mailroom/internal"
)

type TemplateDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	HTMLContent string  `json:"html_content"`
}

func (dto TemplateDTO) Validate() error {
	if dto.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if dto.HTMLContent == "" {
		return internal.NewValidationError("html content is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type TemplatesResponse struct {
	Templates []*EmailTemplate `json:"templates"`
}
