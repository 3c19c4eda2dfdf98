package suppliers

import (
	"fmt"
	"strings"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/shared"
)

var documentTypes = map[string]bool{
	"NIT": true,
	"CC":  true,
	"CE":  true,
}

func (s *Service) validate(sup Supplier) error {
	if strings.TrimSpace(sup.Name) == "" {
		return fmt.Errorf("%w: supplier name", shared.ErrRequiredField)
	}
	if strings.TrimSpace(sup.DocumentNumber) == "" {
		return fmt.Errorf("%w: document number", shared.ErrRequiredField)
	}
	if !documentTypes[sup.DocumentType] {
		return fmt.Errorf("%w: document type must be NIT, CC or CE", shared.ErrValidation)
	}
	return nil
}
