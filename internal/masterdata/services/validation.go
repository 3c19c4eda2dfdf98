package services

import (
	"fmt"
	"strings"

	"github.com/steticsoft-maker/Frontend-SteticSoft-sub004/internal/masterdata/shared"
)

func (c *Catalog) validate(s Service) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: service name", shared.ErrRequiredField)
	}
	if s.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than zero", shared.ErrValidation)
	}
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("%w: duration must be greater than zero", shared.ErrValidation)
	}
	return nil
}
