package models

import (
	"fmt"

	"github.com/dmitrijs2005/docme/internal/common"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxNameLength        = 255
	MaxDescriptionLength = 4096
	MaxFieldNameLength   = 255
)

func (f *Folder) Validate() error {
	err := validation.ValidateStruct(f,
		validation.Field(&f.ID, validation.Required),
		validation.Field(&f.Name, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&f.ParentID, validation.NilOrNotEmpty, validation.By(func(any) error {
			if f.ParentID != nil && *f.ParentID == f.ID {
				return fmt.Errorf("folder cannot be its own parent")
			}
			return nil
		})),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func (d *Document) Validate() error {
	err := validation.ValidateStruct(d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.Title, validation.Required, validation.Length(1, MaxNameLength)),
		validation.Field(&d.Description, validation.NilOrNotEmpty, validation.Length(0, MaxDescriptionLength)),
		validation.Field(&d.Icon, validation.Required, validation.In(toAny(Icons)...)),
		validation.Field(&d.Color, validation.Required, validation.In(toAny(Colors)...)),
		validation.Field(&d.FolderID, validation.NilOrNotEmpty),
		validation.Field(&d.Fields),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func (f Field) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, MaxFieldNameLength)),
	)
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
