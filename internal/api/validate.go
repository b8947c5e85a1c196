package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

func (f Folder) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.UUID, validation.Required, is.UUID),
		validation.Field(&f.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&f.CreatedAt, validation.Required),
		validation.Field(&f.UpdatedAt, validation.Required),
		validation.Field(&f.ParentFolderUUID, validation.NilOrNotEmpty, is.UUID),
	)
}

func (f Field) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.UUID, validation.Required, is.UUID),
		validation.Field(&f.Name, validation.Required, validation.Length(1, 255)),
	)
}

func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.UUID, validation.Required, is.UUID),
		validation.Field(&d.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&d.Icon, validation.Required, validation.In(anyOf(Icons)...)),
		validation.Field(&d.Color, validation.Required, validation.In(anyOf(Colors)...)),
		validation.Field(&d.CreatedAt, validation.Required),
		validation.Field(&d.UpdatedAt, validation.Required),
		validation.Field(&d.FolderUUID, validation.NilOrNotEmpty, is.UUID),
		validation.Field(&d.Fields),
	)
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.EmailFormat),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Username, validation.Required, validation.Length(3, 64), is.Alphanumeric),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 256)),
	)
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func anyOf(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
