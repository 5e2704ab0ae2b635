package user

import (
	"strings"

	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/core/common/validation"
)

type CreateUserDTO struct {
	Username   string `json:"username"`
	Role       string `json:"role"`
	Clearance  int    `json:"clearance"`
	Department string `json:"department"`
}

func (d *CreateUserDTO) Validate() error {
	d.Username = strings.TrimSpace(d.Username)
	d.Role = strings.TrimSpace(d.Role)

	v := validation.NewValidator()
	v.Field("username", d.Username).Required().MinLength(3).MaxLength(64)
	v.Field("role", d.Role).Required().OneOf(internal.AllRoles(), internal.ErrCodeInvalidRole)
	v.Field("clearance", d.Clearance).RangeInt(internal.ClearanceMin, internal.ClearanceMax, internal.ErrCodeInvalidClearance)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateClearanceDTO struct {
	Clearance int `json:"clearance"`
}

func (d *UpdateClearanceDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("clearance", d.Clearance).RangeInt(internal.ClearanceMin, internal.ClearanceMax, internal.ErrCodeInvalidClearance)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateRoleDTO struct {
	Role string `json:"role"`
}

func (d *UpdateRoleDTO) Validate() error {
	d.Role = strings.TrimSpace(d.Role)
	v := validation.NewValidator()
	v.Field("role", d.Role).Required().OneOf(internal.AllRoles(), internal.ErrCodeInvalidRole)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type SuspendDTO struct {
	Suspended bool `json:"suspended"`
}

type AddNoteDTO struct {
	Note string `json:"note"`
}

func (d *AddNoteDTO) Validate() error {
	d.Note = strings.TrimSpace(d.Note)
	v := validation.NewValidator()
	v.Field("note", d.Note).Required().MaxLength(2000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// CreatedUserResponse carries the one-time clear temporary password back to
// the HR operator.
type CreatedUserResponse struct {
	User              *User  `json:"user"`
	TemporaryPassword string `json:"temporary_password"`
}

type PasswordResetResponse struct {
	TemporaryPassword string `json:"temporary_password"`
}
