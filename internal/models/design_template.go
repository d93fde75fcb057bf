// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// TemplateCategory groups library backgrounds by the document part they
// are meant for.
type TemplateCategory string

const (
	CategoryCoverPage TemplateCategory = "cover_page"
	CategoryBackPage  TemplateCategory = "back_page"
	CategoryDivider   TemplateCategory = "divider"
)

// Valid reports whether c is a known category.
func (c TemplateCategory) Valid() bool {
	switch c {
	case CategoryCoverPage, CategoryBackPage, CategoryDivider:
		return true
	}
	return false
}

// DesignTemplate is a background image in the design library. Templates
// with a nil TenantID are shared by every tenant.
type DesignTemplate struct {
	ID        uuid.UUID        `json:"id"`
	TenantID  uuid.NullUUID    `json:"-"`
	Name      string           `json:"name"`
	Category  TemplateCategory `json:"category"`
	ImageURL  string           `json:"image_url"`
	CreatedAt time.Time        `json:"created_at"`
}

// IsShared reports whether the template belongs to the global library.
func (t *DesignTemplate) IsShared() bool {
	return !t.TenantID.Valid
}
