// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"standpress/internal/models"
)

// DesignTemplateStore handles the background library used by the cover
// designer.
type DesignTemplateStore struct {
	db *sql.DB
}

// NewDesignTemplateStore creates a new DesignTemplateStore with the given database connection.
func NewDesignTemplateStore(db *sql.DB) *DesignTemplateStore {
	return &DesignTemplateStore{db: db}
}

// designTemplateColumns lists the columns selected in design template queries.
const designTemplateColumns = `id, tenant_id, name, category, image_url, created_at`

// scanDesignTemplate scans a design template row from the result set.
func scanDesignTemplate(scanner interface{ Scan(...any) error }) (*models.DesignTemplate, error) {
	var t models.DesignTemplate
	err := scanner.Scan(&t.ID, &t.TenantID, &t.Name, &t.Category, &t.ImageURL, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByCategory returns the templates of a category visible to a tenant:
// its own uploads plus the shared library, ordered by name.
func (s *DesignTemplateStore) ListByCategory(tenantID uuid.UUID, category models.TemplateCategory) ([]models.DesignTemplate, error) {
	rows, err := s.db.Query(`
		SELECT `+designTemplateColumns+`
		FROM design_templates
		WHERE category = $1 AND (tenant_id = $2 OR tenant_id IS NULL)
		ORDER BY name, created_at
	`, category, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list design templates: %w", err)
	}
	defer rows.Close()

	var items []models.DesignTemplate
	for rows.Next() {
		t, err := scanDesignTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan design template: %w", err)
		}
		items = append(items, *t)
	}
	return items, rows.Err()
}

// FindByID retrieves a template visible to the tenant. Returns nil if not found.
func (s *DesignTemplateStore) FindByID(tenantID, id uuid.UUID) (*models.DesignTemplate, error) {
	row := s.db.QueryRow(`
		SELECT `+designTemplateColumns+`
		FROM design_templates
		WHERE id = $1 AND (tenant_id = $2 OR tenant_id IS NULL)
	`, id, tenantID)
	t, err := scanDesignTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find design template by id: %w", err)
	}
	return t, nil
}

// Create inserts a new template and returns it with the generated ID.
func (s *DesignTemplateStore) Create(t *models.DesignTemplate) (*models.DesignTemplate, error) {
	row := s.db.QueryRow(`
		INSERT INTO design_templates (tenant_id, name, category, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING `+designTemplateColumns,
		t.TenantID, t.Name, t.Category, t.ImageURL,
	)
	created, err := scanDesignTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("create design template: %w", err)
	}
	return created, nil
}

// Delete removes a tenant-owned template and returns it so the caller can
// clean up the stored image. Shared templates cannot be deleted by a tenant.
func (s *DesignTemplateStore) Delete(tenantID, id uuid.UUID) (*models.DesignTemplate, error) {
	row := s.db.QueryRow(`
		DELETE FROM design_templates WHERE id = $1 AND tenant_id = $2
		RETURNING `+designTemplateColumns, id, tenantID)
	t, err := scanDesignTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete design template: %w", err)
	}
	return t, nil
}
