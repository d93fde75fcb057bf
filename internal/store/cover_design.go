// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"standpress/internal/models"
)

// CoverDesignStore persists one cover design per proposal.
type CoverDesignStore struct {
	db *sql.DB
}

// NewCoverDesignStore creates a new CoverDesignStore with the given database connection.
func NewCoverDesignStore(db *sql.DB) *CoverDesignStore {
	return &CoverDesignStore{db: db}
}

// coverDesignColumns selects a design joined with its library template so
// the background image URL is resolved in the same query.
const coverDesignColumns = `d.id, d.tenant_id, d.proposal_id, d.selected_template,
	d.custom_background, d.elements, d.canvas_width, d.canvas_height, d.next_seq,
	d.version, d.updated_by, d.created_at, d.updated_at, t.image_url`

const coverDesignJoin = `LEFT JOIN design_templates t ON t.id::text = d.selected_template`

func scanCoverDesign(scanner interface{ Scan(...any) error }) (*models.Design, error) {
	var d models.Design
	var elements []byte
	var templateImage sql.NullString
	err := scanner.Scan(
		&d.ID, &d.TenantID, &d.ProposalID, &d.SelectedTemplate,
		&d.CustomBackgroundImage, &elements, &d.CanvasWidth, &d.CanvasHeight, &d.NextSeq,
		&d.Version, &d.UpdatedBy, &d.CreatedAt, &d.UpdatedAt, &templateImage,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(elements, &d.Elements); err != nil {
		return nil, fmt.Errorf("decode elements: %w", err)
	}
	if d.Elements == nil {
		d.Elements = []models.Element{}
	}
	if d.UsesCustomBackground() {
		d.BackgroundImage = d.CustomBackgroundImage
	} else if templateImage.Valid {
		d.BackgroundImage = templateImage.String
	}
	return &d, nil
}

// FindByProposal returns the saved design of a proposal. Returns nil if the
// proposal has no design yet.
func (s *CoverDesignStore) FindByProposal(tenantID, proposalID uuid.UUID) (*models.Design, error) {
	row := s.db.QueryRow(`
		SELECT `+coverDesignColumns+`
		FROM cover_designs d `+coverDesignJoin+`
		WHERE d.tenant_id = $1 AND d.proposal_id = $2
	`, tenantID, proposalID)
	d, err := scanCoverDesign(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cover design: %w", err)
	}
	return d, nil
}

// Upsert inserts or replaces the design of a proposal and increments its
// version. Only variable tokens are stored in the element list; display
// values are never persisted.
func (s *CoverDesignStore) Upsert(d *models.Design) (*models.Design, error) {
	elements := d.Elements
	if elements == nil {
		elements = []models.Element{}
	}
	payload, err := json.Marshal(elements)
	if err != nil {
		return nil, fmt.Errorf("encode elements: %w", err)
	}

	row := s.db.QueryRow(`
		WITH d AS (
			INSERT INTO cover_designs (tenant_id, proposal_id, selected_template,
				custom_background, elements, canvas_width, canvas_height, next_seq, updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (tenant_id, proposal_id) DO UPDATE SET
				selected_template = EXCLUDED.selected_template,
				custom_background = EXCLUDED.custom_background,
				elements = EXCLUDED.elements,
				canvas_width = EXCLUDED.canvas_width,
				canvas_height = EXCLUDED.canvas_height,
				next_seq = GREATEST(cover_designs.next_seq, EXCLUDED.next_seq),
				updated_by = EXCLUDED.updated_by,
				version = cover_designs.version + 1,
				updated_at = NOW()
			RETURNING *
		)
		SELECT `+coverDesignColumns+`
		FROM d `+coverDesignJoin,
		d.TenantID, d.ProposalID, d.SelectedTemplate, d.CustomBackgroundImage,
		string(payload), d.CanvasWidth, d.CanvasHeight, d.NextSeq, d.UpdatedBy,
	)
	saved, err := scanCoverDesign(row)
	if err != nil {
		return nil, fmt.Errorf("upsert cover design: %w", err)
	}
	return saved, nil
}

// Delete removes the design of a proposal. Deleting a missing design is not
// an error.
func (s *CoverDesignStore) Delete(tenantID, proposalID uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM cover_designs WHERE tenant_id = $1 AND proposal_id = $2`, tenantID, proposalID)
	if err != nil {
		return fmt.Errorf("delete cover design: %w", err)
	}
	return nil
}
