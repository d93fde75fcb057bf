// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"standpress/internal/models"
)

// ProposalStore reads the proposal records cover variables resolve against.
type ProposalStore struct {
	db *sql.DB
}

// NewProposalStore creates a new ProposalStore with the given database connection.
func NewProposalStore(db *sql.DB) *ProposalStore {
	return &ProposalStore{db: db}
}

const proposalColumns = `id, tenant_id, proposal_number, company_name, company_logo_url,
	fair_name, fair_country, fair_city, fair_venue, fair_start_date, fair_end_date,
	prepared_by_name, prepared_by_title, prepared_date, created_at, updated_at`

func scanProposal(scanner interface{ Scan(...any) error }) (*models.Proposal, error) {
	var p models.Proposal
	var start, end, prepared sql.NullTime
	err := scanner.Scan(
		&p.ID, &p.TenantID, &p.ProposalNumber, &p.CompanyName, &p.CompanyLogoURL,
		&p.FairName, &p.FairCountry, &p.FairCity, &p.FairVenue, &start, &end,
		&p.PreparedByName, &p.PreparedByTitle, &prepared, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.FairStartDate = nullTime(start)
	p.FairEndDate = nullTime(end)
	p.PreparedDate = nullTime(prepared)
	return &p, nil
}

// FindByID retrieves a proposal of the tenant. Returns nil if not found.
func (s *ProposalStore) FindByID(tenantID, id uuid.UUID) (*models.Proposal, error) {
	row := s.db.QueryRow(`
		SELECT `+proposalColumns+`
		FROM proposals WHERE id = $1 AND tenant_id = $2
	`, id, tenantID)
	p, err := scanProposal(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find proposal by id: %w", err)
	}
	return p, nil
}

// Create inserts a proposal. Proposals are normally written by the sales
// module; this is used by fixtures and tests.
func (s *ProposalStore) Create(p *models.Proposal) (*models.Proposal, error) {
	row := s.db.QueryRow(`
		INSERT INTO proposals (tenant_id, proposal_number, company_name, company_logo_url,
			fair_name, fair_country, fair_city, fair_venue, fair_start_date, fair_end_date,
			prepared_by_name, prepared_by_title, prepared_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+proposalColumns,
		p.TenantID, p.ProposalNumber, p.CompanyName, p.CompanyLogoURL,
		p.FairName, p.FairCountry, p.FairCity, p.FairVenue, p.FairStartDate, p.FairEndDate,
		p.PreparedByName, p.PreparedByTitle, p.PreparedDate,
	)
	created, err := scanProposal(row)
	if err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}
	return created, nil
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
