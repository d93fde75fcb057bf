// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal is the slice of a sales proposal that cover-page variables are
// resolved against. Optional fields are nil or empty when the sales team
// has not filled them in yet.
type Proposal struct {
	ID              uuid.UUID  `json:"id"`
	TenantID        uuid.UUID  `json:"-"`
	ProposalNumber  string     `json:"proposal_number"`
	CompanyName     string     `json:"company_name"`
	CompanyLogoURL  string     `json:"company_logo_url"`
	FairName        string     `json:"fair_name"`
	FairCountry     string     `json:"fair_country"`
	FairCity        string     `json:"fair_city"`
	FairVenue       string     `json:"fair_venue"`
	FairStartDate   *time.Time `json:"fair_start_date,omitempty"`
	FairEndDate     *time.Time `json:"fair_end_date,omitempty"`
	PreparedByName  string     `json:"prepared_by_name"`
	PreparedByTitle string     `json:"prepared_by_title"`
	PreparedDate    *time.Time `json:"prepared_date,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
