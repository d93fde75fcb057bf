// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"standpress/internal/cache"
	"standpress/internal/slug"
	"standpress/internal/variables"
)

// CoverPDF renders the cover of a proposal as an A4 PDF with every variable
// substituted. Renders of saved designs are cached per design version,
// proposal revision, background and locale.
func (a *API) CoverPDF(w http.ResponseWriter, r *http.Request) {
	proposal, ok := a.loadProposal(w, r)
	if !ok {
		return
	}
	design, err := a.loadDesign(proposal)
	if err != nil {
		slog.Error("cover design lookup failed", "error", err, "proposal_id", proposal.ID)
		writeError(w, http.StatusInternalServerError, "Failed to load cover design.")
		return
	}

	ctx := r.Context()
	loc := a.locale(r)

	var key string
	if a.Renders != nil && design.IsSaved() {
		key = cache.RenderKey(design.ID, design.Version, proposal.UpdatedAt, design.BackgroundImage, string(loc))
		if pdf, ok := a.Renders.Get(ctx, key); ok {
			writePDF(w, proposal.ProposalNumber, pdf)
			return
		}
	}

	pdf, err := a.Renderer.CoverPDF(ctx, design, variables.RecordFromProposal(proposal), loc)
	if err != nil {
		slog.Error("cover pdf render failed", "error", err, "proposal_id", proposal.ID)
		writeError(w, http.StatusInternalServerError, "Failed to render cover.")
		return
	}
	if key != "" {
		a.Renders.Set(ctx, key, pdf)
	}
	writePDF(w, proposal.ProposalNumber, pdf)
}

func writePDF(w http.ResponseWriter, number string, pdf []byte) {
	name := slug.Filename("cover", number, "pdf")
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
