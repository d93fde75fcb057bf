// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"standpress/internal/canvas"
	"standpress/internal/models"
	"standpress/internal/variables"
)

// maxDesignBody allows a custom background data URI of a full-size upload
// plus the element list.
const maxDesignBody = 10 << 20

// errInvalidDesign marks user-facing validation failures of a save.
type errInvalidDesign string

func (e errInvalidDesign) Error() string { return string(e) }

type saveDesignRequest struct {
	SelectedTemplate      string           `json:"selectedTemplate"`
	CustomBackgroundImage string           `json:"customBackgroundImage"`
	Elements              []models.Element `json:"elements"`
}

type previewResponse struct {
	Design   *models.Design       `json:"design"`
	Locale   variables.Locale     `json:"locale"`
	Elements []variables.Rendered `json:"elements"`
}

// GetCoverDesign returns the saved design of a proposal, or the blank
// default when none has been saved yet.
func (a *API) GetCoverDesign(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, http.StatusOK, design)
}

// PutCoverDesign validates and saves a design. Elements are normalised the
// same way the editor normalises them, and only variable tokens are stored.
func (a *API) PutCoverDesign(w http.ResponseWriter, r *http.Request) {
	proposal, ok := a.loadProposal(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDesignBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large.")
		return
	}
	if msg := validateDesignBody(body); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	var req saveDesignRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Request body is not valid JSON.")
		return
	}

	base, err := a.loadDesign(proposal)
	if err != nil {
		slog.Error("cover design lookup failed", "error", err, "proposal_id", proposal.ID)
		writeError(w, http.StatusInternalServerError, "Failed to load cover design.")
		return
	}

	_, userID := tenantOf(r)
	saved, err := a.saveDesign(r.Context(), base, userID, req.SelectedTemplate, req.CustomBackgroundImage, req.Elements, 0)
	var invalid errInvalidDesign
	if errors.As(err, &invalid) {
		writeError(w, http.StatusBadRequest, invalid.Error())
		return
	}
	if err != nil {
		slog.Error("cover design save failed", "error", err, "proposal_id", proposal.ID)
		writeError(w, http.StatusInternalServerError, "Failed to save cover design.")
		return
	}

	slog.Info("cover design saved", "proposal_id", proposal.ID, "version", saved.Version, "elements", len(saved.Elements))
	writeJSON(w, http.StatusOK, saved)
}

// DeleteCoverDesign resets a proposal to the blank default design.
func (a *API) DeleteCoverDesign(w http.ResponseWriter, r *http.Request) {
	proposal, ok := a.loadProposal(w, r)
	if !ok {
		return
	}
	design, err := a.Designs.FindByProposal(proposal.TenantID, proposal.ID)
	if err != nil {
		slog.Error("cover design lookup failed", "error", err, "proposal_id", proposal.ID)
		writeError(w, http.StatusInternalServerError, "Failed to load cover design.")
		return
	}
	if design == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err := a.Designs.Delete(proposal.TenantID, proposal.ID); err != nil {
		slog.Error("cover design delete failed", "error", err, "proposal_id", proposal.ID)
		writeError(w, http.StatusInternalServerError, "Failed to delete cover design.")
		return
	}

	ctx := r.Context()
	if a.Renders != nil {
		a.Renders.InvalidateDesign(ctx, design.ID)
	}
	if a.Drafts != nil {
		a.Drafts.Delete(ctx, proposal.TenantID, proposal.ID)
	}
	a.deleteObject(ctx, proposal.TenantID, backgroundsKind, design.CustomBackgroundImage)
	w.WriteHeader(http.StatusNoContent)
}

// PreviewCoverDesign returns the design with every element's display value
// resolved against the proposal.
func (a *API) PreviewCoverDesign(w http.ResponseWriter, r *http.Request) {
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

	loc := a.locale(r)
	rec := variables.RecordFromProposal(proposal)
	writeJSON(w, http.StatusOK, previewResponse{
		Design:   design,
		Locale:   loc,
		Elements: variables.RenderElements(design.Elements, rec, loc),
	})
}

// loadProposal resolves the {proposalID} route parameter within the session
// tenant. It writes the error response itself and reports false on failure.
func (a *API) loadProposal(w http.ResponseWriter, r *http.Request) (*models.Proposal, bool) {
	id, ok := urlID(r, "proposalID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid proposal ID.")
		return nil, false
	}
	tenantID, _ := tenantOf(r)
	proposal, err := a.Proposals.FindByID(tenantID, id)
	if err != nil {
		slog.Error("proposal lookup failed", "error", err, "proposal_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to load proposal.")
		return nil, false
	}
	if proposal == nil {
		writeError(w, http.StatusNotFound, "Proposal not found.")
		return nil, false
	}
	return proposal, true
}

// loadDesign returns the saved design of a proposal or a blank one.
func (a *API) loadDesign(p *models.Proposal) (*models.Design, error) {
	design, err := a.Designs.FindByProposal(p.TenantID, p.ID)
	if err != nil {
		return nil, err
	}
	if design == nil {
		design = models.NewDesign(p.TenantID, p.ID)
	}
	return design, nil
}

// saveDesign validates the background choice, normalises the elements and
// persists the result on top of base. nextSeq carries the id sequence of a
// live editor; the larger of it and the stored sequence is kept.
func (a *API) saveDesign(ctx context.Context, base *models.Design, userID uuid.UUID, selected, custom string, elements []models.Element, nextSeq int) (*models.Design, error) {
	if len(elements) == 0 {
		return nil, errInvalidDesign("Add at least one element before saving.")
	}
	bg, err := a.resolveBackground(base.TenantID, selected, custom)
	if err != nil {
		return nil, err
	}

	st := canvas.Load(elements, max(nextSeq, base.NextSeq), base.CanvasWidth, base.CanvasHeight)
	w, h := st.Size()

	d := *base
	d.SelectedTemplate = selected
	d.CustomBackgroundImage = custom
	d.BackgroundImage = bg
	d.Elements = st.List()
	d.NextSeq = st.NextSeq()
	d.CanvasWidth, d.CanvasHeight = w, h
	d.UpdatedBy = uuid.NullUUID{UUID: userID, Valid: userID != uuid.Nil}

	saved, err := a.Designs.Upsert(&d)
	if err != nil {
		return nil, err
	}

	if a.Renders != nil {
		a.Renders.InvalidateDesign(ctx, saved.ID)
	}
	if a.Drafts != nil {
		a.Drafts.Delete(ctx, saved.TenantID, saved.ProposalID)
	}
	if base.CustomBackgroundImage != "" && base.CustomBackgroundImage != saved.CustomBackgroundImage {
		a.deleteObject(ctx, saved.TenantID, backgroundsKind, base.CustomBackgroundImage)
	}
	return saved, nil
}

// resolveBackground checks the background choice and returns the image URL
// it resolves to. An empty selection means a plain white page.
func (a *API) resolveBackground(tenantID uuid.UUID, selected, custom string) (string, error) {
	if custom != "" && !a.ownsCustomBackground(tenantID, custom) {
		return "", errInvalidDesign("Custom background must be an image uploaded for this account.")
	}
	switch selected {
	case "":
		return "", nil
	case models.CustomBackground:
		if custom == "" {
			return "", errInvalidDesign("Upload a custom background before selecting it.")
		}
		return custom, nil
	}

	id, err := uuid.Parse(selected)
	if err != nil {
		return "", errInvalidDesign("Selected template is invalid.")
	}
	t, err := a.Templates.FindByID(tenantID, id)
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", errInvalidDesign("Selected template does not exist.")
	}
	return t.ImageURL, nil
}

// ownsCustomBackground reports whether custom is an inline image or an
// upload stored under the tenant's own background prefix.
func (a *API) ownsCustomBackground(tenantID uuid.UUID, custom string) bool {
	if strings.HasPrefix(custom, "data:image/") {
		return true
	}
	if a.Objects == nil {
		return false
	}
	key, ok := a.Objects.ExtractS3Key(custom)
	return ok && ownsKey(tenantID, backgroundsKind, key)
}

// ownsKey reports whether key was produced by storage.ObjectKey for the
// tenant and kind. Keys that do not survive path cleaning are refused.
func ownsKey(tenantID uuid.UUID, kind, key string) bool {
	if key == "" || path.Clean(key) != key || strings.Contains(key, "..") {
		return false
	}
	return strings.HasPrefix(key, kind+"/"+tenantID.String()+"/")
}

// deleteObject removes an image the tenant uploaded under kind. Data URIs,
// foreign URLs and objects of other tenants are ignored; failures are only
// logged.
func (a *API) deleteObject(ctx context.Context, tenantID uuid.UUID, kind, url string) {
	if a.Objects == nil || url == "" {
		return
	}
	key, ok := a.Objects.ExtractS3Key(url)
	if !ok {
		return
	}
	if !ownsKey(tenantID, kind, key) {
		slog.Warn("refusing to delete foreign object", "key", key, "tenant_id", tenantID)
		return
	}
	if err := a.Objects.Delete(ctx, key); err != nil {
		slog.Warn("s3 object delete failed", "error", err, "key", key)
	}
}
