// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"standpress/internal/imaging"
	"standpress/internal/storage"
)

// Object key kinds of tenant uploads.
const (
	backgroundsKind = "backgrounds"
	libraryKind     = "library"
)

type backgroundResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Stored      bool   `json:"stored"`
}

// UploadBackground accepts a custom cover background. The image is stored
// in S3 when configured and otherwise returned inline as a data URI. The
// design itself is not changed until the client saves it with the returned
// URL and the "custom" template selection.
func (a *API) UploadBackground(w http.ResponseWriter, r *http.Request) {
	proposal, ok := a.loadProposal(w, r)
	if !ok {
		return
	}

	img, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	resp := backgroundResponse{ContentType: img.ContentType, Width: img.Width, Height: img.Height}
	if a.Objects == nil {
		resp.URL = imaging.DataURI(img.ContentType, img.Data)
		writeJSON(w, http.StatusOK, resp)
		return
	}

	key := storage.ObjectKey(proposal.TenantID, backgroundsKind, img.Ext)
	url, err := a.Objects.Upload(r.Context(), key, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data)))
	if err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "Failed to upload file.")
		return
	}
	resp.URL, resp.Stored = url, true
	writeJSON(w, http.StatusCreated, resp)
}
