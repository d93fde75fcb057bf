// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"standpress/internal/imaging"
	"standpress/internal/models"
	"standpress/internal/storage"
)

const (
	// maxUploadSize is the largest accepted background image (5 MB).
	maxUploadSize = 5 << 20

	// Uploaded backgrounds are scaled to at most twice the canvas size,
	// enough for a sharp printed A4 page.
	maxBackgroundWidth  = 2 * models.CanvasWidth
	maxBackgroundHeight = 2 * models.CanvasHeight
)

type templateView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	ImageURL string    `json:"image_url"`
	Shared   bool      `json:"shared"`
}

func newTemplateView(t *models.DesignTemplate) templateView {
	return templateView{
		ID:       t.ID,
		Name:     t.Name,
		Category: string(t.Category),
		ImageURL: t.ImageURL,
		Shared:   t.IsShared(),
	}
}

// ListDesignTemplates returns the background library of a category. A
// failing lookup is logged and served as an empty library so the designer
// stays usable.
func (a *API) ListDesignTemplates(w http.ResponseWriter, r *http.Request) {
	category := models.TemplateCategory(r.URL.Query().Get("category"))
	if category == "" {
		category = models.CategoryCoverPage
	}
	if !category.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown template category.")
		return
	}

	tenantID, _ := tenantOf(r)
	templates, err := a.Templates.ListByCategory(tenantID, category)
	if err != nil {
		slog.Error("design template list failed", "error", err, "category", category)
		templates = nil
	}

	views := make([]templateView, 0, len(templates))
	for i := range templates {
		views = append(views, newTemplateView(&templates[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// CreateDesignTemplate adds a tenant-owned background to the library from a
// multipart upload with fields name, category and file.
func (a *API) CreateDesignTemplate(w http.ResponseWriter, r *http.Request) {
	if a.Objects == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}

	img, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	if msg := validateTemplateName(name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	category := models.TemplateCategory(r.FormValue("category"))
	if category == "" {
		category = models.CategoryCoverPage
	}
	if !category.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown template category.")
		return
	}

	tenantID, _ := tenantOf(r)
	ctx := r.Context()
	key := storage.ObjectKey(tenantID, libraryKind, img.Ext)
	url, err := a.Objects.Upload(ctx, key, img.ContentType, bytes.NewReader(img.Data), int64(len(img.Data)))
	if err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "Failed to upload file.")
		return
	}

	created, err := a.Templates.Create(&models.DesignTemplate{
		TenantID: uuid.NullUUID{UUID: tenantID, Valid: true},
		Name:     name,
		Category: category,
		ImageURL: url,
	})
	if err != nil {
		slog.Error("design template insert failed", "error", err, "key", key)
		if err := a.Objects.Delete(ctx, key); err != nil {
			slog.Warn("s3 object delete failed", "error", err, "key", key)
		}
		writeError(w, http.StatusInternalServerError, "Failed to save template.")
		return
	}

	slog.Info("design template created", "template_id", created.ID, "category", category)
	writeJSON(w, http.StatusCreated, newTemplateView(created))
}

// DeleteDesignTemplate removes a tenant-owned background. Shared templates
// cannot be deleted and are reported as not found.
func (a *API) DeleteDesignTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r, "templateID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid template ID.")
		return
	}

	tenantID, _ := tenantOf(r)
	deleted, err := a.Templates.Delete(tenantID, id)
	if err != nil {
		slog.Error("design template delete failed", "error", err, "template_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete template.")
		return
	}
	if deleted == nil {
		writeError(w, http.StatusNotFound, "Template not found.")
		return
	}

	a.deleteObject(r.Context(), tenantID, libraryKind, deleted.ImageURL)
	w.WriteHeader(http.StatusNoContent)
}

// readImageUpload reads the "file" part of a multipart upload, checks size
// and type, and normalises the image. It writes the error response itself
// and reports false on failure.
func readImageUpload(w http.ResponseWriter, r *http.Request) (*imaging.Processed, bool) {
	// Limit request body to maxUploadSize + some overhead for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 5 MB.")
		return nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return nil, false
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 5 MB.")
		return nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file.")
		return nil, false
	}
	if len(data) > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 5 MB.")
		return nil, false
	}

	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		writeError(w, http.StatusUnsupportedMediaType, "Only image files can be uploaded.")
		return nil, false
	}

	img, err := imaging.Normalize(data, maxBackgroundWidth, maxBackgroundHeight)
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		writeError(w, http.StatusUnsupportedMediaType, "Image format is not supported.")
		return nil, false
	case errors.Is(err, imaging.ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Image dimensions are too large.")
		return nil, false
	case err != nil:
		slog.Warn("image normalise failed", "error", err, "filename", header.Filename)
		writeError(w, http.StatusBadRequest, "Image could not be processed.")
		return nil, false
	}
	return img, true
}
