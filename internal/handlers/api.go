// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"standpress/internal/cache"
	"standpress/internal/middleware"
	"standpress/internal/models"
	"standpress/internal/variables"
)

// TemplateStore is the library of background images.
type TemplateStore interface {
	ListByCategory(tenantID uuid.UUID, category models.TemplateCategory) ([]models.DesignTemplate, error)
	FindByID(tenantID, id uuid.UUID) (*models.DesignTemplate, error)
	Create(t *models.DesignTemplate) (*models.DesignTemplate, error)
	Delete(tenantID, id uuid.UUID) (*models.DesignTemplate, error)
}

// DesignStore persists cover designs.
type DesignStore interface {
	FindByProposal(tenantID, proposalID uuid.UUID) (*models.Design, error)
	Upsert(d *models.Design) (*models.Design, error)
	Delete(tenantID, proposalID uuid.UUID) error
}

// ProposalStore reads the proposal records variables resolve against.
type ProposalStore interface {
	FindByID(tenantID, id uuid.UUID) (*models.Proposal, error)
}

// ObjectStore stores uploaded images. *storage.Client satisfies it.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	ExtractS3Key(rawURL string) (string, bool)
}

// DraftStore keeps autosaved editor state. *cache.DraftStore satisfies it.
type DraftStore interface {
	Save(ctx context.Context, tenantID, proposalID uuid.UUID, d *cache.Draft) error
	Load(ctx context.Context, tenantID, proposalID uuid.UUID) (*cache.Draft, error)
	Delete(ctx context.Context, tenantID, proposalID uuid.UUID)
}

// RenderCache caches generated PDFs. *cache.RenderCache satisfies it.
type RenderCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, pdf []byte)
	InvalidateDesign(ctx context.Context, designID uuid.UUID)
}

// CoverRenderer produces the PDF of a cover. *export.Renderer satisfies it.
type CoverRenderer interface {
	CoverPDF(ctx context.Context, design *models.Design, rec variables.Record, loc variables.Locale) ([]byte, error)
}

// Deps are the collaborators of the API. Objects, Drafts and Renders may be
// nil: uploads then fall back to data URIs, the editor does not autosave and
// PDFs are rendered on every request.
type Deps struct {
	Templates     TemplateStore
	Designs       DesignStore
	Proposals     ProposalStore
	Objects       ObjectStore
	Drafts        DraftStore
	Renders       RenderCache
	Renderer      CoverRenderer
	DefaultLocale variables.Locale
}

// API serves the cover designer endpoints.
type API struct {
	Deps
	upgrader websocket.Upgrader
}

// NewAPI creates the API. allowedOrigins restricts which browser origins may
// open an editor websocket; "*" allows any.
func NewAPI(deps Deps, allowedOrigins []string) *API {
	if deps.DefaultLocale == "" {
		deps.DefaultLocale = variables.DefaultLocale
	}
	return &API{
		Deps: deps,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      originChecker(allowedOrigins),
		},
	}
}

// Mount registers the API routes on r. uploads wraps the routes that accept
// image uploads, typically with a rate limiter.
func (a *API) Mount(r chi.Router, uploads ...func(http.Handler) http.Handler) {
	r.Get("/variables", a.ListVariables)

	r.Route("/library/design-templates", func(r chi.Router) {
		r.Get("/", a.ListDesignTemplates)
		r.With(uploads...).Post("/", a.CreateDesignTemplate)
		r.Delete("/{templateID}", a.DeleteDesignTemplate)
	})

	r.Route("/proposals/{proposalID}/cover-design", func(r chi.Router) {
		r.Get("/", a.GetCoverDesign)
		r.Put("/", a.PutCoverDesign)
		r.Delete("/", a.DeleteCoverDesign)
		r.Get("/preview", a.PreviewCoverDesign)
		r.Get("/pdf", a.CoverPDF)
		r.Get("/editor", a.CoverEditor)
		r.With(uploads...).Post("/background", a.UploadBackground)
	})
}

// originChecker accepts same-host requests, requests without an Origin
// header and the configured origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

// tenantOf returns the tenant and user of the request session. Routes are
// mounted behind RequireSession, so the session is always present there.
func tenantOf(r *http.Request) (tenantID, userID uuid.UUID) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		return uuid.Nil, uuid.Nil
	}
	return sess.TenantID, sess.UserID
}

// urlID parses a uuid route parameter.
func urlID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

// locale picks the substitution locale: an explicit ?locale= wins over the
// Accept-Language header.
func (a *API) locale(r *http.Request) variables.Locale {
	if q := r.URL.Query().Get("locale"); q != "" {
		if loc, ok := variables.ParseLocale(q); ok {
			return loc
		}
	}
	return variables.Negotiate(r.Header.Get("Accept-Language"), a.DefaultLocale)
}
