// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Most tests run against in-memory fakes; integration tests are skipped when
// PostgreSQL or Valkey are unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"standpress/internal/cache"
	"standpress/internal/database"
	"standpress/internal/middleware"
	"standpress/internal/models"
	"standpress/internal/session"
	"standpress/internal/variables"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "standpress")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "standpress")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := database.Connect(dsn)
	if err != nil {
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test draft and render keys.
		for _, pattern := range []string{"draft:*", "render:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// fakeTemplates is an in-memory TemplateStore.
type fakeTemplates struct {
	mu      sync.Mutex
	items   []models.DesignTemplate
	listErr error
}

func (f *fakeTemplates) visible(tenantID uuid.UUID, t models.DesignTemplate) bool {
	return !t.TenantID.Valid || t.TenantID.UUID == tenantID
}

func (f *fakeTemplates) ListByCategory(tenantID uuid.UUID, category models.TemplateCategory) ([]models.DesignTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.DesignTemplate
	for _, t := range f.items {
		if t.Category == category && f.visible(tenantID, t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTemplates) FindByID(tenantID, id uuid.UUID) (*models.DesignTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.items {
		if t.ID == id && f.visible(tenantID, t) {
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeTemplates) Create(t *models.DesignTemplate) (*models.DesignTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *t
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	f.items = append(f.items, c)
	return &c, nil
}

func (f *fakeTemplates) Delete(tenantID, id uuid.UUID) (*models.DesignTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.items {
		if t.ID == id && t.TenantID.Valid && t.TenantID.UUID == tenantID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return &t, nil
		}
	}
	return nil, nil
}

// fakeDesigns is an in-memory DesignStore that versions saves and joins
// the library background on read like the database does.
type fakeDesigns struct {
	mu        sync.Mutex
	designs   map[uuid.UUID]models.Design
	templates *fakeTemplates
	err       error
	upserts   int
}

func newFakeDesigns(templates *fakeTemplates) *fakeDesigns {
	return &fakeDesigns{designs: make(map[uuid.UUID]models.Design), templates: templates}
}

func (f *fakeDesigns) resolve(d *models.Design) {
	d.BackgroundImage = ""
	if d.UsesCustomBackground() {
		d.BackgroundImage = d.CustomBackgroundImage
		return
	}
	if f.templates == nil {
		return
	}
	f.templates.mu.Lock()
	defer f.templates.mu.Unlock()
	for _, t := range f.templates.items {
		if t.ID.String() == d.SelectedTemplate {
			d.BackgroundImage = t.ImageURL
		}
	}
}

func (f *fakeDesigns) FindByProposal(tenantID, proposalID uuid.UUID) (*models.Design, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.designs[proposalID]
	if !ok || d.TenantID != tenantID {
		return nil, nil
	}
	f.resolve(&d)
	return &d, nil
}

func (f *fakeDesigns) Upsert(d *models.Design) (*models.Design, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.upserts++
	saved := *d
	saved.Elements = append([]models.Element(nil), d.Elements...)
	if prev, ok := f.designs[d.ProposalID]; ok {
		saved.ID = prev.ID
		saved.Version = prev.Version + 1
		saved.NextSeq = max(prev.NextSeq, d.NextSeq)
		saved.CreatedAt = prev.CreatedAt
	} else {
		saved.ID = uuid.New()
		saved.Version = 1
		saved.CreatedAt = time.Now()
	}
	saved.UpdatedAt = time.Now()
	f.designs[d.ProposalID] = saved
	f.resolve(&saved)
	return &saved, nil
}

func (f *fakeDesigns) Delete(tenantID, proposalID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.designs, proposalID)
	return nil
}

// fakeProposals is an in-memory ProposalStore.
type fakeProposals map[uuid.UUID]*models.Proposal

func (f fakeProposals) FindByID(tenantID, id uuid.UUID) (*models.Proposal, error) {
	p, ok := f[id]
	if !ok || p.TenantID != tenantID {
		return nil, nil
	}
	return p, nil
}

const fakeCDN = "https://cdn.test/standpress/"

// fakeObjects is an in-memory ObjectStore.
type fakeObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return fakeCDN + key, nil
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeObjects) ExtractS3Key(rawURL string) (string, bool) {
	return strings.CutPrefix(rawURL, fakeCDN)
}

// objectURL returns the public URL of an object the tenant uploaded under kind.
func objectURL(kind string, tenantID uuid.UUID, name string) string {
	return fakeCDN + kind + "/" + tenantID.String() + "/" + name
}

// fakeDrafts is an in-memory DraftStore.
type fakeDrafts struct {
	mu     sync.Mutex
	drafts map[string]cache.Draft
	saves  int
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{drafts: make(map[string]cache.Draft)}
}

func (f *fakeDrafts) Save(ctx context.Context, tenantID, proposalID uuid.UUID, d *cache.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	c := *d
	c.Elements = append([]models.Element(nil), d.Elements...)
	f.drafts[cache.DraftKey(tenantID, proposalID)] = c
	return nil
}

func (f *fakeDrafts) Load(ctx context.Context, tenantID, proposalID uuid.UUID) (*cache.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[cache.DraftKey(tenantID, proposalID)]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeDrafts) Delete(ctx context.Context, tenantID, proposalID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.drafts, cache.DraftKey(tenantID, proposalID))
}

func (f *fakeDrafts) get(tenantID, proposalID uuid.UUID) (cache.Draft, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[cache.DraftKey(tenantID, proposalID)]
	return d, ok
}

// fakeRenders is an in-memory RenderCache.
type fakeRenders struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []uuid.UUID
}

func newFakeRenders() *fakeRenders {
	return &fakeRenders{entries: make(map[string][]byte)}
}

func (f *fakeRenders) Get(ctx context.Context, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeRenders) Set(ctx context.Context, key string, pdf []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = pdf
}

func (f *fakeRenders) InvalidateDesign(ctx context.Context, designID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, designID)
	for k := range f.entries {
		if strings.HasPrefix(k, designID.String()+":") {
			delete(f.entries, k)
		}
	}
}

// fakeRenderer records render calls and returns a fixed document.
type fakeRenderer struct {
	mu      sync.Mutex
	calls       int
	locales     []variables.Locale
	backgrounds []string
	err         error
}

func (f *fakeRenderer) CoverPDF(ctx context.Context, design *models.Design, rec variables.Record, loc variables.Locale) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.locales = append(f.locales, loc)
	f.backgrounds = append(f.backgrounds, design.BackgroundImage)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.3 " + rec.CompanyName), nil
}

var errStoreDown = errors.New("store down")

// testEnv holds an API wired to fakes plus a router serving it with a
// session already in place.
type testEnv struct {
	API       *API
	Handler   http.Handler
	Session   *session.Data
	Proposal  *models.Proposal
	Template  models.DesignTemplate
	Templates *fakeTemplates
	Designs   *fakeDesigns
	Proposals fakeProposals
	Objects   *fakeObjects
	Drafts    *fakeDrafts
	Renders   *fakeRenders
	Renderer  *fakeRenderer
}

// newTestEnv creates a test environment. withObjects controls whether
// object storage is configured.
func newTestEnv(t *testing.T, withObjects bool) *testEnv {
	t.Helper()

	tenant := uuid.New()
	sess := &session.Data{
		UserID:      uuid.New(),
		TenantID:    tenant,
		Email:       "designer@standpress.local",
		DisplayName: "Test Designer",
		Role:        "sales",
	}
	fairStart := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	proposal := &models.Proposal{
		ID:             uuid.New(),
		TenantID:       tenant,
		ProposalNumber: "TK-2026-001",
		CompanyName:    "Acme Stand",
		FairName:       "ISK-SODEX",
		FairCity:       "İstanbul",
		FairStartDate:  &fairStart,
		UpdatedAt:      time.Now(),
	}
	shared := models.DesignTemplate{
		ID:       uuid.New(),
		Name:     "Blue",
		Category: models.CategoryCoverPage,
		ImageURL: "/assets/covers/blue.jpg",
	}

	templates := &fakeTemplates{items: []models.DesignTemplate{shared}}
	env := &testEnv{
		Session:   sess,
		Proposal:  proposal,
		Template:  shared,
		Templates: templates,
		Designs:   newFakeDesigns(templates),
		Proposals: fakeProposals{proposal.ID: proposal},
		Drafts:    newFakeDrafts(),
		Renders:   newFakeRenders(),
		Renderer:  &fakeRenderer{},
	}
	deps := Deps{
		Templates: env.Templates,
		Designs:   env.Designs,
		Proposals: env.Proposals,
		Drafts:    env.Drafts,
		Renders:   env.Renders,
		Renderer:  env.Renderer,
	}
	if withObjects {
		env.Objects = newFakeObjects()
		deps.Objects = env.Objects
	}
	env.API = NewAPI(deps, nil)
	env.Handler = testRouter(env.API, sess)
	return env
}

// testRouter mounts the API the same way the application router does, with
// the session injected instead of loaded from Valkey.
func testRouter(a *API, sess *session.Data) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithSession(r.Context(), sess)))
		})
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireSession)
		a.Mount(r)
	})
	return r
}

// do sends a request through the test router.
func (env *testEnv) do(t *testing.T, method, path string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	env.Handler.ServeHTTP(w, req)
	return w
}

func (env *testEnv) designPath(suffix string) string {
	return "/api/proposals/" + env.Proposal.ID.String() + "/cover-design" + suffix
}

func jsonHeader() http.Header {
	return http.Header{"Content-Type": {"application/json"}}
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, w.Body.String())
	}
	return v
}

// pngImage returns an encoded w x h PNG.
func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 20, G: 60, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

// multipartBody builds a multipart form with the given fields and an
// optional "file" part.
func multipartBody(t *testing.T, fields map[string]string, filename string, file []byte) (io.Reader, http.Header) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		fw.Write(file)
	}
	mw.Close()
	return &buf, http.Header{"Content-Type": {mw.FormDataContentType()}}
}
