// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// draft.go keeps the unsaved state of a live editor session in Valkey so a
// dropped connection can resume where it left off.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"standpress/internal/models"
)

const (
	draftKeyPrefix = "draft:"

	// DefaultDraftTTL is how long an abandoned draft is kept.
	DefaultDraftTTL = 24 * time.Hour
)

// Draft is an autosaved editor state. BaseVersion is the saved design
// version the draft was started from; a draft is only resumed while the
// saved design is still at that version.
type Draft struct {
	BaseVersion           int              `json:"baseVersion"`
	SelectedTemplate      string           `json:"selectedTemplate"`
	CustomBackgroundImage string           `json:"customBackgroundImage,omitempty"`
	Elements              []models.Element `json:"elements"`
	NextSeq               int              `json:"nextSeq"`
	SavedAt               time.Time        `json:"savedAt"`
}

// DraftStore stores editor drafts keyed by tenant and proposal.
type DraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftStore creates a draft store backed by the given Valkey client.
func NewDraftStore(client *redis.Client, ttl time.Duration) *DraftStore {
	if ttl == 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftStore{client: client, ttl: ttl}
}

// DraftKey returns the Valkey key of a proposal's draft.
func DraftKey(tenantID, proposalID uuid.UUID) string {
	return draftKeyPrefix + tenantID.String() + ":" + proposalID.String()
}

// Save writes the draft and refreshes its TTL.
func (ds *DraftStore) Save(ctx context.Context, tenantID, proposalID uuid.UUID, d *Draft) error {
	if d.SavedAt.IsZero() {
		d.SavedAt = time.Now().UTC()
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := ds.client.Set(ctx, DraftKey(tenantID, proposalID), data, ds.ttl).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Load returns the draft of a proposal, or nil when there is none. A corrupt
// draft is discarded.
func (ds *DraftStore) Load(ctx context.Context, tenantID, proposalID uuid.UUID) (*Draft, error) {
	key := DraftKey(tenantID, proposalID)
	data, err := ds.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		slog.Warn("discarding corrupt draft", "key", key, "error", err)
		ds.client.Del(ctx, key)
		return nil, nil
	}
	return &d, nil
}

// Delete removes the draft of a proposal, typically after a successful save.
func (ds *DraftStore) Delete(ctx context.Context, tenantID, proposalID uuid.UUID) {
	if err := ds.client.Del(ctx, DraftKey(tenantID, proposalID)).Err(); err != nil {
		slog.Warn("draft delete error", "proposal_id", proposalID, "error", err)
	}
}
