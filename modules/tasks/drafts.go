package tasks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/example/taskboard/modules/kvstore"
	"github.com/go-monolith/mono"
)

// ErrDraftsUnavailable is returned when the draft store is not wired.
var ErrDraftsUnavailable = errors.New("draft store unavailable")

// DraftPayload is the in-progress creation form snapshot. Fields are kept
// as submitted; validation happens only on actual task creation.
type DraftPayload struct {
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description,omitempty"`
	Category       string   `json:"category,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	DueDate        string   `json:"due_date,omitempty"`
	Assignee       string   `json:"assignee,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	EstimatedHours float64  `json:"estimated_hours,omitempty"`
}

// draftRecord is the stored blob: payload plus the content hash used for
// the dirty-flag gate.
type draftRecord struct {
	Draft   DraftPayload `json:"draft"`
	Hash    string       `json:"hash"`
	SavedAt time.Time    `json:"saved_at"`
}

// draftHash fingerprints a payload so an unchanged auto-save is skipped.
func draftHash(p DraftPayload) string {
	data, _ := json.Marshal(p)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// saveDraft handles the task.save-draft service request. A payload
// identical to the stored one is not rewritten.
func (m *TasksModule) saveDraft(ctx context.Context, req SaveDraftRequest, _ *mono.Msg) (SaveDraftResponse, error) {
	store := m.draftStore()
	if store == nil {
		return SaveDraftResponse{}, ErrDraftsUnavailable
	}

	hash := draftHash(req.Draft)

	var existing draftRecord
	found, err := store.Get(ctx, req.OwnerID, &existing)
	if err == nil && found && existing.Hash == hash {
		return SaveDraftResponse{Saved: false, SavedAt: existing.SavedAt}, nil
	}

	record := draftRecord{
		Draft:   req.Draft,
		Hash:    hash,
		SavedAt: time.Now(),
	}
	if err := store.Set(ctx, req.OwnerID, record); err != nil {
		return SaveDraftResponse{}, err
	}
	return SaveDraftResponse{Saved: true, SavedAt: record.SavedAt}, nil
}

// getDraft handles the task.get-draft service request.
func (m *TasksModule) getDraft(ctx context.Context, req GetDraftRequest, _ *mono.Msg) (GetDraftResponse, error) {
	store := m.draftStore()
	if store == nil {
		return GetDraftResponse{}, ErrDraftsUnavailable
	}

	var record draftRecord
	found, err := store.Get(ctx, req.OwnerID, &record)
	if err != nil {
		return GetDraftResponse{}, err
	}
	if !found {
		return GetDraftResponse{Found: false}, nil
	}
	return GetDraftResponse{
		Found:   true,
		Draft:   record.Draft,
		SavedAt: record.SavedAt,
	}, nil
}

// discardDraft handles the task.discard-draft service request.
func (m *TasksModule) discardDraft(ctx context.Context, req DiscardDraftRequest, _ *mono.Msg) (DiscardDraftResponse, error) {
	store := m.draftStore()
	if store == nil {
		return DiscardDraftResponse{}, ErrDraftsUnavailable
	}
	if err := store.Delete(ctx, req.OwnerID); err != nil {
		return DiscardDraftResponse{}, err
	}
	return DiscardDraftResponse{Discarded: true}, nil
}

// draftStore returns the wired draft store, nil until main wires it.
func (m *TasksModule) draftStore() *kvstore.Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drafts
}
