// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"

	"github.com/olegiv/staffboard/internal/auth"
	"github.com/olegiv/staffboard/internal/model"
)

// Session keys.
const (
	KeyOwner       = "owner_id"
	KeySelection   = "selected_employee"
	KeyPhotoResult = "photo_result"
)

// Storage adapts an scs session to auth.SessionStorage for one request.
type Storage struct {
	sm  *scs.SessionManager
	ctx context.Context
}

var _ auth.SessionStorage = Storage{}

// NewStorage binds the request context carrying the loaded session.
func NewStorage(ctx context.Context, sm *scs.SessionManager) Storage {
	return Storage{sm: sm, ctx: ctx}
}

// GetItem implements auth.SessionStorage.
func (s Storage) GetItem(key string) (string, bool) {
	v, ok := s.sm.Get(s.ctx, key).(string)
	return v, ok
}

// SetItem implements auth.SessionStorage.
func (s Storage) SetItem(key, value string) {
	s.sm.Put(s.ctx, key, value)
}

// RemoveItem implements auth.SessionStorage.
func (s Storage) RemoveItem(key string) {
	s.sm.Remove(s.ctx, key)
}

// OwnerID returns the session's stable owner id, creating one on first use.
// Camera controllers and view tickets are keyed by it.
func OwnerID(ctx context.Context, sm *scs.SessionManager) string {
	if id := sm.GetString(ctx, KeyOwner); id != "" {
		return id
	}
	id := uuid.NewString()
	sm.Put(ctx, KeyOwner, id)
	return id
}

// PutSelection stores the employee opened from the dashboard.
func PutSelection(ctx context.Context, sm *scs.SessionManager, sel model.Selection) {
	sm.Put(ctx, KeySelection, sel)
}

// Selection returns the stored selection if it matches key.
func Selection(ctx context.Context, sm *scs.SessionManager, key string) (model.Selection, bool) {
	sel, ok := sm.Get(ctx, KeySelection).(model.Selection)
	if !ok || sel.Key != key {
		return model.Selection{}, false
	}
	return sel, true
}

// PutPhotoResult stores the photo handed to the result page.
func PutPhotoResult(ctx context.Context, sm *scs.SessionManager, res model.PhotoResult) {
	sm.Put(ctx, KeyPhotoResult, res)
}

// PhotoResult returns the stored photo result, if any.
func PhotoResult(ctx context.Context, sm *scs.SessionManager) (model.PhotoResult, bool) {
	res, ok := sm.Get(ctx, KeyPhotoResult).(model.PhotoResult)
	if !ok || res.Photo.IsEmpty() {
		return model.PhotoResult{}, false
	}
	return res, true
}

// ClearPayloads drops the transient page payloads.
func ClearPayloads(ctx context.Context, sm *scs.SessionManager) {
	sm.Remove(ctx, KeySelection)
	sm.Remove(ctx, KeyPhotoResult)
}
