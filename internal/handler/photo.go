// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/staffboard/internal/model"
	"github.com/olegiv/staffboard/internal/render"
	"github.com/olegiv/staffboard/internal/session"
	"github.com/olegiv/staffboard/internal/util"
)

// PhotoHandler serves the captured photo handed over by the details page.
type PhotoHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(renderer *render.Renderer, sm *scs.SessionManager) *PhotoHandler {
	return &PhotoHandler{renderer: renderer, sessionManager: sm}
}

// PhotoData is the photo result page state.
type PhotoData struct {
	Found    bool
	Employee model.Employee
	Photo    model.Photo
	Filename string
}

// Result handles GET /photo-result.
func (h *PhotoHandler) Result(w http.ResponseWriter, r *http.Request) {
	res, ok := session.PhotoResult(r.Context(), h.sessionManager)
	if !ok {
		renderPage(w, r, h.renderer, http.StatusNotFound, pagePhotoResult, "Captured Photo", "dashboard", PhotoData{})
		return
	}

	renderPage(w, r, h.renderer, http.StatusOK, pagePhotoResult, "Captured Photo", "dashboard", PhotoData{
		Found:    true,
		Employee: res.Employee,
		Photo:    res.Photo,
		Filename: util.PhotoFilename(res.Employee.Name),
	})
}

// Download handles GET /photo-result/download.
func (h *PhotoHandler) Download(w http.ResponseWriter, r *http.Request) {
	res, ok := session.PhotoResult(r.Context(), h.sessionManager)
	if !ok {
		http.Error(w, "No captured photo available.", http.StatusNotFound)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": util.PhotoFilename(res.Employee.Name),
	})
	w.Header().Set(HeaderContentType, res.Photo.MimeType)
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Photo.Data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(res.Photo.Data)
}
