// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/staffboard/internal/camera"
	"github.com/olegiv/staffboard/internal/employees"
	"github.com/olegiv/staffboard/internal/imaging"
	"github.com/olegiv/staffboard/internal/logging"
	"github.com/olegiv/staffboard/internal/middleware"
	"github.com/olegiv/staffboard/internal/model"
	"github.com/olegiv/staffboard/internal/render"
	"github.com/olegiv/staffboard/internal/session"
)

// EmployeeHandler handles the details page and its camera.
type EmployeeHandler struct {
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
	cameras        *camera.Registry
	logger         *slog.Logger
	previewWidth   int
	previewHeight  int
}

// NewEmployeeHandler creates a new EmployeeHandler. The preview size only
// sets the rendered dimensions of the live preview.
func NewEmployeeHandler(renderer *render.Renderer, sm *scs.SessionManager, cameras *camera.Registry, logger *slog.Logger, previewWidth, previewHeight int) *EmployeeHandler {
	return &EmployeeHandler{
		renderer:       renderer,
		sessionManager: sm,
		cameras:        cameras,
		logger:         logger,
		previewWidth:   previewWidth,
		previewHeight:  previewHeight,
	}
}

// CameraView is the camera section of the details page.
type CameraView struct {
	Base   string
	State  string
	Error  string
	Photo  model.Photo
	Width  int
	Height int
}

// EmployeeData is the details page state.
type EmployeeData struct {
	Found    bool
	Key      string
	Employee model.Employee
	Camera   CameraView
}

// employeePath returns the details page path for key.
func employeePath(key string) string {
	return employeePathPrefix + url.PathEscape(key)
}

// employeeKey returns the unescaped {id} route parameter.
func employeeKey(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	key, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return key
}

// Select handles POST /employee/select. The row's record is kept in the
// session and the browser is sent to the details page.
func (h *EmployeeHandler) Select(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	key := strings.TrimSpace(r.PostFormValue("key"))
	if key == "" {
		http.Redirect(w, r, redirectDashboard, http.StatusSeeOther)
		return
	}

	emp := model.Employee{
		ID:        r.PostFormValue("id"),
		Name:      r.PostFormValue("name"),
		Position:  r.PostFormValue("position"),
		City:      r.PostFormValue("city"),
		StartDate: r.PostFormValue("start_date"),
		Salary:    employees.ParseSalary(r.PostFormValue("salary")),
	}
	session.PutSelection(r.Context(), h.sessionManager, model.Selection{Key: key, Employee: emp})

	http.Redirect(w, r, employeePath(key), http.StatusSeeOther)
}

// Details handles GET /employee/{id}.
func (h *EmployeeHandler) Details(w http.ResponseWriter, r *http.Request) {
	key := employeeKey(r)
	sel, ok := session.Selection(r.Context(), h.sessionManager, key)
	if !ok {
		renderPage(w, r, h.renderer, http.StatusNotFound, pageEmployee, "Employee", "dashboard", EmployeeData{})
		return
	}

	cam := CameraView{
		Base:   employeePath(key) + "/camera",
		State:  camera.Idle.String(),
		Width:  h.previewWidth,
		Height: h.previewHeight,
	}
	if ctrl, ok := h.cameras.Lookup(middleware.GetOwner(r), key); ok {
		snap := ctrl.Snapshot()
		cam.State = snap.State.String()
		cam.Error = snap.Error
		cam.Photo = snap.Photo
	}

	title := sel.Employee.Name
	if title == "" {
		title = "Employee"
	}
	renderPage(w, r, h.renderer, http.StatusOK, pageEmployee, title, "dashboard", EmployeeData{
		Found:    true,
		Key:      key,
		Employee: sel.Employee,
		Camera:   cam,
	})
}

// Camera handles POST /employee/{id}/camera/{action}. Every action answers
// with a redirect back to the details page, which renders the new state.
func (h *EmployeeHandler) Camera(w http.ResponseWriter, r *http.Request) {
	key := employeeKey(r)
	owner := middleware.GetOwner(r)
	back := employeePath(key)

	sel, ok := session.Selection(r.Context(), h.sessionManager, key)
	if !ok {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	action := chi.URLParam(r, "action")
	log := h.logger.With("category", logging.CategoryCamera, "owner", owner, "employee", key, "action", action)

	switch action {
	case CameraActionStart:
		ctrl := h.cameras.Acquire(owner, key)
		if err := ctrl.Start(r.Context()); err != nil {
			h.logCameraError(log, "camera start failed", err)
		}

	case CameraActionRetake:
		ctrl := h.cameras.Acquire(owner, key)
		if err := ctrl.Retake(r.Context()); err != nil {
			h.logCameraError(log, "camera retake failed", err)
		}

	case CameraActionCapture:
		ctrl, ok := h.cameras.Lookup(owner, key)
		if !ok {
			break
		}
		photo, err := ctrl.Capture()
		if err != nil {
			h.logCameraError(log, "camera capture failed", err)
			break
		}
		log.Info("photo captured", "width", photo.Width, "height", photo.Height, "bytes", len(photo.Data))

	case CameraActionCancel:
		if ctrl, ok := h.cameras.Lookup(owner, key); ok {
			ctrl.Stop()
		}

	case CameraActionUse:
		ctrl, ok := h.cameras.Lookup(owner, key)
		if !ok {
			break
		}
		snap := ctrl.Snapshot()
		if snap.State != camera.Captured || snap.Photo.IsEmpty() {
			break
		}
		session.PutPhotoResult(r.Context(), h.sessionManager, model.PhotoResult{
			Employee: sel.Employee,
			Photo:    snap.Photo,
		})
		h.cameras.Release(owner)
		http.Redirect(w, r, redirectPhotoResult, http.StatusSeeOther)
		return

	default:
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, back, http.StatusSeeOther)
}

// logCameraError logs invalid transitions at debug level and device
// failures as warnings.
func (h *EmployeeHandler) logCameraError(log *slog.Logger, msg string, err error) {
	if errors.Is(err, camera.ErrInvalidState) || errors.Is(err, camera.ErrSuperseded) {
		log.Debug(msg, "error", err)
		return
	}
	log.Warn(msg, "error", err)
}

// Preview handles GET /employee/{id}/camera/preview.jpg.
func (h *EmployeeHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.cameras.Lookup(middleware.GetOwner(r), employeeKey(r))
	if !ok {
		http.NotFound(w, r)
		return
	}

	frame, err := ctrl.PreviewJPEG()
	if err != nil {
		if errors.Is(err, camera.ErrInvalidState) {
			http.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to encode preview frame", "error", err)
		return
	}

	w.Header().Set(HeaderContentType, imaging.FormatToMimeType(camera.PreviewFormat))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(frame)
}

// Release handles POST /camera/release, sent by the page when it is hidden.
func (h *EmployeeHandler) Release(w http.ResponseWriter, r *http.Request) {
	owner := middleware.GetOwner(r)
	if h.cameras.Release(owner) {
		h.logger.Debug("camera released by page", "category", logging.CategoryCamera, "owner", owner)
	}
	w.WriteHeader(http.StatusNoContent)
}
