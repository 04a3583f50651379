// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteDashboard is the employee list.
	RouteDashboard = "/dashboard"
	// RouteEmployeeSelect stores the employee opened from the list.
	RouteEmployeeSelect = "/employee/select"
	// RouteEmployee is the employee details page.
	RouteEmployee = "/employee/{id}"
	// RouteCamera prefixes the camera actions of an employee page.
	RouteCamera = RouteEmployee + "/camera"
	// RouteCameraPreview serves the live preview frame.
	RouteCameraPreview = RouteCamera + "/preview.jpg"
	// RouteCameraRelease is the pagehide beacon target.
	RouteCameraRelease = "/camera/release"
	// RoutePhotoResult is the captured photo page.
	RoutePhotoResult = "/photo-result"
	// RoutePhotoDownload serves the captured photo as a file.
	RoutePhotoDownload = RoutePhotoResult + "/download"
	// RouteSalaryChart is the salary chart page.
	RouteSalaryChart = "/salary-chart"
	// RouteCityMap is the city map page.
	RouteCityMap = "/city-map"
	// RouteStatus is the authenticated status page.
	RouteStatus = "/status"
	// RouteStatusJobRun runs a scheduled job immediately.
	RouteStatusJobRun = "/status/jobs/{name}/run"
	// RouteHealth is the public health endpoint.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness probe.
	RouteHealthLive = "/health/live"
	// RouteHealthReady is the readiness probe.
	RouteHealthReady = "/health/ready"
)

// Camera actions posted to RouteCamera + "/{action}".
const (
	CameraActionStart   = "start"
	CameraActionCapture = "capture"
	CameraActionCancel  = "cancel"
	CameraActionRetake  = "retake"
	CameraActionUse     = "use"
)

const (
	redirectLogin       = RouteLogin
	redirectDashboard   = RouteDashboard
	redirectPhotoResult = RoutePhotoResult
	employeePathPrefix  = "/employee/"
)

// Template names.
const (
	pageLogin       = "auth/login"
	pageDashboard   = "app/dashboard"
	pageEmployee    = "app/employee"
	pagePhotoResult = "app/photo_result"
	pageSalaryChart = "app/salary_chart"
	pageCityMap     = "app/city_map"
	pageStatus      = "app/health"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
