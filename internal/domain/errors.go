package domain

import "errors"

// Sentinel errors shared by the stores. Transport code maps them to status codes.
var (
	ErrAdminRequired       = errors.New("administrator role required")
	ErrReviewNotPermitted  = errors.New("reviewer not permitted for this report")
	ErrStaffNotFound       = errors.New("staff member not found")
	ErrReportNotFound      = errors.New("report not found")
	ErrDuplicateEmail      = errors.New("a staff member with this email already exists")
	ErrInvalidRole         = errors.New("invalid staff role")
	ErrInvalidTransition   = errors.New("report has already been reviewed")
	ErrResourceUnavailable = errors.New("file resource unavailable")
)
