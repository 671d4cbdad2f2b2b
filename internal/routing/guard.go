// Package routing decides which portal view a session may open.
package routing

import (
	"strings"

	"github.com/ahmedabdul/staff-portal/internal/domain"
)

// Portal paths.
const (
	PathRoot     = "/"
	PathIndex    = "/staffportal"
	PathLogin    = "/staffportal/login"
	PathReports  = "/staffportal/reports"
	PathAdmin    = "/staffportal/admin"
	PathPartners = "/staffportal/partners"
)

// Outcome is the kind of guard decision.
type Outcome int

const (
	Allow Outcome = iota
	Redirect
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "not_found"
	}
}

// Decision is the result of Resolve. Location is set for redirects and View
// for allowed paths.
type Decision struct {
	Outcome  Outcome
	Location string
	View     string
}

var views = map[string]string{
	PathLogin:    "login",
	PathReports:  "reports",
	PathAdmin:    "admin",
	PathPartners: "partners",
}

// Landing is the home view for an authenticated session.
func Landing(s domain.Session) string {
	switch {
	case s.IsAdmin:
		return PathAdmin
	case s.IsPartner:
		return PathPartners
	default:
		return PathReports
	}
}

// Resolve applies the portal's navigation rules to path for session s.
func Resolve(path string, s domain.Session) Decision {
	path = normalize(path)
	if path == PathRoot {
		return redirect(PathIndex)
	}
	if path == PathLogin {
		if s.Authenticated {
			return redirect(Landing(s))
		}
		return allow(path)
	}

	_, known := views[path]
	if !known && path != PathIndex {
		return Decision{Outcome: NotFound}
	}
	if !s.Authenticated {
		return redirect(PathLogin)
	}

	switch path {
	case PathIndex:
		return redirect(Landing(s))
	case PathAdmin:
		if !s.IsAdmin {
			return redirect(Landing(s))
		}
	case PathPartners:
		if !s.IsPartner && !s.IsAdmin {
			return redirect(Landing(s))
		}
	case PathReports:
		if s.IsAdmin || s.IsPartner {
			return redirect(Landing(s))
		}
	}
	return allow(path)
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return PathRoot
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return PathRoot
		}
	}
	return strings.ToLower(path)
}

func redirect(location string) Decision {
	return Decision{Outcome: Redirect, Location: location}
}

func allow(path string) Decision {
	return Decision{Outcome: Allow, View: views[path]}
}
