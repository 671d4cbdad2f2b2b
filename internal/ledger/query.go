package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/ahmedabdul/staff-portal/internal/domain"
)

// Scope limits a query to the reports a viewer relates to.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeAuthor   Scope = "author"
	ScopeReviewer Scope = "reviewer"
)

// Window restricts reports by submission date relative to now.
type Window string

const (
	WindowAll   Window = "all"
	WindowToday Window = "today"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

// ParseWindow maps a filter value to a Window. Unknown values select all.
func ParseWindow(v string) Window {
	switch w := Window(strings.ToLower(strings.TrimSpace(v))); w {
	case WindowToday, WindowWeek, WindowMonth, WindowYear:
		return w
	default:
		return WindowAll
	}
}

// Query selects and orders reports.
type Query struct {
	Scope    Scope
	ViewerID string
	// Search matches title, client, author and description, ignoring case.
	Search string
	// Status filters by status when non-empty.
	Status domain.ReportStatus
	Window Window
	// AuthorName, when set, lets Search also match the author's display name.
	AuthorName func(id string) string
}

// Find runs q over the ledger. Results are newest first.
func (l *Ledger) Find(q Query) []domain.Report {
	return Filter(l.Reports(), q, l.now())
}

// Filter applies q to reports as of now.
func Filter(reports []domain.Report, q Query, now time.Time) []domain.Report {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Report, 0, len(reports))
	for _, r := range reports {
		if !inScope(r, q) || (q.Status != "" && r.Status != q.Status) {
			continue
		}
		if term != "" && !matches(r, term, q.AuthorName) {
			continue
		}
		if !InWindow(r.Date, q.Window, now) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// InWindow reports whether date falls inside w. Today compares UTC dates;
// the other windows are rolling durations.
func InWindow(date time.Time, w Window, now time.Time) bool {
	switch w {
	case WindowToday:
		return sameDay(date, now)
	case WindowWeek:
		return !date.Before(now.Add(-7 * 24 * time.Hour))
	case WindowMonth:
		return !date.Before(now.Add(-30 * 24 * time.Hour))
	case WindowYear:
		return !date.Before(now.Add(-365 * 24 * time.Hour))
	default:
		return true
	}
}

func inScope(r domain.Report, q Query) bool {
	switch q.Scope {
	case ScopeAuthor:
		return r.Author == q.ViewerID
	case ScopeReviewer:
		return r.AssignedTo == q.ViewerID
	default:
		return true
	}
}

func matches(r domain.Report, term string, authorName func(string) string) bool {
	fields := []string{r.Title, r.Client, r.Author, r.Description}
	if authorName != nil {
		fields = append(fields, authorName(r.Author))
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
