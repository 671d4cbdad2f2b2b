package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/repository"
)

// NewStaff is the input for assigning a roster member.
type NewStaff struct {
	Name  string
	Email string
	Role  domain.StaffRole
}

// ProfileUpdate carries the mutable profile fields. Nil fields are kept.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// Roster is the staff collection shared by every client Store. Each mutation
// is persisted as a whole snapshot; a failed save leaves the roster as it was.
type Roster struct {
	mu         sync.RWMutex
	members    []domain.StaffMember
	repo       repository.StaffRepository
	adminEmail string
	now        func() time.Time
	logger     *zap.Logger
}

// NewRoster loads the stored roster.
func NewRoster(ctx context.Context, repo repository.StaffRepository, adminEmail string, logger *zap.Logger) (*Roster, error) {
	members, err := repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("staff roster loaded", zap.Int("members", len(members)))
	return &Roster{
		members:    members,
		repo:       repo,
		adminEmail: adminEmail,
		now:        time.Now,
		logger:     logger,
	}, nil
}

// List returns a copy of all members in roster order.
func (r *Roster) List() []domain.StaffMember {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.StaffMember, len(r.members))
	copy(out, r.members)
	return out
}

// Find looks up a member by id.
func (r *Roster) Find(id string) (domain.StaffMember, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.members[i], true
	}
	return domain.StaffMember{}, false
}

// FindByEmail looks up a member by exact email.
func (r *Roster) FindByEmail(email string) (domain.StaffMember, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.Email == email {
			return m, true
		}
	}
	return domain.StaffMember{}, false
}

// Name resolves a display name, falling back to the id itself.
func (r *Roster) Name(id string) string {
	if id == domain.AdminID {
		return domain.NewAdministrator(r.adminEmail, time.Time{}).Name
	}
	if m, ok := r.Find(id); ok {
		return m.Name
	}
	return id
}

// Search matches term case-insensitively against name, email and role.
func (r *Roster) Search(term string) []domain.StaffMember {
	term = strings.ToLower(strings.TrimSpace(term))
	all := r.List()
	if term == "" {
		return all
	}
	out := make([]domain.StaffMember, 0, len(all))
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Name), term) ||
			strings.Contains(strings.ToLower(m.Email), term) ||
			strings.Contains(strings.ToLower(string(m.Role)), term) {
			out = append(out, m)
		}
	}
	return out
}

// Partners returns the managing partners in roster order.
func (r *Roster) Partners() []domain.StaffMember {
	all := r.List()
	out := make([]domain.StaffMember, 0, len(all))
	for _, m := range all {
		if m.Role == domain.StaffRoleManagingPartner {
			out = append(out, m)
		}
	}
	return out
}

func (r *Roster) add(ctx context.Context, in NewStaff) (domain.StaffMember, error) {
	if !in.Role.Valid() {
		return domain.StaffMember{}, domain.ErrInvalidRole
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTaken(in.Email, "") {
		return domain.StaffMember{}, domain.ErrDuplicateEmail
	}
	member := domain.StaffMember{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		Role:         in.Role,
		DateAssigned: r.now().UTC(),
	}
	next := append(append(make([]domain.StaffMember, 0, len(r.members)+1), r.members...), member)
	if err := r.repo.Save(ctx, next); err != nil {
		return domain.StaffMember{}, fmt.Errorf("assign staff: %w", err)
	}
	r.members = next
	r.logger.Info("staff member assigned", zap.String("staff_id", member.ID), zap.String("role", string(member.Role)))
	return member, nil
}

func (r *Roster) remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil
	}
	next := make([]domain.StaffMember, 0, len(r.members)-1)
	next = append(next, r.members[:i]...)
	next = append(next, r.members[i+1:]...)
	if err := r.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("remove staff: %w", err)
	}
	r.members = next
	r.logger.Info("staff member removed", zap.String("staff_id", id))
	return nil
}

// update merges name/email into a member. ok is false when id is unknown.
func (r *Roster) update(ctx context.Context, id string, upd ProfileUpdate) (domain.StaffMember, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return domain.StaffMember{}, false, nil
	}
	member := r.members[i]
	if upd.Name != nil {
		member.Name = *upd.Name
	}
	if upd.Email != nil {
		if r.emailTaken(*upd.Email, id) {
			return domain.StaffMember{}, false, domain.ErrDuplicateEmail
		}
		member.Email = *upd.Email
	}

	next := make([]domain.StaffMember, len(r.members))
	copy(next, r.members)
	next[i] = member
	if err := r.repo.Save(ctx, next); err != nil {
		return domain.StaffMember{}, false, fmt.Errorf("update profile: %w", err)
	}
	r.members = next
	return member, true, nil
}

// emailTaken also reserves the administrator address so no roster member can
// derive administrator flags.
func (r *Roster) emailTaken(email, exceptID string) bool {
	if strings.EqualFold(email, r.adminEmail) {
		return true
	}
	for _, m := range r.members {
		if m.ID != exceptID && strings.EqualFold(m.Email, email) {
			return true
		}
	}
	return false
}

func (r *Roster) indexOf(id string) int {
	for i, m := range r.members {
		if m.ID == id {
			return i
		}
	}
	return -1
}
