package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ahmedabdul/staff-portal/internal/auth"
	"github.com/ahmedabdul/staff-portal/internal/domain"
	"github.com/ahmedabdul/staff-portal/internal/persistence"
)

// Config bundles the collaborators of a Store.
type Config struct {
	Roster      *Roster
	Credentials *auth.Credentials
	Tokens      *auth.TokenManager
	// Durable survives restarts; Ephemeral lives as long as the browser session.
	Durable     persistence.Medium
	Ephemeral   persistence.Medium
	RememberTTL time.Duration
	SessionTTL  time.Duration
	Logger      *zap.Logger
	Now         func() time.Time
}

// Store is the session and authorization state of one browser context.
type Store struct {
	mu       sync.RWMutex
	session  domain.Session
	holder   persistence.Medium
	restored bool

	roster      *Roster
	creds       *auth.Credentials
	tokens      *auth.TokenManager
	durable     persistence.Medium
	ephemeral   persistence.Medium
	rememberTTL time.Duration
	sessionTTL  time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// New returns an anonymous Store. Call Restore to pick up a persisted login.
func New(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{
		session:     domain.Anonymous(),
		roster:      cfg.Roster,
		creds:       cfg.Credentials,
		tokens:      cfg.Tokens,
		durable:     cfg.Durable,
		ephemeral:   cfg.Ephemeral,
		rememberTTL: cfg.RememberTTL,
		sessionTTL:  cfg.SessionTTL,
		logger:      cfg.Logger,
		now:         cfg.Now,
	}
}

// Login authenticates the administrator pair or a roster member with the
// shared staff password. A false result leaves the Session untouched; the
// error only reports persistence failures.
func (s *Store) Login(ctx context.Context, email, password string, remember bool) (bool, error) {
	var (
		member domain.StaffMember
		kind   domain.TokenKind
	)
	switch {
	case s.creds.MatchAdmin(email, password):
		member = domain.NewAdministrator(s.creds.AdminEmail(), s.now().UTC())
		kind = domain.TokenKindAdmin
	default:
		m, ok := s.roster.FindByEmail(email)
		if !ok || !s.creds.MatchStaff(password) {
			s.logger.Debug("login rejected")
			return false, nil
		}
		member = m
		kind = domain.TokenKindStaff
	}

	target, other, ttl := s.ephemeral, s.durable, s.sessionTTL
	if remember {
		target, other, ttl = s.durable, s.ephemeral, s.rememberTTL
	}
	token, _, err := s.tokens.GenerateToken(member.ID, kind, ttl)
	if err != nil {
		return false, fmt.Errorf("issue token: %w", err)
	}
	identity, err := json.Marshal(member)
	if err != nil {
		return false, fmt.Errorf("encode identity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The other medium is only cleared once the target holds the full pair,
	// so a failed login never loses the login it replaces.
	prev, err := snapshotPair(ctx, target)
	if err != nil {
		return false, err
	}
	if err := target.Set(ctx, persistence.KeyAuthToken, token); err != nil {
		return false, errors.Join(fmt.Errorf("persist token: %w", err), prev.restore(ctx, target))
	}
	if err := target.Set(ctx, persistence.KeyCurrentUser, string(identity)); err != nil {
		return false, errors.Join(fmt.Errorf("persist identity: %w", err), prev.restore(ctx, target))
	}
	if err := clearPair(ctx, other); err != nil {
		return false, errors.Join(err, prev.restore(ctx, target))
	}

	s.session = domain.Authenticated(member, s.creds.AdminEmail())
	s.holder = target
	s.logger.Info("session established",
		zap.String("staff_id", member.ID),
		zap.String("kind", string(kind)),
		zap.Bool("remember", remember))
	return true, nil
}

// Logout returns the Session to anonymous and clears both media.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session.Authenticated {
		s.logger.Info("session ended", zap.String("staff_id", s.session.CurrentUser.ID))
	}
	s.session = domain.Anonymous()
	s.holder = nil
	return errors.Join(clearPair(ctx, s.durable), clearPair(ctx, s.ephemeral))
}

// Restore re-establishes a persisted login. The durable medium is consulted
// before the ephemeral one and the first medium holding a valid token and
// identity wins. The identity is trusted as read. Only the first call has
// any effect.
func (s *Store) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restored {
		return nil
	}
	s.restored = true

	var errs []error
	for _, medium := range []persistence.Medium{s.durable, s.ephemeral} {
		member, ok, err := s.readPair(ctx, medium)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			continue
		}
		s.session = domain.Authenticated(member, s.creds.AdminEmail())
		s.holder = medium
		s.logger.Debug("session restored", zap.String("staff_id", member.ID))
		return nil
	}
	return errors.Join(errs...)
}

// readPair loads the token and identity of one medium. A pair that fails
// validation is removed and reported as absent.
func (s *Store) readPair(ctx context.Context, medium persistence.Medium) (domain.StaffMember, bool, error) {
	token, hasToken, err := medium.Get(ctx, persistence.KeyAuthToken)
	if err != nil {
		return domain.StaffMember{}, false, fmt.Errorf("read token: %w", err)
	}
	raw, hasUser, err := medium.Get(ctx, persistence.KeyCurrentUser)
	if err != nil {
		return domain.StaffMember{}, false, fmt.Errorf("read identity: %w", err)
	}
	if !hasToken || !hasUser {
		return domain.StaffMember{}, false, nil
	}

	var member domain.StaffMember
	claims, err := s.tokens.ParseToken(token)
	switch {
	case err != nil:
		s.logger.Debug("discarding persisted session", zap.Error(err))
	case json.Unmarshal([]byte(raw), &member) != nil:
		s.logger.Debug("discarding unreadable identity")
	case claims.SubjectID != member.ID:
		s.logger.Debug("discarding mismatched session", zap.String("subject", claims.SubjectID))
	case (claims.Kind == domain.TokenKindAdmin) != (member.ID == domain.AdminID):
		s.logger.Debug("discarding session with wrong token kind", zap.String("kind", string(claims.Kind)))
	default:
		return member, true, nil
	}
	return domain.StaffMember{}, false, clearPair(ctx, medium)
}

// AssignStaff appends a member to the roster. Administrator only.
func (s *Store) AssignStaff(ctx context.Context, in NewStaff) (domain.StaffMember, error) {
	if !s.IsAdmin() {
		return domain.StaffMember{}, domain.ErrAdminRequired
	}
	return s.roster.add(ctx, in)
}

// RemoveStaff deletes a member from the roster. Administrator only; unknown
// ids are ignored.
func (s *Store) RemoveStaff(ctx context.Context, id string) error {
	if !s.IsAdmin() {
		return domain.ErrAdminRequired
	}
	return s.roster.remove(ctx, id)
}

// UpdateProfile merges name and email into a roster member. It reports false
// when the member is unknown or the caller is neither the administrator nor
// that member. Role is never changed.
func (s *Store) UpdateProfile(ctx context.Context, staffID string, upd ProfileUpdate) (bool, error) {
	current := s.Session()
	if !current.Authenticated {
		return false, nil
	}
	self := current.CurrentUser.ID == staffID
	if !current.IsAdmin && !self {
		return false, nil
	}

	updated, ok, err := s.roster.update(ctx, staffID, upd)
	if err != nil || !ok {
		return false, err
	}
	if !self {
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.session.Authenticated || s.session.CurrentUser.ID != staffID {
		return true, nil
	}
	s.session = domain.Authenticated(updated, s.creds.AdminEmail())
	if s.holder == nil {
		return true, nil
	}
	identity, err := json.Marshal(updated)
	if err != nil {
		return true, fmt.Errorf("encode identity: %w", err)
	}
	if err := s.holder.Set(ctx, persistence.KeyCurrentUser, string(identity)); err != nil {
		return true, fmt.Errorf("persist identity: %w", err)
	}
	return true, nil
}

// Session returns a snapshot of the current session.
func (s *Store) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Clone()
}

func (s *Store) IsAuthenticated() bool { return s.Session().Authenticated }

func (s *Store) IsAdmin() bool { return s.Session().IsAdmin }

func (s *Store) IsPartner() bool { return s.Session().IsPartner }

// CurrentUser returns the signed-in identity, nil when anonymous.
func (s *Store) CurrentUser() *domain.StaffMember {
	return s.Session().CurrentUser
}

// StaffList returns the roster.
func (s *Store) StaffList() []domain.StaffMember { return s.roster.List() }

// Partners returns roster members with the managing partner role.
func (s *Store) Partners() []domain.StaffMember { return s.roster.Partners() }

// SearchStaff filters the roster by name, email or role.
func (s *Store) SearchStaff(term string) []domain.StaffMember { return s.roster.Search(term) }

// StaffName resolves a member's display name, falling back to the id.
func (s *Store) StaffName(id string) string { return s.roster.Name(id) }

func clearPair(ctx context.Context, medium persistence.Medium) error {
	if err := medium.Delete(ctx, persistence.KeyAuthToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := medium.Delete(ctx, persistence.KeyCurrentUser); err != nil {
		return fmt.Errorf("clear identity: %w", err)
	}
	return nil
}

// pair is what one medium held under the session keys before a write.
type pair struct {
	token, identity       string
	hasToken, hasIdentity bool
}

func snapshotPair(ctx context.Context, medium persistence.Medium) (pair, error) {
	var (
		p   pair
		err error
	)
	if p.token, p.hasToken, err = medium.Get(ctx, persistence.KeyAuthToken); err != nil {
		return pair{}, fmt.Errorf("read token: %w", err)
	}
	if p.identity, p.hasIdentity, err = medium.Get(ctx, persistence.KeyCurrentUser); err != nil {
		return pair{}, fmt.Errorf("read identity: %w", err)
	}
	return p, nil
}

// restore puts the snapshot back, removing keys that were absent.
func (p pair) restore(ctx context.Context, medium persistence.Medium) error {
	put := func(key, value string, ok bool) error {
		if ok {
			return medium.Set(ctx, key, value)
		}
		return medium.Delete(ctx, key)
	}
	if err := errors.Join(
		put(persistence.KeyAuthToken, p.token, p.hasToken),
		put(persistence.KeyCurrentUser, p.identity, p.hasIdentity),
	); err != nil {
		return fmt.Errorf("roll back login: %w", err)
	}
	return nil
}
