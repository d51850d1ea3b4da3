package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const profileFetchTimeout = 10 * time.Second

// Session owns the signed-in user and their profile. State changes arrive
// through the backend's session-change listener, registered once in
// NewSession.
type Session struct {
	backend SessionBackend
	opts    options

	mu      sync.RWMutex
	session *AuthSession
	user    *UserInfo
	profile *Profile

	unsubscribe func()
	fetches     sync.WaitGroup
	closeOnce   sync.Once
}

func NewSession(backend SessionBackend, opts ...Option) *Session {
	s := &Session{backend: backend, opts: newOptions(opts)}
	s.unsubscribe = backend.OnAuthStateChange(s.onAuthStateChange)
	return s
}

func (s *Session) onAuthStateChange(ev AuthEvent) {
	s.mu.Lock()
	if ev.Session == nil {
		s.session, s.user, s.profile = nil, nil, nil
		s.mu.Unlock()
		return
	}
	sess := *ev.Session
	s.session = &sess
	if s.user == nil || s.user.ID != sess.UserID {
		s.user = &UserInfo{ID: sess.UserID, Email: sess.Email}
		s.profile = nil
	}
	s.mu.Unlock()

	s.fetches.Add(1)
	go func() {
		defer s.fetches.Done()
		s.loadProfile(sess.UserID)
	}()
}

func (s *Session) loadProfile(userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), profileFetchTimeout)
	defer cancel()

	p, err := s.backend.GetProfile(ctx, userID)
	if err != nil {
		s.opts.log.Warn("profile fetch failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.session.UserID != userID {
		return
	}
	cp := *p
	s.profile = &cp
	s.user = mergeUser(s.user, &cp)
}

func mergeUser(u *UserInfo, p *Profile) *UserInfo {
	out := UserInfo{ID: p.ID}
	if u != nil {
		out = *u
	}
	if p.Email != "" {
		out.Email = p.Email
	}
	out.FullName = p.FullName
	out.StudentID = p.StudentID
	out.PhoneNumber = p.PhoneNumber
	out.HostelDetails = p.HostelDetails
	out.AvatarURL = p.AvatarURL
	return &out
}

// Login signs in with email and password. Addresses outside the campus
// domain are rejected without contacting the backend.
func (s *Session) Login(ctx context.Context, email, password string) error {
	if err := s.opts.policy.ValidateEmail(email); err != nil {
		s.opts.notify.Error(fmt.Sprintf("Please use your college email (%s)", s.opts.policy.EmailDomain))
		return err
	}
	if password == "" {
		s.opts.notify.Error("Please enter your password")
		return fmt.Errorf("%w: password", ErrMissingField)
	}

	if _, err := s.backend.SignIn(ctx, email, password); err != nil {
		s.opts.log.Warn("sign in failed", zap.String("email", email), zap.Error(err))
		s.opts.notify.Error(userMessage(err))
		return fmt.Errorf("login: %w", err)
	}
	s.opts.notify.Success("Welcome back!")
	return nil
}

// Register creates an account. All checks run before any network call.
func (s *Session) Register(ctx context.Context, d RegisterData) error {
	if strings.TrimSpace(d.FullName) == "" || strings.TrimSpace(d.Email) == "" || strings.TrimSpace(d.StudentID) == "" {
		s.opts.notify.Error("Please fill in all required fields")
		return fmt.Errorf("%w: full name, email and student id are required", ErrMissingField)
	}
	if err := s.opts.policy.ValidateEmail(d.Email); err != nil {
		s.opts.notify.Error(fmt.Sprintf("Please use your college email (%s)", s.opts.policy.EmailDomain))
		return err
	}
	if err := s.opts.policy.ValidatePassword(d.Password); err != nil {
		s.opts.notify.Error(fmt.Sprintf("Password must be at least %d characters", s.opts.policy.MinPasswordLength))
		return err
	}
	if d.ConfirmPassword != "" && d.ConfirmPassword != d.Password {
		s.opts.notify.Error("Passwords do not match")
		return ErrPasswordMismatch
	}

	sess, err := s.backend.SignUp(ctx, SignUp{
		Email:         d.Email,
		Password:      d.Password,
		FullName:      strings.TrimSpace(d.FullName),
		StudentID:     strings.TrimSpace(d.StudentID),
		PhoneNumber:   strings.TrimSpace(d.PhoneNumber),
		HostelDetails: strings.TrimSpace(d.HostelDetails),
	})
	if err != nil {
		s.opts.log.Warn("sign up failed", zap.String("email", d.Email), zap.Error(err))
		s.opts.notify.Error(userMessage(err))
		return fmt.Errorf("register: %w", err)
	}
	if sess == nil {
		s.opts.notify.Success("Account created! Please sign in.")
		return nil
	}
	s.opts.notify.Success("Account created! Welcome to Campus Market")
	return nil
}

// Logout ends the session. Local state is cleared even when the backend
// call fails.
func (s *Session) Logout(ctx context.Context) error {
	err := s.backend.SignOut(ctx)

	s.mu.Lock()
	s.session, s.user, s.profile = nil, nil, nil
	s.mu.Unlock()

	if err != nil {
		s.opts.log.Warn("sign out failed", zap.Error(err))
		s.opts.notify.Error(userMessage(err))
		return fmt.Errorf("logout: %w", err)
	}
	s.opts.notify.Success("Logged out")
	return nil
}

// UpdateProfile merges u into the signed-in user's profile.
func (s *Session) UpdateProfile(ctx context.Context, u ProfileUpdate) error {
	userID := s.UserID()
	if userID == "" {
		s.opts.notify.Error("You must be logged in to update your profile")
		return ErrUnauthenticated
	}
	if err := s.opts.validate.Struct(u); err != nil {
		err = inputError(err)
		s.opts.notify.Error(err.Error())
		return err
	}

	if _, err := s.backend.UpdateProfile(ctx, u); err != nil {
		s.opts.log.Warn("profile update failed", zap.String("user_id", userID), zap.Error(err))
		s.opts.notify.Error(userMessage(err))
		return fmt.Errorf("update profile: %w", err)
	}

	s.mu.Lock()
	if s.session != nil && s.session.UserID == userID {
		p := Profile{ID: userID}
		if s.profile != nil {
			p = *s.profile
		}
		u.applyTo(&p)
		s.profile = &p
		s.user = mergeUser(s.user, &p)
	}
	s.mu.Unlock()

	s.opts.notify.Success("Profile updated successfully!")
	return nil
}

// UserID returns the signed-in user's id, or "".
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.UserID
}

func (s *Session) IsAuthenticated() bool { return s.UserID() != "" }

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *UserInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Profile returns a copy of the loaded profile, or nil.
func (s *Session) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Wait blocks until scheduled profile fetches have finished.
func (s *Session) Wait() { s.fetches.Wait() }

// Close removes the session listener and waits for pending profile fetches.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
	})
	s.fetches.Wait()
}

var _ SessionInfo = (*Session)(nil)

// IsUnauthenticated reports whether err means the caller must sign in.
func IsUnauthenticated(err error) bool { return errors.Is(err, ErrUnauthenticated) }
