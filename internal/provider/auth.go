package provider

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sadopc/learntrack/internal/store"
)

type UserRepository interface {
	CreateUser(email, password, name, college string) (*store.User, error)
	AuthenticateUser(email, password string) (*store.User, error)
	EmailExists(email string) (bool, error)
	GetUser(id int64) (*store.User, error)
	UpdateUser(id int64, p store.UserPatch) error
}

// Auth tracks the signed-in user and tells subscribers when it changes.
type Auth struct {
	repo UserRepository

	mu        sync.RWMutex
	user      *store.User
	listeners []OwnerListener
}

func NewAuth(repo UserRepository) *Auth {
	return &Auth{repo: repo}
}

// Subscribe registers l for owner changes. It is not called for the
// current owner; subscribe before the first login.
func (a *Auth) Subscribe(l OwnerListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, l)
}

func (a *Auth) User() (store.User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return store.User{}, false
	}
	return *a.user, true
}

func (a *Auth) IsAuthenticated() bool {
	_, ok := a.User()
	return ok
}

func (a *Auth) Signup(name, email, college, password string) error {
	email = strings.TrimSpace(email)
	if strings.TrimSpace(name) == "" || email == "" || password == "" {
		return fmt.Errorf("signup: %w: name, email and password are required", store.ErrInvalidInput)
	}

	exists, err := a.repo.EmailExists(email)
	if err != nil {
		return fmt.Errorf("check email exists (email: %s): %w", email, err)
	}
	if exists {
		return fmt.Errorf("signup (email: %s): %w", email, store.ErrEmailTaken)
	}

	u, err := a.repo.CreateUser(email, password, name, college)
	if err != nil {
		zap.S().Errorw("signup failed", "email", email, "error", err)
		return err
	}
	zap.S().Infow("user signed up", "user_id", u.ID)
	a.setUser(u)
	return nil
}

func (a *Auth) Login(email, password string) error {
	u, err := a.repo.AuthenticateUser(strings.TrimSpace(email), password)
	if err != nil {
		zap.S().Warnw("login failed", "email", email, "error", err)
		return err
	}
	zap.S().Infow("user logged in", "user_id", u.ID)
	a.setUser(u)
	return nil
}

func (a *Auth) Logout() {
	a.setUser(nil)
}

// UpdateProfile patches the signed-in user and refreshes the cached copy.
// Subscribers are not notified since the owner id does not change.
func (a *Auth) UpdateProfile(p store.UserPatch) error {
	current, ok := a.User()
	if !ok {
		return ErrNoOwner
	}
	if err := a.repo.UpdateUser(current.ID, p); err != nil {
		zap.S().Errorw("update profile failed", "user_id", current.ID, "error", err)
		return err
	}
	u, err := a.repo.GetUser(current.ID)
	if err != nil {
		return fmt.Errorf("reload profile (id: %d): %w", current.ID, err)
	}

	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
	return nil
}

func (a *Auth) setUser(u *store.User) {
	a.mu.Lock()
	a.user = u
	listeners := append([]OwnerListener(nil), a.listeners...)
	a.mu.Unlock()

	for _, l := range listeners {
		var owner *store.User
		if u != nil {
			cp := *u
			owner = &cp
		}
		l.OwnerChanged(owner)
	}
}
