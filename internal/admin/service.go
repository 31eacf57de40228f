package admin

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Roja-08/Scout-Nallur/internal/notify"
)

var (
	// ErrNoMatch means login found no admin for the email/role pair.
	ErrNoMatch = errors.New("No admin found with this email and role/type.")
	// ErrBadPassword means the admin exists but the password is wrong.
	ErrBadPassword = errors.New("Incorrect password.")
	// ErrExists means the email is already taken by another admin.
	ErrExists = errors.New("admin already exists")
	// ErrNotFound means no admin matches the id or email.
	ErrNotFound = errors.New("admin not found")
	// ErrBadRole means the role is neither super nor secondary.
	ErrBadRole = errors.New("role must be super or secondary")
)

// Store is the subset of Repository the service needs.
type Store interface {
	Create(ctx context.Context, a *Admin) error
	GetByEmailAndRole(ctx context.Context, email, role string) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	Get(ctx context.Context, id string) (*Admin, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]Admin, error)
	UpdateEmail(ctx context.Context, id, email string) (bool, error)
	SetPasswordByEmail(ctx context.Context, email, hash string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Notifier publishes notification jobs without blocking the request.
type Notifier interface {
	Dispatch(ctx context.Context, job notify.Job)
}

type Service struct {
	store      Store
	notifier   Notifier
	bcryptCost int
	now        func() time.Time
}

func NewService(store Store, notifier Notifier, bcryptCost int, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, notifier: notifier, bcryptCost: bcryptCost, now: now}
}

// Login checks the email/role pair first, then the password, so the
// two failure modes stay distinguishable for the client.
func (s *Service) Login(ctx context.Context, email, password, role string) (*Admin, error) {
	if !ValidRole(role) {
		return nil, ErrBadRole
	}
	a, err := s.store.GetByEmailAndRole(ctx, email, role)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNoMatch
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadPassword
	}
	return a, nil
}

// Register creates a new admin account and emails the new holder.
func (s *Service) Register(ctx context.Context, email, password, role string) (*Admin, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if !ValidRole(role) {
		return nil, ErrBadRole
	}
	taken, err := s.store.ExistsEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	a := &Admin{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notify.Job{
		Kind:  notify.KindAdminRegistered,
		To:    a.Email,
		Email: a.Email,
		Role:  a.Role,
	})
	return a, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Admin, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

func (s *Service) List(ctx context.Context) ([]Admin, error) {
	return s.store.List(ctx)
}

// UpdateEmail changes the account email. The role tier is immutable:
// promoting or demoting an admin means recreating the account.
func (s *Service) UpdateEmail(ctx context.Context, id, email string) (*Admin, error) {
	if email == "" {
		return nil, errors.New("email is required")
	}
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrExists
	}
	ok, err := s.store.UpdateEmail(ctx, id, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// ResetPasswordByEmail rehashes the password for the admin holding the
// address. The bool reports whether any admin matched.
func (s *Service) ResetPasswordByEmail(ctx context.Context, email, newPassword string) (bool, error) {
	a, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return false, err
	}
	ok, err := s.store.SetPasswordByEmail(ctx, email, string(hash))
	if err != nil || !ok {
		return ok, err
	}
	s.notifier.Dispatch(ctx, notify.Job{
		Kind:  notify.KindPasswordReset,
		To:    email,
		Email: email,
		Role:  a.Role,
	})
	return true, nil
}
