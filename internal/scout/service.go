package scout

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"sort"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Roja-08/Scout-Nallur/internal/duty"
	"github.com/Roja-08/Scout-Nallur/internal/notify"
	"github.com/Roja-08/Scout-Nallur/internal/qr"
)

var (
	// ErrNotFound means no scout matches the id or email.
	ErrNotFound = errors.New("user not found")
	// ErrExists means the email or phone number is already registered.
	ErrExists = errors.New("user already exists")
	// ErrInvalidCredentials covers the status-page password check.
	ErrInvalidCredentials = errors.New("invalid password")
)

// ValidationError marks client-fixable input problems; handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string { return e.Message }

// Store is the persistence seam the service needs; satisfied by *Repository.
type Store interface {
	NextID(ctx context.Context, year int) (string, error)
	Exists(ctx context.Context, email, phoneNumber string) (bool, error)
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	UpdateProfile(ctx context.Context, u *User) error
	SaveAttendance(ctx context.Context, id string, records []duty.Record) error
	SetQRCode(ctx context.Context, id, qrCode string) error
	SetProfilePicURL(ctx context.Context, id, url string) error
	SetPasswordByEmail(ctx context.Context, email, passwordHash string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Notifier is the fire-and-forget email seam; satisfied by *notify.Dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, job notify.Job)
	Publish(ctx context.Context, job notify.Job) error
}

// Service implements the scout operations over a store and a notifier.
type Service struct {
	store      Store
	notifier   Notifier
	baseURL    string
	bcryptCost int
	now        func() time.Time
}

// NewService wires the scout service. now defaults to time.Now.
func NewService(store Store, notifier Notifier, baseURL string, bcryptCost int, now func() time.Time) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, notifier: notifier, baseURL: baseURL, bcryptCost: bcryptCost, now: now}
}

// RegisterInput carries the super-admin registration form.
type RegisterInput struct {
	Name          string
	Email         string
	PhoneNumber   string
	Password      string
	NIC           string
	ProfilePicURL string
	DateOfBirth   string // ISO date
	School        string
}

// Register allocates the next registration id, creates the scout, generates
// the QR code and queues the welcome email.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	if in.Name == "" || in.Email == "" || in.PhoneNumber == "" || in.Password == "" ||
		in.NIC == "" || in.DateOfBirth == "" || in.School == "" {
		return nil, ValidationError{Message: "All fields are required"}
	}
	dob, err := time.Parse(duty.DateLayout, in.DateOfBirth)
	if err != nil {
		return nil, ValidationError{Message: "Invalid dateOfBirth, expected YYYY-MM-DD"}
	}

	taken, err := s.store.Exists(ctx, in.Email, in.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrExists
	}

	now := s.now()
	id, err := s.store.NextID(ctx, now.Year())
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:               id,
		Name:             in.Name,
		Email:            in.Email,
		PhoneNumber:      in.PhoneNumber,
		PasswordHash:     string(hash),
		NIC:              in.NIC,
		ProfilePicURL:    in.ProfilePicURL,
		DateOfBirth:      dob,
		Age:              duty.Age(dob, now),
		School:           in.School,
		RegistrationTime: now,
		Attendance:       []duty.Record{},
	}

	code, err := qr.DataURL(s.baseURL, id)
	if err != nil {
		return nil, err
	}
	user.QRCode = code

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.notifier.Dispatch(ctx, notify.Job{
		Kind:        notify.KindRegistration,
		To:          user.Email,
		Name:        user.Name,
		UserID:      user.ID,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		NIC:         user.NIC,
		QRCode:      user.QRCode,
		StatusURL:   qr.StatusURL(s.baseURL, user.ID),
	})

	s.decorate(user)
	return user, nil
}

// Get returns one scout with the duty metrics recomputed against now.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	s.decorate(user)
	return user, nil
}

// List returns every scout with computed duty metrics.
func (s *Service) List(ctx context.Context) ([]User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		s.decorate(&users[i])
	}
	return users, nil
}

// Public returns the redacted scout view for the status page.
func (s *Service) Public(ctx context.Context, id string) (*PublicUser, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := user.Public()
	return &pub, nil
}

// Leaderboard returns all scouts redacted and sorted descending by
// computed duty minutes.
func (s *Service) Leaderboard(ctx context.Context) ([]PublicUser, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	board := make([]PublicUser, 0, len(users))
	for i := range users {
		board = append(board, users[i].Public())
	}
	sort.SliceStable(board, func(i, j int) bool {
		return board[i].TotalDutyMinutes > board[j].TotalDutyMinutes
	})
	return board, nil
}

// UpdateInput carries the admin profile-edit form. Zero-valued fields are
// applied as-is, matching the original full-form submit semantics.
type UpdateInput struct {
	Name          string
	Email         string
	PhoneNumber   string
	NIC           string
	ProfilePicURL string
	DateOfBirth   string
	School        string
}

// UpdateProfile applies the edit, recomputes age when the date of birth
// changed, and queues a diff email when anything actually changed.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateInput) (*User, error) {
	user, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	changes := map[string]string{}
	apply := func(field string, dst *string, val string) {
		if val != "" && val != *dst {
			*dst = val
			changes[field] = val
		}
	}
	apply("name", &user.Name, in.Name)
	apply("email", &user.Email, in.Email)
	apply("phoneNumber", &user.PhoneNumber, in.PhoneNumber)
	apply("nic", &user.NIC, in.NIC)
	apply("school", &user.School, in.School)
	if in.ProfilePicURL != "" && in.ProfilePicURL != user.ProfilePicURL {
		user.ProfilePicURL = in.ProfilePicURL
		// the URL itself is noise in an email
		changes["profilePic"] = "Updated"
	}
	if in.DateOfBirth != "" {
		dob, err := time.Parse(duty.DateLayout, in.DateOfBirth)
		if err != nil {
			return nil, ValidationError{Message: "Invalid dateOfBirth, expected YYYY-MM-DD"}
		}
		if !dob.Equal(user.DateOfBirth) {
			user.DateOfBirth = dob
			changes["dateOfBirth"] = in.DateOfBirth
		}
		if age := duty.Age(dob, s.now()); age != user.Age {
			user.Age = age
			changes["age"] = strconv.Itoa(age)
		}
	}

	if err := s.store.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	if len(changes) > 0 {
		s.notifier.Dispatch(ctx, notify.Job{
			Kind:        notify.KindProfileUpdate,
			To:          user.Email,
			Name:        user.Name,
			UserID:      user.ID,
			Email:       user.Email,
			PhoneNumber: user.PhoneNumber,
			NIC:         user.NIC,
			Changes:     changes,
		})
	}

	s.decorate(user)
	return user, nil
}

// Delete hard-deletes a scout and queues the deactivation notice naming the
// acting admin. Attendance history goes with the row; there is no retention.
func (s *Service) Delete(ctx context.Context, id, adminEmail string) error {
	user, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}

	s.notifier.Dispatch(ctx, notify.Job{
		Kind:        notify.KindDeletion,
		To:          user.Email,
		Name:        user.Name,
		UserID:      user.ID,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		NIC:         user.NIC,
		AdminEmail:  adminEmail,
	})
	return nil
}

// UpsertAttendance merges one attendance patch by calendar date: an existing
// record for the date takes only the provided fields, otherwise a new record
// is appended. Fields can be overwritten but never cleared here.
func (s *Service) UpsertAttendance(ctx context.Context, id, date, comingTime, finishingTime string) (*User, error) {
	if date == "" {
		return nil, ValidationError{Message: "Date is required"}
	}
	if _, err := time.Parse(duty.DateLayout, date); err != nil {
		return nil, ValidationError{Message: "Invalid date, expected YYYY-MM-DD"}
	}

	user, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	idx := -1
	for i := range user.Attendance {
		if user.Attendance[i].Date == date {
			idx = i
			break
		}
	}
	var rec duty.Record
	if idx >= 0 {
		rec = user.Attendance[idx]
	} else {
		rec = duty.Record{Date: date}
	}
	if comingTime != "" {
		rec.ComingTime = comingTime
	}
	if finishingTime != "" {
		rec.FinishingTime = finishingTime
	}

	if err := validateInterval(rec); err != nil {
		return nil, err
	}

	if idx >= 0 {
		user.Attendance[idx] = rec
	} else {
		user.Attendance = append(user.Attendance, rec)
	}

	if err := s.store.SaveAttendance(ctx, id, user.Attendance); err != nil {
		return nil, err
	}
	s.decorate(user)
	return user, nil
}

// validateInterval enforces the edit-boundary invariant: a check-out, when
// present alongside a check-in, must fall after it on the same day.
func validateInterval(rec duty.Record) error {
	if rec.ComingTime == "" || rec.FinishingTime == "" {
		return nil
	}
	start, err := time.Parse(duty.ClockLayout, rec.ComingTime)
	if err != nil {
		return ValidationError{Message: "Invalid comingTime, expected HH:mm"}
	}
	end, err := time.Parse(duty.ClockLayout, rec.FinishingTime)
	if err != nil {
		return ValidationError{Message: "Invalid finishingTime, expected HH:mm"}
	}
	if !end.After(start) {
		return ValidationError{Message: "finishingTime must be after comingTime"}
	}
	return nil
}

// RegenerateQR rebuilds and persists the QR data URL for a scout.
func (s *Service) RegenerateQR(ctx context.Context, id string) (string, error) {
	user, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNotFound
	}
	code, err := qr.DataURL(s.baseURL, id)
	if err != nil {
		return "", err
	}
	if err := s.store.SetQRCode(ctx, id, code); err != nil {
		return "", err
	}
	return code, nil
}

// ResendQR regenerates the QR code and queues the resend email.
func (s *Service) ResendQR(ctx context.Context, id string) error {
	user, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	code, err := qr.DataURL(s.baseURL, id)
	if err != nil {
		return err
	}
	if err := s.store.SetQRCode(ctx, id, code); err != nil {
		return err
	}

	return s.notifier.Publish(ctx, notify.Job{
		Kind:        notify.KindResendQR,
		To:          user.Email,
		Name:        user.Name,
		UserID:      user.ID,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		NIC:         user.NIC,
		QRCode:      code,
		StatusURL:   qr.StatusURL(s.baseURL, id),
	})
}

// SetProfilePicURL stores an uploaded picture's hosted URL.
func (s *Service) SetProfilePicURL(ctx context.Context, id, url string) error {
	user, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	return s.store.SetProfilePicURL(ctx, id, url)
}

// VerifyPassword performs the status-page login: a plain password check
// against a scout id, no token issued.
func (s *Service) VerifyPassword(ctx context.Context, id, password string) (*User, error) {
	user, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	s.decorate(user)
	return user, nil
}

// ResetPasswordByEmail rehashes a scout's password; reports whether the
// email matched any scout.
func (s *Service) ResetPasswordByEmail(ctx context.Context, email, newPassword string) (bool, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return false, err
	}
	matched, err := s.store.SetPasswordByEmail(ctx, email, string(hash))
	if err != nil || !matched {
		return matched, err
	}
	s.notifier.Dispatch(ctx, notify.Job{Kind: notify.KindPasswordReset, To: email})
	return true, nil
}

// WriteCSV streams the roster as CSV, one row per scout.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	users, err := s.List(ctx)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"User ID", "Name", "Email", "Phone Number", "NIC", "School", "Total Duty Time"}); err != nil {
		return err
	}
	for i := range users {
		u := &users[i]
		row := []string{u.ID, u.Name, u.Email, u.PhoneNumber, u.NIC, u.School, duty.FormatMinutes(u.TotalDutyMinutes)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// decorate fills the derived fields from the attendance log. Persisted duty
// totals are ignored; this recomputation is the only source.
func (s *Service) decorate(u *User) {
	now := s.now()
	u.TotalDutyMinutes = duty.TotalMinutes(u.Attendance, now)
	u.WorkingStatus = duty.Status(u.Attendance, now)
}
