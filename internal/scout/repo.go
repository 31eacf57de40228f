package scout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Roja-08/Scout-Nallur/internal/duty"
)

// firstSeq is where a year's registration numbers begin.
const firstSeq = 101

// Repository persists scouts in Postgres. The attendance log is a JSONB
// document on the user row, so one attendance mutation is one row update.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, name, email, phone_number, password_hash, nic, profile_pic_url,
	date_of_birth, age, school, qr_code, registration_time, attendance`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var dob sql.NullTime
	var attendance []byte
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.NIC,
		&u.ProfilePicURL, &dob, &u.Age, &u.School, &u.QRCode, &u.RegistrationTime, &attendance)
	if err != nil {
		return nil, err
	}
	if dob.Valid {
		u.DateOfBirth = dob.Time
	}
	if len(attendance) > 0 {
		if err := json.Unmarshal(attendance, &u.Attendance); err != nil {
			return nil, fmt.Errorf("decode attendance for %s: %w", u.ID, err)
		}
	}
	return &u, nil
}

// NextID allocates the next registration id for a year atomically. The
// per-year counter row absorbs concurrent registrations, so two writers can
// never be handed the same id.
func (r *Repository) NextID(ctx context.Context, year int) (string, error) {
	var seq int
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO user_id_seq (year, last_seq)
		VALUES ($1, $2)
		ON CONFLICT (year) DO UPDATE SET last_seq = user_id_seq.last_seq + 1
		RETURNING last_seq
	`, year, firstSeq).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d", year, seq), nil
}

// Exists reports whether a scout already uses the email or phone number.
func (r *Repository) Exists(ctx context.Context, email, phoneNumber string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE email = $1 OR phone_number = $2 LIMIT 1`,
		email, phoneNumber).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Create inserts a new scout.
func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.Attendance == nil {
		u.Attendance = []duty.Record{}
	}
	attendance, err := json.Marshal(u.Attendance)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone_number, password_hash, nic, profile_pic_url,
			date_of_birth, age, school, qr_code, registration_time, attendance)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, u.ID, u.Name, u.Email, u.PhoneNumber, u.PasswordHash, u.NIC, u.ProfilePicURL,
		u.DateOfBirth, u.Age, u.School, u.QRCode, u.RegistrationTime, attendance)
	return err
}

// Get returns a scout by id, or nil when none exists.
func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// GetByEmail returns a scout by email, or nil when none exists.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return u, err
}

// List returns every scout ordered by registration id.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateProfile overwrites the editable profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, email = $3, phone_number = $4, nic = $5, profile_pic_url = $6,
			date_of_birth = $7, age = $8, school = $9
		WHERE id = $1
	`, u.ID, u.Name, u.Email, u.PhoneNumber, u.NIC, u.ProfilePicURL, u.DateOfBirth, u.Age, u.School)
	return err
}

// SaveAttendance replaces the attendance document for a scout.
func (r *Repository) SaveAttendance(ctx context.Context, id string, records []duty.Record) error {
	if records == nil {
		records = []duty.Record{}
	}
	doc, err := json.Marshal(records)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE users SET attendance = $2 WHERE id = $1`, id, doc)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetQRCode stores a regenerated QR data URL.
func (r *Repository) SetQRCode(ctx context.Context, id, qrCode string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET qr_code = $2 WHERE id = $1`, id, qrCode)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetProfilePicURL stores the hosted profile picture URL.
func (r *Repository) SetProfilePicURL(ctx context.Context, id, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET profile_pic_url = $2 WHERE id = $1`, id, url)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetPasswordByEmail rehashes a scout's credential; reports whether a row matched.
func (r *Repository) SetPasswordByEmail(ctx context.Context, email, passwordHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2 WHERE email = $1`, email, passwordHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete hard-deletes a scout; reports whether a row matched.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
