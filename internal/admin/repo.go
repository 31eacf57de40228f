package admin

import (
	"context"
	"database/sql"
)

// Repository persists admin accounts in Postgres.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const adminColumns = "id, email, password_hash, role, created_at"

func scanAdmin(row interface{ Scan(...any) error }) (*Admin, error) {
	var a Admin
	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) Create(ctx context.Context, a *Admin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, password_hash, role, created_at) VALUES ($1, $2, $3, $4, $5)`,
		a.ID, a.Email, a.PasswordHash, a.Role, a.CreatedAt)
	return err
}

// GetByEmailAndRole returns nil, nil when no admin matches.
func (r *Repository) GetByEmailAndRole(ctx context.Context, email, role string) (*Admin, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = $1 AND role = $2`, email, role)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE email = $1`, email)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *Repository) Get(ctx context.Context, id string) (*Admin, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id)
	a, err := scanAdmin(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return a, err
}

func (r *Repository) ExistsEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM admins WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *Repository) List(ctx context.Context) ([]Admin, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Admin
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// UpdateEmail changes the address only. Role is fixed at creation.
func (r *Repository) UpdateEmail(ctx context.Context, id, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admins SET email = $2 WHERE id = $1`, id, email)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) SetPasswordByEmail(ctx context.Context, email, hash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE admins SET password_hash = $2 WHERE email = $1`, email, hash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
