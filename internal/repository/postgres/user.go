package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ChasingCode34/trip-sync/internal/domain"
	"github.com/ChasingCode34/trip-sync/internal/repository"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, phone_number, full_name, email, verification_code, verified, created_at`

// Create adds a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, phone_number, full_name, email, verification_code, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.PhoneNumber,
		nullString(user.FullName),
		nullString(user.Email),
		nullString(user.VerificationCode),
		user.Verified,
		user.CreatedAt,
	)
	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone_number = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, phone))
}

// GetByEmail retrieves a user by email. Emails are stored lowercased.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

// Update updates an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET full_name = $1, email = $2, verification_code = $3, verified = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		nullString(user.FullName),
		nullString(user.Email),
		nullString(user.VerificationCode),
		user.Verified,
		user.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// GetAll retrieves all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *UserRepository) scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	var fullName, email, code sql.NullString

	err := row.Scan(&user.ID, &user.PhoneNumber, &fullName, &email, &code, &user.Verified, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.FullName = fullName.String
	user.Email = email.String
	user.VerificationCode = code.String
	return &user, nil
}

func scanUserRow(rows *sql.Rows) (*domain.User, error) {
	var user domain.User
	var fullName, email, code sql.NullString

	if err := rows.Scan(&user.ID, &user.PhoneNumber, &fullName, &email, &code, &user.Verified, &user.CreatedAt); err != nil {
		return nil, err
	}

	user.FullName = fullName.String
	user.Email = email.String
	user.VerificationCode = code.String
	return &user, nil
}

// nullString maps "" to NULL so partial-unique indexes on email stay usable.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
