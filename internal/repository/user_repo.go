package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shophub/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresUserRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logrus.Logger) domain.UserRepository {
	return &postgresUserRepository{
		db:  db,
		log: logger,
	}
}

const userColumns = `id, email, full_name, phone, hashed_password, role, is_active, is_verified, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }, user *domain.User) error {
	var phone sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&phone,
		&user.PasswordHash,
		&user.Role,
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return err
	}
	user.Phone = phone.String
	return nil
}

func (r *postgresUserRepository) CreateUser(user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (id, email, full_name, phone, hashed_password, role)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING is_active, is_verified, created_at, updated_at`

	user.ID = uuid.New()
	phone := sql.NullString{String: user.Phone, Valid: user.Phone != ""}

	r.log.Debugf("Repository: Attempting to create user with email: %s", user.Email)

	err := r.db.QueryRow(query, user.ID, user.Email, user.FullName, phone, user.PasswordHash, user.Role).Scan(
		&user.IsActive,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.log.Warnf("Repository: Attempted to create user with duplicate email: %s", user.Email)
			return nil, domain.ErrEmailTaken
		}
		r.log.Errorf("Repository: Failed to create user '%s': %v", user.Email, err)
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	r.log.Infof("Repository: User created successfully with ID: %s, Email: %s", user.ID, user.Email)
	return user, nil
}

func (r *postgresUserRepository) GetUserByEmail(email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user := &domain.User{}

	err := scanUser(r.db.QueryRow(query, email), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with email %s not found", email)
			return nil, domain.ErrUserNotFound
		}
		r.log.Errorf("Repository: Failed to get user by email %s: %v", email, err)
		return nil, fmt.Errorf("could not get user by email: %w", err)
	}

	return user, nil
}

func (r *postgresUserRepository) GetUserByID(id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user := &domain.User{}

	err := scanUser(r.db.QueryRow(query, id), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Repository: User with ID %s not found", id)
			return nil, domain.ErrUserNotFound
		}
		r.log.Errorf("Repository: Failed to get user by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not get user by id: %w", err)
	}

	return user, nil
}

func (r *postgresUserRepository) UpdateUser(id uuid.UUID, patch domain.UserPatch) (*domain.User, error) {
	setClauses := []string{}
	args := []interface{}{}
	argCounter := 1

	if patch.FullName != nil {
		setClauses = append(setClauses, fmt.Sprintf("full_name = $%d", argCounter))
		args = append(args, *patch.FullName)
		argCounter++
	}
	if patch.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argCounter))
		args = append(args, sql.NullString{String: *patch.Phone, Valid: *patch.Phone != ""})
		argCounter++
	}

	if len(setClauses) == 0 {
		return r.GetUserByID(id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argCounter, userColumns)
	args = append(args, id)

	user := &domain.User{}
	err := scanUser(r.db.QueryRow(query, args...), user)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.log.Errorf("Repository: Failed to update user ID %s: %v", id, err)
		return nil, fmt.Errorf("could not update user: %w", err)
	}

	r.log.Infof("Repository: User %s updated successfully", id)
	return user, nil
}

func (r *postgresUserRepository) DeactivateUser(id uuid.UUID) error {
	query := `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		r.log.Errorf("Repository: Failed to deactivate user ID %s: %v", id, err)
		return fmt.Errorf("could not deactivate user: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not check deactivation result: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}

	r.log.Infof("Repository: User %s deactivated", id)
	return nil
}

func (r *postgresUserRepository) CountUsers() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		r.log.Errorf("Repository: Failed to count users: %v", err)
		return 0, fmt.Errorf("could not count users: %w", err)
	}
	return count, nil
}

func (r *postgresUserRepository) ListUsers() ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.log.Errorf("Repository: Failed to list users: %v", err)
		return nil, fmt.Errorf("could not list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := scanUser(rows, &user); err != nil {
			r.log.Errorf("Repository: Failed to scan user row: %v", err)
			return nil, fmt.Errorf("error scanning user data: %w", err)
		}
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (r *postgresUserRepository) FindDuplicateEmails() ([]domain.DuplicateEmail, error) {
	query := `
        SELECT email, COUNT(*) AS count
        FROM users
        GROUP BY email
        HAVING COUNT(*) > 1`

	rows, err := r.db.Query(query)
	if err != nil {
		r.log.Errorf("Repository: Failed to find duplicate emails: %v", err)
		return nil, fmt.Errorf("could not find duplicate emails: %w", err)
	}
	defer rows.Close()

	duplicates := []domain.DuplicateEmail{}
	for rows.Next() {
		var dup domain.DuplicateEmail
		if err := rows.Scan(&dup.Email, &dup.Count); err != nil {
			return nil, fmt.Errorf("error scanning duplicate email row: %w", err)
		}
		duplicates = append(duplicates, dup)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating duplicate emails: %w", err)
	}

	return duplicates, nil
}

// RemoveDuplicateEmails keeps the newest row per email and deletes
// the rest.
func (r *postgresUserRepository) RemoveDuplicateEmails() (int64, error) {
	query := `
        WITH ranked AS (
            SELECT id,
                   ROW_NUMBER() OVER (PARTITION BY email ORDER BY created_at DESC) AS rn
            FROM users
        )
        DELETE FROM users
        WHERE id IN (SELECT id FROM ranked WHERE rn > 1)`

	result, err := r.db.Exec(query)
	if err != nil {
		r.log.Errorf("Repository: Failed to remove duplicate users: %v", err)
		return 0, fmt.Errorf("could not remove duplicate users: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not check duplicate removal result: %w", err)
	}

	r.log.Infof("Repository: Removed %d duplicate user rows", removed)
	return removed, nil
}

func (r *postgresUserRepository) DeleteAllUsersExcept(keep uuid.UUID) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM users WHERE id <> $1`, keep)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			r.log.Warnf("Repository: Bulk user delete blocked by references: %v", pqErr.Message)
			return 0, domain.Errorf(domain.ECONFLICT, "Cannot delete users that still own products or orders")
		}
		r.log.Errorf("Repository: Failed to delete users: %v", err)
		return 0, fmt.Errorf("could not delete users: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("could not check bulk delete result: %w", err)
	}

	r.log.Warnf("Repository: Deleted %d users, kept %s", removed, keep)
	return removed, nil
}
