package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	// TouchLastLogin stamps last_login with now and returns the previous value.
	TouchLastLogin(ctx context.Context, id int64) (*time.Time, error)
	ListByRoles(ctx context.Context, roles ...string) ([]model.UserSummary, error)
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (full_name, email, password, role, image_url)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, user.FullName, user.Email, user.HashedPassword, user.Role, user.ImageURL).Scan(&user.ID)
	if err != nil {
		if pgCode(err) == uniqueViolation {
			return common.ErrEmailTaken
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

const userColumns = `id, full_name, email, password, role, last_login, image_url`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var lastLogin sql.NullTime
	var image sql.NullString
	err := row.Scan(&user.ID, &user.FullName, &user.Email, &user.HashedPassword, &user.Role, &lastLogin, &image)
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	if image.Valid {
		user.ImageURL = &image.String
	}
	return user, nil
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) TouchLastLogin(ctx context.Context, id int64) (*time.Time, error) {
	// the subselect reads the row as it was before this statement's update
	query := `UPDATE users u SET last_login = NOW()
	          FROM (SELECT id, last_login FROM users WHERE id = $1 FOR UPDATE) prev
	          WHERE u.id = prev.id
	          RETURNING prev.last_login`
	var prev sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&prev); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgUserRepository.TouchLastLogin: %w", err)
	}
	if !prev.Valid {
		return nil, nil
	}
	return &prev.Time, nil
}

func (r *pgUserRepository) ListByRoles(ctx context.Context, roles ...string) ([]model.UserSummary, error) {
	if len(roles) == 0 {
		return []model.UserSummary{}, nil
	}
	placeholders := make([]string, len(roles))
	args := make([]any, len(roles))
	for i, role := range roles {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = role
	}
	query := `SELECT id, full_name, email, role FROM users
	          WHERE role IN (` + strings.Join(placeholders, ", ") + `)
	          ORDER BY full_name, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgUserRepository.ListByRoles: %w", err)
	}
	defer rows.Close()

	users := []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.FullName, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("pgUserRepository.ListByRoles scan: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
