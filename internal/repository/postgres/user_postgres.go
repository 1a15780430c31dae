package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"docrev/internal/model"
	"docrev/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// FindByEmails matches emails case-insensitively.
func (r *UserPostgres) FindByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	users := make([]model.User, 0, len(emails))
	if len(emails) == 0 {
		return users, nil
	}

	placeholders := make([]string, len(emails))
	args := make([]any, len(emails))
	for i, e := range emails {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = strings.ToLower(e)
	}
	q := fmt.Sprintf(`
		SELECT id, email, name, created_at
		FROM users
		WHERE lower(email) IN (%s)
		ORDER BY email
	`, strings.Join(placeholders, ", "))

	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err)
	}
	return users, nil
}
