package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/hrplatform/attendance-backend-go/internal/domain/directory"
	"github.com/hrplatform/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

// userRepository reads the user directory tables. The directory is owned by
// another subsystem; this repository never writes to it.
type userRepository struct {
	db *database.DB
}

// GetByID implements directory.UserRepository.
func (r *userRepository) GetByID(ctx context.Context, id string) (directory.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.name, u.department_id, d.name AS department_name, u.role, u.active
		FROM users u
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.id = $1
	`

	var user directory.User
	err := q.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.DepartmentID, &user.DepartmentName, &user.Role, &user.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return directory.User{}, directory.ErrUserNotFound
		}
		return directory.User{}, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// ListActive implements directory.UserRepository.
func (r *userRepository) ListActive(ctx context.Context) ([]directory.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.name, u.department_id, d.name AS department_name, u.role, u.active
		FROM users u
		LEFT JOIN departments d ON d.id = u.department_id
		WHERE u.active
		ORDER BY u.name ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer rows.Close()

	var users []directory.User
	for rows.Next() {
		var user directory.User
		err := rows.Scan(
			&user.ID, &user.Name, &user.DepartmentID, &user.DepartmentName, &user.Role, &user.Active,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func NewUserRepository(db *database.DB) directory.UserRepository {
	return &userRepository{db: db}
}
