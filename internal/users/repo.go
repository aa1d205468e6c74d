// Package users reads identity records. Accounts are owned by the identity
// side; this service only ever looks them up.
package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivoka/taskvote-backend/internal/polls/domain"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `
select id, username, name, email, created_at
from users
where id = $1;
`
	return r.scanOne(ctx, q, id, "id", id)
}

func (r *Repo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `
select id, username, name, email, created_at
from users
where username = $1;
`
	return r.scanOne(ctx, q, username, "username", username)
}

func (r *Repo) scanOne(ctx context.Context, q string, arg any, field string, value any) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, q, arg).
		Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("User", field, value)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByIDIn bulk-loads users for creator resolution across a page of
// projects. Missing ids are silently absent from the result.
func (r *Repo) FindByIDIn(ctx context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	const q = `
select id, username, name, email, created_at
from users
where id = any($1);
`
	rows, err := r.db.Query(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, err
		}
		out[u.ID] = &u
	}
	return out, rows.Err()
}

func (r *Repo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	const q = `select exists(select 1 from users where username = $1);`
	var exists bool
	if err := r.db.QueryRow(ctx, q, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *Repo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const q = `select exists(select 1 from users where email = $1);`
	var exists bool
	if err := r.db.QueryRow(ctx, q, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
