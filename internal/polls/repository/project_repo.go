// Package repository holds the Postgres persistence for polls. Queries are
// raw SQL against pgx; callers never see driver errors for the conditions
// they are expected to handle.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivoka/taskvote-backend/internal/polls/domain"
)

type ProjectRepo struct {
	db *pgxpool.Pool
}

func NewProjectRepo(db *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// Create persists the project and its tasks in one transaction. The caller
// supplies CreatedAt and ExpiresAt; ids are assigned here.
func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertProject = `
insert into projects (name, created_by, created_at, expires_at)
values ($1, $2, $3, $4)
returning id;
`
	if err := tx.QueryRow(ctx, insertProject, p.Name, p.CreatedBy, p.CreatedAt, p.ExpiresAt).
		Scan(&p.ID); err != nil {
		return err
	}

	const insertTask = `
insert into tasks (project_id, text)
values ($1, $2)
returning id;
`
	for i := range p.Tasks {
		if err := tx.QueryRow(ctx, insertTask, p.ID, p.Tasks[i].Text).
			Scan(&p.Tasks[i].ID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ProjectRepo) FindByID(ctx context.Context, id int64) (*domain.Project, error) {
	const q = `
select id, name, created_by, created_at, expires_at
from projects
where id = $1;
`
	var p domain.Project
	err := r.db.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.CreatedBy, &p.CreatedAt, &p.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("Project", "id", id)
	}
	if err != nil {
		return nil, err
	}

	tasks, err := r.loadTasks(ctx, []int64{p.ID})
	if err != nil {
		return nil, err
	}
	p.Tasks = tasks[p.ID]
	return &p, nil
}

// FindAll returns one newest-first page of projects plus the total count.
func (r *ProjectRepo) FindAll(ctx context.Context, limit, offset int) ([]domain.Project, int64, error) {
	const q = `
select id, name, created_by, created_at, expires_at
from projects
order by created_at desc, id desc
limit $1 offset $2;
`
	const count = `select count(*) from projects;`

	var total int64
	if err := r.db.QueryRow(ctx, count).Scan(&total); err != nil {
		return nil, 0, err
	}

	projects, err := r.queryProjects(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// FindByCreator is FindAll restricted to one creator.
func (r *ProjectRepo) FindByCreator(ctx context.Context, creatorID int64, limit, offset int) ([]domain.Project, int64, error) {
	const q = `
select id, name, created_by, created_at, expires_at
from projects
where created_by = $1
order by created_at desc, id desc
limit $2 offset $3;
`
	const count = `select count(*) from projects where created_by = $1;`

	var total int64
	if err := r.db.QueryRow(ctx, count, creatorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	projects, err := r.queryProjects(ctx, q, creatorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// FindByIDIn fetches the given projects sorted by creation time descending.
// Used by the voted-by listing, where the id page ordering and the response
// ordering are deliberately independent.
func (r *ProjectRepo) FindByIDIn(ctx context.Context, ids []int64) ([]domain.Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	const q = `
select id, name, created_by, created_at, expires_at
from projects
where id = any($1)
order by created_at desc, id desc;
`
	return r.queryProjects(ctx, q, ids)
}

func (r *ProjectRepo) CountByCreator(ctx context.Context, creatorID int64) (int64, error) {
	const q = `select count(*) from projects where created_by = $1;`
	var n int64
	if err := r.db.QueryRow(ctx, q, creatorID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ProjectRepo) queryProjects(ctx context.Context, q string, args ...any) ([]domain.Project, error) {
	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedBy, &p.CreatedAt, &p.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, len(out))
	for i := range out {
		ids[i] = out[i].ID
	}
	tasks, err := r.loadTasks(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tasks = tasks[out[i].ID]
	}
	return out, nil
}

// loadTasks bulk-loads task lists for a set of projects in one query,
// preserving insertion order within each project.
func (r *ProjectRepo) loadTasks(ctx context.Context, projectIDs []int64) (map[int64][]domain.Task, error) {
	out := make(map[int64][]domain.Task, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}

	const q = `
select id, project_id, text
from tasks
where project_id = any($1)
order by id asc;
`
	rows, err := r.db.Query(ctx, q, projectIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t         domain.Task
			projectID int64
		)
		if err := rows.Scan(&t.ID, &projectID, &t.Text); err != nil {
			return nil, err
		}
		out[projectID] = append(out[projectID], t)
	}
	return out, rows.Err()
}
