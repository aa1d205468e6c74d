package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ivoka/taskvote-backend/internal/polls/domain"
)

// uniqueViolation is the Postgres error code raised when an insert breaks a
// unique index. For votes this is the authoritative duplicate signal.
const uniqueViolation = "23505"

type VoteRepo struct {
	db *pgxpool.Pool
}

func NewVoteRepo(db *pgxpool.Pool) *VoteRepo {
	return &VoteRepo{db: db}
}

// Cast inserts the vote. There is deliberately no prior existence check: two
// concurrent casts for the same (project, user) race to the unique index and
// exactly one wins; the loser gets ErrDuplicateVote.
func (r *VoteRepo) Cast(ctx context.Context, v *domain.Vote) error {
	const q = `
insert into votes (project_id, task_id, user_id, created_at)
values ($1, $2, $3, $4)
returning id;
`
	err := r.db.QueryRow(ctx, q, v.ProjectID, v.TaskID, v.UserID, v.CreatedAt).Scan(&v.ID)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrDuplicateVote
	}
	return err
}

// CountByProject returns (task id, count) pairs for one project via a single
// grouped count. Tasks with zero votes are absent.
func (r *VoteRepo) CountByProject(ctx context.Context, projectID int64) ([]domain.TaskVoteCount, error) {
	const q = `
select task_id, count(id)
from votes
where project_id = $1
group by task_id;
`
	return r.queryCounts(ctx, q, projectID)
}

// CountByProjectIn is the batched form used when rendering a page of
// projects: one round trip regardless of how many projects are on the page.
func (r *VoteRepo) CountByProjectIn(ctx context.Context, projectIDs []int64) ([]domain.TaskVoteCount, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	const q = `
select task_id, count(id)
from votes
where project_id = any($1)
group by task_id;
`
	return r.queryCounts(ctx, q, projectIDs)
}

func (r *VoteRepo) queryCounts(ctx context.Context, q string, arg any) ([]domain.TaskVoteCount, error) {
	rows, err := r.db.Query(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TaskVoteCount
	for rows.Next() {
		var c domain.TaskVoteCount
		if err := rows.Scan(&c.TaskID, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FindByUserAndProject returns the user's vote in the project, or nil when
// they have not voted.
func (r *VoteRepo) FindByUserAndProject(ctx context.Context, userID, projectID int64) (*domain.Vote, error) {
	const q = `
select id, project_id, task_id, user_id, created_at
from votes
where user_id = $1 and project_id = $2;
`
	var v domain.Vote
	err := r.db.QueryRow(ctx, q, userID, projectID).
		Scan(&v.ID, &v.ProjectID, &v.TaskID, &v.UserID, &v.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FindByUserAndProjectIn maps project id to the task the user picked there,
// batched across the full set of projects being rendered.
func (r *VoteRepo) FindByUserAndProjectIn(ctx context.Context, userID int64, projectIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(projectIDs))
	if len(projectIDs) == 0 {
		return out, nil
	}

	const q = `
select project_id, task_id
from votes
where user_id = $1 and project_id = any($2);
`
	rows, err := r.db.Query(ctx, q, userID, projectIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, taskID int64
		if err := rows.Scan(&projectID, &taskID); err != nil {
			return nil, err
		}
		out[projectID] = taskID
	}
	return out, rows.Err()
}

// PageVotedProjectIDs pages the ids of projects the user voted in, newest
// vote first, plus the total. The final response re-sorts the projects by
// their own creation time; this ordering only drives page membership.
func (r *VoteRepo) PageVotedProjectIDs(ctx context.Context, userID int64, limit, offset int) ([]int64, int64, error) {
	const count = `select count(*) from votes where user_id = $1;`
	var total int64
	if err := r.db.QueryRow(ctx, count, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const q = `
select project_id
from votes
where user_id = $1
order by created_at desc, id desc
limit $2 offset $3;
`
	rows, err := r.db.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, 0, err
		}
		ids = append(ids, id)
	}
	return ids, total, rows.Err()
}

func (r *VoteRepo) CountByUser(ctx context.Context, userID int64) (int64, error) {
	const q = `select count(*) from votes where user_id = $1;`
	var n int64
	if err := r.db.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
