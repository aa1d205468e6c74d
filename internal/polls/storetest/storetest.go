// Package storetest provides in-memory store implementations for tests.
// They mirror the Postgres repositories; in particular MemVotes enforces
// the (project, user) uniqueness under a mutex the same way the real unique
// index serializes concurrent inserts.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/ivoka/taskvote-backend/internal/polls/domain"
)

type MemProjects struct {
	mu         sync.Mutex
	nextID     int64
	nextTaskID int64
	projects   map[int64]domain.Project
}

func NewProjects() *MemProjects {
	return &MemProjects{projects: make(map[int64]domain.Project)}
}

func (s *MemProjects) Create(_ context.Context, p *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	p.ID = s.nextID
	for i := range p.Tasks {
		s.nextTaskID++
		p.Tasks[i].ID = s.nextTaskID
	}
	s.projects[p.ID] = clone(*p)
	return nil
}

func (s *MemProjects) FindByID(_ context.Context, id int64) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, domain.NotFound("Project", "id", id)
	}
	c := clone(p)
	return &c, nil
}

func (s *MemProjects) FindAll(_ context.Context, limit, offset int) ([]domain.Project, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sortedDesc(nil)
	return page(all, limit, offset), int64(len(all)), nil
}

func (s *MemProjects) FindByCreator(_ context.Context, creatorID int64, limit, offset int) ([]domain.Project, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.sortedDesc(func(p domain.Project) bool { return p.CreatedBy == creatorID })
	return page(all, limit, offset), int64(len(all)), nil
}

func (s *MemProjects) FindByIDIn(_ context.Context, ids []int64) ([]domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return s.sortedDesc(func(p domain.Project) bool { return want[p.ID] }), nil
}

func (s *MemProjects) CountByCreator(_ context.Context, creatorID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, p := range s.projects {
		if p.CreatedBy == creatorID {
			n++
		}
	}
	return n, nil
}

func (s *MemProjects) sortedDesc(keep func(domain.Project) bool) []domain.Project {
	var out []domain.Project
	for _, p := range s.projects {
		if keep == nil || keep(p) {
			out = append(out, clone(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func clone(p domain.Project) domain.Project {
	p.Tasks = append([]domain.Task(nil), p.Tasks...)
	return p
}

func page(all []domain.Project, limit, offset int) []domain.Project {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

type MemVotes struct {
	mu     sync.Mutex
	nextID int64
	votes  []domain.Vote
	unique map[[2]int64]bool // (project, user)
}

func NewVotes() *MemVotes {
	return &MemVotes{unique: make(map[[2]int64]bool)}
}

func (s *MemVotes) Cast(_ context.Context, v *domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]int64{v.ProjectID, v.UserID}
	if s.unique[key] {
		return domain.ErrDuplicateVote
	}
	s.unique[key] = true
	s.nextID++
	v.ID = s.nextID
	s.votes = append(s.votes, *v)
	return nil
}

func (s *MemVotes) CountByProject(ctx context.Context, projectID int64) ([]domain.TaskVoteCount, error) {
	return s.CountByProjectIn(ctx, []int64{projectID})
}

func (s *MemVotes) CountByProjectIn(_ context.Context, projectIDs []int64) ([]domain.TaskVoteCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[int64]bool, len(projectIDs))
	for _, id := range projectIDs {
		want[id] = true
	}
	counts := make(map[int64]int64)
	for _, v := range s.votes {
		if want[v.ProjectID] {
			counts[v.TaskID]++
		}
	}
	var out []domain.TaskVoteCount
	for taskID, n := range counts {
		out = append(out, domain.TaskVoteCount{TaskID: taskID, Count: n})
	}
	return out, nil
}

func (s *MemVotes) FindByUserAndProject(_ context.Context, userID, projectID int64) (*domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, v := range s.votes {
		if v.UserID == userID && v.ProjectID == projectID {
			c := v
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemVotes) FindByUserAndProjectIn(_ context.Context, userID int64, projectIDs []int64) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := make(map[int64]bool, len(projectIDs))
	for _, id := range projectIDs {
		want[id] = true
	}
	out := make(map[int64]int64)
	for _, v := range s.votes {
		if v.UserID == userID && want[v.ProjectID] {
			out[v.ProjectID] = v.TaskID
		}
	}
	return out, nil
}

func (s *MemVotes) PageVotedProjectIDs(_ context.Context, userID int64, limit, offset int) ([]int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var mine []domain.Vote
	for _, v := range s.votes {
		if v.UserID == userID {
			mine = append(mine, v)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID > mine[j].ID
	})

	total := int64(len(mine))
	if offset >= len(mine) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	ids := make([]int64, 0, end-offset)
	for _, v := range mine[offset:end] {
		ids = append(ids, v.ProjectID)
	}
	return ids, total, nil
}

func (s *MemVotes) CountByUser(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, v := range s.votes {
		if v.UserID == userID {
			n++
		}
	}
	return n, nil
}

type MemUsers struct {
	users map[int64]domain.User
}

func NewUsers(users ...domain.User) *MemUsers {
	s := &MemUsers{users: make(map[int64]domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *MemUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, domain.NotFound("User", "id", id)
	}
	return &u, nil
}

func (s *MemUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			c := u
			return &c, nil
		}
	}
	return nil, domain.NotFound("User", "username", username)
}

func (s *MemUsers) FindByIDIn(_ context.Context, ids []int64) (map[int64]*domain.User, error) {
	out := make(map[int64]*domain.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			c := u
			out[id] = &c
		}
	}
	return out, nil
}

func (s *MemUsers) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}
