// Package service implements the project aggregation service: creation,
// personalized retrieval and listing, and vote casting with conflict
// handling. All invariants of the voting core live here or in the stores it
// drives.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ivoka/taskvote-backend/internal/pagination"
	"github.com/ivoka/taskvote-backend/internal/polls/domain"
)

// ProjectStore is the persistence port for projects and their tasks.
type ProjectStore interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByID(ctx context.Context, id int64) (*domain.Project, error)
	FindAll(ctx context.Context, limit, offset int) ([]domain.Project, int64, error)
	FindByCreator(ctx context.Context, creatorID int64, limit, offset int) ([]domain.Project, int64, error)
	FindByIDIn(ctx context.Context, ids []int64) ([]domain.Project, error)
	CountByCreator(ctx context.Context, creatorID int64) (int64, error)
}

// VoteStore is the persistence port for votes. Cast must return
// domain.ErrDuplicateVote when the (project, user) unique constraint rejects
// the insert; that signal, not an application pre-check, is what prevents
// double voting under concurrency.
type VoteStore interface {
	Cast(ctx context.Context, v *domain.Vote) error
	CountByProject(ctx context.Context, projectID int64) ([]domain.TaskVoteCount, error)
	CountByProjectIn(ctx context.Context, projectIDs []int64) ([]domain.TaskVoteCount, error)
	FindByUserAndProject(ctx context.Context, userID, projectID int64) (*domain.Vote, error)
	FindByUserAndProjectIn(ctx context.Context, userID int64, projectIDs []int64) (map[int64]int64, error)
	PageVotedProjectIDs(ctx context.Context, userID int64, limit, offset int) ([]int64, int64, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
}

// UserStore resolves identity records owned by the identity side.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByIDIn(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// Viewer identifies the authenticated user a view is personalized for.
// A nil *Viewer means anonymous: no selections are resolved at all.
type Viewer struct {
	ID int64
}

type Service struct {
	projects ProjectStore
	votes    VoteStore
	users    UserStore

	// now is captured once per operation so the expiry guard and the view
	// composition agree on the same instant.
	now func() time.Time
}

func New(projects ProjectStore, votes VoteStore, users UserStore) *Service {
	return &Service{
		projects: projects,
		votes:    votes,
		users:    users,
		now:      time.Now,
	}
}

// CreateRequest carries the input for project creation.
type CreateRequest struct {
	Name   string
	Tasks  []string
	Length ProjectLength
}

// ProjectLength is the requested lifetime of a project, applied once at
// creation to derive the expiration timestamp.
type ProjectLength struct {
	Days  int
	Hours int
}

func (l ProjectLength) Duration() time.Duration {
	return time.Duration(l.Days)*24*time.Hour + time.Duration(l.Hours)*time.Hour
}

// Create validates the request and persists the project with its tasks
// atomically. Expiration is createdAt + requested length, computed exactly
// once and never recomputed.
func (s *Service) Create(ctx context.Context, creatorID int64, req CreateRequest) (*domain.Project, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	now := s.now()
	p := &domain.Project{
		Name:      strings.TrimSpace(req.Name),
		CreatedBy: creatorID,
		CreatedAt: now,
		ExpiresAt: now.Add(req.Length.Duration()),
		Tasks:     make([]domain.Task, len(req.Tasks)),
	}
	for i, text := range req.Tasks {
		p.Tasks[i] = domain.Task{Text: strings.TrimSpace(text)}
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}

	slog.Info("project created", "project_id", p.ID, "creator_id", creatorID, "tasks", len(p.Tasks))
	return p, nil
}

// Get returns the fully composed view of one project.
func (s *Service) Get(ctx context.Context, projectID int64, viewer *Viewer) (*ProjectView, error) {
	now := s.now()

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	counts, err := s.votes.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	creator, err := s.users.FindByID(ctx, p.CreatedBy)
	if err != nil {
		return nil, err
	}

	var selected *int64
	if viewer != nil {
		v, err := s.votes.FindByUserAndProject(ctx, viewer.ID, projectID)
		if err != nil {
			return nil, err
		}
		if v != nil {
			selected = &v.TaskID
		}
	}

	view := buildProjectView(p, countsToMap(counts), creator, selected, now)
	return &view, nil
}

// List returns one newest-first page of project views across all projects.
func (s *Service) List(ctx context.Context, viewer *Viewer, page, size int) (pagination.Page[ProjectView], error) {
	if err := validatePage(page, size); err != nil {
		return pagination.Page[ProjectView]{}, err
	}

	projects, total, err := s.projects.FindAll(ctx, size, page*size)
	if err != nil {
		return pagination.Page[ProjectView]{}, err
	}
	return s.assemblePage(ctx, projects, viewer, page, size, total)
}

// ListCreatedBy returns one newest-first page of projects created by the
// named user.
func (s *Service) ListCreatedBy(ctx context.Context, username string, viewer *Viewer, page, size int) (pagination.Page[ProjectView], error) {
	if err := validatePage(page, size); err != nil {
		return pagination.Page[ProjectView]{}, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return pagination.Page[ProjectView]{}, err
	}

	projects, total, err := s.projects.FindByCreator(ctx, user.ID, size, page*size)
	if err != nil {
		return pagination.Page[ProjectView]{}, err
	}
	return s.assemblePage(ctx, projects, viewer, page, size, total)
}

// ListVotedBy returns one page of projects the named user voted in. Page
// membership and envelope metadata come from paging the vote table; the
// projects themselves are then fetched and re-sorted by creation time
// descending, so the response order is independent of vote order.
func (s *Service) ListVotedBy(ctx context.Context, username string, viewer *Viewer, page, size int) (pagination.Page[ProjectView], error) {
	if err := validatePage(page, size); err != nil {
		return pagination.Page[ProjectView]{}, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return pagination.Page[ProjectView]{}, err
	}

	ids, total, err := s.votes.PageVotedProjectIDs(ctx, user.ID, size, page*size)
	if err != nil {
		return pagination.Page[ProjectView]{}, err
	}
	if len(ids) == 0 {
		return pagination.Empty[ProjectView](page, size, total), nil
	}

	projects, err := s.projects.FindByIDIn(ctx, ids)
	if err != nil {
		return pagination.Page[ProjectView]{}, err
	}
	return s.assemblePage(ctx, projects, viewer, page, size, total)
}

// CastVote records the voter's choice and returns the updated view. Guards
// run in order: project exists, project not expired, task belongs to the
// project. The duplicate-vote check is the storage unique constraint
// surfacing through Cast; the losing side of a race always gets the
// conflict, never a silent overwrite.
func (s *Service) CastVote(ctx context.Context, projectID, taskID int64, voter Viewer) (*ProjectView, error) {
	now := s.now()

	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if p.Expired(now) {
		return nil, domain.Conflict(domain.ErrProjectExpired)
	}

	var selected *domain.Task
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			selected = &p.Tasks[i]
			break
		}
	}
	if selected == nil {
		return nil, domain.NotFound("Task", "id", taskID)
	}

	vote := &domain.Vote{
		ProjectID: projectID,
		TaskID:    selected.ID,
		UserID:    voter.ID,
		CreatedAt: now,
	}
	if err := s.votes.Cast(ctx, vote); err != nil {
		if errors.Is(err, domain.ErrDuplicateVote) {
			slog.Info("duplicate vote rejected", "project_id", projectID, "user_id", voter.ID)
			return nil, domain.Conflict(domain.ErrDuplicateVote)
		}
		return nil, err
	}

	// Vote saved; the counts below include it, giving the writing request
	// read-after-write consistency for its own response.
	counts, err := s.votes.CountByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	creator, err := s.users.FindByID(ctx, p.CreatedBy)
	if err != nil {
		return nil, err
	}

	view := buildProjectView(p, countsToMap(counts), creator, &vote.TaskID, now)
	return &view, nil
}

// Me returns the identity summary for the authenticated user.
func (s *Service) Me(ctx context.Context, userID int64) (*UserSummary, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserSummary{ID: u.ID, Username: u.Username, Name: u.Name}, nil
}

// Profile returns the public profile of the named user, including how many
// projects they created and how many votes they cast.
func (s *Service) Profile(ctx context.Context, username string) (*UserProfile, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	projectCount, err := s.projects.CountByCreator(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	voteCount, err := s.votes.CountByUser(ctx, u.ID)
	if err != nil {
		return nil, err
	}

	return &UserProfile{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		JoinedAt:     u.CreatedAt,
		ProjectCount: projectCount,
		VoteCount:    voteCount,
	}, nil
}

// UsernameAvailable reports whether the username is free to claim.
func (s *Service) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	taken, err := s.users.ExistsByUsername(ctx, username)
	return !taken, err
}

// EmailAvailable reports whether the email is free to claim.
func (s *Service) EmailAvailable(ctx context.Context, email string) (bool, error) {
	taken, err := s.users.ExistsByEmail(ctx, email)
	return !taken, err
}

// assemblePage turns one page of projects into views with two batched
// queries (grouped vote counts, viewer selections) plus one bulk creator
// lookup, so round trips stay constant regardless of page size.
func (s *Service) assemblePage(ctx context.Context, projects []domain.Project, viewer *Viewer, page, size int, total int64) (pagination.Page[ProjectView], error) {
	now := s.now()

	if len(projects) == 0 {
		return pagination.Empty[ProjectView](page, size, total), nil
	}

	ids := make([]int64, len(projects))
	creatorIDs := make([]int64, 0, len(projects))
	seen := make(map[int64]bool, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
		if !seen[projects[i].CreatedBy] {
			seen[projects[i].CreatedBy] = true
			creatorIDs = append(creatorIDs, projects[i].CreatedBy)
		}
	}

	countRows, err := s.votes.CountByProjectIn(ctx, ids)
	if err != nil {
		return pagination.Page[ProjectView]{}, err
	}
	counts := countsToMap(countRows)

	// Selections stay nil for anonymous viewers: absent, not empty.
	var selections map[int64]int64
	if viewer != nil {
		selections, err = s.votes.FindByUserAndProjectIn(ctx, viewer.ID, ids)
		if err != nil {
			return pagination.Page[ProjectView]{}, err
		}
	}

	creators, err := s.users.FindByIDIn(ctx, creatorIDs)
	if err != nil {
		return pagination.Page[ProjectView]{}, err
	}

	views := make([]ProjectView, 0, len(projects))
	for i := range projects {
		p := &projects[i]
		creator, ok := creators[p.CreatedBy]
		if !ok {
			return pagination.Page[ProjectView]{}, domain.NotFound("User", "id", p.CreatedBy)
		}

		var selected *int64
		if taskID, ok := selections[p.ID]; ok {
			t := taskID
			selected = &t
		}
		views = append(views, buildProjectView(p, counts, creator, selected, now))
	}

	return pagination.New(views, page, size, total), nil
}

func validateCreate(req CreateRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Validationf("project name must not be blank")
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLen {
		return domain.Validationf("project name must not exceed %d characters", domain.MaxNameLen)
	}

	if len(req.Tasks) < domain.MinTasks || len(req.Tasks) > domain.MaxTasks {
		return domain.Validationf("a project must have between %d and %d tasks", domain.MinTasks, domain.MaxTasks)
	}
	for _, text := range req.Tasks {
		text = strings.TrimSpace(text)
		if text == "" {
			return domain.Validationf("task text must not be blank")
		}
		if utf8.RuneCountInString(text) > domain.MaxTaskTextLen {
			return domain.Validationf("task text must not exceed %d characters", domain.MaxTaskTextLen)
		}
	}

	if req.Length.Days < 0 || req.Length.Hours < 0 || req.Length.Hours > 23 {
		return domain.Validationf("project length days must be >= 0 and hours in [0,23]")
	}
	if req.Length.Duration() <= 0 {
		return domain.Validationf("project length must be positive")
	}
	return nil
}

func validatePage(page, size int) error {
	if page < 0 {
		return domain.Validationf("page number cannot be less than zero")
	}
	if size <= 0 {
		return domain.Validationf("page size must be greater than zero")
	}
	if size > domain.MaxPageSize {
		return domain.Validationf("page size must not be greater than %d", domain.MaxPageSize)
	}
	return nil
}
