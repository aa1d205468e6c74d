package domain

import "time"

// Project is a poll: a question with a fixed set of 2-6 candidate tasks.
// Tasks are created together with the project and never change afterwards;
// the only thing that accrues over time is votes.
type Project struct {
	ID        int64
	Name      string
	CreatedBy int64
	CreatedAt time.Time
	ExpiresAt time.Time
	Tasks     []Task
}

// Expired reports whether the project can no longer accept votes as of now.
// Never stored; always evaluated against the caller's captured instant.
func (p *Project) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// Task is one candidate option inside a project. Lifecycle-bound to its
// parent; identity is unique within the project.
type Task struct {
	ID   int64
	Text string
}

// Vote binds one user to one task of one project. Append-only; the
// (project, user) pair is unique at the storage layer.
type Vote struct {
	ID        int64
	ProjectID int64
	TaskID    int64
	UserID    int64
	CreatedAt time.Time
}

// TaskVoteCount is the shape of a grouped count query result. Tasks with
// zero votes are simply absent from result sets.
type TaskVoteCount struct {
	TaskID int64
	Count  int64
}

// User is the identity-side record referenced by projects and votes.
type User struct {
	ID        int64
	Username  string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Limits shared by creation and pagination validation.
const (
	MaxNameLen     = 140
	MaxTaskTextLen = 40
	MinTasks       = 2
	MaxTasks       = 6

	DefaultPageNumber = 0
	DefaultPageSize   = 30
	MaxPageSize       = 30
)
