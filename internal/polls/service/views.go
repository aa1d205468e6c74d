package service

import "time"

// ProjectView is the composed, read-only representation of a project:
// vote counts per task, creator identity, and the viewer's own selection.
type ProjectView struct {
	ID             int64       `json:"id"`
	Name           string      `json:"projectName"`
	CreatedBy      UserSummary `json:"createdBy"`
	CreatedAt      time.Time   `json:"creationDateTime"`
	ExpiresAt      time.Time   `json:"expirationDateTime"`
	Expired        bool        `json:"expired"`
	Tasks          []TaskView  `json:"tasks"`
	SelectedTaskID *int64      `json:"selectedTask,omitempty"`
	TotalVotes     int64       `json:"totalVotes"`
}

type TaskView struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	VoteCount int64  `json:"voteCount"`
}

type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// UserProfile is the public profile of a user plus their activity counts.
type UserProfile struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	JoinedAt     time.Time `json:"joinedAt"`
	ProjectCount int64     `json:"projectCount"`
	VoteCount    int64     `json:"voteCount"`
}
