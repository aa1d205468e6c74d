package service

import (
	"time"

	"github.com/ivoka/taskvote-backend/internal/polls/domain"
)

// buildProjectView composes a project, its task vote counts, its creator and
// the viewer's selection into a response view. Pure: no I/O, no clock reads.
// "now" is whatever instant the caller captured for the request, so the
// expired flag and the vote guard can never disagree within one call.
//
// Tasks missing from counts have zero votes. totalVotes is re-derived as the
// sum of the task counts and is never stored, so it cannot drift.
func buildProjectView(p *domain.Project, counts map[int64]int64, creator *domain.User, selectedTaskID *int64, now time.Time) ProjectView {
	tasks := make([]TaskView, len(p.Tasks))
	var total int64
	for i, t := range p.Tasks {
		n := counts[t.ID]
		tasks[i] = TaskView{ID: t.ID, Text: t.Text, VoteCount: n}
		total += n
	}

	return ProjectView{
		ID:   p.ID,
		Name: p.Name,
		CreatedBy: UserSummary{
			ID:       creator.ID,
			Username: creator.Username,
			Name:     creator.Name,
		},
		CreatedAt:      p.CreatedAt,
		ExpiresAt:      p.ExpiresAt,
		Expired:        p.Expired(now),
		Tasks:          tasks,
		SelectedTaskID: selectedTaskID,
		TotalVotes:     total,
	}
}

// countsToMap flattens grouped count rows into a task id -> count lookup.
func countsToMap(rows []domain.TaskVoteCount) map[int64]int64 {
	out := make(map[int64]int64, len(rows))
	for _, r := range rows {
		out[r.TaskID] = r.Count
	}
	return out
}
