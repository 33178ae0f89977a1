// Package manage holds the authenticated management list: the jobs a logged-in
// user can edit locally and delete from the Job Store.
//
// Boards are kept per session. Each one is loaded wholesale from the store and
// then changed only by Edit and a successful Delete.
package manage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"careerpage/portal-service/internal/jobstore"
	"careerpage/portal-service/internal/model"
)

// Messages shown on the management page.
const (
	MsgLoadFailed   = "Failed to load jobs"
	MsgDeleted      = "Job deleted successfully!"
	MsgDeleteFailed = "Failed to delete the job"
	MsgEdited       = "Job updated locally"
	MsgEditNotFound = "Job not found"
)

// Store is the part of the Job Store the management list needs.
type Store interface {
	ListJobs(ctx context.Context, token string) ([]model.Job, error)
	DeleteJob(ctx context.Context, token, id string) error
}

// ErrNotFound is returned when an edit names a job the board does not hold.
var ErrNotFound = fmt.Errorf("job not found")

// Service keeps one board per session.
type Service struct {
	store Store

	mu     sync.Mutex
	boards map[string][]model.Job
}

func NewService(store Store) *Service {
	return &Service{store: store, boards: make(map[string][]model.Job)}
}

// Load fetches the board for sessionID with the session's bearer token and
// replaces whatever was held before. On failure the board is emptied.
func (s *Service) Load(ctx context.Context, sessionID, token string) ([]model.Job, error) {
	jobs, err := s.store.ListJobs(ctx, token)
	if err != nil {
		slog.Error("management list load failed", "err", err)
		s.set(sessionID, nil)
		return nil, err
	}
	s.set(sessionID, jobs)
	return s.Jobs(sessionID), nil
}

// Jobs returns a copy of the board for sessionID.
func (s *Service) Jobs(sessionID string) []model.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	board := s.boards[sessionID]
	out := make([]model.Job, len(board))
	copy(out, board)
	return out
}

// Edit replaces the job with the given id on the board. The change is local
// only and keeps the job's identifier.
func (s *Service) Edit(sessionID, id string, job model.Job) (*model.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board := s.boards[sessionID]
	i := model.IndexByID(board, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	job.ID = id
	board[i] = job
	return &job, nil
}

// Delete removes the job upstream and, only when that succeeds, from the
// board. The returned message is the one to show either way.
func (s *Service) Delete(ctx context.Context, sessionID, token, id string) (string, error) {
	if err := s.store.DeleteJob(ctx, token, id); err != nil {
		slog.Warn("delete job failed", "jobId", id, "err", err)
		return MsgDeleteFailed, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	board := s.boards[sessionID]
	if i := model.IndexByID(board, id); i >= 0 {
		s.boards[sessionID] = append(board[:i:i], board[i+1:]...)
	}
	return MsgDeleted, nil
}

// Drop forgets the board for a session that logged out.
func (s *Service) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, sessionID)
}

// IsAuthFailure reports whether err means the token was refused and the user
// should log in again.
func IsAuthFailure(err error) bool {
	return errors.Is(err, jobstore.ErrUnauthorized)
}

func (s *Service) set(sessionID string, jobs []model.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if jobs == nil {
		jobs = []model.Job{}
	}
	s.boards[sessionID] = jobs
}
