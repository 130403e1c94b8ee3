package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/pkg/metrics"
)

const defaultShardCount = 16

// shard holds the roster entries and session histories for the
// students hashed onto it. Sessions are kept sorted by completion time
// so reads never re-sort.
type shard struct {
	mu       sync.RWMutex
	students map[string]model.Student
	sessions map[string][]model.TestSession
}

// MemStore is a sharded in-memory Store. Student state shards by
// student ID so concurrent ingestion for different students rarely
// contends; the watchlist is a small cross-student relation and keeps
// its own lock.
type MemStore struct {
	shardCount   int
	shards       []*shard
	sessionCount atomic.Int64
	studentCount atomic.Int64

	watchMu   sync.RWMutex
	watchlist map[string]map[string]struct{} // userID -> studentID set
}

// NewMemStore creates an empty store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{shardCount: defaultShardCount}
	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{
			students: make(map[string]model.Student),
			sessions: make(map[string][]model.TestSession),
		}
	}
	s.watchlist = make(map[string]map[string]struct{})

	metrics.UpdateStoreShardCount(s.shardCount)
	return s
}

func (s *MemStore) shardFor(studentID string) *shard {
	h := fnv.New32a()
	h.Write([]byte(studentID))
	return s.shards[int(h.Sum32())%s.shardCount]
}

func (s *MemStore) UpsertStudent(ctx context.Context, student model.Student) error {
	if student.ID == "" {
		return ErrInvalidStudent
	}

	sh := s.shardFor(student.ID)
	sh.mu.Lock()
	_, existed := sh.students[student.ID]
	sh.students[student.ID] = student
	sh.mu.Unlock()

	if !existed {
		metrics.UpdateStudentsTracked(int(s.studentCount.Add(1)))
	}
	return nil
}

func (s *MemStore) Student(ctx context.Context, id string) (model.Student, error) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	student, ok := sh.students[id]
	if !ok {
		return model.Student{}, ErrNotFound
	}
	return student, nil
}

func (s *MemStore) Students(ctx context.Context) []model.Student {
	var out []model.Student
	for _, sh := range s.shards {
		sh.mu.RLock()
		for _, student := range sh.students {
			out = append(out, student)
		}
		sh.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemStore) AddSession(ctx context.Context, session model.TestSession) error {
	if session.SessionID == "" || session.StudentID == "" {
		return ErrInvalidSession
	}

	sh := s.shardFor(session.StudentID)
	sh.mu.Lock()
	history := sh.sessions[session.StudentID]
	history = append(history, session)
	// Insertion keeps the slice sorted; new sessions usually append at
	// the end so this loop is rarely more than one step.
	for i := len(history) - 1; i > 0; i-- {
		if !history[i].CompletedAt.Before(history[i-1].CompletedAt) {
			break
		}
		history[i], history[i-1] = history[i-1], history[i]
	}
	sh.sessions[session.StudentID] = history
	sh.mu.Unlock()

	metrics.UpdateSessionsStored(int(s.sessionCount.Add(1)))
	return nil
}

func (s *MemStore) Sessions(ctx context.Context, studentID string) ([]model.TestSession, error) {
	sh := s.shardFor(studentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	if _, ok := sh.students[studentID]; !ok {
		return nil, ErrNotFound
	}
	history := sh.sessions[studentID]
	out := make([]model.TestSession, len(history))
	copy(out, history)
	return out, nil
}

func (s *MemStore) History(ctx context.Context, studentID string) ([]ScoreRecord, error) {
	sessions, err := s.Sessions(ctx, studentID)
	if err != nil {
		return nil, err
	}

	var out []ScoreRecord
	for _, sess := range sessions {
		for _, obs := range sess.Scores {
			out = append(out, ScoreRecord{
				SessionID:    sess.SessionID,
				Subtest:      sess.Subtest,
				AcademicYear: sess.AcademicYear,
				TimeOfYear:   sess.TimeOfYear,
				CompletedAt:  sess.CompletedAt,
				Observation:  obs,
			})
		}
	}
	return out, nil
}

func (s *MemStore) ToggleWatch(ctx context.Context, userID, studentID string) (bool, error) {
	if _, err := s.Student(ctx, studentID); err != nil {
		return false, err
	}

	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	watched, ok := s.watchlist[userID]
	if !ok {
		watched = make(map[string]struct{})
		s.watchlist[userID] = watched
	}
	if _, watching := watched[studentID]; watching {
		delete(watched, studentID)
		return false, nil
	}
	watched[studentID] = struct{}{}
	return true, nil
}

func (s *MemStore) Watched(ctx context.Context, userID string) []string {
	s.watchMu.RLock()
	defer s.watchMu.RUnlock()

	watched := s.watchlist[userID]
	out := make([]string, 0, len(watched))
	for id := range watched {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *MemStore) StudentCount(ctx context.Context) int {
	return int(s.studentCount.Load())
}

func (s *MemStore) SessionCount(ctx context.Context) int {
	return int(s.sessionCount.Load())
}
