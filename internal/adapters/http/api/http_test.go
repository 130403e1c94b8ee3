package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edulytics/screener/internal/adapters/http/api"
	"github.com/edulytics/screener/internal/adapters/repository"
	"github.com/edulytics/screener/internal/domain/model"
	"github.com/edulytics/screener/internal/domain/narrative"
	"github.com/edulytics/screener/internal/domain/trend"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	seen           map[string]bool
	enqueueSuccess bool
	enqueued       []model.TestSession
	registered     []model.Student

	tier       api.StudentTier
	tierErr    error
	summary    api.TierSummary
	students   []api.StudentTier
	history    []api.TierPeriod
	historyErr error
	atRisk     []api.AtRiskStudent
	analyzer   *narrative.Analyzer
	watching   bool
	watchErr   error
	watchUsers []string
}

func (m *mockDependencies) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDependencies) Unrecord(ctx context.Context, id string) {
	delete(m.seen, id)
}

func (m *mockDependencies) Size() int64 {
	return int64(len(m.seen))
}

func (m *mockDependencies) RegisterStudent(ctx context.Context, student model.Student) error {
	m.registered = append(m.registered, student)
	return nil
}

func (m *mockDependencies) Enqueue(ctx context.Context, s model.TestSession) bool {
	if m.enqueueSuccess {
		m.enqueued = append(m.enqueued, s)
		return true
	}
	return false
}

func (m *mockDependencies) StudentTier(ctx context.Context, studentID string) (api.StudentTier, error) {
	if m.tierErr != nil {
		return api.StudentTier{}, m.tierErr
	}
	return m.tier, nil
}

func (m *mockDependencies) TierSummary(ctx context.Context) (api.TierSummary, error) {
	return m.summary, nil
}

func (m *mockDependencies) TierStudents(ctx context.Context, tier int) ([]api.StudentTier, error) {
	return m.students, nil
}

func (m *mockDependencies) TierHistory(ctx context.Context, studentID string) ([]api.TierPeriod, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

func (m *mockDependencies) AtRisk(ctx context.Context) ([]api.AtRiskStudent, error) {
	return m.atRisk, nil
}

func (m *mockDependencies) AnalyzeTranscript(ctx context.Context, transcript string) narrative.Result {
	if m.analyzer == nil {
		m.analyzer = narrative.NewAnalyzer()
	}
	return m.analyzer.Analyze(transcript)
}

func (m *mockDependencies) ToggleWatch(ctx context.Context, userID, studentID string) (bool, error) {
	if m.watchErr != nil {
		return false, m.watchErr
	}
	m.watchUsers = append(m.watchUsers, userID)
	return m.watching, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

const sessionBody = `{
	"session_id": "sess-1",
	"student": {"id": "stu-1", "first_name": "Maya", "last_name": "Torres", "grade": "3", "school": "Lincoln Elementary"},
	"subtest": "NLM_READING",
	"grade": "3",
	"academic_year": "2025-2026",
	"time_of_year": "MOY",
	"completed_at": "2026-01-20T09:00:00Z",
	"scores": [{"target": "DECODING_FLUENCY", "raw_score": 85}]
}`

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDependencies{enqueueSuccess: true}
		mux := newMux(deps)

		Convey("Then the health endpoint serves the metrics registry", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint returns provider output", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "started")
		})

		Convey("And the subtests endpoint lists the catalog", func() {
			req := httptest.NewRequest("GET", "/subtests", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)

			var subtests []map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &subtests), ShouldBeNil)
			So(subtests, ShouldHaveLength, 6)
		})
	})
}

func TestSessionsEndpoint(t *testing.T) {
	Convey("Given a sessions endpoint", t, func() {
		deps := &mockDependencies{enqueueSuccess: true}
		mux := newMux(deps)

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("POST", "/sessions", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When a valid session is posted", func() {
			w := post(sessionBody)

			Convey("Then it is accepted and registered", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)

				var ack map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["status"], ShouldEqual, "accepted")
				So(ack["duplicate"], ShouldEqual, false)
				So(ack["session_id"], ShouldEqual, "sess-1")

				So(deps.registered, ShouldHaveLength, 1)
				So(deps.registered[0].ID, ShouldEqual, "stu-1")
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].Scores[0].Subtest, ShouldEqual, "NLM_READING")
			})

			Convey("And a re-post acks as duplicate without enqueueing", func() {
				w2 := post(sessionBody)
				So(w2.Code, ShouldEqual, http.StatusOK)
				So(w2.Body.String(), ShouldContainSubstring, `"duplicate":true`)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When the session ID is omitted", func() {
			w := post(strings.Replace(sessionBody, `"session_id": "sess-1",`, "", 1))

			Convey("Then one is assigned and echoed back", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)

				var ack map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["session_id"], ShouldNotBeEmpty)
			})
		})

		Convey("When the body is not JSON", func() {
			So(post("not json").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the subtest is unknown", func() {
			w := post(strings.Replace(sessionBody, "NLM_READING", "NLM_BOGUS", 1))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the window is invalid", func() {
			w := post(strings.Replace(sessionBody, `"MOY"`, `"XOY"`, 1))
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue is saturated", func() {
			deps.enqueueSuccess = false
			w := post(sessionBody)

			Convey("Then the request is rejected and the ID released for retry", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestTierEndpoints(t *testing.T) {
	Convey("Given tier endpoints", t, func() {
		deps := &mockDependencies{
			tier: api.StudentTier{StudentID: "stu-1", FirstName: "Maya", LastName: "Torres", Tier: 2},
			summary: api.TierSummary{
				Total: 2,
			},
			students: []api.StudentTier{{StudentID: "stu-2", Tier: 3}},
			history:  []api.TierPeriod{{Period: "2025-2026 BOY", Tier: 1}},
		}
		mux := newMux(deps)

		Convey("When fetching a student's tier", func() {
			req := httptest.NewRequest("GET", "/students/stu-1/tier", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"tier":2`)
		})

		Convey("When the student is unknown", func() {
			deps.tierErr = repository.ErrNotFound
			req := httptest.NewRequest("GET", "/students/ghost/tier", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When fetching the summary", func() {
			req := httptest.NewRequest("GET", "/tiers/summary", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"total":2`)
		})

		Convey("When listing tier students", func() {
			req := httptest.NewRequest("GET", "/tiers/students?tier=3", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "stu-2")
		})

		Convey("When the tier filter is malformed", func() {
			req := httptest.NewRequest("GET", "/tiers/students?tier=gold", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching tier history", func() {
			req := httptest.NewRequest("GET", "/students/stu-1/tiers/history", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "2025-2026 BOY")
		})
	})
}

func TestAtRiskEndpoint(t *testing.T) {
	Convey("Given an at-risk endpoint", t, func() {
		deps := &mockDependencies{
			atRisk: []api.AtRiskStudent{{
				StudentID:   "stu-1",
				StudentName: "Torres, Maya",
				Probability: trend.High,
			}},
		}
		mux := newMux(deps)

		Convey("When fetching the early-warning list", func() {
			req := httptest.NewRequest("GET", "/at-risk", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "Torres, Maya")
		})

		Convey("When the list is empty", func() {
			deps.atRisk = nil
			req := httptest.NewRequest("GET", "/at-risk", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(strings.TrimSpace(w.Body.String()), ShouldEqual, "[]")
		})
	})
}

func TestWatchlistEndpoint(t *testing.T) {
	Convey("Given a watchlist endpoint", t, func() {
		deps := &mockDependencies{watching: true}
		mux := newMux(deps)

		Convey("When toggling a watch with a user header", func() {
			req := httptest.NewRequest("POST", "/students/stu-1/watchlist", nil)
			req.Header.Set("X-User-ID", "teacher-1")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"on_watchlist":true`)
			So(deps.watchUsers, ShouldResemble, []string{"teacher-1"})
		})

		Convey("When the user header is absent", func() {
			req := httptest.NewRequest("POST", "/students/stu-1/watchlist", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.watchUsers, ShouldResemble, []string{"default"})
		})

		Convey("When the student is unknown", func() {
			deps.watchErr = repository.ErrNotFound
			req := httptest.NewRequest("POST", "/students/ghost/watchlist", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestTranscriptsEndpoint(t *testing.T) {
	Convey("Given a transcripts endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When posting a transcript", func() {
			body := `{"transcript": "Maya lost her dog because he ran away. She looked everywhere and finally found him."}`
			req := httptest.NewRequest("POST", "/transcripts/analyze", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)

			var res narrative.Result
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.Total, ShouldEqual, 9)
		})

		Convey("When the transcript is blank", func() {
			req := httptest.NewRequest("POST", "/transcripts/analyze", strings.NewReader(`{"transcript": "  "}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
