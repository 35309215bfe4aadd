package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/hitsim/hitsim/internal/adapters/http/api"
	"github.com/hitsim/hitsim/internal/adapters/repository"
	"github.com/hitsim/hitsim/internal/domain/judgement"
	"github.com/hitsim/hitsim/internal/domain/model"
	"github.com/hitsim/hitsim/internal/domain/synth"
	"github.com/hitsim/hitsim/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// mockDeps implements api.Dependencies for handler tests.
type mockDeps struct {
	seen        map[string]bool
	enqueueFull bool
	enqueued    []model.Play
	results     map[string]model.Result
	simulateErr error
}

func newMockDeps() *mockDeps {
	return &mockDeps{
		seen:    make(map[string]bool),
		results: make(map[string]model.Result),
	}
}

func (m *mockDeps) SeenAndRecord(_ context.Context, id string) bool {
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDeps) Seen(_ context.Context, id string) bool {
	return m.seen[id]
}

func (m *mockDeps) Unrecord(_ context.Context, id string) {
	delete(m.seen, id)
}

func (m *mockDeps) Size() int64 {
	return int64(len(m.seen))
}

func (m *mockDeps) Simulate(_ context.Context, p model.Play) (model.Result, error) {
	if m.simulateErr != nil {
		return model.Result{}, m.simulateErr
	}
	return model.Result{
		JobID:        p.JobID,
		Distribution: judgement.Distribution{Perfect: p.Objects - p.Misses, Miss: p.Misses},
		Accuracy:     p.Accuracy,
		MaxCombo:     p.Objects,
	}, nil
}

func (m *mockDeps) Enqueue(_ context.Context, p model.Play) bool {
	if m.enqueueFull {
		return false
	}
	m.enqueued = append(m.enqueued, p)
	return true
}

func (m *mockDeps) Result(_ context.Context, jobID string) (model.Result, error) {
	r, ok := m.results[jobID]
	if !ok {
		return model.Result{}, repository.ErrNotFound
	}
	return r, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDeps) *http.ServeMux {
	srv := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, 1_000_000)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return mux
}

func TestHandlePostSimulate(t *testing.T) {
	Convey("Given a simulate endpoint", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		Convey("When posting a valid play", func() {
			body := `{"objects":100,"misses":2,"accuracy":0.95}`
			req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it returns the synthesized result", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Distribution judgement.Distribution `json:"distribution"`
					Accuracy     float64                `json:"accuracy"`
					MaxCombo     int                    `json:"max_combo"`
				}
				So(json.NewDecoder(rec.Body).Decode(&resp), ShouldBeNil)
				So(resp.Distribution.Perfect, ShouldEqual, 98)
				So(resp.Distribution.Miss, ShouldEqual, 2)
				So(resp.MaxCombo, ShouldEqual, 100)
			})
		})

		Convey("When posting malformed JSON", func() {
			req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader("{nope"))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it returns 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting out-of-range fields", func() {
			cases := []string{
				`{"objects":-1,"misses":0,"accuracy":0.5}`,
				`{"objects":10,"misses":11,"accuracy":0.5}`,
				`{"objects":10,"misses":0,"accuracy":1.5}`,
				`{"objects":10,"misses":0,"accuracy":0.5,"good":-1}`,
				`{"objects":10,"misses":0,"accuracy":0.5,"nested":[2,-1]}`,
			}
			for _, body := range cases {
				req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, req)

				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the domain rejects the play", func() {
			deps.simulateErr = synth.ErrNegativeCount
			body := `{"objects":10,"misses":0,"accuracy":0.5}`
			req := httptest.NewRequest(http.MethodPost, "/simulate", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it returns 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest(http.MethodGet, "/simulate", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it returns 405", func() {
				So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestHandlePostJob(t *testing.T) {
	Convey("Given a jobs endpoint", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		Convey("When submitting a new job", func() {
			body := `{"job_id":"job-1","objects":50,"misses":1,"accuracy":0.9}`
			req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it is accepted and enqueued", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				So(deps.enqueued, ShouldHaveLength, 1)
				So(deps.enqueued[0].JobID, ShouldEqual, "job-1")
			})
		})

		Convey("When submitting without a job ID", func() {
			body := `{"objects":50,"misses":1,"accuracy":0.9}`
			req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then one is generated", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
				var resp struct {
					JobID string `json:"job_id"`
				}
				So(json.NewDecoder(rec.Body).Decode(&resp), ShouldBeNil)
				So(resp.JobID, ShouldNotBeEmpty)
			})
		})

		Convey("When submitting a duplicate job", func() {
			body := `{"job_id":"job-1","objects":50,"misses":1,"accuracy":0.9}`
			req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
			mux.ServeHTTP(httptest.NewRecorder(), req)

			req2 := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req2)

			Convey("Then it is acknowledged without re-enqueueing", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp struct {
					Duplicate bool `json:"duplicate"`
				}
				So(json.NewDecoder(rec.Body).Decode(&resp), ShouldBeNil)
				So(resp.Duplicate, ShouldBeTrue)
				So(deps.enqueued, ShouldHaveLength, 1)
			})
		})

		Convey("When the queue is full", func() {
			deps.enqueueFull = true
			body := `{"job_id":"job-2","objects":50,"misses":1,"accuracy":0.9}`
			req := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(body))
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it returns 429 and the job may be retried", func() {
				So(rec.Code, ShouldEqual, http.StatusTooManyRequests)
				So(deps.seen, ShouldNotContainKey, "job-2")
			})
		})
	})
}

func TestHandleGetJob(t *testing.T) {
	Convey("Given a job result endpoint", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		Convey("When the result is stored", func() {
			deps.results["job-1"] = model.Result{
				JobID:        "job-1",
				Distribution: judgement.Distribution{Perfect: 9, Miss: 1},
				Accuracy:     0.9,
				MaxCombo:     10,
			}
			req := httptest.NewRequest(http.MethodGet, "/jobs/job-1", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it is returned", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var resp model.Result
				So(json.NewDecoder(rec.Body).Decode(&resp), ShouldBeNil)
				So(resp.JobID, ShouldEqual, "job-1")
				So(resp.MaxCombo, ShouldEqual, 10)
			})
		})

		Convey("When the job is still pending", func() {
			deps.seen["job-2"] = true
			req := httptest.NewRequest(http.MethodGet, "/jobs/job-2", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it returns 202", func() {
				So(rec.Code, ShouldEqual, http.StatusAccepted)
			})
		})

		Convey("When the job is unknown", func() {
			req := httptest.NewRequest(http.MethodGet, "/jobs/missing", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			Convey("Then it returns 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHandleHealthAndStats(t *testing.T) {
	Convey("Given the operational endpoints", t, func() {
		deps := newMockDeps()
		mux := newTestMux(deps)

		Convey("When checking health", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When fetching stats", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			So(rec.Code, ShouldEqual, http.StatusOK)
			var stats map[string]interface{}
			So(json.NewDecoder(rec.Body).Decode(&stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})
	})
}
