// internal/router/dispatch_test.go
package router

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solatis/wayfinder/internal/condition"
	"github.com/solatis/wayfinder/internal/types"
)

// memStore is the in-memory ProgressStore used by dispatcher tests.
type memStore struct {
	mu        sync.Mutex
	progress  map[types.SessionID]*types.Progress
	decisions []DecisionRecord
}

func newMemStore() *memStore {
	return &memStore{progress: make(map[types.SessionID]*types.Progress)}
}

func (s *memStore) GetProgress(_ context.Context, id types.SessionID) (*types.Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.progress[id]
	if !ok {
		return nil, types.ErrSessionNotFound
	}
	copied := *p
	return &copied, nil
}

func (s *memStore) SaveProgress(_ context.Context, p *types.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *p
	s.progress[p.SessionID] = &copied
	return nil
}

func (s *memStore) RecordDecision(_ context.Context, rec DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, rec)
	return nil
}

func (s *memStore) decisionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decisions)
}

func testDispatcher(t *testing.T) (*Dispatcher, *memStore) {
	t.Helper()
	store := newMemStore()
	r := NewRouter(condition.NewCache(), slog.New(slog.NewTextHandler(io.Discard, nil)), DefaultConfig())
	d, err := NewDispatcher(r, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return d, store
}

func TestDispatcher_Register(t *testing.T) {
	d, _ := testDispatcher(t)

	err := d.Register(&types.Pathway{
		ContainerID: "unit-1",
		Trigger:     types.Trigger{Type: types.TriggerOnCompletion},
		Rules:       []types.Rule{{Condition: "true", DestinationID: "unit-2"}},
	})
	require.NoError(t, err)

	err = d.Register(&types.Pathway{
		ContainerID: "unit-1",
		Trigger:     types.Trigger{Type: types.TriggerOnAssessment},
		Rules:       []types.Rule{{Condition: "true", DestinationID: "unit-2"}},
	})
	assert.ErrorIs(t, err, types.ErrMissingSourceID)

	err = d.Register(&types.Pathway{
		ContainerID: "unit-1",
		Trigger:     types.Trigger{Type: types.TriggerOnCompletion},
	})
	assert.ErrorIs(t, err, types.ErrNoRules)
}

func TestDispatcher_OnCompletionEvent(t *testing.T) {
	d, store := testDispatcher(t)
	require.NoError(t, d.Register(&types.Pathway{
		ContainerID: "unit-1",
		Trigger:     types.Trigger{Type: types.TriggerOnCompletion},
		Rules: []types.Rule{
			{Condition: `current_id == "unit-1" AND count(completed) >= 1`, DestinationID: "unit-2"},
		},
	}))

	session := types.NewSessionID()
	decision, err := d.OnEvent(context.Background(), Event{
		Type:        EventContentCompleted,
		SessionID:   session,
		ContainerID: "unit-1",
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.Equal(t, "unit-2", decision.DestinationID)

	prog, err := store.GetProgress(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, []string{"unit-1"}, prog.Completed)
	assert.Equal(t, 1, store.decisionCount())
}

func TestDispatcher_NoPathwayRegistered(t *testing.T) {
	d, store := testDispatcher(t)

	decision, err := d.OnEvent(context.Background(), Event{
		Type:        EventContentCompleted,
		SessionID:   types.NewSessionID(),
		ContainerID: "unit-9",
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)
	assert.Nil(t, decision)

	// Progress is still folded even when nothing routes; audit rows are only
	// written for dispatches that reached the router.
	assert.Equal(t, 0, store.decisionCount())
}

func TestDispatcher_AssessmentAttemptsAccumulate(t *testing.T) {
	d, _ := testDispatcher(t)
	require.NoError(t, d.Register(&types.Pathway{
		ContainerID: "unit-3",
		Trigger:     types.Trigger{Type: types.TriggerOnAssessment, SourceID: "quiz-1"},
		Rules: []types.Rule{
			{Condition: "NOT passed AND attempts >= 2", DestinationID: "remedial", PathwayType: "remedial"},
			{Condition: "passed", DestinationID: "unit-4"},
		},
	}))

	session := types.NewSessionID()
	submit := func(score float64, passed bool) *types.RouteDecision {
		decision, err := d.OnEvent(context.Background(), Event{
			Type:         EventAssessmentSubmitted,
			SessionID:    session,
			AssessmentID: "quiz-1",
			Score:        score,
			Passed:       passed,
			OccurredAt:   time.Now(),
		})
		require.NoError(t, err)
		return decision
	}

	// First failure: neither rule matches (attempts == 1, not passed).
	assert.Nil(t, submit(40, false))

	// Second failure routes to remediation.
	decision := submit(45, false)
	require.NotNil(t, decision)
	assert.Equal(t, "remedial", decision.DestinationID)
	assert.Equal(t, "remedial", decision.PathwayType)

	// Passing afterwards routes forward.
	decision = submit(80, true)
	require.NotNil(t, decision)
	assert.Equal(t, "unit-4", decision.DestinationID)
}

func TestDispatcher_UserChoiceUndefinedWhenAbsent(t *testing.T) {
	d, _ := testDispatcher(t)
	require.NoError(t, d.Register(&types.Pathway{
		ContainerID: "unit-1",
		Trigger:     types.Trigger{Type: types.TriggerOnCompletion},
		Rules: []types.Rule{
			{Condition: `exists(user_choice) AND user_choice == "skip"`, DestinationID: "unit-5"},
			{Condition: "true", DestinationID: "unit-2"},
		},
	}))

	ev := Event{
		Type:        EventContentCompleted,
		SessionID:   types.NewSessionID(),
		ContainerID: "unit-1",
		OccurredAt:  time.Now(),
	}

	decision, err := d.OnEvent(context.Background(), ev)
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.Equal(t, "unit-2", decision.DestinationID)

	ev.SessionID = types.NewSessionID()
	ev.UserChoice = "skip"
	decision, err = d.OnEvent(context.Background(), ev)
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.Equal(t, "unit-5", decision.DestinationID)
}

func TestDispatcher_FirstRegisteredPathwayWins(t *testing.T) {
	d, store := testDispatcher(t)
	require.NoError(t, d.Register(&types.Pathway{
		ContainerID: "unit-1",
		Trigger:     types.Trigger{Type: types.TriggerOnCompletion},
		Rules:       []types.Rule{{Condition: "score >= 100", DestinationID: "never"}},
	}))
	require.NoError(t, d.Register(&types.Pathway{
		ContainerID: "unit-1",
		Trigger:     types.Trigger{Type: types.TriggerOnCompletion},
		Rules:       []types.Rule{{Condition: "true", DestinationID: "unit-2"}},
	}))

	decision, err := d.OnEvent(context.Background(), Event{
		Type:        EventContentCompleted,
		SessionID:   types.NewSessionID(),
		ContainerID: "unit-1",
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, decision)
	assert.Equal(t, "unit-2", decision.DestinationID)

	// Both pathways were routed and recorded: one miss, one match.
	assert.Equal(t, 2, store.decisionCount())
}

func TestDispatcher_ConcurrentSessionsIndependent(t *testing.T) {
	d, store := testDispatcher(t)
	require.NoError(t, d.Register(&types.Pathway{
		ContainerID: "unit-3",
		Trigger:     types.Trigger{Type: types.TriggerOnAssessment, SourceID: "quiz-1"},
		Rules:       []types.Rule{{Condition: "attempts >= 3", DestinationID: "remedial"}},
	}))

	const sessions = 8
	const eventsPerSession = 5

	var wg sync.WaitGroup
	ids := make([]types.SessionID, sessions)
	for i := range ids {
		ids[i] = types.NewSessionID()
	}

	for _, id := range ids {
		wg.Add(1)
		go func(id types.SessionID) {
			defer wg.Done()
			for j := 0; j < eventsPerSession; j++ {
				_, err := d.OnEvent(context.Background(), Event{
					Type:         EventAssessmentSubmitted,
					SessionID:    id,
					AssessmentID: "quiz-1",
					Score:        50,
					OccurredAt:   time.Now(),
				})
				assert.NoError(t, err)
			}
		}(id)
	}
	wg.Wait()

	for _, id := range ids {
		prog, err := store.GetProgress(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, eventsPerSession, prog.Attempts["quiz-1"])
	}
}

func TestBuildContext_Snapshot(t *testing.T) {
	prog := &types.Progress{
		SessionID:     types.NewSessionID(),
		Completed:     []string{"unit-1", "unit-2"},
		ObjectivesMet: []string{"obj-1"},
		Attempts:      map[string]int{"quiz-1": 2},
		Scores:        map[string]float64{"quiz-1": 65},
	}
	ev := Event{
		Type:         EventAssessmentSubmitted,
		AssessmentID: "quiz-1",
		Score:        72.5,
		Passed:       true,
		OccurredAt:   time.Unix(1700000000, 0),
	}

	ctx := BuildContext(ev, prog)

	score, ok := ctx.Lookup("score")
	require.True(t, ok)
	assert.Equal(t, 72.5, score.Num)

	attempts, ok := ctx.Lookup("attempts")
	require.True(t, ok)
	assert.Equal(t, float64(2), attempts.Num)

	completed, ok := ctx.Lookup("completed")
	require.True(t, ok)
	assert.Len(t, completed.List, 2)

	ts, ok := ctx.Lookup("timestamp")
	require.True(t, ok)
	assert.Equal(t, float64(1700000000), ts.Num)

	_, ok = ctx.Lookup("user_choice")
	assert.False(t, ok)

	// Later progress mutation must not leak into the snapshot.
	prog.Completed = append(prog.Completed, "unit-3")
	completed, _ = ctx.Lookup("completed")
	assert.Len(t, completed.List, 2)
}
