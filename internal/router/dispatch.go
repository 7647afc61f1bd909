// internal/router/dispatch.go
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/solatis/wayfinder/internal/condition"
	"github.com/solatis/wayfinder/internal/types"
)

/*
 * Trigger dispatch.
 *
 * The dispatcher decides when a decision point's rules run: it maps
 * ContentCompleted and AssessmentSubmitted events to the pathways
 * registered with a matching trigger, folds the event into the session's
 * progress state, and snapshots that state into an immutable variable
 * context before invoking the router.
 *
 * This is the only component with access to mutable session state. Events
 * for the same session are serialized through a per-session mutex so two
 * triggers firing in quick succession cannot race on attempt counters;
 * different sessions proceed concurrently with no shared mutable state
 * beyond the read-mostly AST cache.
 */

// EventType identifies the class of a triggering event.
type EventType string

const (
	EventContentCompleted    EventType = "contentCompleted"
	EventAssessmentSubmitted EventType = "assessmentSubmitted"
)

// Event is one triggering occurrence in a learner session.
// ContainerID is set for completion events, AssessmentID plus the
// assessment results for submission events. UserChoice carries an explicit
// learner selection when the host collected one.
type Event struct {
	Type          EventType
	SessionID     types.SessionID
	ContainerID   string
	AssessmentID  string
	Score         float64
	Passed        bool
	ObjectivesMet []string
	UserChoice    string
	OccurredAt    time.Time
}

// DecisionRecord is one routing outcome persisted for monitoring. Recorded
// for every dispatch that reached the router, matched or not, so "no rule
// matched" rates are observable per decision point.
type DecisionRecord struct {
	DecisionID  types.DecisionID
	SessionID   types.SessionID
	ContainerID string
	Matched     bool
	Destination string
	PathwayType string
	RuleIndex   int
	RuleErrors  []RuleError
	CreatedAt   time.Time
}

// ProgressStore persists per-session progress and the decision audit log.
// Implemented by db.Store; an in-memory variant backs tests.
type ProgressStore interface {
	GetProgress(ctx context.Context, id types.SessionID) (*types.Progress, error)
	SaveProgress(ctx context.Context, p *types.Progress) error
	RecordDecision(ctx context.Context, rec DecisionRecord) error
}

// Dispatcher owns trigger registration and session state mutation.
type Dispatcher struct {
	router *Router
	store  ProgressStore
	logger *slog.Logger

	mu           sync.Mutex
	sessionLocks map[types.SessionID]*sync.Mutex

	completion map[string][]*types.Pathway // container id -> pathways
	assessment map[string][]*types.Pathway // assessment source id -> pathways
}

// NewDispatcher creates a dispatcher with its dependencies.
func NewDispatcher(r *Router, store ProgressStore, logger *slog.Logger) (*Dispatcher, error) {
	if r == nil {
		return nil, fmt.Errorf("router cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		router:       r,
		store:        store,
		logger:       logger,
		sessionLocks: make(map[types.SessionID]*sync.Mutex),
		completion:   make(map[string][]*types.Pathway),
		assessment:   make(map[string][]*types.Pathway),
	}, nil
}

// Register indexes a published pathway by its trigger. Registration order
// is preserved per trigger key: when several pathways share a trigger the
// first registered one that yields a decision wins.
func (d *Dispatcher) Register(p *types.Pathway) error {
	if err := p.Validate(); err != nil {
		return err
	}
	switch p.Trigger.Type {
	case types.TriggerOnCompletion:
		d.completion[p.ContainerID] = append(d.completion[p.ContainerID], p)
	case types.TriggerOnAssessment:
		d.assessment[p.Trigger.SourceID] = append(d.assessment[p.Trigger.SourceID], p)
	default:
		return types.ErrUnknownTriggerType
	}
	return nil
}

// RegisterAll registers every pathway of a published document.
func (d *Dispatcher) RegisterAll(pathways []*types.Pathway) error {
	for _, p := range pathways {
		if err := d.Register(p); err != nil {
			return fmt.Errorf("pathway for container %q: %w", p.ContainerID, err)
		}
	}
	return nil
}

// OnEvent folds the event into session progress, snapshots a variable
// context, and routes the matching pathways. Returns nil when no pathway
// is registered for the trigger or no rule matched; the caller falls back
// to default linear navigation.
func (d *Dispatcher) OnEvent(ctx context.Context, ev Event) (*types.RouteDecision, error) {
	lock := d.sessionLock(ev.SessionID)
	lock.Lock()
	defer lock.Unlock()

	prog, err := d.store.GetProgress(ctx, ev.SessionID)
	if err != nil {
		if !errors.Is(err, types.ErrSessionNotFound) {
			return nil, fmt.Errorf("load progress: %w", err)
		}
		prog = newProgress(ev.SessionID)
	}

	applyEvent(prog, ev)
	prog.UpdatedAt = ev.OccurredAt
	if err := d.store.SaveProgress(ctx, prog); err != nil {
		return nil, fmt.Errorf("save progress: %w", err)
	}

	pathways := d.pathwaysFor(ev)
	if len(pathways) == 0 {
		return nil, nil
	}

	vctx := BuildContext(ev, prog)

	for _, p := range pathways {
		decision, ruleErrs := d.router.Route(p, vctx)
		d.record(ctx, ev, p, decision, ruleErrs)
		if decision != nil {
			return decision, nil
		}
	}
	return nil, nil
}

// BuildContext snapshots the event and progress state into an immutable
// variable context. The context owns copies of everything it exposes;
// later progress mutation cannot leak into an evaluation in flight.
func BuildContext(ev Event, prog *types.Progress) *condition.VariableContext {
	vars := map[string]condition.Value{
		"timestamp":      condition.Number(float64(ev.OccurredAt.Unix())),
		"completed":      stringList(prog.Completed),
		"objectives_met": stringList(prog.ObjectivesMet),
	}

	switch ev.Type {
	case EventContentCompleted:
		vars["current_id"] = condition.Text(ev.ContainerID)
	case EventAssessmentSubmitted:
		vars["current_id"] = condition.Text(ev.AssessmentID)
		vars["score"] = condition.Number(ev.Score)
		vars["passed"] = condition.BoolValue(ev.Passed)
		vars["attempts"] = condition.Number(float64(prog.Attempts[ev.AssessmentID]))
	}

	// user_choice stays undefined when the host supplied none; conditions
	// probe for it with exists().
	if ev.UserChoice != "" {
		vars["user_choice"] = condition.Text(ev.UserChoice)
	}

	return condition.NewContext(vars)
}

// pathwaysFor returns the pathways registered for the event's trigger.
func (d *Dispatcher) pathwaysFor(ev Event) []*types.Pathway {
	switch ev.Type {
	case EventContentCompleted:
		return d.completion[ev.ContainerID]
	case EventAssessmentSubmitted:
		return d.assessment[ev.AssessmentID]
	default:
		return nil
	}
}

// record persists the routing outcome; failures are logged, never
// propagated, because the audit log must not break routing.
func (d *Dispatcher) record(ctx context.Context, ev Event, p *types.Pathway, decision *types.RouteDecision, ruleErrs []RuleError) {
	rec := DecisionRecord{
		DecisionID:  types.NewDecisionID(),
		SessionID:   ev.SessionID,
		ContainerID: p.ContainerID,
		RuleErrors:  ruleErrs,
		CreatedAt:   ev.OccurredAt,
	}
	if decision != nil {
		rec.Matched = true
		rec.Destination = decision.DestinationID
		rec.PathwayType = decision.PathwayType
		rec.RuleIndex = decision.RuleIndex
	}
	if err := d.store.RecordDecision(ctx, rec); err != nil {
		d.logger.Warn("decision audit write failed",
			"session_id", string(ev.SessionID),
			"container_id", p.ContainerID,
			"error", err,
		)
	}
}

// sessionLock returns the serialization mutex for a session, creating it
// on first use. The map grows by one entry per active session.
func (d *Dispatcher) sessionLock(id types.SessionID) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.sessionLocks[id]; !ok {
		d.sessionLocks[id] = &sync.Mutex{}
	}
	return d.sessionLocks[id]
}

func newProgress(id types.SessionID) *types.Progress {
	return &types.Progress{
		SessionID: id,
		Attempts:  make(map[string]int),
		Scores:    make(map[string]float64),
	}
}

// applyEvent folds one event into progress state.
func applyEvent(prog *types.Progress, ev Event) {
	if prog.Attempts == nil {
		prog.Attempts = make(map[string]int)
	}
	if prog.Scores == nil {
		prog.Scores = make(map[string]float64)
	}

	switch ev.Type {
	case EventContentCompleted:
		if !contains(prog.Completed, ev.ContainerID) {
			prog.Completed = append(prog.Completed, ev.ContainerID)
		}
	case EventAssessmentSubmitted:
		prog.Attempts[ev.AssessmentID]++
		prog.Scores[ev.AssessmentID] = ev.Score
	}

	for _, obj := range ev.ObjectivesMet {
		if !contains(prog.ObjectivesMet, obj) {
			prog.ObjectivesMet = append(prog.ObjectivesMet, obj)
		}
	}
}

func contains(xs []string, x string) bool {
	for _, s := range xs {
		if s == x {
			return true
		}
	}
	return false
}

func stringList(xs []string) condition.Value {
	elems := make([]condition.Value, len(xs))
	for i, s := range xs {
		elems[i] = condition.Text(s)
	}
	return condition.ListValue(elems...)
}
