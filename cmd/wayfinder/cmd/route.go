package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/wayfinder/internal/condition"
	"github.com/solatis/wayfinder/internal/core/db"
	"github.com/solatis/wayfinder/internal/document"
	"github.com/solatis/wayfinder/internal/router"
	"github.com/solatis/wayfinder/internal/types"
)

var routeCmd = &cobra.Command{
	Use:   "route <document.yaml>",
	Short: "Dispatch a trigger event and print the routing decision",
	Long: `Route loads a published document, replays one trigger event for a
session, and prints the resulting decision as JSON. Progress and the
decision audit log are persisted, so repeated invocations accumulate
session state the way a live host would.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoute,
}

var (
	routeSession    string
	routeEvent      string
	routeContainer  string
	routeAssessment string
	routeScore      float64
	routePassed     bool
	routeObjectives []string
	routeChoice     string
)

func init() {
	rootCmd.AddCommand(routeCmd)
	routeCmd.Flags().StringVar(&routeSession, "session", "", "session id (new session when empty)")
	routeCmd.Flags().StringVar(&routeEvent, "event", "contentCompleted", "event type (contentCompleted, assessmentSubmitted)")
	routeCmd.Flags().StringVar(&routeContainer, "container", "", "completed container id (contentCompleted)")
	routeCmd.Flags().StringVar(&routeAssessment, "assessment", "", "submitted assessment id (assessmentSubmitted)")
	routeCmd.Flags().Float64Var(&routeScore, "score", 0, "assessment score")
	routeCmd.Flags().BoolVar(&routePassed, "passed", false, "assessment pass flag")
	routeCmd.Flags().StringArrayVar(&routeObjectives, "objective", nil, "objective id met by this event (repeatable)")
	routeCmd.Flags().StringVar(&routeChoice, "choice", "", "explicit learner choice")
}

func runRoute(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	ev, err := buildEvent()
	if err != nil {
		return err
	}

	doc, err := document.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	if issues := document.Validate(doc); len(issues) > 0 {
		return fmt.Errorf("document has %d validation issues, run 'wayfinder validate' first", len(issues))
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	store, err := db.NewStore(database)
	if err != nil {
		return err
	}

	r := router.NewRouter(condition.NewCache(), logger, routerConfig(cfg))
	dispatcher, err := router.NewDispatcher(r, store, logger)
	if err != nil {
		return err
	}
	if err := dispatcher.RegisterAll(doc.Pathways()); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.EventTimeout)
	defer cancel()

	decision, err := dispatcher.OnEvent(ctx, ev)
	if err != nil {
		return fmt.Errorf("dispatch failed: %w", err)
	}

	out := struct {
		SessionID string               `json:"sessionId"`
		Matched   bool                 `json:"matched"`
		Decision  *types.RouteDecision `json:"decision,omitempty"`
	}{
		SessionID: string(ev.SessionID),
		Matched:   decision != nil,
		Decision:  decision,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// buildEvent assembles the trigger event from flags.
func buildEvent() (router.Event, error) {
	ev := router.Event{
		Score:         routeScore,
		Passed:        routePassed,
		ObjectivesMet: routeObjectives,
		UserChoice:    routeChoice,
		OccurredAt:    time.Now().UTC(),
	}

	if routeSession == "" {
		ev.SessionID = types.NewSessionID()
	} else {
		id, err := types.ParseSessionID(routeSession)
		if err != nil {
			return router.Event{}, fmt.Errorf("invalid --session: %w", err)
		}
		ev.SessionID = id
	}

	switch router.EventType(routeEvent) {
	case router.EventContentCompleted:
		if routeContainer == "" {
			return router.Event{}, fmt.Errorf("--container required for contentCompleted")
		}
		ev.Type = router.EventContentCompleted
		ev.ContainerID = routeContainer
	case router.EventAssessmentSubmitted:
		if routeAssessment == "" {
			return router.Event{}, fmt.Errorf("--assessment required for assessmentSubmitted")
		}
		ev.Type = router.EventAssessmentSubmitted
		ev.AssessmentID = routeAssessment
	default:
		return router.Event{}, fmt.Errorf("unknown --event %q", routeEvent)
	}

	return ev, nil
}
