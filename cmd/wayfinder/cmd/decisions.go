package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/wayfinder/internal/core/db"
	"github.com/solatis/wayfinder/internal/types"
)

var decisionsCmd = &cobra.Command{
	Use:   "decisions",
	Short: "Show the routing decision history for a session",
	RunE:  runDecisions,
}

var (
	decisionsSession string
	decisionsLimit   int
)

func init() {
	rootCmd.AddCommand(decisionsCmd)
	decisionsCmd.Flags().StringVar(&decisionsSession, "session", "", "session id (required)")
	decisionsCmd.Flags().IntVar(&decisionsLimit, "limit", 20, "maximum entries to show")
	decisionsCmd.MarkFlagRequired("session")
}

func runDecisions(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}

	id, err := types.ParseSessionID(decisionsSession)
	if err != nil {
		return fmt.Errorf("invalid --session: %w", err)
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

	rows, err := store.ListDecisions(cmd.Context(), id, decisionsLimit)
	if err != nil {
		return err
	}

	for _, row := range rows {
		outcome := "no match"
		if row.Matched {
			outcome = fmt.Sprintf("-> %s (rule %d", row.Destination, row.RuleIndex)
			if row.PathwayType != "" {
				outcome += ", " + row.PathwayType
			}
			outcome += ")"
		}
		fmt.Printf("%s  %-24s %s\n", row.CreatedAt, row.ContainerID, outcome)
	}
	return nil
}
