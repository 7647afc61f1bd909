package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/solatis/wayfinder/internal/core/db"
	"github.com/solatis/wayfinder/internal/document"
)

var publishCmd = &cobra.Command{
	Use:   "publish <document.yaml>",
	Short: "Validate and publish a content document",
	Long: `Publish validates the document and stores it with its checksum.
Publication is append-only per (document id, version); bump the version
field to publish a revision.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadEngineConfig()
	if err != nil {
		return err
	}

	doc, err := document.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	if issues := document.Validate(doc); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Println(issue.String())
		}
		return fmt.Errorf("document has %d validation issues, not published", len(issues))
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

	rec := db.DocumentRecord{
		DocumentID:  doc.ID,
		Version:     doc.Version,
		Title:       doc.Title,
		Checksum:    doc.Checksum(),
		Source:      doc.Source(),
		PublishedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := store.SaveDocument(cmd.Context(), rec); err != nil {
		return err
	}

	fmt.Printf("published %s version %d (checksum %s)\n", doc.ID, doc.Version, doc.Checksum())
	return nil
}
