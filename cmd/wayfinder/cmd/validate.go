package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/solatis/wayfinder/internal/document"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document.yaml>",
	Short: "Validate a content document before publication",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	doc, err := document.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	issues := document.Validate(doc)
	if len(issues) == 0 {
		fmt.Printf("%s: ok (%d pathways, checksum %s)\n", doc.ID, len(doc.Pathways()), doc.Checksum())
		return nil
	}

	for _, issue := range issues {
		fmt.Println(issue.String())
	}
	return fmt.Errorf("%d validation issues", len(issues))
}
