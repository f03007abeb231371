package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/mindrecall/internal/usecase/retrieval"
)

var (
	contextUser  string
	contextQuery string
)

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Print the context bundle retrieved for a user and query",
	Long: `Run the retrieval pipeline once and print the merged passages plus every branch outcome.

Examples:
  mindrecall context --user 42 --query "can't sleep before exams"
  mindrecall context --env prod --user 42 --query "work stress"`,
	RunE: runContext,
}

func init() {
	contextCmd.Flags().StringVar(&contextUser, "user", "", "user id (required)")
	contextCmd.Flags().StringVar(&contextQuery, "query", "", "free-text query (required)")
	_ = contextCmd.MarkFlagRequired("user")
	_ = contextCmd.MarkFlagRequired("query")
}

type branchOutput struct {
	Source    string   `json:"source"`
	Documents []string `json:"documents"`
	Reason    string   `json:"degraded_reason,omitempty"`
}

type contextOutput struct {
	Passages []string       `json:"passages"`
	Branches []branchOutput `json:"branches"`
}

func runContext(cmd *cobra.Command, _ []string) error {
	cfg, logger, _, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := buildApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	out := toContextOutput(a.retrieval.Retrieve(cmd.Context(), contextUser, contextQuery))

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return nil
}

func toContextOutput(b retrieval.Bundle) contextOutput {
	out := contextOutput{Passages: b.Passages}
	if out.Passages == nil {
		out.Passages = []string{}
	}
	for _, br := range b.Branches() {
		bo := branchOutput{Source: string(br.Source), Documents: make([]string, 0, len(br.Documents))}
		for _, d := range br.Documents {
			bo.Documents = append(bo.Documents, fmt.Sprintf("%s (%.3f) %s", d.ID, d.Score, d.Text))
		}
		if br.Reason != nil {
			bo.Reason = br.Reason.Error()
		}
		out.Branches = append(out.Branches, bo)
	}
	return out
}
