package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/report"
)

var reportSessionID string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a performance report for a completed session",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportSessionID, "session", "", "Session UUID (required)")
	_ = reportCmd.MarkFlagRequired("session")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	sessionID, err := uuid.Parse(reportSessionID)
	if err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	appCfg, err := config.NewAppConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, appCfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), appCfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer func() { _ = client.Close() }()

	rep, err := report.NewSynthesizer(database.Sessions(), client).Generate(ctx, sessionID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
