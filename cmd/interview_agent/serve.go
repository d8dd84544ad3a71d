package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/config"
	"github.com/jonathan/interview-coach/internal/server"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the interview session, story bank and report endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	appCfg, err := config.NewAppConfig()
	if err != nil {
		return err
	}
	if servePort != "" {
		appCfg.Port = servePort
	}

	srv, err := server.New(cmd.Context(), server.Config{
		Port:         appCfg.Port,
		DatabaseURL:  appCfg.DatabaseURL,
		APIKey:       appCfg.GeminiAPIKey,
		MaxQuestions: appCfg.MaxQuestions,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
