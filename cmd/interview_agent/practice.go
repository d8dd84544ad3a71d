package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/llm"
	"github.com/jonathan/interview-coach/internal/session"
)

var (
	practiceCompany   string
	practiceRoleLevel string
	practiceQuestions int
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview in the terminal",
	Long:  `Run an interactive mock interview against an in-memory session. Nothing is persisted; useful for trying prompts and protocol changes.`,
	RunE:  runPractice,
}

func init() {
	practiceCmd.Flags().StringVar(&practiceCompany, "company", "", "Target company (required)")
	practiceCmd.Flags().StringVar(&practiceRoleLevel, "role-level", "mid", "Role level (junior, mid, senior, staff)")
	practiceCmd.Flags().IntVar(&practiceQuestions, "questions", session.DefaultMaxQuestions, "Number of interview questions")
	_ = practiceCmd.MarkFlagRequired("company")
	rootCmd.AddCommand(practiceCmd)
}

func runPractice(cmd *cobra.Command, _ []string) error {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx := cmd.Context()
	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}
	defer func() { _ = client.Close() }()

	controller := interview.NewController(db.NewMemoryStore(), client, practiceQuestions)

	sess, err := controller.StartSession(ctx, uuid.New(), practiceCompany, practiceRoleLevel, "")
	if err != nil {
		return err
	}

	fmt.Printf("Mock interview for a %s role at %s (%d questions). Type your answers; Ctrl-D quits.\n\n",
		practiceRoleLevel, practiceCompany, practiceQuestions)
	fmt.Printf("Interviewer: %s\n\n", sess.Messages[0].Content)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println("\nInterview abandoned.")
			_, err := controller.CloseSession(ctx, sess.ID, session.StatusAbandoned)
			return err
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}

		fmt.Println()
		outcome, err := controller.SubmitTurn(ctx, sess.ID, answer, func(delta string) {
			fmt.Print(delta)
		})
		fmt.Println()
		if err != nil {
			var invalid *interview.InvalidInputError
			if errors.As(err, &invalid) {
				fmt.Printf("(%s)\n\n", invalid.Reason)
				continue
			}
			return err
		}

		if outcome.IsComplete {
			fmt.Println("\nInterview complete.")
			if outcome.OverallScore != nil {
				fmt.Printf("Overall score: %d/100\n", *outcome.OverallScore)
			}
			if outcome.FinalSummary != "" {
				fmt.Printf("Summary: %s\n", outcome.FinalSummary)
			}
			return nil
		}
		fmt.Println()
	}
}
