package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/vocal/internal/adapters/driving/tui"
	"github.com/custodia-labs/vocal/internal/core/domain"
)

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with your feedback corpus",
	Long: `Start an interactive conversation about the indexed feedback.

In a terminal this opens a full-screen chat. When input is piped, each
line is answered in turn and the conversation keeps its history.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if assistant == nil {
		return errors.New("assistant not configured")
	}
	ensureIndex(cmd)

	if !stdinIsTerminal() {
		return runREPL(cmd)
	}

	app, err := tui.NewApp(&tui.Ports{
		Assistant: assistant,
		Index:     indexService,
	})
	if err != nil {
		return fmt.Errorf("failed to start chat: %w", err)
	}
	return app.WithContext(cmd.Context()).Run()
}

// runREPL answers one question per input line within a single session.
func runREPL(cmd *cobra.Command) error {
	session := uuid.NewString()
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		cmd.Printf("> %s\n", question)
		emitted := false
		resp, err := assistant.AskStream(cmd.Context(), domain.TurnRequest{
			SessionID: session,
			Text:      question,
		}, func(seg string) error {
			emitted = true
			cmd.Println(seg)
			return nil
		})
		if err != nil {
			return fmt.Errorf("ask failed: %w", err)
		}
		if !emitted {
			cmd.Println(resp.Text)
		}
		printExtras(cmd, resp)
		cmd.Println()
	}
	return scanner.Err()
}
