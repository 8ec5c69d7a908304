package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vocal/internal/core/domain"
)

var (
	askSession string
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question about the feedback",
	Long: `Answers a single question. The question is routed to statistics,
feedback search or chart rendering depending on what it asks for.

Examples:
  vocal ask "Wie viele Einträge gibt es?"
  vocal ask "Was sagen Kunden über die Lieferung in Deutschland?"
  vocal ask "Zeig mir ein Diagramm der Stimmung pro Markt"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askSession, "session", "s", "", "session id to continue a conversation")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the response as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if assistant == nil {
		return errors.New("assistant not configured")
	}
	ensureIndex(cmd)

	question := strings.Join(args, " ")
	resp, err := assistant.Ask(cmd.Context(), domain.TurnRequest{
		SessionID: askSession,
		Text:      question,
	})
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputJSON(cmd, responseView(resp))
	}
	printResponse(cmd, resp)
	return nil
}

// responseJSON is the machine-readable form of a response.
type responseJSON struct {
	Kind        string   `json:"kind"`
	Intent      string   `json:"intent,omitempty"`
	Text        string   `json:"text"`
	ImagePath   string   `json:"image_path,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Retryable   bool     `json:"retryable,omitempty"`
}

func responseView(resp *domain.Response) responseJSON {
	return responseJSON{
		Kind:        string(resp.Kind),
		Intent:      string(resp.Intent),
		Text:        resp.Text,
		ImagePath:   resp.ImagePath,
		Suggestions: resp.Suggestions,
		Retryable:   resp.Retryable,
	}
}

func printResponse(cmd *cobra.Command, resp *domain.Response) {
	cmd.Println(resp.Text)
	printExtras(cmd, resp)
}

// printExtras prints the chart path and follow-up suggestions.
func printExtras(cmd *cobra.Command, resp *domain.Response) {
	if resp.ImagePath != "" {
		cmd.Printf("\nChart: %s\n", resp.ImagePath)
	}
	if len(resp.Suggestions) > 0 {
		cmd.Println()
		cmd.Println("You could ask:")
		for _, s := range resp.Suggestions {
			cmd.Printf("  - %s\n", s)
		}
	}
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
