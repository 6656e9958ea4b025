package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/courserag/internal/domain/entities"
	"github.com/0xcro3dile/courserag/internal/infrastructure/bootstrap"
)

var askType string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question from the terminal",
	Long: `Ask runs a single question through the same paths as POST /chat.

Examples:
  courserag ask "Which languages is the honey bee course in?"
  courserag ask --type llm "ಜೇನು ಸಾಕಣೆ ಹೇಗೆ ಪ್ರಾರಂಭಿಸುವುದು?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askType, "type", "t", "rag", `answer path: "llm" for direct, anything else for catalog search`)
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("question must not be empty")
	}

	cfg := GetConfig()
	app, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		return err
	}

	// The deadline covers answering only, not loading the index.
	ctx := context.Background()
	if cfg.Server.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Server.RequestTimeout)
		defer cancel()
	}

	label := color.New(color.FgGreen, color.Bold).SprintFunc()
	meta := color.New(color.FgCyan).SprintFunc()

	if entities.ParseMode(askType) == entities.ModeDirectLLM {
		ans, err := app.Direct.AnswerInLanguage(ctx, query)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", label("Answer:"), ans.Text)
		fmt.Println(meta(fmt.Sprintf("(language: %s)", ans.Language)))
		return nil
	}

	out, err := app.Agent.Answer(ctx, query)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", label("Answer:"), out.Text)
	fmt.Println(meta(fmt.Sprintf("(source: %s)", out.Source)))
	return nil
}
