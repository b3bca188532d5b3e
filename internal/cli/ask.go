package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	askQuestion string
	askModel    string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a single question",
	Long: `Ask a single question against the ingested document index and print
the answer.

Examples:
  sage ask -q "What are the library hours?"
  sage ask -q "Hostel fees?" -m deepseek`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (required)")
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "model key or name (default from config)")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	p, coll, _, err := newPipeline()
	if err != nil {
		return err
	}
	defer coll.Close()

	answer := p.Answer(cmd.Context(), askQuestion, askModel)
	fmt.Println(answer)
	return nil
}
