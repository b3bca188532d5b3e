package cli

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session",
	Long: `Start an interactive chat session against the ingested document
index. Type 'exit' or 'quit' to leave; a summary of the session is printed
on exit.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

type exchange struct {
	question string
	answer   string
}

func runChat(cmd *cobra.Command, args []string) error {
	p, coll, _, err := newPipeline()
	if err != nil {
		return err
	}
	defer coll.Close()

	in := bufio.NewScanner(os.Stdin)

	fmt.Println("\n=== Welcome to SAGE ===")
	fmt.Println("Type 'exit' or 'quit' to leave.")

	model := chooseModel(in)
	fmt.Printf("\nUsing model: %s\n\n", model)

	var history []exchange
	for {
		fmt.Print("You: ")
		if !in.Scan() {
			break
		}
		question := strings.TrimSpace(in.Text())

		switch strings.ToLower(question) {
		case "exit", "quit":
			fmt.Println("Exiting SAGE. Goodbye!")
			printSummary(history)
			return nil
		case "":
			fmt.Println("Please type a question.")
			continue
		}

		answer := p.Answer(cmd.Context(), question, model)
		fmt.Printf("SAGE: %s\n\n", answer)
		history = append(history, exchange{question: question, answer: answer})
	}

	printSummary(history)
	return nil
}

// chooseModel prints a numbered menu of registry models and reads a
// selection. Empty or invalid input falls back to the default model.
func chooseModel(in *bufio.Scanner) string {
	keys := make([]string, 0, len(cfg.Models.Registry))
	for key := range cfg.Models.Registry {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	defaultName := cfg.Models.Registry[cfg.Models.Default].Name

	fmt.Println("\nAvailable models:")
	for i, key := range keys {
		entry := cfg.Models.Registry[key]
		fmt.Printf("%d. %s - %s\n", i+1, entry.Name, entry.Description)
	}
	fmt.Printf("\nSelect model (1-%d) [default: %s]: ", len(keys), defaultName)

	if !in.Scan() {
		return defaultName
	}
	choice := strings.TrimSpace(in.Text())
	if choice == "" {
		return defaultName
	}

	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(keys) {
		fmt.Println("Invalid choice. Using default model.")
		return defaultName
	}
	return cfg.Models.Registry[keys[idx-1]].Name
}

func printSummary(history []exchange) {
	if len(history) == 0 {
		return
	}
	fmt.Println("\n=== Session Summary ===")
	for i, ex := range history {
		fmt.Printf("%d. You: %s\n", i+1, ex.question)
		fmt.Printf("   SAGE: %s\n\n", ex.answer)
	}
}
