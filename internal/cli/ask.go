package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HelpingAI/helpingai-go/pkg/api"
)

// askCmd sends a single prompt and prints the complete answer, using the
// non-streaming API path.
var askCmd = &cobra.Command{
	Use:   "ask <prompt>",
	Short: "Ask a single question and print the complete answer.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if message := validateRootFlags(); message != "" {
			fmt.Println(message)
			os.Exit(1)
		}

		client := api.NewClient(clientConfig())

		completion, err := client.ChatCompletion(cmd.Context(), api.ChatRequest{
			Model:    rootModel,
			Messages: []api.ChatMessage{{Role: api.RoleUser, Content: args[0]}},
		})
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}

		for _, choice := range completion.Choices {
			fmt.Println(choice.Message.Content)
		}
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
