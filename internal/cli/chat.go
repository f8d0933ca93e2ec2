package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/HelpingAI/helpingai-go/pkg/api"
)

// chatCmd provides an interactive, REPL-style conversation with a model.
//
// It maintains the conversation history for the session and prints the
// streamed answer token by token, with reasoning markup stripped in real
// time unless --raw is given. Interruptions (Ctrl+C) are handled gracefully
// at any point, including while waiting for user input.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat with a HelpingAI model.",
	Long:  "Starts an interactive chat session with the specified model, maintaining conversation history.",
	Run: func(cmd *cobra.Command, args []string) {
		if message := validateChatFlags(); message != "" {
			fmt.Println(message)
			os.Exit(1)
		}

		client := api.NewClient(clientConfig())
		reader := bufio.NewReader(os.Stdin)

		// history holds the full conversation of the current session.
		var history []api.ChatMessage

		for {
			fmt.Print(text.FgBlue.Sprint("You: "))

			// Read user input with context-awareness, so Ctrl+C unblocks
			// the read and exits the loop.
			input, err := readStringContext(cmd.Context(), reader)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					fmt.Println("Failed to read input:", err)
				}
				return
			}

			role, message := parseInput(input)
			if message == "" {
				continue // Ignore empty inputs.
			}
			history = append(history, api.ChatMessage{Role: role, Content: message})

			stream, err := client.ChatCompletionStream(cmd.Context(),
				api.ChatRequest{Model: rootModel, Messages: history})
			if err != nil {
				fmt.Println("Error streaming response:", err)
				continue
			}

			fmt.Print(text.FgGreen.Sprint("Assistant: "))
			var answer strings.Builder

			for {
				chunk, ok, err := stream.NextContext(cmd.Context())
				if err != nil || !ok {
					break // Context canceled or stream finished.
				}
				if err := chunk.Err(); err != nil {
					fmt.Println("\nStream error:", err)
					break
				}

				for _, choice := range chunk.Choices {
					if choice.Index != 0 {
						continue // The CLI renders the first candidate only.
					}
					answer.WriteString(choice.Delta.Content)
					fmt.Print(choice.Delta.Content)
				}
			}
			fmt.Println("")

			history = append(history, api.ChatMessage{Role: api.RoleAssistant, Content: answer.String()})
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// readStringContext reads a line from the reader but aborts early if the
// context is canceled, making the blocking stdin read responsive to Ctrl+C.
//
// The buffered channel of size 1 ensures the producer goroutine's send
// completes even if the consumer has already returned; the temporary
// goroutine blocked on stdin is harmless for a CLI.
func readStringContext(ctx context.Context, reader *bufio.Reader) (string, error) {
	type readResult struct {
		input string
		err   error
	}

	resultChan := make(chan readResult, 1)
	go func() {
		input, err := reader.ReadString('\n')
		resultChan <- readResult{input: input, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case result := <-resultChan:
		return result.input, result.err
	}
}

// parseInput sanitizes raw user input and determines the message content
// and the intended role. A "system:"/"assistant:"/"user:" prefix selects
// the role; the default is user.
func parseInput(input string) (role, message string) {
	message = strings.TrimSpace(input)
	if message == "" {
		return "", ""
	}

	for _, r := range []string{api.RoleSystem, api.RoleAssistant, api.RoleUser} {
		prefix := r + ":"
		if strings.HasPrefix(strings.ToLower(message), prefix) {
			return r, strings.TrimSpace(message[len(prefix):])
		}
	}

	return api.RoleUser, message
}
