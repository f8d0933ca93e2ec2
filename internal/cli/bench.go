package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/HelpingAI/helpingai-go/pkg/api"
	"github.com/HelpingAI/helpingai-go/pkg/bench"
	"github.com/HelpingAI/helpingai-go/pkg/streams"
)

var (
	benchPrompt       string
	benchRequestCount int
	benchConcurrency  int
)

// benchCmd benchmarks the streaming latency of the API: time to first
// token, time between tokens, and total response time.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Benchmark the streaming latency of the API.",
	Run: func(cmd *cobra.Command, args []string) {
		if message := validateBenchFlags(); message != "" {
			fmt.Println(message)
			os.Exit(1)
		}

		client := api.NewClient(clientConfig())
		messages := []api.ChatMessage{{Role: api.RoleUser, Content: benchPrompt}}

		streamFunc := func(ctx context.Context) (*streams.Stream[bench.Event], error) {
			chunkStream, err := client.ChatCompletionStream(ctx,
				api.ChatRequest{Model: rootModel, Messages: messages})
			if err != nil {
				return nil, err
			}
			return streams.Map(chunkStream, func(chunk api.ChatCompletionChunk) bench.Event {
				return chunk
			}), nil
		}

		results, err := bench.BenchmarkStream(cmd.Context(), benchRequestCount, benchConcurrency, streamFunc)
		if err != nil {
			fmt.Println("Benchmark failed:", err)
			os.Exit(1)
		}

		renderResults(results)
	},
}

// renderResults prints the benchmark metrics as a table.
func renderResults(results bench.Results) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Metric", "Min", "Median", "Avg", "P90", "P99", "Max"})

	rows := []struct {
		name    string
		metrics bench.Metrics
	}{
		{"Time to first token", results.TTFT},
		{"Time between tokens", results.TBT},
		{"Total time", results.TT},
	}

	for _, row := range rows {
		t.AppendRow(table.Row{
			row.name,
			bench.FormatDuration(row.metrics.Min),
			bench.FormatDuration(row.metrics.Median),
			bench.FormatDuration(row.metrics.Avg),
			bench.FormatDuration(row.metrics.P90),
			bench.FormatDuration(row.metrics.P99),
			bench.FormatDuration(row.metrics.Max),
		})
	}

	t.Render()
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVarP(&benchPrompt, "prompt", "p",
		"", "Prompt to benchmark with.")

	benchCmd.Flags().IntVarP(&benchRequestCount, "requests", "n",
		10, "Total number of requests to execute.")

	benchCmd.Flags().IntVarP(&benchConcurrency, "concurrency", "c",
		1, "Number of requests to execute concurrently.")
}
