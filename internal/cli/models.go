package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/HelpingAI/helpingai-go/pkg/api"
)

// modelsCmd lists the static model catalog.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List known HelpingAI models.",
	Run: func(cmd *cobra.Command, args []string) {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Model", "Context Window", "Reasoning"})

		for _, info := range api.Models() {
			reasoning := ""
			if info.Reasoning {
				reasoning = "yes"
			}
			t.AppendRow(table.Row{info.ID, info.ContextWindow, reasoning})
		}

		t.Render()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
