package main

import (
	"os"

	"github.com/HelpingAI/helpingai-go/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
