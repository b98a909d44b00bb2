package main

import (
	"fmt"
	"os"

	"teacher_savings_portal/cmd/portal/cmd"
	"teacher_savings_portal/internal/apperr"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if suggestion := apperr.SuggestionOf(err); suggestion != "" {
			fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
		}
		os.Exit(1)
	}
}
