// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/ios-tutor-core/pkg/config"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

var (
	completeTurnLabTitle   string
	completeTurnMastery    string
	completeTurnCLICommand string
	completeTurnCLIOutput  string
	completeTurnTimeout    time.Duration
)

var completeTurnCmd = &cobra.Command{
	Use:   "complete-turn [question]",
	Short: "Run one turn through the non-streaming agent graph",
	Long: `complete-turn calls Graph.CompleteTurn directly and prints the final
message once the whole turn has resolved — the non-streaming entry point
used by tests and by this command (§9 "keep a non-streaming complete_turn
for tests").`,
	Args: cobra.ExactArgs(1),
	RunE: runCompleteTurn,
}

func init() {
	completeTurnCmd.Flags().StringVar(&completeTurnLabTitle, "lab-title", "Lab", "lab context title for this turn")
	completeTurnCmd.Flags().StringVar(&completeTurnMastery, "mastery", string(types.MasteryNovice), "mastery level: novice, intermediate, advanced")
	completeTurnCmd.Flags().StringVar(&completeTurnCLICommand, "cli-command", "", "a CLI command observed since the last turn, if any")
	completeTurnCmd.Flags().StringVar(&completeTurnCLIOutput, "cli-output", "", "the output of --cli-command")
	completeTurnCmd.Flags().DurationVar(&completeTurnTimeout, "timeout", time.Minute, "turn timeout")
	rootCmd.AddCommand(completeTurnCmd)
}

func runCompleteTurn(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger()
	defer logger.Sync()

	dep, err := wire(cfg, logger)
	if err != nil {
		return err
	}

	session := types.NewSession("cli-session", types.LabContext{Title: completeTurnLabTitle}, types.MasteryLevel(completeTurnMastery))
	newCLI := cliEntriesFromFlags(completeTurnCLICommand, completeTurnCLIOutput)

	ctx, cancel := context.WithTimeout(context.Background(), completeTurnTimeout)
	defer cancel()

	state, err := dep.graph.CompleteTurn(ctx, session, strings.Join(args, " "), newCLI)
	if err != nil {
		return err
	}

	fmt.Println(state.FinalMessage)
	return nil
}
