// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/ios-tutor-core/pkg/config"
	"github.com/teradata-labs/ios-tutor-core/pkg/streaming"
	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

var (
	askLabID      string
	askMastery    string
	askCLICommand string
	askCLIOutput  string
	askTimeout    time.Duration
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Stream one turn through the agent graph",
	Long: `ask starts a fresh session via start_session (§6.1), then runs a
single turn through it with ask(session_id, message, cli_history?) and
prints each event as it arrives, the way a transport adapter would relay
them to a client (§4.7). It holds no session state across invocations:
every call starts a fresh session and ends it once the turn completes.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askLabID, "lab-id", "", "lab_id to look up in paths.labs_dir, if any")
	askCmd.Flags().StringVar(&askMastery, "mastery", string(types.MasteryNovice), "mastery level: novice, intermediate, advanced")
	askCmd.Flags().StringVar(&askCLICommand, "cli-command", "", "a CLI command observed since the last turn, if any")
	askCmd.Flags().StringVar(&askCLIOutput, "cli-output", "", "the output of --cli-command")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", time.Minute, "turn timeout")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	sessionID := dep.sessions.Start(askLabID, types.MasteryLevel(askMastery))
	defer dep.sessions.End(sessionID)
	newCLI := cliEntriesFromFlags(askCLICommand, askCLIOutput)

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	events, err := dep.sessions.Ask(ctx, sessionID, strings.Join(args, " "), newCLI)
	if err != nil {
		return err
	}
	for ev := range events {
		switch ev.Type {
		case streaming.EventInfo:
			fmt.Fprintf(os.Stderr, "[%s]\n", ev.Phase)
		case streaming.EventContent:
			fmt.Print(ev.Text)
		case streaming.EventMetadata:
			fmt.Println()
			fmt.Fprintf(os.Stderr, "[intent=%s docs=%v]\n", ev.Metadata.Intent, ev.Metadata.DocIDsUsed)
		case streaming.EventError:
			return fmt.Errorf("%s: %s", ev.ErrorKind, ev.Message)
		case streaming.EventDone:
			fmt.Println()
		}
	}
	return nil
}

func cliEntriesFromFlags(command, output string) []types.CLIEntry {
	if command == "" {
		return nil
	}
	return []types.CLIEntry{{Command: command, Output: output}}
}
