// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "iostutor",
	Short: "IOS lab tutor orchestration core",
	Long: `iostutor is a manual smoke-test harness for the IOS lab tutor's
agent graph: Intent Router, Retriever, LLM Gateway, and Tool Executor
wired together exactly as the production embedding does (§1 excludes the
production transport from this module's scope).`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./iostutor.yaml)")
}

func main() {
	Execute()
}
