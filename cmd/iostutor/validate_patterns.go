// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teradata-labs/ios-tutor-core/pkg/config"
	"github.com/teradata-labs/ios-tutor-core/pkg/errorpatterns"
)

var validatePatternsCmd = &cobra.Command{
	Use:   "validate-patterns",
	Short: "Load and validate the configured error pattern sources",
	Long: `validate-patterns loads every *.json file under paths.patterns_dir
through errorpatterns.NewRegistry and reports how many patterns loaded, or
the first validation failure (§4.1 load()). Useful before deploying a new
pattern file without starting the rest of the graph.`,
	RunE: runValidatePatterns,
}

func init() {
	rootCmd.AddCommand(validatePatternsCmd)
}

func runValidatePatterns(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sources, err := patternFiles(cfg.Paths.PatternsDir)
	if err != nil {
		return fmt.Errorf("listing pattern sources: %w", err)
	}
	if len(sources) == 0 {
		fmt.Println("no pattern sources found under", cfg.Paths.PatternsDir)
		return nil
	}

	registry, err := errorpatterns.NewRegistry(sources, cfg.Paths.CiscoVocabulary)
	if err != nil {
		return fmt.Errorf("pattern validation failed: %w", err)
	}

	fmt.Printf("loaded %d pattern(s) from %d source file(s)\n", len(registry.IterByPriority()), len(sources))
	return nil
}
