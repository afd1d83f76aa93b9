// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package labs loads lab definitions from paths.labs_dir (§6.4) into the
// read-only LabContext record a session is fixed to at start_session
// (§3 "lab_context ... set at session start, read-only per turn"). One
// YAML file per lab, the same apiVersion/kind/metadata/spec shape the
// teacher uses for its own YAML-configured resources.
package labs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/teradata-labs/ios-tutor-core/pkg/types"
)

// labYAML mirrors the on-disk shape of one lab definition file.
type labYAML struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Metadata   struct {
		ID    string `yaml:"id"`
		Title string `yaml:"title"`
	} `yaml:"metadata"`
	Spec struct {
		Description  string   `yaml:"description"`
		Instructions string   `yaml:"instructions"`
		Objectives   []string `yaml:"objectives"`
		Topology     string   `yaml:"topology"`
	} `yaml:"spec"`
}

// Catalog is an immutable, loaded set of lab definitions keyed by lab_id.
// Like the Pattern Registry (§4.1), a Catalog is a read-only snapshot:
// Reload builds a fresh one rather than mutating an existing Catalog in
// place.
type Catalog struct {
	labs map[string]types.LabContext
}

// Load reads every *.yaml/*.yml file under dir and indexes the resulting
// LabContext values by metadata.id. An empty dir is not an error: a
// deployment may run with lab context supplied entirely by the caller
// of start_session (§6.1) instead of a catalog on disk.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{labs: make(map[string]types.LabContext)}
	if dir == "" {
		return c, nil
	}

	matches, err := globLabFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("listing lab definitions in %s: %w", dir, err)
	}

	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading lab definition %s: %w", path, err)
		}
		var doc labYAML
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing lab definition %s: %w", path, err)
		}
		if doc.Metadata.ID == "" {
			return nil, fmt.Errorf("lab definition %s: metadata.id is required", path)
		}
		c.labs[doc.Metadata.ID] = types.LabContext{
			LabID:        doc.Metadata.ID,
			Title:        doc.Metadata.Title,
			Description:  doc.Spec.Description,
			Instructions: doc.Spec.Instructions,
			Objectives:   doc.Spec.Objectives,
			Topology:     doc.Spec.Topology,
		}
	}
	return c, nil
}

// Get returns the LabContext for id and whether it was found.
func (c *Catalog) Get(id string) (types.LabContext, bool) {
	lab, ok := c.labs[id]
	return lab, ok
}

// Len reports how many lab definitions were loaded.
func (c *Catalog) Len() int {
	return len(c.labs)
}

func globLabFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}
	return matches, nil
}
