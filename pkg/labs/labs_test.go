// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package labs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLab = `apiVersion: iostutor/v1
kind: Lab
metadata:
  id: vlan-basics
  title: VLAN Basics
spec:
  description: Configure access and trunk ports across two switches.
  instructions: Connect SW1 Gi0/1 to SW2 Gi0/1 as a trunk.
  objectives:
    - Create VLAN 10 and VLAN 20
    - Assign Gi0/2 to VLAN 10 on SW1
  topology: SW1--SW2
`

func writeLabFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_IndexesByMetadataID(t *testing.T) {
	dir := t.TempDir()
	writeLabFile(t, dir, "vlan-basics.yaml", sampleLab)

	cat, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())

	lab, ok := cat.Get("vlan-basics")
	require.True(t, ok)
	assert.Equal(t, "VLAN Basics", lab.Title)
	assert.Equal(t, "SW1--SW2", lab.Topology)
	assert.Len(t, lab.Objectives, 2)
}

func TestLoad_EmptyDirIsNotAnError(t *testing.T) {
	cat, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())

	cat, err = Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, cat.Len())
}

func TestLoad_MissingIDIsAnError(t *testing.T) {
	dir := t.TempDir()
	writeLabFile(t, dir, "broken.yaml", "apiVersion: iostutor/v1\nkind: Lab\nmetadata:\n  title: No ID\n")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestGet_UnknownIDReturnsFalse(t *testing.T) {
	cat, err := Load(t.TempDir())
	require.NoError(t, err)
	_, ok := cat.Get("nope")
	assert.False(t, ok)
}
