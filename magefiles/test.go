//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const coverProfile = "coverage.out"

// Test groups test targets (all, unit, smoke).
type Test mg.Namespace

// All runs every test.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the package tests with the race detector and writes a coverage
// profile to coverage.out.
func (Test) Unit() error {
	if err := sh.RunV(binGo, "test", "-race", "-coverprofile="+coverProfile, "./internal/...", "./pkg/..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverProfile)
}

// smokeStep is one CLI invocation and the output it must print.
type smokeStep struct {
	args []string
	want string
}

// Smoke builds the binary and runs a storage session against a scratch
// data directory.
func (Test) Smoke() error {
	mg.Deps(Build)

	dir, err := os.MkdirTemp("", "granary-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	base := []string{
		"--config-dir", filepath.Join(dir, "config"),
		"--data-dir", filepath.Join(dir, "data"),
	}
	steps := []smokeStep{
		{args: []string{"init"}},
		{args: []string{"add", "RICE", "5"}, want: "0.0"},
		{args: []string{"add", "BUCKWHEAT", "3"}, want: "0.0"},
		{args: []string{"add", "RICE", "7"}, want: "2.0"},
		{args: []string{"get", "BUCKWHEAT", "5"}, want: "3.0"},
		{args: []string{"remove", "BUCKWHEAT"}, want: "removed BUCKWHEAT"},
		{args: []string{"show"}, want: "{RICE=10.0}"},
	}

	bin, err := filepath.Abs(binaryPath())
	if err != nil {
		return err
	}
	for _, step := range steps {
		out, err := sh.Output(bin, append(base, step.args...)...)
		if err != nil {
			return fmt.Errorf("granary %s: %w", strings.Join(step.args, " "), err)
		}
		if step.want != "" && out != step.want {
			return fmt.Errorf("granary %s: got %q, want %q", strings.Join(step.args, " "), out, step.want)
		}
	}
	fmt.Println("smoke test passed")
	return nil
}
