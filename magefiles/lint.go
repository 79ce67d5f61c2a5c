//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/sh"
)

const binLint = "golangci-lint"

// Lint checks formatting, then runs go vet and golangci-lint.
func Lint() error {
	unformatted, err := sh.Output("gofmt", "-l", "cmd", "internal", "pkg", "magefiles")
	if err != nil {
		return err
	}
	if unformatted != "" {
		return fmt.Errorf("gofmt needed:\n%s", strings.TrimSpace(unformatted))
	}
	if err := sh.RunV(binGo, "vet", "./..."); err != nil {
		return err
	}
	return sh.RunV(binLint, "run", "./...")
}
