//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the granary project using Mage.
//
// Usage:
//
//	mage build        Compile the granary binary to bin/
//	mage install      Install granary to GOPATH/bin
//	mage clean        Remove build artifacts
//	mage lint         Run golangci-lint
//	mage test:all     Run every test
//	mage test:unit    Run tests with the race detector and coverage
//	mage test:smoke   Build the binary and drive it through a storage session
package main
