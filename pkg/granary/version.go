// Package granary holds module-level metadata.
package granary

// Version is the release version of the granary module.
const Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/granary"
