// Command granary tracks cereal stored in fixed-capacity containers.
package main

import "github.com/mesh-intelligence/granary/internal/cli"

func main() {
	cli.Execute()
}
