// Command imgpyramid builds multi-resolution image pyramids from the
// command line. See the build and schedule subcommands for usage.
package main

import (
	"imgpyramid/internal/cli"
)

func main() {
	cli.Execute()
}
