package main

import "github.com/set-night/sketchbot/internal/cli"

// Set via -ldflags at build time.
var version = "dev"

func main() {
	cli.Execute(version)
}
