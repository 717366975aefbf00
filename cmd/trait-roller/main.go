package main

import (
	"embed"
	"fmt"
	"os"
)

//go:embed assets/*
var embeddedAssets embed.FS

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	app := newCLIApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
