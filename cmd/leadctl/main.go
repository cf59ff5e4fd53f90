package main

import (
	"fmt"
	"os"

	"terrasite_backend/platform/config"
)

func main() {
	app := newCLIApp(config.Load)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
