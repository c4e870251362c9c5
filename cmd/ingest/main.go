package main

import (
	"fmt"
	"os"

	"txrecon/internal/cli"
	"txrecon/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseIngestFlags()
	cfg := config.LoadOrEnv()

	if err := cli.RunIngest(cfg, flags); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
