package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	clientapi "stockroom/internal/client/api"
	"stockroom/internal/client/cli"
	"stockroom/internal/client/iocli"
	"stockroom/internal/client/session"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8000", "Server URL")
	dbPath := flag.String("db", defaultSessionPath(), "Path to local session database")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	sessions, err := session.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open session database: %v\n", err)
		os.Exit(1)
	}
	defer sessions.Close()

	app := cli.New(clientapi.NewClient(*serverURL), sessions, iocli.NewStdio())

	if err := app.Run(context.Background(), flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "stockroom-cli.db"
	}
	return filepath.Join(home, ".stockroom-cli.db")
}

func printVersion() {
	fmt.Printf("Stockroom Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
