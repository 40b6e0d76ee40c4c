package main

import (
	"fmt"
	"os"
	"path/filepath"

	app "github.com/rocketscienceinc/tictactoe-p2p/internal"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/config"
)

// main - is the entry point of the relay. It loads the configuration, builds the logger and runs the servers.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	conf := initConfig()
	logger := app.NewLogger(os.Stdout, conf.LogLevel)

	if err := app.RunRelay(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}
}

// initialize config.
func initConfig() *config.Config {
	baseDir, err := os.Getwd()
	if err != nil {
		panic(fmt.Errorf("failed to get current directory: %w", err))
	}

	return config.MustLoad(filepath.Join(baseDir, "./config.yml"))
}
