package main

import (
	"flag"
	"fmt"
	"os"

	app "github.com/rocketscienceinc/tictactoe-p2p/internal"
	"github.com/rocketscienceinc/tictactoe-p2p/internal/config"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	joinToken := flag.String("join", "", "join token of an online game; skips the menu")
	logLevel := flag.String("log-level", "warn", "log level written to stderr")
	flag.Parse()

	conf := config.MustLoad(*configPath)

	// the board owns stdout
	logger := app.NewLogger(os.Stderr, *logLevel)

	if err := app.RunGame(logger, conf, os.Stdin, os.Stdout, *joinToken); err != nil {
		fmt.Fprintf(os.Stderr, "tictactoe: %v\n", err)
		os.Exit(1)
	}
}
