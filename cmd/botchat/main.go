package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI represents the main CLI structure
type CLI struct {
	LogLevel string `default:"warn" help:"Log level"`

	Send   SendCmd   `cmd:"" default:"withargs" help:"Send a message and wait for the bot's reply"`
	Chat   ChatCmd   `cmd:"" help:"Interactive conversation with the bot"`
	Status StatusCmd `cmd:"" help:"Show configuration and session status"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("botchat"),
		kong.Description("Direct Line conversation client for bot endpoints"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
