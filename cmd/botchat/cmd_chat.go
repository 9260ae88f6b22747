package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hmatsuda/botchat/src/directline"
)

// ChatCmd is the interactive conversation loop.
type ChatCmd struct {
	Wait    time.Duration `short:"w" default:"5s" help:"Delay before each response poll"`
	Retries int           `short:"r" default:"10" help:"Maximum poll attempts"`
	Quiet   bool          `short:"q" help:"Print bot responses only"`
}

func (c *ChatCmd) Run(kctx *kong.Context, cli *CLI) error {
	session, _, err := buildSession(cli.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !c.Quiet {
		fmt.Println(noticeStyle.Render("Interactive conversation. Type 'quit' to leave."))
	}

	return replLoop(ctx, session, replOptions{
		Wait:    c.Wait,
		Retries: c.Retries,
		Quiet:   c.Quiet,
	})
}

type replOptions struct {
	Wait     time.Duration
	Retries  int
	SendOnly bool
	Quiet    bool
}

// replLoop reads messages from stdin and runs one exchange per line
// until EOF, "quit", or ctx cancellation. Exchange failures are
// printed and the loop continues; only a cancelled context ends it
// early.
func replLoop(ctx context.Context, session *directline.Session, opts replOptions) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Print(promptStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			return nil
		}

		if err := runExchange(ctx, session, line, opts); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(os.Stderr, errorStyle.Render("error: "+err.Error()))
		}
	}
}

func runExchange(ctx context.Context, session *directline.Session, text string, opts replOptions) error {
	if opts.SendOnly {
		result, err := session.SendMessage(ctx, text)
		if err != nil {
			return err
		}
		renderSendResult(os.Stdout, result, opts.Quiet)
		return nil
	}

	result, err := session.SendAndGetResponse(ctx, text, opts.Wait, opts.Retries)
	if err != nil {
		return err
	}
	renderExchange(os.Stdout, result, opts.Quiet)
	return nil
}
