package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hmatsuda/botchat/src/directline"
)

// SendCmd sends one message and, unless --send-only is set, polls for
// the bot's reply.
type SendCmd struct {
	Message  []string      `arg:"" help:"Message to send to the bot"`
	Wait     time.Duration `short:"w" default:"5s" help:"Delay before each response poll"`
	Retries  int           `short:"r" default:"10" help:"Maximum poll attempts"`
	SendOnly bool          `short:"s" help:"Send the message without waiting for a response"`
	Quiet    bool          `short:"q" help:"Print bot responses only"`
	Continue bool          `short:"c" help:"Keep the session open for follow-up messages"`
}

func (s *SendCmd) Run(kctx *kong.Context, cli *CLI) error {
	session, _, err := buildSession(cli.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := s.exchange(ctx, session, strings.Join(s.Message, " ")); err != nil {
		return err
	}

	if s.Continue {
		return replLoop(ctx, session, replOptions{
			Wait:     s.Wait,
			Retries:  s.Retries,
			SendOnly: s.SendOnly,
			Quiet:    s.Quiet,
		})
	}
	return nil
}

func (s *SendCmd) exchange(ctx context.Context, session *directline.Session, text string) error {
	if s.SendOnly {
		result, err := session.SendMessage(ctx, text)
		if err != nil {
			return err
		}
		renderSendResult(os.Stdout, result, s.Quiet)
		return nil
	}

	result, err := session.SendAndGetResponse(ctx, text, s.Wait, s.Retries)
	if err != nil {
		var exhausted *directline.ExhaustedError
		if errors.As(err, &exhausted) {
			renderExhausted(os.Stdout, exhausted)
		}
		return err
	}

	renderExchange(os.Stdout, result, s.Quiet)
	return nil
}
