package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hmatsuda/botchat/src/config"
	"github.com/hmatsuda/botchat/src/directline"
)

var (
	botStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// renderExchange prints the outcome of a send-and-await exchange. In
// quiet mode only the bot lines are printed.
func renderExchange(w io.Writer, result *directline.ExchangeResult, quiet bool) {
	if quiet {
		for _, response := range result.BotResponses {
			fmt.Fprintln(w, botStyle.Render("bot> ")+response)
		}
		return
	}

	fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("sent %q, replied on attempt %d", result.MessageSent, result.Attempts)))
	for i, response := range result.BotResponses {
		fmt.Fprintf(w, "%s %s\n", botStyle.Render(fmt.Sprintf("bot[%d]>", i+1)), response)
	}
}

// renderSendResult prints the outcome of a send-only exchange.
func renderSendResult(w io.Writer, result *directline.SendResult, quiet bool) {
	if quiet {
		fmt.Fprintln(w, "sent")
		return
	}
	fmt.Fprintln(w, labelStyle.Render(fmt.Sprintf("sent (status %d, conversation %s)", result.StatusCode, result.ConversationID)))
}

// renderExhausted reports a delivered message that drew no reply.
func renderExhausted(w io.Writer, exhausted *directline.ExhaustedError) {
	fmt.Fprintln(w, noticeStyle.Render(fmt.Sprintf(
		"message delivered but no bot response after %d attempts", exhausted.Attempts)))
}

// renderStatus prints the resolved configuration and session snapshot.
func renderStatus(w io.Writer, cfg *config.Config, status directline.SessionStatus) {
	endpoint := cfg.DirectLineEndpoint
	if endpoint == "" {
		endpoint = directline.DefaultEndpoint
	}

	rows := []struct {
		label string
		value string
	}{
		{"agent endpoint", cfg.EndpointURL},
		{"directline endpoint", endpoint},
		{"auth header", cfg.AuthHeaderName},
		{"token", yesNo(status.HasToken)},
		{"token remaining", formatRemaining(status)},
		{"conversation", orNone(status.ConversationID)},
		{"watermark", orNone(status.Watermark)},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-20s", row.label)), row.value)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func formatRemaining(status directline.SessionStatus) string {
	if !status.HasToken {
		return "-"
	}
	return status.TokenRemaining.Round(time.Second).String()
}
