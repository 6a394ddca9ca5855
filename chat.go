package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"supportchat/internal/models"
	"supportchat/internal/transcript"
)

const replPrompt = "you> "

func newChatCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat with the flow from the terminal",
		Long:  "Starts one session and relays each line to the flow. Commands: /clear, /history, /quit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, log.Logger)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			store := a.backend.Open(uuid.NewString())
			return a.repl(ctx, store, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newAskCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask MESSAGE",
		Short: "Send one message to the flow and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cfg, log.Logger)
			if err != nil {
				return err
			}
			defer a.Close()

			reply, err := a.relay.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
}

// repl reads one message per line until EOF, /quit or ctx is cancelled. Cancellation also ends a
// pending read, so Ctrl-C at the prompt exits immediately.
func (a *app) repl(ctx context.Context, store transcript.Store, in io.Reader, out io.Writer) error {
	done := make(chan struct{})
	defer close(done)
	lines, readErr := readLines(in, done)

	fmt.Fprintf(out, "Connected to %s\nType /clear, /history or /quit.\n", a.relay.Endpoint())
	for {
		fmt.Fprint(out, replPrompt)
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return errors.Wrap(<-readErr, "read input")
			}
			line = l
		}

		switch strings.TrimSpace(line) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			if err := a.chat.Clear(ctx, store); err != nil {
				return err
			}
			fmt.Fprintln(out, "(history cleared)")
			continue
		case "/history":
			messages, err := a.chat.History(ctx, store)
			if err != nil {
				return err
			}
			printHistory(out, messages)
			continue
		}

		reply, err := a.chat.Submit(ctx, store, line)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "assistant> %s\n", reply.Content)
	}
}

// readLines scans in on its own goroutine. The lines channel is closed at EOF, after the scan
// error (nil at clean EOF) has been sent on the error channel.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		readErr <- scanner.Err()
	}()
	return lines, readErr
}

func printHistory(out io.Writer, messages []models.Message) {
	if len(messages) == 0 {
		fmt.Fprintln(out, "(no messages)")
		return
	}
	for _, msg := range messages {
		fmt.Fprintf(out, "%s> %s\n", msg.Role, msg.Content)
	}
}
