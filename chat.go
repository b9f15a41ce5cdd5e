package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"polycode/task-agent-app/core"
)

var chatMessage string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the Task Manager Agent from the terminal",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "send a single message and exit")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer syncLogger(a.logger)

	session, err := a.newSession()
	if err != nil {
		return err
	}
	defer session.Close()

	out := cmd.OutOrStdout()
	if chatMessage != "" {
		return sendLine(ctx, out, session, chatMessage)
	}
	return runREPL(ctx, cmd.InOrStdin(), out, session)
}

// runREPL reads one line per turn. Lines starting with a slash drive the
// session directly: /tasks, /focus <id>, /clear, /pin <id>, /archive <id>.
func runREPL(ctx context.Context, in io.Reader, out io.Writer, session *core.Session) error {
	printMessages(out, session.Main().Messages())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case exitCommands[strings.ToLower(line)]:
			return nil
		case strings.HasPrefix(line, "/"):
			if err := runSlash(out, session, line); err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
			}
		default:
			if err := sendLine(ctx, out, session, line); err != nil {
				return err
			}
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func runSlash(out io.Writer, session *core.Session, line string) error {
	fields := strings.Fields(line)
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "/tasks":
		printTasks(out, core.PinnedFirst(session.Store.List()))
	case "/focus":
		if _, err := session.Main().Focus(arg); err != nil {
			return err
		}
		printMessages(out, session.Main().Messages())
	case "/clear":
		session.Main().ClearFocus()
		printMessages(out, session.Main().Messages())
	case "/pin", "/unpin":
		task, err := session.Store.SetPinned(arg, fields[0] == "/pin")
		if err != nil {
			return err
		}
		printTasks(out, []core.Task{task})
	case "/archive", "/restore":
		task, err := session.Store.SetArchived(arg, fields[0] == "/archive")
		if err != nil {
			return err
		}
		printTasks(out, []core.Task{task})
	default:
		return fmt.Errorf("unknown command %s", fields[0])
	}
	return nil
}

func sendLine(ctx context.Context, out io.Writer, session *core.Session, line string) error {
	fmt.Fprintln(out, "  ↳ thinking...")
	turn, err := session.Main().Send(ctx, line)
	if err != nil {
		return err
	}
	// the user line is already on screen
	printMessages(out, turn.Messages[1:])
	return nil
}

func printMessages(out io.Writer, messages []core.ChatMessage) {
	for _, msg := range messages {
		fmt.Fprintf(out, "[%s] %s\n", msg.Sender, msg.Text)
		printTasks(out, msg.Tasks)
	}
}

func printTasks(out io.Writer, tasks []core.Task) {
	for _, t := range tasks {
		flags := ""
		if t.Pinned {
			flags += " pinned"
		}
		if t.Archived {
			flags += " archived"
		}
		fmt.Fprintf(out, "  %s  %-12s %-15s %s%s\n", t.Id, t.Status, t.Agent, t.Title, flags)
	}
}
