package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hupe1980/fashionagent"
	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/flow"
	"github.com/hupe1980/fashionagent/logging"
	"github.com/hupe1980/fashionagent/tool"
)

var chatSessionID string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Reads one request per line and prints the assistant's answer. The
conversation is checkpointed after every turn, so a session can be resumed
with --session. Type "exit" or press Ctrl+D to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatSessionID, "session", "s", "", "session id to resume (default: new session)")
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	var toolOpts []func(o *tool.Options)
	if svc.Config.Agent.HumanInput {
		toolOpts = append(toolOpts, tool.WithHumanInput(in, out))
	}

	agent := fashionagent.New(svc.Model, svc.Toolset(toolOpts...), func(o *fashionagent.Options) {
		o.MaxConcurrentTurns = svc.Config.Agent.MaxConcurrentTurns
		o.SessionStore = svc.Sessions
		o.Flow = []func(o *flow.Options){svc.FlowOptions()}
		o.Logger = logging.NewZapAdapter(logger)
	})

	sessionID := chatSessionID
	if sessionID == "" {
		sessionID = core.NewID()
	}
	logger.Info("Chat session started", zap.String("session_id", sessionID))
	fmt.Fprintf(out, "Session %s. Ask for an outfit, an image or a similar catalog item.\n", sessionID)

	for {
		fmt.Fprint(out, "> ")
		line, err := in.ReadString('\n')
		text := strings.TrimSpace(line)

		if text != "" && text != "exit" && text != "quit" {
			reply, turnErr := agent.Chat(ctx, sessionID, text)
			switch {
			case turnErr == nil:
				fmt.Fprintln(out, reply.Content)
			case errors.Is(turnErr, core.ErrIterationLimit):
				fmt.Fprintln(out, "I could not finish this request. Please rephrase it.")
			case ctx.Err() != nil:
				return nil
			default:
				logger.Error("Turn failed", zap.Error(turnErr))
				fmt.Fprintf(out, "error: %v\n", turnErr)
			}
		}

		if text == "exit" || text == "quit" || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
}
