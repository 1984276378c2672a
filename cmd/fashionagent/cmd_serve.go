package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hupe1980/fashionagent"
	"github.com/hupe1980/fashionagent/actiongroup"
	"github.com/hupe1980/fashionagent/core"
	"github.com/hupe1980/fashionagent/flow"
	"github.com/hupe1980/fashionagent/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the action-group and chat endpoints over HTTP",
	Long: `Starts an HTTP server with two endpoints:
  POST /actions  action-group event in, action-group response out
  POST /chat     {"session_id": "...", "text": "..."} in, {"reply": "..."} out`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply,omitempty"`
	Error     string `json:"error,omitempty"`
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	log := logging.NewZapAdapter(logger)
	tools := svc.Toolset()
	agent := fashionagent.New(svc.Model, tools, func(o *fashionagent.Options) {
		o.MaxConcurrentTurns = svc.Config.Agent.MaxConcurrentTurns
		o.SessionStore = svc.Sessions
		o.Flow = []func(o *flow.Options){svc.FlowOptions()}
		o.Logger = log
	})

	mux := http.NewServeMux()
	mux.Handle("/actions", actiongroup.NewHandler(tools, log))
	mux.HandleFunc("/chat", chatHandler(agent))

	srv := &http.Server{Addr: serveAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", zap.String("addr", serveAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func chatHandler(agent *fashionagent.Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
			return
		}

		resp := chatResponse{SessionID: req.SessionID}
		status := http.StatusOK

		reply, err := agent.Chat(r.Context(), req.SessionID, req.Text)
		if err != nil {
			resp.Error = err.Error()
			status = http.StatusInternalServerError
			if errors.Is(err, core.ErrInvalidInput) {
				status = http.StatusBadRequest
			}
		} else {
			resp.Reply = reply.Content
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
