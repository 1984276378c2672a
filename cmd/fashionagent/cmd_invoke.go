package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/fashionagent/actiongroup"
	"github.com/hupe1980/fashionagent/logging"
)

var (
	invokeEvent  string
	invokeParams []string
	invokeGroup  string
)

var invokeCmd = &cobra.Command{
	Use:   "invoke [api-path]",
	Short: "Invoke a tool through the action-group protocol",
	Long: `Executes a single tool without the reasoning model and prints the
action-group response.

Examples:
  fashionagent invoke /weather -p location_name=Seattle
  fashionagent invoke /imageGeneration -p input_query="linen shirt" -p weather=None
  fashionagent invoke --event event.json
  cat event.json | fashionagent invoke --event -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInvoke,
}

func init() {
	invokeCmd.Flags().StringVarP(&invokeEvent, "event", "e", "", `action-group event JSON file ("-" reads stdin)`)
	invokeCmd.Flags().StringArrayVarP(&invokeParams, "param", "p", nil, "request parameter as name=value (repeatable)")
	invokeCmd.Flags().StringVar(&invokeGroup, "action-group", "fashion-tools", "action group name echoed in the response")
}

func runInvoke(cmd *cobra.Command, args []string) error {
	ev, err := buildEvent(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	svc, err := loadServices(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()

	h := actiongroup.NewHandler(svc.Toolset(), logging.NewZapAdapter(logger))
	resp := h.Handle(cmd.Context(), ev)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// buildEvent assembles the event from --event or from the api path
// argument and --param flags.
func buildEvent(stdin io.Reader, args []string) (actiongroup.Event, error) {
	var ev actiongroup.Event

	if invokeEvent != "" {
		var (
			data []byte
			err  error
		)
		if invokeEvent == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(invokeEvent)
		}
		if err != nil {
			return ev, fmt.Errorf("read event: %w", err)
		}
		if err := json.Unmarshal(data, &ev); err != nil {
			return ev, fmt.Errorf("parse event: %w", err)
		}
		return ev, nil
	}

	if len(args) == 0 {
		return ev, fmt.Errorf("an api path or --event is required")
	}

	ev = actiongroup.Event{
		MessageVersion: actiongroup.MessageVersion,
		ActionGroup:    invokeGroup,
		APIPath:        args[0],
		HTTPMethod:     "POST",
	}
	for _, p := range invokeParams {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return ev, fmt.Errorf("invalid parameter %q (want name=value)", p)
		}
		ev.Parameters = append(ev.Parameters, actiongroup.Parameter{Name: name, Type: "string", Value: value})
	}
	return ev, nil
}
