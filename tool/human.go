package tool

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/fashionagent/core"
)

// humanInput prints the prompt to the operator and collects lines until EOF
// or a line consisting of "q". A *bufio.Reader is read directly so the
// caller can keep consuming the same input after the tool returns.
func (t *Toolset) humanInput(call core.ToolCall, a HumanInputArgs) core.ToolResult {
	if t.opts.HumanIn == nil {
		return failure(call, CodeBadRequest, "human input is not available")
	}

	out := t.opts.HumanOut
	if out == nil {
		out = io.Discard
	}

	fmt.Fprintln(out, "############## Human Feedback ###############")
	fmt.Fprintln(out, a.Prompt)
	fmt.Fprintln(out, "\nInsert your feedback. Press Enter + q to end.")

	r, ok := t.opts.HumanIn.(*bufio.Reader)
	if !ok {
		r = bufio.NewReader(t.opts.HumanIn)
	}

	var lines []string
	for {
		line, err := r.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "q" {
			break
		}
		if line != "" || err == nil {
			lines = append(lines, line)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			fmt.Fprintln(out, "############################################")
			return failure(call, CodeBadRequest, fmt.Sprintf("read human input: %v", err))
		}
	}
	fmt.Fprintln(out, "############################################")

	return success(call, strings.Join(lines, "\n"))
}
