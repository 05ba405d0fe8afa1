// Package langchain wraps toolkit tools as langchaingo tools.
package langchain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/callbacks"
	"github.com/tmc/langchaingo/tools"

	"hedera-agent-kit/pkg/tool"
	"hedera-agent-kit/pkg/toolkit"
)

// Tool is a langchaingo compatible wrapper around one toolkit tool.
type Tool struct {
	kit       *toolkit.Toolkit
	def       tool.Definition
	Callbacks callbacks.Handler
}

var _ tools.Tool = &Tool{}

// Tools wraps every tool of kit.
func Tools(kit *toolkit.Toolkit) []tools.Tool {
	out := make([]tools.Tool, 0, len(kit.Tools()))
	for _, t := range kit.Tools() {
		out = append(out, &Tool{kit: kit, def: t.Describe()})
	}
	return out
}

// Name returns the tool method.
func (t *Tool) Name() string { return t.def.Method }

// Description returns the tool description followed by its JSON input schema.
func (t *Tool) Description() string {
	schema, err := json.Marshal(t.def.Parameters)
	if err != nil {
		return t.def.Description
	}
	return fmt.Sprintf("%s\nInput must be a JSON object matching this schema: %s", t.def.Description, schema)
}

// Call invokes the tool with a JSON input. Tool failures come back as text so
// the agent sees them as an observation; Call itself never fails.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	if t.Callbacks != nil {
		t.Callbacks.HandleToolStart(ctx, input)
	}

	input = strings.TrimSpace(input)
	if input != "" && !json.Valid([]byte(input)) {
		msg := fmt.Sprintf("%s expects a JSON object as input", t.def.Method)
		if t.Callbacks != nil {
			t.Callbacks.HandleToolError(ctx, fmt.Errorf("%s", msg))
		}
		return msg, nil
	}

	res := t.kit.Invoke(ctx, t.def.Method, json.RawMessage(input))
	output := res.Text()
	if !res.Failed() && t.kit.Context().EffectiveMode() == tool.ModeReturnBytes {
		if body, err := json.Marshal(res); err == nil {
			output = string(body)
		}
	}

	if t.Callbacks != nil {
		if res.Failed() {
			t.Callbacks.HandleToolError(ctx, fmt.Errorf("%s", res.Error))
		} else {
			t.Callbacks.HandleToolEnd(ctx, output)
		}
	}
	return output, nil
}
