package tool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/pkg/ledger"
)

func handlerTool(h Handler) Tool {
	return Tool{Method: "demo_tool", Name: "Demo", Handler: h}
}

func TestExecuteRecoversPanics(t *testing.T) {
	tl := handlerTool(func(context.Context, ledger.Client, Context, json.RawMessage) (Result, error) {
		panic("boom")
	})
	res := tl.Execute(context.Background(), nil, Context{}, nil)
	if !res.Failed() || res.Error != "demo_tool failed unexpectedly: boom" || res.HumanMessage != res.Error {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExecuteRendersCodedErrors(t *testing.T) {
	cause := kiterrors.New(kiterrors.CodeInvalidArgument, "amount must be positive")
	tl := handlerTool(func(context.Context, ledger.Client, Context, json.RawMessage) (Result, error) {
		return Result{}, kiterrors.Wrap(kiterrors.CodeInvalidArgument, cause, "demo_tool")
	})
	res := tl.Execute(context.Background(), nil, Context{}, json.RawMessage(`{}`))
	if res.Error != "demo_tool: amount must be positive" {
		t.Fatalf("unexpected error %q", res.Error)
	}
	if strings.Contains(res.Error, "INVALID_ARGUMENT") {
		t.Fatalf("code prefix leaked into message: %q", res.Error)
	}

	plain := handlerTool(func(context.Context, ledger.Client, Context, json.RawMessage) (Result, error) {
		return Result{}, errors.New("network down")
	})
	if res := plain.Execute(context.Background(), nil, Context{}, nil); res.Error != "network down" {
		t.Fatalf("unexpected error %q", res.Error)
	}
}

func TestExecuteWithoutHandler(t *testing.T) {
	res := Tool{Method: "empty_tool"}.Execute(context.Background(), nil, Context{}, nil)
	if !res.Failed() || res.Error != "empty_tool has no implementation" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExecuteDefaultsHumanMessage(t *testing.T) {
	tl := handlerTool(func(context.Context, ledger.Client, Context, json.RawMessage) (Result, error) {
		return Result{Raw: 1}, nil
	})
	res := tl.Execute(context.Background(), nil, Context{}, nil)
	if res.Failed() || res.HumanMessage != "demo_tool completed" || res.Text() != "demo_tool completed" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestParseModeAcceptsSnakeCase(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeAutonomous, "AUTONOMOUS": ModeAutonomous, "RETURN_BYTES": ModeReturnBytes, "returnBytes": ModeReturnBytes} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("dry_run"); err == nil {
		t.Fatalf("expected unknown mode to fail")
	}
}

func TestDescribeWithoutSchema(t *testing.T) {
	def := Tool{Method: "demo_tool", Name: "Demo", Description: "d"}.Describe()
	if def.Parameters["type"] != "object" {
		t.Fatalf("unexpected parameters %v", def.Parameters)
	}
}
