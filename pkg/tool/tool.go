// Package tool defines the uniform unit of capability exposed to agent hosts:
// a named operation with a parameter schema and an Execute boundary that
// never fails with a Go error.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/schema"
)

// Mode selects what happens to a built transaction.
type Mode string

const (
	// ModeAutonomous submits with the client's operator credentials.
	ModeAutonomous Mode = "autonomous"
	// ModeReturnBytes freezes and serialises the transaction for an
	// external signer.
	ModeReturnBytes Mode = "returnBytes"
)

// ParseMode accepts the canonical names plus the upper snake case forms.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "", "autonomous":
		return ModeAutonomous, nil
	case "returnbytes":
		return ModeReturnBytes, nil
	default:
		return "", fmt.Errorf("unknown execution mode %q", s)
	}
}

// Context is the per-invocation configuration supplied by the host. It is
// passed by value and never modified by tools.
type Context struct {
	AccountID        string
	AccountPublicKey string
	Mode             Mode
	Mirror           mirror.Service
}

// EffectiveMode returns Mode, treating the zero value as autonomous.
func (c Context) EffectiveMode() Mode {
	if c.Mode == "" {
		return ModeAutonomous
	}
	return c.Mode
}

// Handler implements one operation. Errors returned here are converted into
// a Result by Tool.Execute.
type Handler func(ctx context.Context, client ledger.Client, hctx Context, params json.RawMessage) (Result, error)

// Tool is one operation exposed to agent hosts. Method is its identity.
type Tool struct {
	Method      string
	Name        string
	Description string
	Parameters  *schema.Schema
	Handler     Handler
}

// Result is what every tool invocation yields. Exactly one of Raw or Error
// is meaningful; HumanMessage is always set.
type Result struct {
	Raw          any    `json:"raw,omitempty"`
	HumanMessage string `json:"humanMessage"`
	Error        string `json:"error,omitempty"`
}

// Failed reports whether the invocation failed.
func (r Result) Failed() bool { return r.Error != "" }

// Text returns the message a host should show to the model.
func (r Result) Text() string {
	if r.Error != "" {
		return r.Error
	}
	return r.HumanMessage
}

// Failure builds an error result.
func Failure(message string) Result {
	return Result{HumanMessage: message, Error: message}
}

// Execute runs the handler and converts every failure, including panics,
// into an error Result.
func (t Tool) Execute(ctx context.Context, client ledger.Client, hctx Context, params json.RawMessage) (result Result) {
	log := logger.Named("tool").With(slog.String("method", t.Method), slog.String("mode", string(hctx.EffectiveMode())))
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("tool panicked", slog.Any("panic", rec))
			result = Failure(fmt.Sprintf("%s failed unexpectedly: %v", t.Method, rec))
		}
	}()
	if t.Handler == nil {
		return Failure(fmt.Sprintf("%s has no implementation", t.Method))
	}

	res, err := t.Handler(ctx, client, hctx, params)
	if err != nil {
		msg := kiterrors.Describe(err)
		attrs := []any{slog.String("code", string(kiterrors.CodeOf(err))), slog.String("error", msg)}
		if kiterrors.ShouldAlert(err) {
			log.Error("tool failed", attrs...)
		} else {
			log.Info("tool rejected input", attrs...)
		}
		return Failure(msg)
	}
	if res.HumanMessage == "" && res.Error == "" {
		res.HumanMessage = fmt.Sprintf("%s completed", t.Method)
	}
	return res
}

// Definition is the host-facing description of a tool.
type Definition struct {
	Method      string         `json:"method"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Describe returns the tool's definition.
func (t Tool) Describe() Definition {
	def := Definition{Method: t.Method, Name: t.Name, Description: t.Description}
	if t.Parameters != nil {
		def.Parameters = t.Parameters.Map()
	} else {
		def.Parameters = map[string]any{"type": "object"}
	}
	return def
}
