// Package pluginkit assembles tools out of the pipeline stages: schema
// decode, normalise, build, then hand the transaction to the execution
// strategy.
package pluginkit

import (
	"context"
	"encoding/json"
	"fmt"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/strategy"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/schema"
	"hedera-agent-kit/pkg/tool"
)

// Normaliser turns decoded raw params into ledger-ready params.
type Normaliser[P, N any] func(ctx context.Context, p P, client ledger.Client, hctx tool.Context) (N, error)

// Transaction describes a tool that builds and dispatches one transaction.
type Transaction[P, N any] struct {
	Method      string
	Name        string
	Description string
	Schema      *schema.Schema
	Normalise   Normaliser[P, N]
	Build       func(N) (*ledger.Transaction, error)
	// Schedule extracts the scheduling request, if the operation supports one.
	Schedule func(N) *params.Schedule
	// Message renders the receipt of a submitted transaction.
	Message func(N, ledger.Receipt) string
}

// Tool returns the tool.Tool for t.
func (t Transaction[P, N]) Tool() tool.Tool {
	return tool.Tool{
		Method:      t.Method,
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Schema,
		Handler: func(ctx context.Context, client ledger.Client, hctx tool.Context, raw json.RawMessage) (tool.Result, error) {
			p, err := Decode[P](t.Method, t.Schema, raw)
			if err != nil {
				return tool.Result{}, err
			}
			n, err := t.Normalise(ctx, p, client, hctx)
			if err != nil {
				return tool.Result{}, err
			}
			tx, err := t.Build(n)
			if err != nil {
				return tool.Result{}, kiterrors.Wrap(kiterrors.CodeInvalidArgument, err, "build "+t.Method)
			}
			var schedule *params.Schedule
			if t.Schedule != nil {
				schedule = t.Schedule(n)
			}
			return strategy.Handle(strategy.WithMethod(ctx, t.Method), tx, client, hctx, schedule, func(r ledger.Receipt) string {
				if schedule != nil && r.ScheduleID != "" {
					return fmt.Sprintf("Scheduled transaction created with schedule ID %s. It executes once all required signatures are collected.", r.ScheduleID)
				}
				if t.Message == nil {
					return ""
				}
				return t.Message(n, r)
			})
		},
	}
}

// Static wraps a builder that cannot fail.
func Static[N any](build func(N) *ledger.Transaction) func(N) (*ledger.Transaction, error) {
	return func(n N) (*ledger.Transaction, error) { return build(n), nil }
}

// Query describes a read-only tool answered by the mirror node.
type Query[P, R any] struct {
	Method      string
	Name        string
	Description string
	Schema      *schema.Schema
	Run         func(ctx context.Context, p P, m mirror.Service, client ledger.Client, hctx tool.Context) (R, string, error)
}

// Tool returns the tool.Tool for q.
func (q Query[P, R]) Tool() tool.Tool {
	return tool.Tool{
		Method:      q.Method,
		Name:        q.Name,
		Description: q.Description,
		Parameters:  q.Schema,
		Handler: func(ctx context.Context, client ledger.Client, hctx tool.Context, raw json.RawMessage) (tool.Result, error) {
			p, err := Decode[P](q.Method, q.Schema, raw)
			if err != nil {
				return tool.Result{}, err
			}
			if hctx.Mirror == nil {
				return tool.Result{}, kiterrors.New(kiterrors.CodeConfiguration, q.Method+" needs a mirror node service")
			}
			out, msg, err := q.Run(ctx, p, hctx.Mirror, client, hctx)
			if err != nil {
				return tool.Result{}, err
			}
			return tool.Result{Raw: out, HumanMessage: msg}, nil
		},
	}
}

// Decode validates raw against s and decodes it.
func Decode[P any](method string, s *schema.Schema, raw json.RawMessage) (P, error) {
	p, err := schema.Decode[P](s, raw)
	if err != nil {
		return p, kiterrors.Wrap(kiterrors.CodeInvalidArgument, err, method)
	}
	return p, nil
}

// MirrorError classifies a mirror lookup failure.
func MirrorError(err error, what string) error {
	if mirror.IsNotFound(err) {
		return kiterrors.Wrap(kiterrors.CodeNotFound, err, what+" not found")
	}
	return kiterrors.Wrap(kiterrors.CodeMirrorFailure, err, "failed to fetch "+what)
}

// ActorNote tells the model whose account is used when it omits one.
func ActorNote(hctx tool.Context) string {
	if hctx.EffectiveMode() == tool.ModeReturnBytes && hctx.AccountID != "" {
		return fmt.Sprintf("If no account is given, the user account %s is used.", hctx.AccountID)
	}
	return "If no account is given, the operator account is used."
}
