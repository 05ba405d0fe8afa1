// Package strategy decides the fate of a built transaction: submit it with
// the operator credentials, or freeze and serialise it for an external
// signer. It never decides which transaction to build.
package strategy

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/internal/outbox"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/resolver"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/tool"
)

// PostProcess renders a successful receipt as the human message.
type PostProcess func(ledger.Receipt) string

// Options carry per-toolkit settings that apply to every transaction.
type Options struct {
	// SigningNodes are placed on frozen transactions. Empty means 0.0.3.
	SigningNodes []hedera.AccountID
	// Publisher receives every frozen transaction when set.
	Publisher outbox.Publisher
	// Method is the tool method the transaction belongs to, used for the
	// signing request.
	Method string
}

type optionsKey struct{}

// WithOptions attaches opts to ctx.
func WithOptions(ctx context.Context, opts Options) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

// OptionsFrom returns the options attached to ctx, if any.
func OptionsFrom(ctx context.Context) Options {
	opts, _ := ctx.Value(optionsKey{}).(Options)
	return opts
}

// WithMethod returns a copy of ctx whose options name method.
func WithMethod(ctx context.Context, method string) context.Context {
	opts := OptionsFrom(ctx)
	opts.Method = method
	return WithOptions(ctx, opts)
}

// Bytes is the result of return-bytes mode.
type Bytes struct {
	Bytes          []byte   `json:"bytes"`
	BytesHex       string   `json:"bytesHex"`
	TransactionID  string   `json:"transactionId"`
	NodeAccountIDs []string `json:"nodeAccountIds"`
	Operation      string   `json:"operation"`
	Scheduled      bool     `json:"scheduled,omitempty"`
}

var defaultNode = hedera.AccountID{Account: 3}

// Handle wraps tx in a schedule when requested and then dispatches on the
// execution mode.
func Handle(ctx context.Context, tx *ledger.Transaction, client ledger.Client, hctx tool.Context, schedule *params.Schedule, post PostProcess) (tool.Result, error) {
	if schedule != nil {
		scheduled, err := tx.Schedule(*schedule)
		if err != nil {
			return tool.Result{}, kiterrors.Wrap(kiterrors.CodeInvalidArgument, err, "cannot schedule "+tx.Operation())
		}
		tx = scheduled
	}

	switch hctx.EffectiveMode() {
	case tool.ModeAutonomous:
		return submit(ctx, tx, client, post)
	case tool.ModeReturnBytes:
		return freeze(ctx, tx, client, hctx, schedule != nil)
	default:
		return tool.Result{}, kiterrors.Newf(kiterrors.CodeConfiguration, "unsupported execution mode %q", hctx.Mode)
	}
}

func submit(ctx context.Context, tx *ledger.Transaction, client ledger.Client, post PostProcess) (tool.Result, error) {
	if client == nil {
		return tool.Result{}, kiterrors.New(kiterrors.CodeConfiguration, "no ledger client configured")
	}
	receipt, err := client.Submit(ctx, tx)
	if err != nil {
		if ctx.Err() != nil {
			return tool.Result{}, kiterrors.Wrap(kiterrors.CodeTimeout, err, tx.Operation()+" did not complete")
		}
		return tool.Result{}, kiterrors.Wrap(kiterrors.CodeLedgerFailure, err, tx.Operation()+" failed")
	}
	msg := ""
	if post != nil {
		msg = post(receipt)
	}
	if msg == "" {
		msg = fmt.Sprintf("Transaction %s finished with status %s.", receipt.TransactionID, receipt.Status)
	}
	return tool.Result{Raw: receipt, HumanMessage: msg}, nil
}

func freeze(ctx context.Context, tx *ledger.Transaction, client ledger.Client, hctx tool.Context, scheduled bool) (tool.Result, error) {
	payer, err := resolver.DefaultAccount(client, hctx)
	if err != nil {
		return tool.Result{}, err
	}
	opts := OptionsFrom(ctx)
	nodes := opts.SigningNodes
	if len(nodes) == 0 {
		nodes = []hedera.AccountID{defaultNode}
	}
	txID := hedera.TransactionIDGenerate(payer)
	data, err := tx.FreezeBytes(txID, nodes)
	if err != nil {
		return tool.Result{}, kiterrors.Wrap(kiterrors.CodeInvalidArgument, err, "cannot prepare "+tx.Operation()+" for signing")
	}

	nodeIDs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		nodeIDs = append(nodeIDs, n.String())
	}
	out := Bytes{
		Bytes:          data,
		BytesHex:       hex.EncodeToString(data),
		TransactionID:  txID.String(),
		NodeAccountIDs: nodeIDs,
		Operation:      tx.Operation(),
		Scheduled:      scheduled,
	}

	if opts.Publisher != nil {
		network := ""
		if client != nil {
			network = client.Network()
		}
		req := outbox.NewSigningRequest(opts.Method, tx.Operation(), payer.String(), out.TransactionID, network, data)
		audit := logger.Audit().With(slog.String("request_id", req.ID), slog.String("transaction_id", req.TransactionID), slog.String("method", req.Method))
		if err := opts.Publisher.Publish(ctx, req); err != nil {
			audit.Warn("signing request not published", slog.String("error", err.Error()))
		} else {
			audit.Info("signing request published")
		}
	}

	return tool.Result{
		Raw:          out,
		HumanMessage: fmt.Sprintf("Transaction %s is ready to be signed by %s.", out.TransactionID, payer),
	}, nil
}
