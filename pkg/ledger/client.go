package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/pkg/logger"
)

// ClientConfig configures a HederaClient.
type ClientConfig struct {
	Network string
	// OperatorID and OperatorKey are optional; without them the client can
	// only serve return-bytes flows.
	OperatorID  string
	OperatorKey string
	// KeyType selects how a raw hex OperatorKey is parsed: "ed25519", "ecdsa"
	// or empty for DER / prefixed encodings.
	KeyType        string
	RequestTimeout time.Duration
	Definitions    Networks
}

// HederaClient implements Client on top of *hedera.Client.
type HederaClient struct {
	sdk         *hedera.Client
	network     string
	operator    hedera.AccountID
	operatorKey hedera.PublicKey
	hasOperator bool
}

// NewHederaClient builds a client for the configured network.
func NewHederaClient(cfg ClientConfig) (*HederaClient, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Network))
	if name == "" {
		name = "testnet"
	}
	sdk, err := sdkClientFor(name, cfg.Definitions)
	if err != nil {
		return nil, err
	}
	if cfg.RequestTimeout > 0 {
		timeout := cfg.RequestTimeout
		sdk.SetRequestTimeout(&timeout)
	}

	c := &HederaClient{sdk: sdk, network: name}
	if cfg.OperatorID == "" && cfg.OperatorKey == "" {
		return c, nil
	}
	if cfg.OperatorID == "" || cfg.OperatorKey == "" {
		return nil, errors.New("operator id and operator key must be configured together")
	}
	operator, err := hedera.AccountIDFromString(cfg.OperatorID)
	if err != nil {
		return nil, fmt.Errorf("parse operator id: %w", err)
	}
	key, err := parsePrivateKey(cfg.OperatorKey, cfg.KeyType)
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}
	sdk.SetOperator(operator, key)
	c.operator, c.operatorKey, c.hasOperator = operator, key.PublicKey(), true
	return c, nil
}

func sdkClientFor(name string, defs Networks) (*hedera.Client, error) {
	def, ok := defs.Networks[name]
	if !ok || len(def.Nodes) == 0 {
		sdk, err := hedera.ClientForName(name)
		if err != nil {
			return nil, fmt.Errorf("create client for %s: %w", name, err)
		}
		return sdk, nil
	}
	nodes := make(map[string]hedera.AccountID, len(def.Nodes))
	for address, id := range def.Nodes {
		accountID, err := hedera.AccountIDFromString(id)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", address, err)
		}
		nodes[address] = accountID
	}
	sdk := hedera.ClientForNetwork(nodes)
	return sdk, nil
}

func parsePrivateKey(raw, keyType string) (hedera.PrivateKey, error) {
	raw = strings.TrimSpace(raw)
	switch strings.ToLower(keyType) {
	case "ed25519":
		return hedera.PrivateKeyFromStringEd25519(raw)
	case "ecdsa", "secp256k1":
		return hedera.PrivateKeyFromStringECDSA(raw)
	default:
		return hedera.PrivateKeyFromString(raw)
	}
}

// OperatorAccountID implements Client.
func (c *HederaClient) OperatorAccountID() (hedera.AccountID, bool) {
	return c.operator, c.hasOperator
}

// OperatorPublicKey implements Client.
func (c *HederaClient) OperatorPublicKey() (hedera.PublicKey, bool) {
	return c.operatorKey, c.hasOperator
}

// Network implements Client.
func (c *HederaClient) Network() string { return c.network }

// SDK exposes the underlying SDK client for callers that need raw access.
func (c *HederaClient) SDK() *hedera.Client { return c.sdk }

// Submit executes the transaction with the operator credentials and waits for
// a successful receipt. The SDK call itself is not cancellable; when ctx ends
// first Submit returns and the submission finishes in the background.
func (c *HederaClient) Submit(ctx context.Context, tx *Transaction) (Receipt, error) {
	if !c.hasOperator {
		return Receipt{}, errors.New("ledger client has no operator configured")
	}
	type outcome struct {
		receipt Receipt
		err     error
	}
	done := make(chan outcome, 1)
	started := time.Now()
	go func() {
		receipt, err := c.submit(tx)
		done <- outcome{receipt: receipt, err: err}
	}()

	select {
	case <-ctx.Done():
		return Receipt{}, ctx.Err()
	case out := <-done:
		audit := logger.Audit().With(
			slog.String("network", c.network),
			slog.String("operation", tx.Operation()),
			slog.Duration("elapsed", time.Since(started)),
		)
		if out.err != nil {
			audit.Warn("ledger submission failed", slog.String("error", out.err.Error()))
			return Receipt{}, out.err
		}
		audit.Info("ledger submission", slog.String("transaction_id", out.receipt.TransactionID), slog.String("status", out.receipt.Status))
		return out.receipt, nil
	}
}

func (c *HederaClient) submit(tx *Transaction) (Receipt, error) {
	resp, err := tx.execute(c.sdk)
	if err != nil {
		return Receipt{}, fmt.Errorf("execute %s: %w", tx.Operation(), err)
	}
	receipt, err := resp.GetReceipt(c.sdk)
	if err != nil {
		return Receipt{}, fmt.Errorf("receipt for %s: %w", resp.TransactionID.String(), err)
	}
	if receipt.Status != hedera.StatusSuccess {
		return receiptFrom(resp.TransactionID, receipt), fmt.Errorf("transaction %s finished with status %s", resp.TransactionID.String(), receipt.Status.String())
	}
	return receiptFrom(resp.TransactionID, receipt), nil
}

// Close releases the SDK connections.
func (c *HederaClient) Close() error {
	return c.sdk.Close()
}
