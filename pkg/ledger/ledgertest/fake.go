// Package ledgertest provides an in-memory ledger.Client for tests.
package ledgertest

import (
	"context"
	"sync"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/pkg/ledger"
)

// Client records submitted transactions and answers with a canned receipt.
type Client struct {
	mu          sync.Mutex
	Operator    *hedera.AccountID
	OperatorKey *hedera.PublicKey
	NetworkName string
	Receipt     ledger.Receipt
	Err         error
	Submitted   []*ledger.Transaction
}

// New returns a client with the given operator. An empty operator means
// "no operator configured".
func New(operator string) *Client {
	c := &Client{NetworkName: "testnet", Receipt: ledger.Receipt{Status: "SUCCESS", TransactionID: "0.0.2@1700000000.000000000"}}
	if operator != "" {
		id, err := hedera.AccountIDFromString(operator)
		if err != nil {
			panic(err)
		}
		c.Operator = &id
	}
	return c
}

// WithKey attaches an operator public key parsed from s.
func (c *Client) WithKey(s string) *Client {
	key, err := hedera.PublicKeyFromString(s)
	if err != nil {
		panic(err)
	}
	c.OperatorKey = &key
	return c
}

func (c *Client) OperatorAccountID() (hedera.AccountID, bool) {
	if c.Operator == nil {
		return hedera.AccountID{}, false
	}
	return *c.Operator, true
}

func (c *Client) OperatorPublicKey() (hedera.PublicKey, bool) {
	if c.OperatorKey == nil {
		return hedera.PublicKey{}, false
	}
	return *c.OperatorKey, true
}

func (c *Client) Submit(_ context.Context, tx *ledger.Transaction) (ledger.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Submitted = append(c.Submitted, tx)
	if c.Err != nil {
		return ledger.Receipt{}, c.Err
	}
	return c.Receipt, nil
}

func (c *Client) Network() string { return c.NetworkName }

// Last returns the most recently submitted transaction or nil.
func (c *Client) Last() *ledger.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Submitted) == 0 {
		return nil
	}
	return c.Submitted[len(c.Submitted)-1]
}

var _ ledger.Client = (*Client)(nil)
