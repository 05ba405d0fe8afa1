// Package ledger wraps the Hedera SDK client behind the small surface the
// toolkit needs: operator identity, transaction submission and the network
// metadata used to freeze transactions offline.
package ledger

import (
	"context"
	"encoding/json"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// Client is the ledger handle threaded through every tool call.
type Client interface {
	// OperatorAccountID reports the account the client signs with, if any.
	OperatorAccountID() (hedera.AccountID, bool)
	// OperatorPublicKey reports the operator's public key, if any.
	OperatorPublicKey() (hedera.PublicKey, bool)
	// Submit signs with the operator, executes and waits for the receipt.
	Submit(ctx context.Context, tx *Transaction) (Receipt, error)
	// Network returns the configured network name.
	Network() string
}

// Receipt is the JSON friendly subset of a transaction receipt.
type Receipt struct {
	Status        string  `json:"status"`
	TransactionID string  `json:"transactionId"`
	AccountID     string  `json:"accountId,omitempty"`
	TokenID       string  `json:"tokenId,omitempty"`
	TopicID       string  `json:"topicId,omitempty"`
	ScheduleID    string  `json:"scheduleId,omitempty"`
	ContractID    string  `json:"contractId,omitempty"`
	SerialNumbers []int64 `json:"serialNumbers,omitempty"`
}

func receiptFrom(txID hedera.TransactionID, r hedera.TransactionReceipt) Receipt {
	out := Receipt{
		Status:        r.Status.String(),
		TransactionID: txID.String(),
		SerialNumbers: r.SerialNumbers,
	}
	if r.AccountID != nil {
		out.AccountID = r.AccountID.String()
	}
	if r.TokenID != nil {
		out.TokenID = r.TokenID.String()
	}
	if r.TopicID != nil {
		out.TopicID = r.TopicID.String()
	}
	if r.ScheduleID != nil {
		out.ScheduleID = r.ScheduleID.String()
	}
	if r.ContractID != nil {
		out.ContractID = r.ContractID.String()
	}
	return out
}

// String renders the receipt as compact JSON for logs.
func (r Receipt) String() string {
	raw, _ := json.Marshal(r)
	return string(raw)
}
