package ledger

import (
	"fmt"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// DecodeTransaction parses bytes produced by Transaction.FreezeBytes back
// into an SDK transaction value.
func DecodeTransaction(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode transaction: empty payload")
	}
	tx, err := hedera.TransactionFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode transaction: %w", err)
	}
	return tx, nil
}

// HbarTransfers extracts the HBAR transfer list of a decoded transfer
// transaction as account id to signed tinybar amount.
func HbarTransfers(decoded any) (map[string]int64, error) {
	var transfers map[hedera.AccountID]hedera.Hbar
	switch tx := decoded.(type) {
	case hedera.TransferTransaction:
		transfers = tx.GetHbarTransfers()
	case *hedera.TransferTransaction:
		transfers = tx.GetHbarTransfers()
	default:
		return nil, fmt.Errorf("expected a transfer transaction, got %T", decoded)
	}
	out := make(map[string]int64, len(transfers))
	for account, amount := range transfers {
		out[account.String()] += amount.AsTinybar()
	}
	return out, nil
}
