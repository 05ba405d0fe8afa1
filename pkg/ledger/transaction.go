package ledger

import (
	"fmt"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// sdkTransaction is the method set every Hedera SDK transaction type shares.
type sdkTransaction[T any] interface {
	SetTransactionID(hedera.TransactionID) T
	SetNodeAccountIDs([]hedera.AccountID) T
	Freeze() (T, error)
	ToBytes() ([]byte, error)
	Execute(*hedera.Client) (hedera.TransactionResponse, error)
}

// Transaction is a built, unsubmitted ledger transaction. It is created once
// per tool call and either submitted or serialised, never both.
type Transaction struct {
	operation string
	inner     any
	execute   func(*hedera.Client) (hedera.TransactionResponse, error)
	freeze    func(hedera.TransactionID, []hedera.AccountID) ([]byte, error)
	schedule  func(ScheduleOptions) (*Transaction, error)
}

// Wrap adapts a concrete SDK transaction. operation names the kind of
// transaction for logs and errors, e.g. "crypto_transfer".
func Wrap[T sdkTransaction[T]](operation string, tx T) *Transaction {
	return &Transaction{
		operation: operation,
		inner:     tx,
		execute: func(c *hedera.Client) (hedera.TransactionResponse, error) {
			return tx.Execute(c)
		},
		freeze: func(id hedera.TransactionID, nodes []hedera.AccountID) ([]byte, error) {
			tx.SetTransactionID(id)
			tx.SetNodeAccountIDs(nodes)
			frozen, err := tx.Freeze()
			if err != nil {
				return nil, fmt.Errorf("freeze %s: %w", operation, err)
			}
			return frozen.ToBytes()
		},
		schedule: func(opts ScheduleOptions) (*Transaction, error) {
			schedulable, ok := any(tx).(hedera.ITransaction)
			if !ok {
				return nil, fmt.Errorf("%s cannot be scheduled", operation)
			}
			create, err := hedera.NewScheduleCreateTransaction().SetScheduledTransaction(schedulable)
			if err != nil {
				return nil, fmt.Errorf("schedule %s: %w", operation, err)
			}
			opts.apply(create)
			return Wrap("schedule_create", create), nil
		},
	}
}

// Operation returns the transaction kind.
func (t *Transaction) Operation() string { return t.operation }

// Unwrap returns the underlying SDK transaction, e.g. *hedera.TransferTransaction.
func (t *Transaction) Unwrap() any { return t.inner }

// FreezeBytes assigns the transaction id and node accounts, freezes the
// transaction without a client and serialises it for external signing.
func (t *Transaction) FreezeBytes(id hedera.TransactionID, nodes []hedera.AccountID) ([]byte, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("freeze %s: at least one node account is required", t.operation)
	}
	return t.freeze(id, nodes)
}

// Schedule wraps the transaction into a ScheduleCreateTransaction.
func (t *Transaction) Schedule(opts ScheduleOptions) (*Transaction, error) {
	return t.schedule(opts)
}

// ScheduleOptions are the optional fields of a schedule create transaction.
type ScheduleOptions struct {
	AdminKey       hedera.Key
	PayerAccountID *hedera.AccountID
	ExpirationTime *time.Time
	WaitForExpiry  bool
	Memo           string
}

func (o ScheduleOptions) apply(tx *hedera.ScheduleCreateTransaction) {
	if o.AdminKey != nil {
		tx.SetAdminKey(o.AdminKey)
	}
	if o.PayerAccountID != nil {
		tx.SetPayerAccountID(*o.PayerAccountID)
	}
	if o.ExpirationTime != nil {
		tx.SetExpirationTime(*o.ExpirationTime)
	}
	if o.WaitForExpiry {
		tx.SetWaitForExpiry(true)
	}
	if o.Memo != "" {
		tx.SetScheduleMemo(o.Memo)
	}
}
