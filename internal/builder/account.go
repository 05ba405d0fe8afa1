// Package builder maps normalised params onto Hedera SDK transactions. It
// holds no policy: every default and check lives in package normalise.
package builder

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/pkg/ledger"
)

// TransferHbar builds a crypto transfer.
func TransferHbar(p params.TransferHbarNormalised) *ledger.Transaction {
	tx := hedera.NewTransferTransaction()
	for _, e := range p.Transfers {
		tx.AddHbarTransfer(e.AccountID, hedera.HbarFromTinybar(e.Tinybars))
	}
	if p.TransactionMemo != "" {
		tx.SetTransactionMemo(p.TransactionMemo)
	}
	return ledger.Wrap("crypto_transfer", tx)
}

// CreateAccount builds an account create transaction.
func CreateAccount(p params.CreateAccountNormalised) *ledger.Transaction {
	tx := hedera.NewAccountCreateTransaction().
		SetKey(p.Key).
		SetInitialBalance(hedera.HbarFromTinybar(p.InitialBalanceTinybars)).
		SetMaxAutomaticTokenAssociations(p.MaxAutomaticTokenAssociations)
	if p.AccountMemo != "" {
		tx.SetAccountMemo(p.AccountMemo)
	}
	return ledger.Wrap("account_create", tx)
}

// UpdateAccount builds an account update transaction.
func UpdateAccount(p params.UpdateAccountNormalised) *ledger.Transaction {
	tx := hedera.NewAccountUpdateTransaction().SetAccountID(p.AccountID)
	if p.AccountMemo != nil {
		tx.SetAccountMemo(*p.AccountMemo)
	}
	if p.MaxAutomaticTokenAssociations != nil {
		tx.SetMaxAutomaticTokenAssociations(*p.MaxAutomaticTokenAssociations)
	}
	if p.StakedAccountID != nil {
		tx.SetStakedAccountID(*p.StakedAccountID)
	}
	if p.DeclineStakingReward != nil {
		tx.SetDeclineStakingReward(*p.DeclineStakingReward)
	}
	return ledger.Wrap("account_update", tx)
}

// DeleteAccount builds an account delete transaction.
func DeleteAccount(p params.DeleteAccountNormalised) *ledger.Transaction {
	tx := hedera.NewAccountDeleteTransaction().
		SetAccountID(p.AccountID).
		SetTransferAccountID(p.TransferAccountID)
	return ledger.Wrap("account_delete", tx)
}

// ApproveHbarAllowance builds an allowance approval.
func ApproveHbarAllowance(p params.ApproveHbarAllowanceNormalised) *ledger.Transaction {
	tx := hedera.NewAccountAllowanceApproveTransaction().
		ApproveHbarAllowance(p.OwnerAccountID, p.SpenderAccountID, hedera.HbarFromTinybar(p.Tinybars))
	if p.TransactionMemo != "" {
		tx.SetTransactionMemo(p.TransactionMemo)
	}
	return ledger.Wrap("approve_allowance", tx)
}

// SignSchedule builds a schedule sign transaction.
func SignSchedule(p params.SignScheduleNormalised) *ledger.Transaction {
	return ledger.Wrap("schedule_sign", hedera.NewScheduleSignTransaction().SetScheduleID(p.ScheduleID))
}
