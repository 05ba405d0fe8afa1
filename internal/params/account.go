package params

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/pkg/schema"
)

// HbarTransfer is one recipient of a transfer_hbar_tool call.
type HbarTransfer struct {
	AccountID string  `json:"accountId" jsonschema:"required" jsonschema_description:"Recipient account ID"`
	Amount    float64 `json:"amount" jsonschema:"required" jsonschema_description:"Amount of HBAR to transfer"`
}

// TransferHbarParams is the raw input of transfer_hbar_tool.
type TransferHbarParams struct {
	Transfers        []HbarTransfer    `json:"transfers" jsonschema:"required,minItems=1" jsonschema_description:"Array of HBAR transfers"`
	SourceAccountID  *string           `json:"sourceAccountId,omitempty" jsonschema_description:"Account ID of the HBAR owner. Defaults to the operator account, or the connected user account in return-bytes mode."`
	TransactionMemo  *string           `json:"transactionMemo,omitempty" jsonschema_description:"Memo to include with the transaction"`
	SchedulingParams *SchedulingParams `json:"schedulingParams,omitempty" jsonschema_description:"Optional scheduling parameters"`
}

// HbarTransferEntry is a signed tinybar movement for one account.
type HbarTransferEntry struct {
	AccountID hedera.AccountID
	Tinybars  int64
}

// TransferHbarNormalised lists every entry of the transfer, including the
// negated total for the source account, so the amounts sum to zero.
type TransferHbarNormalised struct {
	SourceAccountID hedera.AccountID
	Transfers       []HbarTransferEntry
	TransactionMemo string
	Schedule        *Schedule
}

// CreateAccountParams is the raw input of create_account_tool.
type CreateAccountParams struct {
	PublicKey                     *string           `json:"publicKey,omitempty" jsonschema_description:"Public key of the new account. Defaults to the key of the default account."`
	AccountMemo                   *string           `json:"accountMemo,omitempty" jsonschema_description:"Memo stored on the account"`
	InitialBalance                *float64          `json:"initialBalance,omitempty" jsonschema:"minimum=0" jsonschema_description:"Initial balance in HBAR. Defaults to 0."`
	MaxAutomaticTokenAssociations *int              `json:"maxAutomaticTokenAssociations,omitempty" jsonschema:"minimum=-1" jsonschema_description:"Maximum automatic token associations, -1 for unlimited. Defaults to -1."`
	SchedulingParams              *SchedulingParams `json:"schedulingParams,omitempty" jsonschema_description:"Optional scheduling parameters"`
}

// CreateAccountNormalised is ready for NewAccountCreateTransaction.
type CreateAccountNormalised struct {
	Key                           hedera.PublicKey
	InitialBalanceTinybars        int64
	AccountMemo                   string
	MaxAutomaticTokenAssociations int32
	Schedule                      *Schedule
}

// UpdateAccountParams is the raw input of update_account_tool.
type UpdateAccountParams struct {
	AccountID                     *string           `json:"accountId,omitempty" jsonschema_description:"Account to update. Defaults to the default account."`
	AccountMemo                   *string           `json:"accountMemo,omitempty" jsonschema_description:"New account memo"`
	MaxAutomaticTokenAssociations *int              `json:"maxAutomaticTokenAssociations,omitempty" jsonschema:"minimum=-1" jsonschema_description:"New maximum automatic token associations"`
	StakedAccountID               *string           `json:"stakedAccountId,omitempty" jsonschema_description:"Account to stake to"`
	DeclineStakingReward          *bool             `json:"declineStakingReward,omitempty" jsonschema_description:"Whether to decline staking rewards"`
	SchedulingParams              *SchedulingParams `json:"schedulingParams,omitempty" jsonschema_description:"Optional scheduling parameters"`
}

// UpdateAccountNormalised only carries the fields that change.
type UpdateAccountNormalised struct {
	AccountID                     hedera.AccountID
	AccountMemo                   *string
	MaxAutomaticTokenAssociations *int32
	StakedAccountID               *hedera.AccountID
	DeclineStakingReward          *bool
	Schedule                      *Schedule
}

// DeleteAccountParams is the raw input of delete_account_tool.
type DeleteAccountParams struct {
	AccountID         string  `json:"accountId" jsonschema:"required" jsonschema_description:"Account to delete"`
	TransferAccountID *string `json:"transferAccountId,omitempty" jsonschema_description:"Account that receives the remaining balance. Defaults to the default account."`
}

// DeleteAccountNormalised is ready for NewAccountDeleteTransaction.
type DeleteAccountNormalised struct {
	AccountID         hedera.AccountID
	TransferAccountID hedera.AccountID
}

// ApproveHbarAllowanceParams is the raw input of approve_hbar_allowance_tool.
type ApproveHbarAllowanceParams struct {
	OwnerAccountID   *string `json:"ownerAccountId,omitempty" jsonschema_description:"Owner of the HBAR. Defaults to the default account."`
	SpenderAccountID string  `json:"spenderAccountId" jsonschema:"required" jsonschema_description:"Account allowed to spend the HBAR"`
	Amount           float64 `json:"amount" jsonschema:"required" jsonschema_description:"Allowance in HBAR"`
	TransactionMemo  *string `json:"transactionMemo,omitempty" jsonschema_description:"Memo to include with the transaction"`
}

// ApproveHbarAllowanceNormalised is ready for NewAccountAllowanceApproveTransaction.
type ApproveHbarAllowanceNormalised struct {
	OwnerAccountID   hedera.AccountID
	SpenderAccountID hedera.AccountID
	Tinybars         int64
	TransactionMemo  string
}

// SignScheduleParams is the raw input of sign_schedule_transaction_tool.
type SignScheduleParams struct {
	ScheduleID string `json:"scheduleId" jsonschema:"required" jsonschema_description:"ID of the schedule to sign"`
}

// SignScheduleNormalised is ready for NewScheduleSignTransaction.
type SignScheduleNormalised struct {
	ScheduleID hedera.ScheduleID
}

// AccountQueryParams is the raw input of get_account_query.
type AccountQueryParams struct {
	AccountID string `json:"accountId" jsonschema:"required" jsonschema_description:"Account ID to look up"`
}

// HbarBalanceParams is the raw input of get_hbar_balance_query.
type HbarBalanceParams struct {
	AccountID *string `json:"accountId,omitempty" jsonschema_description:"Account ID to query. Defaults to the default account."`
}

// TokenBalancesParams is the raw input of get_account_token_balances_query.
type TokenBalancesParams struct {
	AccountID *string `json:"accountId,omitempty" jsonschema_description:"Account ID to query. Defaults to the default account."`
	TokenID   *string `json:"tokenId,omitempty" jsonschema_description:"Restrict the result to this token"`
}

// AccountQueryNormalised is the resolved target of an account query.
type AccountQueryNormalised struct {
	AccountID string
	TokenID   string
}

var (
	TransferHbarSchema         = schema.MustFor[TransferHbarParams]()
	CreateAccountSchema        = schema.MustFor[CreateAccountParams]()
	UpdateAccountSchema        = schema.MustFor[UpdateAccountParams]()
	DeleteAccountSchema        = schema.MustFor[DeleteAccountParams]()
	ApproveHbarAllowanceSchema = schema.MustFor[ApproveHbarAllowanceParams]()
	SignScheduleSchema         = schema.MustFor[SignScheduleParams]()
	AccountQuerySchema         = schema.MustFor[AccountQueryParams]()
	HbarBalanceSchema          = schema.MustFor[HbarBalanceParams]()
	TokenBalancesSchema        = schema.MustFor[TokenBalancesParams]()
)
