package normalise

import (
	"context"
	"math"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/resolver"
	"hedera-agent-kit/internal/units"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/tool"
)

// DefaultMaxAutomaticTokenAssociations means unlimited.
const DefaultMaxAutomaticTokenAssociations = -1

// TransferHbar converts every amount to tinybars and appends the negated
// total for the source account, so the entries always sum to zero.
func TransferHbar(ctx context.Context, p params.TransferHbarParams, client ledger.Client, hctx tool.Context) (params.TransferHbarNormalised, error) {
	var out params.TransferHbarNormalised
	if len(p.Transfers) == 0 {
		return out, invalid("at least one transfer is required")
	}
	source, err := resolver.ResolveAccount(p.SourceAccountID, client, hctx)
	if err != nil {
		return out, err
	}

	var total int64
	entries := make([]params.HbarTransferEntry, 0, len(p.Transfers)+1)
	for _, tr := range p.Transfers {
		recipient, err := resolver.ParseAccount(tr.AccountID)
		if err != nil {
			return out, err
		}
		if sameAccount(recipient, source) {
			return out, invalid("cannot transfer HBAR from %s to itself", source)
		}
		tinybars, err := units.ToPositiveTinybars(tr.Amount)
		if err != nil {
			return out, invalidWrap(err, "invalid transfer amount for "+tr.AccountID)
		}
		if total > math.MaxInt64-tinybars {
			return out, invalid("total transfer amount is out of range")
		}
		total += tinybars
		entries = append(entries, params.HbarTransferEntry{AccountID: recipient, Tinybars: tinybars})
	}
	entries = append(entries, params.HbarTransferEntry{AccountID: source, Tinybars: -total})

	schedule, err := Schedule(ctx, p.SchedulingParams, client, hctx)
	if err != nil {
		return out, err
	}
	return params.TransferHbarNormalised{
		SourceAccountID: source,
		Transfers:       entries,
		TransactionMemo: deref(p.TransactionMemo, ""),
		Schedule:        schedule,
	}, nil
}

// CreateAccount resolves the key of the new account and its defaults.
func CreateAccount(ctx context.Context, p params.CreateAccountParams, client ledger.Client, hctx tool.Context) (params.CreateAccountNormalised, error) {
	var out params.CreateAccountNormalised
	key, err := resolver.ParseKeyOrDefault(ctx, p.PublicKey, client, hctx)
	if err != nil {
		return out, err
	}
	balance, err := units.ToTinybars(deref(p.InitialBalance, 0))
	if err != nil {
		return out, invalidWrap(err, "invalid initial balance")
	}
	if balance < 0 {
		return out, invalid("initial balance must not be negative")
	}
	maxAssoc, err := associationLimit(deref(p.MaxAutomaticTokenAssociations, DefaultMaxAutomaticTokenAssociations))
	if err != nil {
		return out, err
	}
	schedule, err := Schedule(ctx, p.SchedulingParams, client, hctx)
	if err != nil {
		return out, err
	}
	return params.CreateAccountNormalised{
		Key:                           key,
		InitialBalanceTinybars:        balance,
		AccountMemo:                   deref(p.AccountMemo, ""),
		MaxAutomaticTokenAssociations: maxAssoc,
		Schedule:                      schedule,
	}, nil
}

// UpdateAccount resolves the target account and keeps only the fields the
// caller set.
func UpdateAccount(ctx context.Context, p params.UpdateAccountParams, client ledger.Client, hctx tool.Context) (params.UpdateAccountNormalised, error) {
	var out params.UpdateAccountNormalised
	account, err := resolver.ResolveAccount(p.AccountID, client, hctx)
	if err != nil {
		return out, err
	}
	out.AccountID = account
	out.AccountMemo = p.AccountMemo
	out.DeclineStakingReward = p.DeclineStakingReward
	if p.MaxAutomaticTokenAssociations != nil {
		limit, err := associationLimit(*p.MaxAutomaticTokenAssociations)
		if err != nil {
			return out, err
		}
		out.MaxAutomaticTokenAssociations = &limit
	}
	if p.StakedAccountID != nil && strings.TrimSpace(*p.StakedAccountID) != "" {
		staked, err := resolver.ParseAccount(*p.StakedAccountID)
		if err != nil {
			return out, err
		}
		out.StakedAccountID = &staked
	}
	if out.AccountMemo == nil && out.MaxAutomaticTokenAssociations == nil && out.StakedAccountID == nil && out.DeclineStakingReward == nil {
		return out, invalid("nothing to update on account %s", account)
	}
	out.Schedule, err = Schedule(ctx, p.SchedulingParams, client, hctx)
	return out, err
}

// DeleteAccount defaults the beneficiary to the default account.
func DeleteAccount(_ context.Context, p params.DeleteAccountParams, client ledger.Client, hctx tool.Context) (params.DeleteAccountNormalised, error) {
	var out params.DeleteAccountNormalised
	account, err := resolver.ParseAccount(p.AccountID)
	if err != nil {
		return out, err
	}
	beneficiary, err := resolver.ResolveAccount(p.TransferAccountID, client, hctx)
	if err != nil {
		return out, err
	}
	if sameAccount(beneficiary, account) {
		return out, invalid("the remaining balance of %s must be transferred to a different account", account)
	}
	return params.DeleteAccountNormalised{AccountID: account, TransferAccountID: beneficiary}, nil
}

// ApproveHbarAllowance resolves the owner and converts the allowance.
func ApproveHbarAllowance(_ context.Context, p params.ApproveHbarAllowanceParams, client ledger.Client, hctx tool.Context) (params.ApproveHbarAllowanceNormalised, error) {
	var out params.ApproveHbarAllowanceNormalised
	owner, err := resolver.ResolveAccount(p.OwnerAccountID, client, hctx)
	if err != nil {
		return out, err
	}
	spender, err := resolver.ParseAccount(p.SpenderAccountID)
	if err != nil {
		return out, err
	}
	tinybars, err := units.ToPositiveTinybars(p.Amount)
	if err != nil {
		return out, invalidWrap(err, "invalid allowance amount")
	}
	return params.ApproveHbarAllowanceNormalised{
		OwnerAccountID:   owner,
		SpenderAccountID: spender,
		Tinybars:         tinybars,
		TransactionMemo:  deref(p.TransactionMemo, ""),
	}, nil
}

// SignSchedule parses the schedule id.
func SignSchedule(_ context.Context, p params.SignScheduleParams) (params.SignScheduleNormalised, error) {
	id, err := hedera.ScheduleIDFromString(strings.TrimSpace(p.ScheduleID))
	if err != nil {
		return params.SignScheduleNormalised{}, invalidWrap(err, "invalid schedule id "+p.ScheduleID)
	}
	return params.SignScheduleNormalised{ScheduleID: id}, nil
}

// HbarBalance resolves the account of get_hbar_balance_query.
func HbarBalance(_ context.Context, p params.HbarBalanceParams, client ledger.Client, hctx tool.Context) (params.AccountQueryNormalised, error) {
	account, err := resolver.ResolveAccountString(p.AccountID, client, hctx)
	return params.AccountQueryNormalised{AccountID: account}, err
}

// AccountQuery validates the account of get_account_query.
func AccountQuery(_ context.Context, p params.AccountQueryParams) (params.AccountQueryNormalised, error) {
	account, err := resolver.ParseAccount(p.AccountID)
	if err != nil {
		return params.AccountQueryNormalised{}, err
	}
	return params.AccountQueryNormalised{AccountID: account.String()}, nil
}

// TokenBalances resolves the account and validates the optional token.
func TokenBalances(_ context.Context, p params.TokenBalancesParams, client ledger.Client, hctx tool.Context) (params.AccountQueryNormalised, error) {
	var out params.AccountQueryNormalised
	account, err := resolver.ResolveAccountString(p.AccountID, client, hctx)
	if err != nil {
		return out, err
	}
	out.AccountID = account
	if p.TokenID != nil && strings.TrimSpace(*p.TokenID) != "" {
		token, err := parseToken(*p.TokenID)
		if err != nil {
			return out, err
		}
		out.TokenID = token.String()
	}
	return out, nil
}

func associationLimit(v int) (int32, error) {
	if v < -1 || v > math.MaxInt32 {
		return 0, invalid("maxAutomaticTokenAssociations must be -1 or a non-negative number, got %d", v)
	}
	return int32(v), nil
}

func sameAccount(a, b hedera.AccountID) bool {
	return a.Shard == b.Shard && a.Realm == b.Realm && a.Account == b.Account
}
