package account

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"hedera-agent-kit/internal/normalise"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/plugins/pluginkit"
	"hedera-agent-kit/internal/units"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/tool"
)

// Query methods.
const (
	GetAccountQuery       = "get_account_query"
	GetHbarBalanceQuery   = "get_hbar_balance_query"
	GetTokenBalancesQuery = "get_account_token_balances_query"
)

// QueryPlugin returns the account query plugin.
func QueryPlugin() plugin.Definition {
	return plugin.New(plugin.Info{
		Name:         QueryPluginName,
		Version:      "1.0.0",
		Description:  "Account, HBAR balance and token balance lookups",
		Capabilities: []plugin.Capability{plugin.CapabilityMirrorRead},
	},
		GetAccount,
		GetHbarBalance,
		GetTokenBalances,
	)
}

// HbarBalance is the raw result of get_hbar_balance_query.
type HbarBalance struct {
	AccountID string `json:"accountId"`
	Tinybars  int64  `json:"tinybars"`
	Hbar      string `json:"hbar"`
}

// TokenBalance is one display-ready token balance.
type TokenBalance struct {
	mirror.TokenBalance
	Display string `json:"display"`
}

// GetAccount builds get_account_query.
func GetAccount(tool.Context) tool.Tool {
	return pluginkit.Query[params.AccountQueryParams, mirror.Account]{
		Method:      GetAccountQuery,
		Name:        "Get Account",
		Description: "Returns the public key, balance and EVM address of an account.",
		Schema:      params.AccountQuerySchema,
		Run: func(ctx context.Context, p params.AccountQueryParams, m mirror.Service, _ ledger.Client, _ tool.Context) (mirror.Account, string, error) {
			q, err := normalise.AccountQuery(ctx, p)
			if err != nil {
				return mirror.Account{}, "", err
			}
			account, err := m.GetAccount(ctx, q.AccountID)
			if err != nil {
				return mirror.Account{}, "", pluginkit.MirrorError(err, "account "+q.AccountID)
			}
			key := account.AccountPublicKey
			if key == "" {
				key = "none"
			}
			msg := fmt.Sprintf("Account %s: public key %s, balance %s HBAR", account.AccountID, key, units.TinybarsToHbar(account.Balance))
			if account.EVMAddress != "" {
				msg += ", EVM address " + account.EVMAddress
			}
			return account, msg, nil
		},
	}.Tool()
}

// GetHbarBalance builds get_hbar_balance_query.
func GetHbarBalance(hctx tool.Context) tool.Tool {
	return pluginkit.Query[params.HbarBalanceParams, HbarBalance]{
		Method:      GetHbarBalanceQuery,
		Name:        "Get HBAR Balance",
		Description: "Returns the HBAR balance of an account. " + pluginkit.ActorNote(hctx),
		Schema:      params.HbarBalanceSchema,
		Run: func(ctx context.Context, p params.HbarBalanceParams, m mirror.Service, client ledger.Client, hctx tool.Context) (HbarBalance, string, error) {
			q, err := normalise.HbarBalance(ctx, p, client, hctx)
			if err != nil {
				return HbarBalance{}, "", err
			}
			tinybars, err := m.GetAccountHBarBalance(ctx, q.AccountID)
			if err != nil {
				return HbarBalance{}, "", pluginkit.MirrorError(err, "balance of "+q.AccountID)
			}
			out := HbarBalance{AccountID: q.AccountID, Tinybars: tinybars, Hbar: units.TinybarsToHbar(tinybars)}
			return out, fmt.Sprintf("Account %s has a balance of %s HBAR", q.AccountID, out.Hbar), nil
		},
	}.Tool()
}

// GetTokenBalances builds get_account_token_balances_query.
func GetTokenBalances(hctx tool.Context) tool.Tool {
	return pluginkit.Query[params.TokenBalancesParams, []TokenBalance]{
		Method:      GetTokenBalancesQuery,
		Name:        "Get Account Token Balances",
		Description: "Returns the token balances of an account, optionally for a single token. " + pluginkit.ActorNote(hctx),
		Schema:      params.TokenBalancesSchema,
		Run: func(ctx context.Context, p params.TokenBalancesParams, m mirror.Service, client ledger.Client, hctx tool.Context) ([]TokenBalance, string, error) {
			q, err := normalise.TokenBalances(ctx, p, client, hctx)
			if err != nil {
				return nil, "", err
			}
			balances, err := m.GetAccountTokenBalances(ctx, q.AccountID, q.TokenID)
			if err != nil {
				return nil, "", pluginkit.MirrorError(err, "token balances of "+q.AccountID)
			}
			if len(balances) == 0 {
				return []TokenBalance{}, fmt.Sprintf("Account %s holds no tokens", q.AccountID), nil
			}
			out := make([]TokenBalance, 0, len(balances))
			lines := make([]string, 0, len(balances))
			for _, b := range balances {
				display := units.FromBaseUnits(big.NewInt(b.Balance), b.Decimals)
				out = append(out, TokenBalance{TokenBalance: b, Display: display})
				lines = append(lines, fmt.Sprintf("- %s: %s", b.TokenID, display))
			}
			return out, fmt.Sprintf("Token balances of %s:\n%s", q.AccountID, strings.Join(lines, "\n")), nil
		},
	}.Tool()
}
