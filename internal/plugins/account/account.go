// Package account provides the core account plugins: HBAR transfers, account
// lifecycle, allowances and schedule signing, plus the account queries.
package account

import (
	"context"
	"fmt"

	"hedera-agent-kit/internal/builder"
	"hedera-agent-kit/internal/normalise"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/plugins/pluginkit"
	"hedera-agent-kit/internal/units"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/tool"
)

// Plugin names.
const (
	PluginName      = "core-account-plugin"
	QueryPluginName = "core-account-query-plugin"
)

// Tool methods.
const (
	TransferHbarTool         = "transfer_hbar_tool"
	CreateAccountTool        = "create_account_tool"
	UpdateAccountTool        = "update_account_tool"
	DeleteAccountTool        = "delete_account_tool"
	ApproveHbarAllowanceTool = "approve_hbar_allowance_tool"
	SignScheduleTool         = "sign_schedule_transaction_tool"
)

// Plugin returns the account transaction plugin.
func Plugin() plugin.Definition {
	return plugin.New(plugin.Info{
		Name:         PluginName,
		Version:      "1.0.0",
		Description:  "HBAR transfers, account management, allowances and schedule signing",
		Capabilities: []plugin.Capability{plugin.CapabilityLedgerWrite, plugin.CapabilityMirrorRead},
	},
		TransferHbar,
		CreateAccount,
		UpdateAccount,
		DeleteAccount,
		ApproveHbarAllowance,
		SignSchedule,
	)
}

// TransferHbar builds transfer_hbar_tool.
func TransferHbar(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.TransferHbarParams, params.TransferHbarNormalised]{
		Method: TransferHbarTool,
		Name:   "Transfer HBAR",
		Description: "Transfers HBAR from one account to one or more recipients. Amounts are in HBAR. " +
			pluginkit.ActorNote(hctx) + " The transfer can optionally be scheduled.",
		Schema:    params.TransferHbarSchema,
		Normalise: normalise.TransferHbar,
		Build:     pluginkit.Static(builder.TransferHbar),
		Schedule:  func(n params.TransferHbarNormalised) *params.Schedule { return n.Schedule },
		Message: func(n params.TransferHbarNormalised, r ledger.Receipt) string {
			sent := int64(0)
			for _, e := range n.Transfers {
				if e.Tinybars > 0 {
					sent += e.Tinybars
				}
			}
			return fmt.Sprintf("Transferred %s HBAR from %s. Transaction ID: %s", units.TinybarsToHbar(sent), n.SourceAccountID, r.TransactionID)
		},
	}.Tool()
}

// CreateAccount builds create_account_tool.
func CreateAccount(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.CreateAccountParams, params.CreateAccountNormalised]{
		Method: CreateAccountTool,
		Name:   "Create Account",
		Description: "Creates a new Hedera account. Without a public key the key of the default account is used. " +
			pluginkit.ActorNote(hctx),
		Schema:    params.CreateAccountSchema,
		Normalise: normalise.CreateAccount,
		Build:     pluginkit.Static(builder.CreateAccount),
		Schedule:  func(n params.CreateAccountNormalised) *params.Schedule { return n.Schedule },
		Message: func(_ params.CreateAccountNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Account created successfully. Account ID: %s. Transaction ID: %s", r.AccountID, r.TransactionID)
		},
	}.Tool()
}

// UpdateAccount builds update_account_tool.
func UpdateAccount(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.UpdateAccountParams, params.UpdateAccountNormalised]{
		Method:      UpdateAccountTool,
		Name:        "Update Account",
		Description: "Updates the memo, automatic token associations or staking settings of an account. " + pluginkit.ActorNote(hctx),
		Schema:      params.UpdateAccountSchema,
		Normalise:   normalise.UpdateAccount,
		Build:       pluginkit.Static(builder.UpdateAccount),
		Schedule:    func(n params.UpdateAccountNormalised) *params.Schedule { return n.Schedule },
		Message: func(n params.UpdateAccountNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Account %s updated. Transaction ID: %s", n.AccountID, r.TransactionID)
		},
	}.Tool()
}

// DeleteAccount builds delete_account_tool.
func DeleteAccount(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.DeleteAccountParams, params.DeleteAccountNormalised]{
		Method: DeleteAccountTool,
		Name:   "Delete Account",
		Description: "Deletes an account and transfers its remaining balance to another account. " +
			"If no beneficiary is given, the balance goes to the default account.",
		Schema:    params.DeleteAccountSchema,
		Normalise: normalise.DeleteAccount,
		Build:     pluginkit.Static(builder.DeleteAccount),
		Message: func(n params.DeleteAccountNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Account %s deleted, remaining balance sent to %s. Transaction ID: %s", n.AccountID, n.TransferAccountID, r.TransactionID)
		},
	}.Tool()
}

// ApproveHbarAllowance builds approve_hbar_allowance_tool.
func ApproveHbarAllowance(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.ApproveHbarAllowanceParams, params.ApproveHbarAllowanceNormalised]{
		Method:      ApproveHbarAllowanceTool,
		Name:        "Approve HBAR Allowance",
		Description: "Allows a spender account to spend HBAR on behalf of the owner. Amount is in HBAR. " + pluginkit.ActorNote(hctx),
		Schema:      params.ApproveHbarAllowanceSchema,
		Normalise:   normalise.ApproveHbarAllowance,
		Build:       pluginkit.Static(builder.ApproveHbarAllowance),
		Message: func(n params.ApproveHbarAllowanceNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Approved %s HBAR allowance for %s. Transaction ID: %s", units.TinybarsToHbar(n.Tinybars), n.SpenderAccountID, r.TransactionID)
		},
	}.Tool()
}

// SignSchedule builds sign_schedule_transaction_tool.
func SignSchedule(tool.Context) tool.Tool {
	return pluginkit.Transaction[params.SignScheduleParams, params.SignScheduleNormalised]{
		Method:      SignScheduleTool,
		Name:        "Sign Scheduled Transaction",
		Description: "Adds a signature to an existing scheduled transaction identified by its schedule ID.",
		Schema:      params.SignScheduleSchema,
		Normalise: func(ctx context.Context, p params.SignScheduleParams, _ ledger.Client, _ tool.Context) (params.SignScheduleNormalised, error) {
			return normalise.SignSchedule(ctx, p)
		},
		Build: pluginkit.Static(builder.SignSchedule),
		Message: func(n params.SignScheduleNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Schedule %s signed. Transaction ID: %s", n.ScheduleID, r.TransactionID)
		},
	}.Tool()
}
