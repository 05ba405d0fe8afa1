// Package evm provides the core smart contract plugin for ERC-20 tokens.
package evm

import (
	"context"
	"fmt"

	"hedera-agent-kit/internal/builder"
	"hedera-agent-kit/internal/normalise"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/plugins/pluginkit"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/tool"
)

const (
	PluginName = "core-evm-plugin"

	CreateERC20Tool   = "create_erc20_tool"
	TransferERC20Tool = "transfer_erc20_tool"
)

// Plugin returns the EVM plugin. networks supplies the ERC-20 factory
// contract per network.
func Plugin(networks ledger.Networks) plugin.Definition {
	return plugin.New(plugin.Info{
		Name:         PluginName,
		Version:      "1.0.0",
		Description:  "ERC-20 deployment and transfers on the smart contract service",
		Capabilities: []plugin.Capability{plugin.CapabilityLedgerWrite, plugin.CapabilityMirrorRead},
	},
		func(hctx tool.Context) tool.Tool { return CreateERC20(hctx, networks) },
		TransferERC20,
	)
}

// CreateERC20 builds create_erc20_tool.
func CreateERC20(_ tool.Context, networks ledger.Networks) tool.Tool {
	return pluginkit.Transaction[params.CreateERC20Params, params.CreateERC20Normalised]{
		Method: CreateERC20Tool,
		Name:   "Create ERC-20 Token",
		Description: "Deploys an ERC-20 token through the network's token factory contract. " +
			"Decimals default to 18 and the initial supply, in display units, to 0.",
		Schema: params.CreateERC20Schema,
		Normalise: func(ctx context.Context, p params.CreateERC20Params, client ledger.Client, hctx tool.Context) (params.CreateERC20Normalised, error) {
			return normalise.CreateERC20(ctx, p, client, hctx, networks)
		},
		Build:    builder.CreateERC20,
		Schedule: func(n params.CreateERC20Normalised) *params.Schedule { return n.Schedule },
		Message: func(n params.CreateERC20Normalised, r ledger.Receipt) string {
			return fmt.Sprintf("ERC-20 token %s (%s) deployed through factory %s. Transaction ID: %s", n.TokenName, n.TokenSymbol, n.FactoryContractID, r.TransactionID)
		},
	}.Tool()
}

// TransferERC20 builds transfer_erc20_tool.
func TransferERC20(tool.Context) tool.Tool {
	return pluginkit.Transaction[params.TransferERC20Params, params.TransferERC20Normalised]{
		Method: TransferERC20Tool,
		Name:   "Transfer ERC-20 Token",
		Description: "Transfers ERC-20 tokens. The amount is in base units. " +
			"The contract and recipient may be given as 0.0.x ids or 0x EVM addresses.",
		Schema:    params.TransferERC20Schema,
		Normalise: normalise.TransferERC20,
		Build:     builder.TransferERC20,
		Schedule:  func(n params.TransferERC20Normalised) *params.Schedule { return n.Schedule },
		Message: func(n params.TransferERC20Normalised, r ledger.Receipt) string {
			return fmt.Sprintf("Transferred %s base units of %s to %s. Transaction ID: %s", n.Amount, n.ContractID, n.Recipient.Hex(), r.TransactionID)
		},
	}.Tool()
}
