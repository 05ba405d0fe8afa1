// Package core lists the built-in plugins shipped with the toolkit.
package core

import (
	"hedera-agent-kit/internal/plugins/account"
	"hedera-agent-kit/internal/plugins/consensus"
	"hedera-agent-kit/internal/plugins/evm"
	"hedera-agent-kit/internal/plugins/token"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/plugin"
)

// Plugins returns every core plugin in a stable order.
func Plugins(networks ledger.Networks) []plugin.Plugin {
	return []plugin.Plugin{
		account.Plugin(),
		account.QueryPlugin(),
		consensus.Plugin(),
		consensus.QueryPlugin(),
		token.Plugin(),
		token.QueryPlugin(),
		evm.Plugin(networks),
	}
}

// Names returns the names of the core plugins.
func Names() []string {
	return []string{
		account.PluginName,
		account.QueryPluginName,
		consensus.PluginName,
		consensus.QueryPluginName,
		token.PluginName,
		token.QueryPluginName,
		evm.PluginName,
	}
}
