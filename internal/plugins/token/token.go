// Package token provides the core token service plugins.
package token

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"hedera-agent-kit/internal/builder"
	"hedera-agent-kit/internal/normalise"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/plugins/pluginkit"
	"hedera-agent-kit/internal/units"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/tool"
)

const (
	PluginName      = "core-token-plugin"
	QueryPluginName = "core-token-query-plugin"

	CreateFungibleTokenTool = "create_fungible_token_tool"
	CreateNFTTool           = "create_non_fungible_token_tool"
	AirdropTool             = "airdrop_fungible_token_tool"
	MintFungibleTool        = "mint_fungible_token_tool"
	MintNFTTool             = "mint_non_fungible_token_tool"
	AssociateTokenTool      = "associate_token_tool"
	GetTokenInfoQuery       = "get_token_info_query"
)

// Plugin returns the token transaction plugin.
func Plugin() plugin.Definition {
	return plugin.New(plugin.Info{
		Name:         PluginName,
		Version:      "1.0.0",
		Description:  "Token creation, minting, airdrops and associations",
		Capabilities: []plugin.Capability{plugin.CapabilityLedgerWrite, plugin.CapabilityMirrorRead},
	},
		CreateFungibleToken,
		CreateNFT,
		Airdrop,
		MintFungible,
		MintNFT,
		AssociateToken,
	)
}

// QueryPlugin returns the token query plugin.
func QueryPlugin() plugin.Definition {
	return plugin.New(plugin.Info{
		Name:         QueryPluginName,
		Version:      "1.0.0",
		Description:  "Token information lookups",
		Capabilities: []plugin.Capability{plugin.CapabilityMirrorRead},
	}, GetTokenInfo)
}

// CreateFungibleToken builds create_fungible_token_tool.
func CreateFungibleToken(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.CreateFungibleTokenParams, params.CreateFungibleTokenNormalised]{
		Method: CreateFungibleTokenTool,
		Name:   "Create Fungible Token",
		Description: "Creates a fungible token. Supplies are given in display units and converted with decimals. " +
			"Tokens have a finite supply of 1,000,000 unless told otherwise. The treasury defaults to the default account. " +
			pluginkit.ActorNote(hctx),
		Schema:    params.CreateFungibleTokenSchema,
		Normalise: normalise.CreateFungibleToken,
		Build:     pluginkit.Static(builder.CreateFungibleToken),
		Message: func(n params.CreateFungibleTokenNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Token %s (%s) created with ID %s. Transaction ID: %s", n.TokenName, n.TokenSymbol, r.TokenID, r.TransactionID)
		},
	}.Tool()
}

// CreateNFT builds create_non_fungible_token_tool.
func CreateNFT(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.CreateNFTParams, params.CreateNFTNormalised]{
		Method: CreateNFTTool,
		Name:   "Create Non-Fungible Token",
		Description: "Creates an NFT collection with a finite supply (100 unless told otherwise). " +
			"The treasury's key becomes the supply key. " + pluginkit.ActorNote(hctx),
		Schema:    params.CreateNFTSchema,
		Normalise: normalise.CreateNFT,
		Build:     pluginkit.Static(builder.CreateNFT),
		Message: func(n params.CreateNFTNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("NFT collection %s (%s) created with ID %s. Transaction ID: %s", n.TokenName, n.TokenSymbol, r.TokenID, r.TransactionID)
		},
	}.Tool()
}

// Airdrop builds airdrop_fungible_token_tool.
func Airdrop(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.AirdropParams, params.AirdropNormalised]{
		Method: AirdropTool,
		Name:   "Airdrop Fungible Token",
		Description: "Airdrops a fungible token to one or more recipients. Amounts are in display units. " +
			pluginkit.ActorNote(hctx),
		Schema:    params.AirdropSchema,
		Normalise: normalise.Airdrop,
		Build:     pluginkit.Static(builder.Airdrop),
		Schedule:  func(n params.AirdropNormalised) *params.Schedule { return n.Schedule },
		Message: func(n params.AirdropNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Airdropped %s to %d recipients. Transaction ID: %s", n.Transfers[0].TokenID, len(n.Transfers)-1, r.TransactionID)
		},
	}.Tool()
}

// MintFungible builds mint_fungible_token_tool.
func MintFungible(tool.Context) tool.Tool {
	return pluginkit.Transaction[params.MintFungibleParams, params.MintFungibleNormalised]{
		Method:      MintFungibleTool,
		Name:        "Mint Fungible Token",
		Description: "Mints additional supply of a fungible token. The amount is in display units.",
		Schema:      params.MintFungibleSchema,
		Normalise: func(ctx context.Context, p params.MintFungibleParams, _ ledger.Client, hctx tool.Context) (params.MintFungibleNormalised, error) {
			return normalise.MintFungible(ctx, p, hctx)
		},
		Build: pluginkit.Static(builder.MintFungible),
		Message: func(n params.MintFungibleNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Minted %d base units of %s. Transaction ID: %s", n.Amount, n.TokenID, r.TransactionID)
		},
	}.Tool()
}

// MintNFT builds mint_non_fungible_token_tool.
func MintNFT(tool.Context) tool.Tool {
	return pluginkit.Transaction[params.MintNFTParams, params.MintNFTNormalised]{
		Method:      MintNFTTool,
		Name:        "Mint Non-Fungible Token",
		Description: "Mints NFTs into a collection, one per metadata URI (at most 10 per call).",
		Schema:      params.MintNFTSchema,
		Normalise: func(ctx context.Context, p params.MintNFTParams, _ ledger.Client, _ tool.Context) (params.MintNFTNormalised, error) {
			return normalise.MintNFT(ctx, p)
		},
		Build: pluginkit.Static(builder.MintNFT),
		Message: func(n params.MintNFTNormalised, r ledger.Receipt) string {
			serials := make([]string, 0, len(r.SerialNumbers))
			for _, s := range r.SerialNumbers {
				serials = append(serials, fmt.Sprint(s))
			}
			return fmt.Sprintf("Minted %d NFTs of %s (serials %s). Transaction ID: %s", len(n.Metadata), n.TokenID, strings.Join(serials, ", "), r.TransactionID)
		},
	}.Tool()
}

// AssociateToken builds associate_token_tool.
func AssociateToken(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.AssociateTokenParams, params.AssociateTokenNormalised]{
		Method:      AssociateTokenTool,
		Name:        "Associate Token",
		Description: "Associates one or more tokens with an account so it can hold them. " + pluginkit.ActorNote(hctx),
		Schema:      params.AssociateTokenSchema,
		Normalise:   normalise.AssociateToken,
		Build:       pluginkit.Static(builder.AssociateToken),
		Message: func(n params.AssociateTokenNormalised, r ledger.Receipt) string {
			ids := make([]string, 0, len(n.TokenIDs))
			for _, id := range n.TokenIDs {
				ids = append(ids, id.String())
			}
			return fmt.Sprintf("Associated %s with account %s. Transaction ID: %s", strings.Join(ids, ", "), n.AccountID, r.TransactionID)
		},
	}.Tool()
}

// GetTokenInfo builds get_token_info_query.
func GetTokenInfo(tool.Context) tool.Tool {
	return pluginkit.Query[params.TokenInfoParams, mirror.TokenInfo]{
		Method:      GetTokenInfoQuery,
		Name:        "Get Token Info",
		Description: "Returns the name, symbol, type, decimals and supply of a token.",
		Schema:      params.TokenInfoSchema,
		Run: func(ctx context.Context, p params.TokenInfoParams, m mirror.Service, _ ledger.Client, _ tool.Context) (mirror.TokenInfo, string, error) {
			id, err := normalise.TokenInfo(ctx, p)
			if err != nil {
				return mirror.TokenInfo{}, "", err
			}
			info, err := m.GetTokenInfo(ctx, id)
			if err != nil {
				return mirror.TokenInfo{}, "", pluginkit.MirrorError(err, "token "+id)
			}
			return info, fmt.Sprintf("Token %s: %s (%s), type %s, decimals %d, total supply %s, max supply %s",
				info.TokenID, info.Name, info.Symbol, info.Type, info.Decimals,
				displaySupply(info.TotalSupply, info.Decimals), displaySupply(info.MaxSupply, info.Decimals)), nil
		},
	}.Tool()
}

func displaySupply(raw string, decimals int) string {
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return raw
	}
	return units.FromBaseUnits(v, decimals)
}
