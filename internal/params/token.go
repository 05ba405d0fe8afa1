package params

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/pkg/schema"
)

// Supply types accepted by the token tools.
const (
	SupplyTypeFinite   = "finite"
	SupplyTypeInfinite = "infinite"
)

// Defaults applied by the token normalisers.
const (
	DefaultFungibleMaxSupply = 1_000_000
	DefaultNFTMaxSupply      = 100
	MaxNFTMetadataPerMint    = 10
)

// CreateFungibleTokenParams is the raw input of create_fungible_token_tool.
// Supplies are in display units.
type CreateFungibleTokenParams struct {
	TokenName         string   `json:"tokenName" jsonschema:"required,minLength=1" jsonschema_description:"Name of the token"`
	TokenSymbol       string   `json:"tokenSymbol" jsonschema:"required,minLength=1" jsonschema_description:"Symbol of the token"`
	InitialSupply     *float64 `json:"initialSupply,omitempty" jsonschema:"minimum=0" jsonschema_description:"Initial supply in display units. Defaults to 0."`
	SupplyType        *string  `json:"supplyType,omitempty" jsonschema:"enum=finite,enum=infinite" jsonschema_description:"Supply type of the token. Defaults to finite."`
	MaxSupply         *float64 `json:"maxSupply,omitempty" jsonschema:"minimum=0" jsonschema_description:"Maximum supply in display units for finite tokens. Defaults to 1,000,000."`
	Decimals          *int     `json:"decimals,omitempty" jsonschema:"minimum=0,maximum=18" jsonschema_description:"Number of decimals. Defaults to 0."`
	TreasuryAccountID *string  `json:"treasuryAccountId,omitempty" jsonschema_description:"Treasury account. Defaults to the default account."`
	IsSupplyKey       *bool    `json:"isSupplyKey,omitempty" jsonschema_description:"If true, the default account's key becomes the supply key so more tokens can be minted."`
	TokenMemo         *string  `json:"tokenMemo,omitempty" jsonschema_description:"Memo of the token"`
}

// CreateFungibleTokenNormalised holds supplies in base units.
type CreateFungibleTokenNormalised struct {
	TokenName         string
	TokenSymbol       string
	Decimals          uint
	InitialSupply     uint64
	SupplyType        hedera.TokenSupplyType
	MaxSupply         int64
	TreasuryAccountID hedera.AccountID
	AutoRenewAccount  hedera.AccountID
	SupplyKey         *hedera.PublicKey
	TokenMemo         string
}

// CreateNFTParams is the raw input of create_non_fungible_token_tool.
type CreateNFTParams struct {
	TokenName         string  `json:"tokenName" jsonschema:"required,minLength=1" jsonschema_description:"Name of the collection"`
	TokenSymbol       string  `json:"tokenSymbol" jsonschema:"required,minLength=1" jsonschema_description:"Symbol of the collection"`
	MaxSupply         *int64  `json:"maxSupply,omitempty" jsonschema:"minimum=1" jsonschema_description:"Maximum number of NFTs. Defaults to 100."`
	TreasuryAccountID *string `json:"treasuryAccountId,omitempty" jsonschema_description:"Treasury account. Defaults to the default account."`
	TokenMemo         *string `json:"tokenMemo,omitempty" jsonschema_description:"Memo of the token"`
}

// CreateNFTNormalised always carries a supply key and a finite supply.
type CreateNFTNormalised struct {
	TokenName         string
	TokenSymbol       string
	MaxSupply         int64
	TreasuryAccountID hedera.AccountID
	AutoRenewAccount  hedera.AccountID
	SupplyKey         hedera.PublicKey
	TokenMemo         string
}

// AirdropRecipient is one recipient of an airdrop, amount in display units.
type AirdropRecipient struct {
	AccountID string  `json:"accountId" jsonschema:"required" jsonschema_description:"Recipient account ID"`
	Amount    float64 `json:"amount" jsonschema:"required" jsonschema_description:"Amount in display units"`
}

// AirdropParams is the raw input of airdrop_fungible_token_tool.
type AirdropParams struct {
	TokenID          string             `json:"tokenId" jsonschema:"required" jsonschema_description:"Token to airdrop"`
	Recipients       []AirdropRecipient `json:"recipients" jsonschema:"required,minItems=1" jsonschema_description:"Recipients and amounts"`
	SourceAccountID  *string            `json:"sourceAccountId,omitempty" jsonschema_description:"Account sending the tokens. Defaults to the default account."`
	TransactionMemo  *string            `json:"transactionMemo,omitempty" jsonschema_description:"Memo to include with the transaction"`
	SchedulingParams *SchedulingParams  `json:"schedulingParams,omitempty" jsonschema_description:"Optional scheduling parameters"`
}

// TokenTransferEntry is a signed base unit movement of one token.
type TokenTransferEntry struct {
	TokenID   hedera.TokenID
	AccountID hedera.AccountID
	Amount    int64
}

// AirdropNormalised lists entries that sum to zero per token.
type AirdropNormalised struct {
	SourceAccountID hedera.AccountID
	Transfers       []TokenTransferEntry
	TransactionMemo string
	Schedule        *Schedule
}

// MintFungibleParams is the raw input of mint_fungible_token_tool.
type MintFungibleParams struct {
	TokenID string  `json:"tokenId" jsonschema:"required" jsonschema_description:"Token to mint"`
	Amount  float64 `json:"amount" jsonschema:"required" jsonschema_description:"Amount to mint in display units"`
}

// MintFungibleNormalised is ready for NewTokenMintTransaction.
type MintFungibleNormalised struct {
	TokenID hedera.TokenID
	Amount  uint64
}

// MintNFTParams is the raw input of mint_non_fungible_token_tool.
type MintNFTParams struct {
	TokenID string   `json:"tokenId" jsonschema:"required" jsonschema_description:"NFT collection to mint into"`
	URIs    []string `json:"uris" jsonschema:"required,minItems=1,maxItems=10" jsonschema_description:"Metadata URIs, one NFT per URI"`
}

// MintNFTNormalised is ready for NewTokenMintTransaction.
type MintNFTNormalised struct {
	TokenID  hedera.TokenID
	Metadata [][]byte
}

// AssociateTokenParams is the raw input of associate_token_tool.
type AssociateTokenParams struct {
	TokenIDs  []string `json:"tokenIds" jsonschema:"required,minItems=1" jsonschema_description:"Tokens to associate"`
	AccountID *string  `json:"accountId,omitempty" jsonschema_description:"Account to associate. Defaults to the default account."`
}

// AssociateTokenNormalised is ready for NewTokenAssociateTransaction.
type AssociateTokenNormalised struct {
	AccountID hedera.AccountID
	TokenIDs  []hedera.TokenID
}

// TokenInfoParams is the raw input of get_token_info_query.
type TokenInfoParams struct {
	TokenID string `json:"tokenId" jsonschema:"required" jsonschema_description:"Token to look up"`
}

var (
	CreateFungibleTokenSchema = schema.MustFor[CreateFungibleTokenParams]()
	CreateNFTSchema           = schema.MustFor[CreateNFTParams]()
	AirdropSchema             = schema.MustFor[AirdropParams]()
	MintFungibleSchema        = schema.MustFor[MintFungibleParams]()
	MintNFTSchema             = schema.MustFor[MintNFTParams]()
	AssociateTokenSchema      = schema.MustFor[AssociateTokenParams]()
	TokenInfoSchema           = schema.MustFor[TokenInfoParams]()
)
