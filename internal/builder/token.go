package builder

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/pkg/ledger"
)

// CreateFungibleToken builds a fungible token create transaction.
func CreateFungibleToken(p params.CreateFungibleTokenNormalised) *ledger.Transaction {
	tx := hedera.NewTokenCreateTransaction().
		SetTokenType(hedera.TokenTypeFungibleCommon).
		SetTokenName(p.TokenName).
		SetTokenSymbol(p.TokenSymbol).
		SetDecimals(p.Decimals).
		SetInitialSupply(p.InitialSupply).
		SetTreasuryAccountID(p.TreasuryAccountID).
		SetSupplyType(p.SupplyType)
	if p.AutoRenewAccount != (hedera.AccountID{}) {
		tx.SetAutoRenewAccount(p.AutoRenewAccount)
	}
	if p.SupplyType == hedera.TokenSupplyTypeFinite {
		tx.SetMaxSupply(p.MaxSupply)
	}
	if p.SupplyKey != nil {
		tx.SetSupplyKey(*p.SupplyKey)
	}
	if p.TokenMemo != "" {
		tx.SetTokenMemo(p.TokenMemo)
	}
	return ledger.Wrap("token_create", tx)
}

// CreateNFT builds a non-fungible token create transaction.
func CreateNFT(p params.CreateNFTNormalised) *ledger.Transaction {
	tx := hedera.NewTokenCreateTransaction().
		SetTokenType(hedera.TokenTypeNonFungibleUnique).
		SetTokenName(p.TokenName).
		SetTokenSymbol(p.TokenSymbol).
		SetDecimals(0).
		SetInitialSupply(0).
		SetTreasuryAccountID(p.TreasuryAccountID).
		SetSupplyType(hedera.TokenSupplyTypeFinite).
		SetMaxSupply(p.MaxSupply).
		SetSupplyKey(p.SupplyKey)
	if p.AutoRenewAccount != (hedera.AccountID{}) {
		tx.SetAutoRenewAccount(p.AutoRenewAccount)
	}
	if p.TokenMemo != "" {
		tx.SetTokenMemo(p.TokenMemo)
	}
	return ledger.Wrap("token_create", tx)
}

// Airdrop builds a token airdrop transaction.
func Airdrop(p params.AirdropNormalised) *ledger.Transaction {
	tx := hedera.NewTokenAirdropTransaction()
	for _, e := range p.Transfers {
		tx.AddTokenTransfer(e.TokenID, e.AccountID, e.Amount)
	}
	if p.TransactionMemo != "" {
		tx.SetTransactionMemo(p.TransactionMemo)
	}
	return ledger.Wrap("token_airdrop", tx)
}

// MintFungible builds a fungible token mint.
func MintFungible(p params.MintFungibleNormalised) *ledger.Transaction {
	return ledger.Wrap("token_mint", hedera.NewTokenMintTransaction().SetTokenID(p.TokenID).SetAmount(p.Amount))
}

// MintNFT builds a non-fungible token mint.
func MintNFT(p params.MintNFTNormalised) *ledger.Transaction {
	return ledger.Wrap("token_mint", hedera.NewTokenMintTransaction().SetTokenID(p.TokenID).SetMetadatas(p.Metadata))
}

// AssociateToken builds a token association.
func AssociateToken(p params.AssociateTokenNormalised) *ledger.Transaction {
	tx := hedera.NewTokenAssociateTransaction().
		SetAccountID(p.AccountID).
		SetTokenIDs(p.TokenIDs...)
	return ledger.Wrap("token_associate", tx)
}
