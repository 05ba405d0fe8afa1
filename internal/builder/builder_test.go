package builder

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/internal/params"
)

func account(t *testing.T, s string) hedera.AccountID {
	t.Helper()
	id, err := hedera.AccountIDFromString(s)
	if err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return id
}

func TestTransferHbarFixture(t *testing.T) {
	tx := TransferHbar(params.TransferHbarNormalised{
		Transfers: []params.HbarTransferEntry{
			{AccountID: account(t, "0.0.1001"), Tinybars: 150},
			{AccountID: account(t, "0.0.2"), Tinybars: -150},
		},
		TransactionMemo: "rent",
	})
	inner, ok := tx.Unwrap().(*hedera.TransferTransaction)
	if !ok {
		t.Fatalf("unexpected transaction type %T", tx.Unwrap())
	}
	transfers := inner.GetHbarTransfers()
	if transfers[account(t, "0.0.1001")].AsTinybar() != 150 || transfers[account(t, "0.0.2")].AsTinybar() != -150 {
		t.Fatalf("unexpected transfers %v", transfers)
	}
	if inner.GetTransactionMemo() != "rent" || tx.Operation() != "crypto_transfer" {
		t.Fatalf("unexpected memo or operation")
	}
}

func TestCreateFungibleTokenFixture(t *testing.T) {
	priv, _ := hedera.PrivateKeyGenerateEd25519()
	key := priv.PublicKey()
	tx := CreateFungibleToken(params.CreateFungibleTokenNormalised{
		TokenName: "Gold", TokenSymbol: "GLD", Decimals: 2, InitialSupply: 100,
		SupplyType: hedera.TokenSupplyTypeFinite, MaxSupply: 1000,
		TreasuryAccountID: account(t, "0.0.2"), AutoRenewAccount: account(t, "0.0.2"), SupplyKey: &key,
	})
	inner := tx.Unwrap().(*hedera.TokenCreateTransaction)
	if inner.GetTokenName() != "Gold" || inner.GetDecimals() != 2 || inner.GetInitialSupply() != 100 || inner.GetMaxSupply() != 1000 {
		t.Fatalf("unexpected token create fields")
	}
	if inner.GetSupplyKey() == nil {
		t.Fatalf("expected supply key")
	}
	if inner.GetAutoRenewAccount().String() != "0.0.2" {
		t.Fatalf("expected auto-renew account, got %s", inner.GetAutoRenewAccount())
	}
}

func TestCreateNFTFixture(t *testing.T) {
	priv, _ := hedera.PrivateKeyGenerateEd25519()
	tx := CreateNFT(params.CreateNFTNormalised{
		TokenName: "Art", TokenSymbol: "ART", MaxSupply: 100,
		TreasuryAccountID: account(t, "0.0.2"), SupplyKey: priv.PublicKey(),
	})
	inner := tx.Unwrap().(*hedera.TokenCreateTransaction)
	if inner.GetSupplyType() != hedera.TokenSupplyTypeFinite || inner.GetMaxSupply() != 100 || inner.GetInitialSupply() != 0 {
		t.Fatalf("unexpected nft create fields")
	}
}

func TestAirdropFixture(t *testing.T) {
	token, _ := hedera.TokenIDFromString("0.0.5005")
	tx := Airdrop(params.AirdropNormalised{Transfers: []params.TokenTransferEntry{
		{TokenID: token, AccountID: account(t, "0.0.3003"), Amount: 123},
		{TokenID: token, AccountID: account(t, "0.0.2"), Amount: -123},
	}})
	inner := tx.Unwrap().(*hedera.TokenAirdropTransaction)
	var sum int64
	for _, tr := range inner.GetTokenTransfers()[token] {
		sum += tr.Amount
	}
	if len(inner.GetTokenTransfers()[token]) != 2 || sum != 0 {
		t.Fatalf("unexpected airdrop transfers %v", inner.GetTokenTransfers())
	}
}

func TestMintAndAssociateFixtures(t *testing.T) {
	token, _ := hedera.TokenIDFromString("0.0.5005")
	mint := MintNFT(params.MintNFTNormalised{TokenID: token, Metadata: [][]byte{[]byte("ipfs://a"), []byte("ipfs://b")}})
	if got := mint.Unwrap().(*hedera.TokenMintTransaction).GetMetadatas(); len(got) != 2 || string(got[1]) != "ipfs://b" {
		t.Fatalf("unexpected metadata %q", got)
	}
	fungible := MintFungible(params.MintFungibleNormalised{TokenID: token, Amount: 42})
	if fungible.Unwrap().(*hedera.TokenMintTransaction).GetAmount() != 42 {
		t.Fatalf("unexpected mint amount")
	}
	assoc := AssociateToken(params.AssociateTokenNormalised{AccountID: account(t, "0.0.7"), TokenIDs: []hedera.TokenID{token}})
	if ids := assoc.Unwrap().(*hedera.TokenAssociateTransaction).GetTokenIDs(); len(ids) != 1 || ids[0].String() != "0.0.5005" {
		t.Fatalf("unexpected token ids %v", ids)
	}
}

func TestTransferERC20Fixture(t *testing.T) {
	contract, _ := hedera.ContractIDFromString("0.0.5005")
	tx, err := TransferERC20(params.TransferERC20Normalised{
		ContractID: contract,
		Recipient:  common.HexToAddress("0x00000000000000000000000000000000000004d2"),
		Amount:     big.NewInt(7),
		Gas:        100_000,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	inner := tx.Unwrap().(*hedera.ContractExecuteTransaction)
	data := inner.GetFunctionParameters()
	if hex.EncodeToString(data[:4]) != "a9059cbb" || inner.GetGas() != 100_000 {
		t.Fatalf("unexpected call %x", data)
	}
	if !bytes.Equal(data[len(data)-1:], []byte{7}) {
		t.Fatalf("amount not encoded")
	}
}
