package normalise

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/units"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/ledger/ledgertest"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/mirror/mirrortest"
	"hedera-agent-kit/pkg/tool"
)

func ptr[T any](v T) *T { return &v }

func operatorClient(t *testing.T) (*ledgertest.Client, hedera.PublicKey) {
	t.Helper()
	priv, err := hedera.PrivateKeyGenerateEd25519()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key := priv.PublicKey()
	return ledgertest.New("0.0.2").WithKey(key.String()), key
}

func TestTransferHbarZeroSumProperty(t *testing.T) {
	client := ledgertest.New("0.0.2")
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("transfers sum to zero and the source pays the total", prop.ForAll(
		func(amounts []float64) bool {
			transfers := make([]params.HbarTransfer, 0, len(amounts))
			for i, a := range amounts {
				transfers = append(transfers, params.HbarTransfer{AccountID: fmt.Sprintf("0.0.%d", 1000+i), Amount: a})
			}
			out, err := TransferHbar(context.Background(), params.TransferHbarParams{Transfers: transfers}, client, tool.Context{})
			if err != nil {
				return false
			}
			var sum int64
			for _, e := range out.Transfers {
				sum += e.Tinybars
			}
			last := out.Transfers[len(out.Transfers)-1]
			return sum == 0 && len(out.Transfers) == len(amounts)+1 && last.AccountID.String() == "0.0.2" && last.Tinybars < 0
		},
		gen.SliceOf(gen.Float64Range(1e-8, 1_000_000)).SuchThat(func(v []float64) bool { return len(v) > 0 }),
	))

	properties.TestingRun(t)
}

func TestTransferHbarRejectsBadAmounts(t *testing.T) {
	client := ledgertest.New("0.0.2")
	for _, amount := range []float64{0, -1, 1e-9} {
		p := params.TransferHbarParams{Transfers: []params.HbarTransfer{{AccountID: "0.0.1001", Amount: amount}}}
		_, err := TransferHbar(context.Background(), p, client, tool.Context{})
		if kiterrors.CodeOf(err) != kiterrors.CodeInvalidArgument {
			t.Fatalf("amount %v: expected invalid argument, got %v", amount, err)
		}
	}
	self := params.TransferHbarParams{Transfers: []params.HbarTransfer{{AccountID: "0.0.2", Amount: 1}}}
	if _, err := TransferHbar(context.Background(), self, client, tool.Context{}); err == nil {
		t.Fatalf("expected transfer to the source account to fail")
	}
}

func TestTransferHbarReturnBytesUsesContextAccount(t *testing.T) {
	hctx := tool.Context{Mode: tool.ModeReturnBytes, AccountID: "0.0.777"}
	p := params.TransferHbarParams{
		Transfers:       []params.HbarTransfer{{AccountID: "0.0.1001", Amount: 0.1}},
		TransactionMemo: ptr("rent"),
	}
	out, err := TransferHbar(context.Background(), p, ledgertest.New("0.0.2"), hctx)
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	if out.SourceAccountID.String() != "0.0.777" || out.Transfers[0].Tinybars != 10_000_000 || out.TransactionMemo != "rent" {
		t.Fatalf("unexpected result %+v", out)
	}
	if out.Schedule != nil {
		t.Fatalf("expected no schedule")
	}
}

func TestAirdropZeroSumPerTokenProperty(t *testing.T) {
	m := mirrortest.New()
	m.Tokens["0.0.5005"] = mirror.TokenInfo{TokenID: "0.0.5005", Decimals: 2}
	hctx := tool.Context{Mirror: m}
	client := ledgertest.New("0.0.2")

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("airdrop entries of the token sum to zero", prop.ForAll(
		func(amounts []float64) bool {
			recipients := make([]params.AirdropRecipient, 0, len(amounts))
			for i, a := range amounts {
				recipients = append(recipients, params.AirdropRecipient{AccountID: fmt.Sprintf("0.0.%d", 2000+i), Amount: a})
			}
			out, err := Airdrop(context.Background(), params.AirdropParams{TokenID: "0.0.5005", Recipients: recipients}, client, hctx)
			if err != nil {
				return false
			}
			var sum int64
			for _, e := range out.Transfers {
				if e.TokenID.String() != "0.0.5005" {
					return false
				}
				sum += e.Amount
			}
			return sum == 0 && len(out.Transfers) == len(amounts)+1
		},
		gen.SliceOf(gen.Float64Range(0.01, 100_000)).SuchThat(func(v []float64) bool { return len(v) > 0 }),
	))

	properties.TestingRun(t)
}

func TestAirdropUsesMirrorDecimals(t *testing.T) {
	m := mirrortest.New()
	m.Tokens["0.0.5005"] = mirror.TokenInfo{TokenID: "0.0.5005", Decimals: 2}
	p := params.AirdropParams{TokenID: "0.0.5005", Recipients: []params.AirdropRecipient{{AccountID: "0.0.3003", Amount: 1.239}}}
	out, err := Airdrop(context.Background(), p, ledgertest.New("0.0.2"), tool.Context{Mirror: m})
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	if out.Transfers[0].Amount != 123 || out.Transfers[1].Amount != -123 {
		t.Fatalf("expected truncated base units, got %+v", out.Transfers)
	}

	if _, err := Airdrop(context.Background(), p, ledgertest.New("0.0.2"), tool.Context{}); kiterrors.CodeOf(err) != kiterrors.CodeConfiguration {
		t.Fatalf("expected configuration error without mirror, got %v", err)
	}
	m.Err = fmt.Errorf("mirror down")
	if _, err := Airdrop(context.Background(), p, ledgertest.New("0.0.2"), tool.Context{Mirror: m}); kiterrors.CodeOf(err) != kiterrors.CodeMirrorFailure {
		t.Fatalf("expected mirror failure, got %v", err)
	}
}

func TestFungibleSupplyBoundProperty(t *testing.T) {
	client := ledgertest.New("0.0.2")
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("finite tokens never start above their max supply", prop.ForAll(
		func(initial, maxSupply float64, decimals int) bool {
			p := params.CreateFungibleTokenParams{
				TokenName: "Gold", TokenSymbol: "GLD",
				InitialSupply: &initial, MaxSupply: &maxSupply, Decimals: &decimals,
			}
			out, err := CreateFungibleToken(context.Background(), p, client, tool.Context{})
			wantInitial, _ := units.ToBaseUnits(initial, decimals)
			wantMax, _ := units.ToBaseUnits(maxSupply, decimals)
			if wantInitial.Cmp(wantMax) > 0 {
				return err != nil && strings.Contains(err.Error(), "exceeds max supply")
			}
			return err == nil && int64(out.InitialSupply) <= out.MaxSupply && out.SupplyType == hedera.TokenSupplyTypeFinite
		},
		gen.Float64Range(0, 1_000_000), gen.Float64Range(1, 1_000_000), gen.IntRange(0, 8),
	))

	properties.TestingRun(t)
}

func TestCreateFungibleTokenDefaults(t *testing.T) {
	client, key := operatorClient(t)
	out, err := CreateFungibleToken(context.Background(), params.CreateFungibleTokenParams{
		TokenName: "Gold", TokenSymbol: "GLD", IsSupplyKey: ptr(true),
	}, client, tool.Context{})
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	if out.MaxSupply != params.DefaultFungibleMaxSupply || out.Decimals != 0 || out.InitialSupply != 0 {
		t.Fatalf("unexpected defaults %+v", out)
	}
	if out.SupplyKey == nil || out.SupplyKey.String() != key.String() {
		t.Fatalf("expected operator key as supply key")
	}
	if out.TreasuryAccountID.String() != "0.0.2" {
		t.Fatalf("unexpected treasury %s", out.TreasuryAccountID)
	}

	_, err = CreateFungibleToken(context.Background(), params.CreateFungibleTokenParams{
		TokenName: "Gold", TokenSymbol: "GLD", InitialSupply: ptr(2000.0), MaxSupply: ptr(1000.0),
	}, client, tool.Context{})
	if err == nil || kiterrors.Describe(err) != "initial supply (2000) exceeds max supply (1000)" {
		t.Fatalf("unexpected error %v", err)
	}

	infinite, err := CreateFungibleToken(context.Background(), params.CreateFungibleTokenParams{
		TokenName: "Gold", TokenSymbol: "GLD", SupplyType: ptr("infinite"), InitialSupply: ptr(5e6),
	}, client, tool.Context{})
	if err != nil || infinite.SupplyType != hedera.TokenSupplyTypeInfinite || infinite.MaxSupply != 0 {
		t.Fatalf("unexpected infinite token %+v (%v)", infinite, err)
	}
}

func TestCreateNFTAlwaysHasSupplyKey(t *testing.T) {
	client, key := operatorClient(t)
	out, err := CreateNFT(context.Background(), params.CreateNFTParams{TokenName: "Art", TokenSymbol: "ART"}, client, tool.Context{})
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	if out.MaxSupply != params.DefaultNFTMaxSupply || out.SupplyKey.String() != key.String() {
		t.Fatalf("unexpected nft params %+v", out)
	}
	if _, err := CreateNFT(context.Background(), params.CreateNFTParams{TokenName: "Art", TokenSymbol: "ART"}, ledgertest.New("0.0.2"), tool.Context{}); kiterrors.CodeOf(err) != kiterrors.CodeResolution {
		t.Fatalf("expected key resolution failure, got %v", err)
	}
}

func TestCreateTopicSubmitKey(t *testing.T) {
	client, key := operatorClient(t)
	out, err := CreateTopic(context.Background(), params.CreateTopicParams{IsSubmitKey: ptr(true), TopicMemo: ptr("news")}, client, tool.Context{})
	if err != nil || out.SubmitKey == nil || out.SubmitKey.String() != key.String() || out.TopicMemo != "news" {
		t.Fatalf("unexpected topic params %+v (%v)", out, err)
	}
	plain, err := CreateTopic(context.Background(), params.CreateTopicParams{}, ledgertest.New("0.0.2"), tool.Context{})
	if err != nil || plain.SubmitKey != nil || plain.AdminKey != nil {
		t.Fatalf("expected keyless topic, got %+v (%v)", plain, err)
	}
	if _, err := CreateTopic(context.Background(), params.CreateTopicParams{IsSubmitKey: ptr(true)}, ledgertest.New("0.0.2"), tool.Context{}); err == nil {
		t.Fatalf("expected missing submit key to fail")
	}

	down := mirrortest.New()
	down.Err = fmt.Errorf("mirror 503")
	_, err = CreateTopic(context.Background(), params.CreateTopicParams{TopicMemo: ptr("x")}, client, tool.Context{Mirror: down})
	if kiterrors.CodeOf(err) != kiterrors.CodeMirrorFailure {
		t.Fatalf("expected mirror failure to surface, got %v", err)
	}
}

func TestTopicMessagesQuery(t *testing.T) {
	q, err := TopicMessages(context.Background(), params.TopicMessagesParams{
		TopicID:   "0.0.42",
		StartTime: ptr("2024-01-01T00:00:00Z"),
		EndTime:   ptr("2024-01-01T00:00:01.5Z"),
		Limit:     ptr(500),
	})
	if err != nil {
		t.Fatalf("normalise: %v", err)
	}
	if q.LowerTimestamp != "1704067200.000000000" || q.UpperTimestamp != "1704067201.500000000" || q.Limit != 100 {
		t.Fatalf("unexpected query %+v", q)
	}
	if _, err := TopicMessages(context.Background(), params.TopicMessagesParams{TopicID: "0.0.42", StartTime: ptr("2024-02-01T00:00:00Z"), EndTime: ptr("2024-01-01T00:00:00Z")}); err == nil {
		t.Fatalf("expected inverted range to fail")
	}
	if got := MirrorTimestamp(time.Unix(12, 5)); got != "12.000000005" {
		t.Fatalf("unexpected mirror timestamp %s", got)
	}
}

func TestAccountNormalisers(t *testing.T) {
	ctx := context.Background()
	client, key := operatorClient(t)

	created, err := CreateAccount(ctx, params.CreateAccountParams{InitialBalance: ptr(1.5)}, client, tool.Context{})
	if err != nil || created.Key.String() != key.String() || created.InitialBalanceTinybars != 150_000_000 || created.MaxAutomaticTokenAssociations != -1 {
		t.Fatalf("unexpected create account params %+v (%v)", created, err)
	}

	if _, err := UpdateAccount(ctx, params.UpdateAccountParams{}, client, tool.Context{}); err == nil {
		t.Fatalf("expected empty update to fail")
	}
	updated, err := UpdateAccount(ctx, params.UpdateAccountParams{AccountMemo: ptr("hi"), StakedAccountID: ptr("0.0.800")}, client, tool.Context{})
	if err != nil || updated.AccountID.String() != "0.0.2" || updated.StakedAccountID.String() != "0.0.800" {
		t.Fatalf("unexpected update params %+v (%v)", updated, err)
	}

	if _, err := DeleteAccount(ctx, params.DeleteAccountParams{AccountID: "0.0.2"}, client, tool.Context{}); err == nil {
		t.Fatalf("expected deleting into itself to fail")
	}
	deleted, err := DeleteAccount(ctx, params.DeleteAccountParams{AccountID: "0.0.9"}, client, tool.Context{})
	if err != nil || deleted.TransferAccountID.String() != "0.0.2" {
		t.Fatalf("unexpected delete params %+v (%v)", deleted, err)
	}

	allowance, err := ApproveHbarAllowance(ctx, params.ApproveHbarAllowanceParams{SpenderAccountID: "0.0.10", Amount: 2}, client, tool.Context{})
	if err != nil || allowance.OwnerAccountID.String() != "0.0.2" || allowance.Tinybars != 200_000_000 {
		t.Fatalf("unexpected allowance params %+v (%v)", allowance, err)
	}

	if _, err := SignSchedule(ctx, params.SignScheduleParams{ScheduleID: "nope"}); err == nil {
		t.Fatalf("expected invalid schedule id to fail")
	}
}

func TestScheduleParams(t *testing.T) {
	client, key := operatorClient(t)
	s, err := Schedule(context.Background(), &params.SchedulingParams{
		IsScheduled:    true,
		AdminKey:       ptr("true"),
		PayerAccountID: ptr("0.0.5"),
		ExpirationTime: ptr("2030-01-01T00:00:00Z"),
		WaitForExpiry:  ptr(true),
	}, client, tool.Context{})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if s.AdminKey.(hedera.PublicKey).String() != key.String() || s.PayerAccountID.String() != "0.0.5" || !s.WaitForExpiry || s.ExpirationTime.Year() != 2030 {
		t.Fatalf("unexpected schedule %+v", s)
	}
	none, err := Schedule(context.Background(), &params.SchedulingParams{}, client, tool.Context{})
	if err != nil || none != nil {
		t.Fatalf("expected no schedule, got %+v (%v)", none, err)
	}
}

func TestERC20Normalisers(t *testing.T) {
	ctx := context.Background()
	client := ledgertest.New("0.0.2")

	out, err := CreateERC20(ctx, params.CreateERC20Params{TokenName: "Gold", TokenSymbol: "GLD", InitialSupply: ptr(1.5)}, client, tool.Context{}, ledger.DefaultNetworks())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if out.Decimals != 18 || out.InitialSupply.String() != "1500000000000000000" || out.FactoryContractID.String() != "0.0.6471814" {
		t.Fatalf("unexpected erc20 params %+v", out)
	}
	client.NetworkName = "previewnet"
	if _, err := CreateERC20(ctx, params.CreateERC20Params{TokenName: "Gold", TokenSymbol: "GLD"}, client, tool.Context{}, ledger.DefaultNetworks()); kiterrors.CodeOf(err) != kiterrors.CodeNotSupported {
		t.Fatalf("expected missing factory to be unsupported, got %v", err)
	}

	m := mirrortest.New()
	m.Accounts["0.0.1234"] = mirror.Account{AccountID: "0.0.1234", EVMAddress: "0x1111111111111111111111111111111111111111"}
	transfer, err := TransferERC20(ctx, params.TransferERC20Params{
		ContractID: "0.0.5005", RecipientAddress: "0.0.1234", Amount: json.Number("1000000000000000000000000"),
	}, client, tool.Context{Mirror: m})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if transfer.Recipient.Hex() != "0x1111111111111111111111111111111111111111" || transfer.Amount.String() != "1000000000000000000000000" {
		t.Fatalf("unexpected transfer params %+v", transfer)
	}
	longZero, err := TransferERC20(ctx, params.TransferERC20Params{ContractID: "0.0.5005", RecipientAddress: "0.0.1234", Amount: "5"}, client, tool.Context{})
	if err != nil || !strings.HasSuffix(strings.ToLower(longZero.Recipient.Hex()), "04d2") {
		t.Fatalf("expected long zero address, got %v (%v)", longZero.Recipient, err)
	}
	if _, err := TransferERC20(ctx, params.TransferERC20Params{ContractID: "0.0.5005", RecipientAddress: "0.0.1234", Amount: "1.5"}, client, tool.Context{}); err == nil {
		t.Fatalf("expected fractional base units to fail")
	}
}
