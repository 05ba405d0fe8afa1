package core

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/internal/plugins/account"
	"hedera-agent-kit/internal/plugins/consensus"
	"hedera-agent-kit/internal/plugins/token"
	"hedera-agent-kit/internal/strategy"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/ledger/ledgertest"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/mirror/mirrortest"
	"hedera-agent-kit/pkg/tool"
)

func allTools(t *testing.T, hctx tool.Context) map[string]tool.Tool {
	t.Helper()
	out := map[string]tool.Tool{}
	for _, p := range Plugins(ledger.DefaultNetworks()) {
		tools, err := p.Tools(hctx)
		if err != nil {
			t.Fatalf("%s: %v", p.Info().Name, err)
		}
		for _, tl := range tools {
			if _, dup := out[tl.Method]; dup {
				t.Fatalf("duplicate method %s", tl.Method)
			}
			if tl.Parameters == nil || tl.Description == "" {
				t.Fatalf("%s lacks schema or description", tl.Method)
			}
			out[tl.Method] = tl
		}
	}
	return out
}

func TestCoreCatalogue(t *testing.T) {
	tools := allTools(t, tool.Context{})
	want := []string{
		"transfer_hbar_tool", "create_account_tool", "update_account_tool", "delete_account_tool",
		"approve_hbar_allowance_tool", "sign_schedule_transaction_tool",
		"get_account_query", "get_hbar_balance_query", "get_account_token_balances_query",
		"create_topic_tool", "submit_topic_message_tool", "delete_topic_tool", "get_topic_messages_query",
		"create_fungible_token_tool", "create_non_fungible_token_tool", "airdrop_fungible_token_tool",
		"mint_fungible_token_tool", "mint_non_fungible_token_tool", "associate_token_tool", "get_token_info_query",
		"create_erc20_tool", "transfer_erc20_tool",
	}
	if len(tools) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(tools))
	}
	for _, m := range want {
		if _, ok := tools[m]; !ok {
			t.Fatalf("missing %s", m)
		}
	}
	if len(Names()) != len(Plugins(ledger.DefaultNetworks())) {
		t.Fatalf("names and plugins disagree")
	}
}

func TestTransferHbarAutonomous(t *testing.T) {
	client := ledgertest.New("0.0.2")
	tl := allTools(t, tool.Context{})[account.TransferHbarTool]
	res := tl.Execute(context.Background(), client, tool.Context{}, json.RawMessage(`{"transfers":[{"accountId":"0.0.1001","amount":1.5}],"transactionMemo":"rent"}`))
	if res.Failed() {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	if !strings.Contains(res.HumanMessage, "Transferred 1.5 HBAR from 0.0.2") {
		t.Fatalf("unexpected message %q", res.HumanMessage)
	}
	inner := client.Last().Unwrap().(*hedera.TransferTransaction)
	var sum int64
	for _, v := range inner.GetHbarTransfers() {
		sum += v.AsTinybar()
	}
	if sum != 0 {
		t.Fatalf("transfer list does not sum to zero: %d", sum)
	}
}

func TestTransferHbarReturnBytes(t *testing.T) {
	hctx := tool.Context{Mode: tool.ModeReturnBytes, AccountID: "0.0.1001"}
	tl := allTools(t, hctx)[account.TransferHbarTool]
	if !strings.Contains(tl.Description, "0.0.1001") {
		t.Fatalf("description should name the user account")
	}
	res := tl.Execute(context.Background(), ledgertest.New(""), hctx, json.RawMessage(`{"transfers":[{"accountId":"0.0.2002","amount":0.5}]}`))
	if res.Failed() {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	out, ok := res.Raw.(strategy.Bytes)
	if !ok || len(out.Bytes) == 0 || !strings.HasPrefix(out.TransactionID, "0.0.1001@") {
		t.Fatalf("unexpected raw %+v", res.Raw)
	}
}

func TestCreateTokenReturnBytesCarriesAutoRenewAccount(t *testing.T) {
	hctx := tool.Context{Mode: tool.ModeReturnBytes, AccountID: "0.0.1001"}
	tl := allTools(t, hctx)[token.CreateFungibleTokenTool]
	res := tl.Execute(context.Background(), ledgertest.New(""), hctx, json.RawMessage(`{"tokenName":"Gold","tokenSymbol":"GLD"}`))
	if res.Failed() {
		t.Fatalf("unexpected failure: %s", res.Error)
	}
	out, ok := res.Raw.(strategy.Bytes)
	if !ok {
		t.Fatalf("unexpected raw %+v", res.Raw)
	}
	decoded, err := ledger.DecodeTransaction(out.Bytes)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var renew hedera.AccountID
	switch tx := decoded.(type) {
	case hedera.TokenCreateTransaction:
		renew = tx.GetAutoRenewAccount()
	case *hedera.TokenCreateTransaction:
		renew = tx.GetAutoRenewAccount()
	default:
		t.Fatalf("expected a token create transaction, got %T", decoded)
	}
	if renew.String() != "0.0.1001" {
		t.Fatalf("expected auto-renew account 0.0.1001, got %s", renew)
	}
}

func TestValidationFailsClosed(t *testing.T) {
	tl := allTools(t, tool.Context{})[account.TransferHbarTool]
	client := ledgertest.New("0.0.2")
	for _, raw := range []string{`{}`, `{"transfers":[]}`, `{"transfers":[{"accountId":"0.0.5"}]}`, `{"transfers":[{"accountId":"0.0.5","amount":1}],"extra":true}`, `not json`} {
		res := tl.Execute(context.Background(), client, tool.Context{}, json.RawMessage(raw))
		if !res.Failed() || !strings.Contains(res.Error, "transfer_hbar_tool") {
			t.Fatalf("%s: expected validation failure, got %+v", raw, res)
		}
	}
	if len(client.Submitted) != 0 {
		t.Fatalf("nothing should reach the ledger")
	}
}

func TestCreateTokenSupplyError(t *testing.T) {
	tl := allTools(t, tool.Context{})[token.CreateFungibleTokenTool]
	res := tl.Execute(context.Background(), ledgertest.New("0.0.2"), tool.Context{}, json.RawMessage(`{"tokenName":"Gold","tokenSymbol":"GLD","initialSupply":2000,"maxSupply":1000}`))
	if res.Error != "initial supply (2000) exceeds max supply (1000)" {
		t.Fatalf("unexpected error %q", res.Error)
	}
}

func TestQueriesUseMirror(t *testing.T) {
	m := mirrortest.New()
	m.Accounts["0.0.2"] = mirror.Account{AccountID: "0.0.2", Balance: 123_456_789}
	m.TokenBalances["0.0.2"] = []mirror.TokenBalance{{TokenID: "0.0.5005", Balance: 150, Decimals: 2}}
	m.Topics["0.0.42"] = []mirror.TopicMessage{{ConsensusTimestamp: "1.0", Message: "aGVsbG8=", SequenceNumber: 1}}
	hctx := tool.Context{Mirror: m}
	tools := allTools(t, hctx)
	client := ledgertest.New("0.0.2")

	balance := tools[account.GetHbarBalanceQuery].Execute(context.Background(), client, hctx, nil)
	if balance.HumanMessage != "Account 0.0.2 has a balance of 1.23456789 HBAR" {
		t.Fatalf("unexpected balance message %q", balance.HumanMessage)
	}
	tokens := tools[account.GetTokenBalancesQuery].Execute(context.Background(), client, hctx, json.RawMessage(`{}`))
	if !strings.Contains(tokens.HumanMessage, "0.0.5005: 1.5") {
		t.Fatalf("unexpected token balances %q", tokens.HumanMessage)
	}
	messages := tools[consensus.GetTopicMessagesQuery].Execute(context.Background(), client, hctx, json.RawMessage(`{"topicId":"0.0.42"}`))
	if !strings.Contains(messages.HumanMessage, "1. hello") || m.LastQuery.Limit != 100 {
		t.Fatalf("unexpected messages %q (limit %d)", messages.HumanMessage, m.LastQuery.Limit)
	}
	keyless := tools[account.GetAccountQuery].Execute(context.Background(), client, hctx, json.RawMessage(`{"accountId":"0.0.2"}`))
	if keyless.HumanMessage != "Account 0.0.2: public key none, balance 1.23456789 HBAR" {
		t.Fatalf("unexpected account message %q", keyless.HumanMessage)
	}
	missing := tools[account.GetAccountQuery].Execute(context.Background(), client, hctx, json.RawMessage(`{"accountId":"0.0.99"}`))
	if !missing.Failed() || !strings.Contains(missing.Error, "not found") {
		t.Fatalf("expected not found, got %+v", missing)
	}

	noMirror := tools[account.GetHbarBalanceQuery].Execute(context.Background(), client, tool.Context{}, nil)
	if !noMirror.Failed() {
		t.Fatalf("expected failure without mirror")
	}
}

func TestScheduledTransferReportsScheduleID(t *testing.T) {
	client := ledgertest.New("0.0.2")
	client.Receipt = ledger.Receipt{Status: "SUCCESS", TransactionID: "0.0.2@1.1", ScheduleID: "0.0.777"}
	tl := allTools(t, tool.Context{})[account.TransferHbarTool]
	res := tl.Execute(context.Background(), client, tool.Context{}, json.RawMessage(`{"transfers":[{"accountId":"0.0.1001","amount":1}],"schedulingParams":{"isScheduled":true}}`))
	if res.Failed() || !strings.Contains(res.HumanMessage, "0.0.777") {
		t.Fatalf("unexpected result %+v", res)
	}
	if client.Last().Operation() != "schedule_create" {
		t.Fatalf("expected a schedule create, got %s", client.Last().Operation())
	}
}
