// Package mirror is the read-only view of ledger state served by a Hedera
// mirror node. Service is what normalisers and query tools depend on;
// HTTPService talks to the public REST API and CachedService adds a TTL cache
// in front of the lookups that rarely change.
package mirror

import (
	"context"
	"strings"
)

// Service is the mirror-node lookup surface used by the toolkit.
type Service interface {
	GetAccount(ctx context.Context, accountID string) (Account, error)
	// GetAccountHBarBalance returns the account balance in tinybars.
	GetAccountHBarBalance(ctx context.Context, accountID string) (int64, error)
	// GetAccountTokenBalances lists token balances in base units. A non-empty
	// tokenID restricts the result to that token.
	GetAccountTokenBalances(ctx context.Context, accountID, tokenID string) ([]TokenBalance, error)
	GetTopicMessages(ctx context.Context, q TopicMessagesQuery) (TopicMessages, error)
	GetTokenInfo(ctx context.Context, tokenID string) (TokenInfo, error)
}

// Key types reported by the mirror node.
const (
	KeyTypeED25519 = "ED25519"
	KeyTypeECDSA   = "ECDSA_SECP256K1"
)

// Account is the subset of /accounts/{id} the toolkit uses.
type Account struct {
	AccountID        string `json:"accountId"`
	AccountPublicKey string `json:"accountPublicKey"`
	KeyType          string `json:"keyType,omitempty"`
	Balance          int64  `json:"balance"`
	EVMAddress       string `json:"evmAddress,omitempty"`
	Memo             string `json:"memo,omitempty"`
}

// TokenBalance is one entry of /accounts/{id}/tokens.
type TokenBalance struct {
	TokenID  string `json:"tokenId"`
	Balance  int64  `json:"balance"`
	Decimals int    `json:"decimals"`
}

// TopicMessagesQuery selects messages of one topic. Timestamps use the
// mirror node "seconds.nanoseconds" form and are inclusive.
type TopicMessagesQuery struct {
	TopicID        string
	LowerTimestamp string
	UpperTimestamp string
	Limit          int
	// MaxPages bounds pagination; zero means DefaultMaxPages.
	MaxPages int
}

// DefaultMaxPages caps how many pages one topic query follows.
const DefaultMaxPages = 100

// TopicMessage is a single consensus message. Message is base64 encoded as
// served by the mirror node.
type TopicMessage struct {
	ConsensusTimestamp string `json:"consensusTimestamp"`
	Message            string `json:"message"`
	SequenceNumber     int64  `json:"sequenceNumber"`
	PayerAccountID     string `json:"payerAccountId,omitempty"`
}

// TopicMessages is the result of GetTopicMessages, newest first.
type TopicMessages struct {
	TopicID  string         `json:"topicId"`
	Messages []TopicMessage `json:"messages"`
}

// Token types reported by the mirror node.
const (
	TokenTypeFungible    = "FUNGIBLE_COMMON"
	TokenTypeNonFungible = "NON_FUNGIBLE_UNIQUE"
)

// TokenInfo is the subset of /tokens/{id} the toolkit uses. Supplies are kept
// as decimal strings since they may exceed int64.
type TokenInfo struct {
	TokenID           string `json:"tokenId"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Type              string `json:"type"`
	Decimals          int    `json:"decimals"`
	TotalSupply       string `json:"totalSupply"`
	MaxSupply         string `json:"maxSupply"`
	SupplyType        string `json:"supplyType"`
	TreasuryAccountID string `json:"treasuryAccountId,omitempty"`
	Memo              string `json:"memo,omitempty"`
}

// BaseURL returns the public mirror REST base for a network name.
func BaseURL(network string) string {
	switch strings.ToLower(network) {
	case "mainnet":
		return "https://mainnet-public.mirrornode.hedera.com/api/v1"
	case "previewnet":
		return "https://previewnet.mirrornode.hedera.com/api/v1"
	case "local", "local-node", "localhost":
		return "http://localhost:5551/api/v1"
	default:
		return "https://testnet.mirrornode.hedera.com/api/v1"
	}
}
