package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// StatusError is returned for non-2xx mirror node responses.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("mirror node returned %d for %s: %s", e.Status, e.URL, e.Body)
}

// IsNotFound reports whether err is a 404 from the mirror node.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// HTTPConfig configures an HTTPService.
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond throttles outgoing calls; zero disables throttling.
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// HTTPService implements Service against the mirror node REST API.
type HTTPService struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
}

// NewHTTPService constructs a mirror client.
func NewHTTPService(cfg HTTPConfig) (*HTTPService, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("mirror base url cannot be empty")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse mirror base url: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	s := &HTTPService{base: base, client: client}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return s, nil
}

type accountResponse struct {
	Account string `json:"account"`
	Key     *struct {
		Type string `json:"_type"`
		Key  string `json:"key"`
	} `json:"key"`
	Balance struct {
		Balance int64 `json:"balance"`
	} `json:"balance"`
	EVMAddress string `json:"evm_address"`
	Memo       string `json:"memo"`
}

// GetAccount implements Service.
func (s *HTTPService) GetAccount(ctx context.Context, accountID string) (Account, error) {
	var resp accountResponse
	if err := s.get(ctx, s.endpoint("accounts/"+url.PathEscape(accountID), nil), &resp); err != nil {
		return Account{}, err
	}
	account := Account{
		AccountID:  resp.Account,
		Balance:    resp.Balance.Balance,
		EVMAddress: resp.EVMAddress,
		Memo:       resp.Memo,
	}
	if resp.Key != nil {
		account.AccountPublicKey = resp.Key.Key
		account.KeyType = resp.Key.Type
	}
	return account, nil
}

// GetAccountHBarBalance implements Service.
func (s *HTTPService) GetAccountHBarBalance(ctx context.Context, accountID string) (int64, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

type tokenBalancesResponse struct {
	Tokens []struct {
		TokenID  string `json:"token_id"`
		Balance  int64  `json:"balance"`
		Decimals int    `json:"decimals"`
	} `json:"tokens"`
	Links links `json:"links"`
}

type links struct {
	Next *string `json:"next"`
}

// GetAccountTokenBalances implements Service.
func (s *HTTPService) GetAccountTokenBalances(ctx context.Context, accountID, tokenID string) ([]TokenBalance, error) {
	query := url.Values{}
	if tokenID != "" {
		query.Set("token.id", tokenID)
	}
	next := s.endpoint("accounts/"+url.PathEscape(accountID)+"/tokens", query)
	var balances []TokenBalance
	for page := 0; next != "" && page < DefaultMaxPages; page++ {
		var resp tokenBalancesResponse
		if err := s.get(ctx, next, &resp); err != nil {
			return nil, err
		}
		for _, t := range resp.Tokens {
			balances = append(balances, TokenBalance{TokenID: t.TokenID, Balance: t.Balance, Decimals: t.Decimals})
		}
		next = s.follow(resp.Links)
	}
	return balances, nil
}

type topicMessagesResponse struct {
	Messages []struct {
		ConsensusTimestamp string `json:"consensus_timestamp"`
		Message            string `json:"message"`
		SequenceNumber     int64  `json:"sequence_number"`
		PayerAccountID     string `json:"payer_account_id"`
	} `json:"messages"`
	Links links `json:"links"`
}

// GetTopicMessages implements Service. Pages are followed until Limit
// messages are collected, the API stops returning a next link, or MaxPages
// is reached.
func (s *HTTPService) GetTopicMessages(ctx context.Context, q TopicMessagesQuery) (TopicMessages, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	maxPages := q.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	query := url.Values{}
	query.Set("order", "desc")
	query.Set("limit", strconv.Itoa(min(limit, 100)))
	if q.LowerTimestamp != "" {
		query.Add("timestamp", "gte:"+q.LowerTimestamp)
	}
	if q.UpperTimestamp != "" {
		query.Add("timestamp", "lte:"+q.UpperTimestamp)
	}

	out := TopicMessages{TopicID: q.TopicID}
	next := s.endpoint("topics/"+url.PathEscape(q.TopicID)+"/messages", query)
	for page := 0; next != "" && page < maxPages && len(out.Messages) < limit; page++ {
		var resp topicMessagesResponse
		if err := s.get(ctx, next, &resp); err != nil {
			return TopicMessages{}, err
		}
		for _, m := range resp.Messages {
			if len(out.Messages) == limit {
				break
			}
			out.Messages = append(out.Messages, TopicMessage{
				ConsensusTimestamp: m.ConsensusTimestamp,
				Message:            m.Message,
				SequenceNumber:     m.SequenceNumber,
				PayerAccountID:     m.PayerAccountID,
			})
		}
		next = s.follow(resp.Links)
	}
	return out, nil
}

type tokenResponse struct {
	TokenID           string `json:"token_id"`
	Name              string `json:"name"`
	Symbol            string `json:"symbol"`
	Type              string `json:"type"`
	Decimals          string `json:"decimals"`
	TotalSupply       string `json:"total_supply"`
	MaxSupply         string `json:"max_supply"`
	SupplyType        string `json:"supply_type"`
	TreasuryAccountID string `json:"treasury_account_id"`
	Memo              string `json:"memo"`
}

// GetTokenInfo implements Service.
func (s *HTTPService) GetTokenInfo(ctx context.Context, tokenID string) (TokenInfo, error) {
	var resp tokenResponse
	if err := s.get(ctx, s.endpoint("tokens/"+url.PathEscape(tokenID), nil), &resp); err != nil {
		return TokenInfo{}, err
	}
	decimals := 0
	if resp.Decimals != "" {
		d, err := strconv.Atoi(resp.Decimals)
		if err != nil {
			return TokenInfo{}, fmt.Errorf("token %s: invalid decimals %q", tokenID, resp.Decimals)
		}
		decimals = d
	}
	return TokenInfo{
		TokenID:           resp.TokenID,
		Name:              resp.Name,
		Symbol:            resp.Symbol,
		Type:              resp.Type,
		Decimals:          decimals,
		TotalSupply:       resp.TotalSupply,
		MaxSupply:         resp.MaxSupply,
		SupplyType:        resp.SupplyType,
		TreasuryAccountID: resp.TreasuryAccountID,
		Memo:              resp.Memo,
	}, nil
}

func (s *HTTPService) endpoint(path string, query url.Values) string {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + path
	u.RawPath = ""
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// follow resolves a links.next value, which the mirror node serves as an
// absolute path such as /api/v1/topics/0.0.5/messages?...
func (s *HTTPService) follow(l links) string {
	if l.Next == nil || *l.Next == "" {
		return ""
	}
	ref, err := url.Parse(*l.Next)
	if err != nil {
		return ""
	}
	return s.base.ResolveReference(ref).String()
}

func (s *HTTPService) get(ctx context.Context, target string, out any) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("mirror rate limit: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build mirror request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("mirror request %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{URL: target, Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode mirror response from %s: %w", target, err)
	}
	return nil
}
