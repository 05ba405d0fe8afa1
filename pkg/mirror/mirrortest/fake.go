// Package mirrortest provides a map-backed mirror.Service for tests.
package mirrortest

import (
	"context"
	"fmt"
	"sync"

	"hedera-agent-kit/pkg/mirror"
)

// Service answers lookups from its maps and counts calls.
type Service struct {
	mu            sync.Mutex
	Accounts      map[string]mirror.Account
	TokenBalances map[string][]mirror.TokenBalance
	Tokens        map[string]mirror.TokenInfo
	Topics        map[string][]mirror.TopicMessage
	Err           error
	Calls         map[string]int
	LastQuery     mirror.TopicMessagesQuery
}

// New returns an empty fake.
func New() *Service {
	return &Service{
		Accounts:      map[string]mirror.Account{},
		TokenBalances: map[string][]mirror.TokenBalance{},
		Tokens:        map[string]mirror.TokenInfo{},
		Topics:        map[string][]mirror.TopicMessage{},
		Calls:         map[string]int{},
	}
}

func (s *Service) record(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls[name]++
	return s.Err
}

func (s *Service) GetAccount(_ context.Context, accountID string) (mirror.Account, error) {
	if err := s.record("GetAccount"); err != nil {
		return mirror.Account{}, err
	}
	account, ok := s.Accounts[accountID]
	if !ok {
		return mirror.Account{}, &mirror.StatusError{URL: "/accounts/" + accountID, Status: 404, Body: "not found"}
	}
	return account, nil
}

func (s *Service) GetAccountHBarBalance(ctx context.Context, accountID string) (int64, error) {
	account, err := s.GetAccount(ctx, accountID)
	return account.Balance, err
}

func (s *Service) GetAccountTokenBalances(_ context.Context, accountID, tokenID string) ([]mirror.TokenBalance, error) {
	if err := s.record("GetAccountTokenBalances"); err != nil {
		return nil, err
	}
	var out []mirror.TokenBalance
	for _, b := range s.TokenBalances[accountID] {
		if tokenID == "" || b.TokenID == tokenID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Service) GetTopicMessages(_ context.Context, q mirror.TopicMessagesQuery) (mirror.TopicMessages, error) {
	if err := s.record("GetTopicMessages"); err != nil {
		return mirror.TopicMessages{}, err
	}
	s.mu.Lock()
	s.LastQuery = q
	s.mu.Unlock()
	messages := s.Topics[q.TopicID]
	if q.Limit > 0 && len(messages) > q.Limit {
		messages = messages[:q.Limit]
	}
	return mirror.TopicMessages{TopicID: q.TopicID, Messages: messages}, nil
}

func (s *Service) GetTokenInfo(_ context.Context, tokenID string) (mirror.TokenInfo, error) {
	if err := s.record("GetTokenInfo"); err != nil {
		return mirror.TokenInfo{}, err
	}
	info, ok := s.Tokens[tokenID]
	if !ok {
		return mirror.TokenInfo{}, fmt.Errorf("token %s not found", tokenID)
	}
	return info, nil
}

// CallCount returns how often name was invoked.
func (s *Service) CallCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[name]
}

var _ mirror.Service = (*Service)(nil)
