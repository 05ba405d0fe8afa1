// Package normalise turns validated raw params into ledger-ready params. All
// defaults and policy live here; the only I/O is through the mirror service
// carried by the tool context.
package normalise

import (
	"context"
	"strings"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/resolver"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/tool"
)

// Schedule normalises scheduling params. It returns nil when scheduling was
// not requested.
func Schedule(ctx context.Context, p *params.SchedulingParams, client ledger.Client, hctx tool.Context) (*params.Schedule, error) {
	if !p.Scheduled() {
		return nil, nil
	}
	out := &params.Schedule{}
	if p.AdminKey != nil && strings.TrimSpace(*p.AdminKey) != "" {
		raw := strings.TrimSpace(*p.AdminKey)
		if strings.EqualFold(raw, "true") {
			key, err := resolver.DefaultPublicKey(ctx, client, hctx)
			if err != nil {
				return nil, err
			}
			out.AdminKey = key
		} else {
			key, err := hedera.PublicKeyFromString(raw)
			if err != nil {
				return nil, kiterrors.Wrap(kiterrors.CodeInvalidArgument, err, "invalid schedule admin key")
			}
			out.AdminKey = key
		}
	}
	if p.PayerAccountID != nil && strings.TrimSpace(*p.PayerAccountID) != "" {
		payer, err := resolver.ParseAccount(*p.PayerAccountID)
		if err != nil {
			return nil, err
		}
		out.PayerAccountID = &payer
	}
	if p.ExpirationTime != nil && strings.TrimSpace(*p.ExpirationTime) != "" {
		at, err := time.Parse(time.RFC3339, strings.TrimSpace(*p.ExpirationTime))
		if err != nil {
			return nil, kiterrors.Wrap(kiterrors.CodeInvalidArgument, err, "invalid schedule expiration time")
		}
		out.ExpirationTime = &at
	}
	if p.WaitForExpiry != nil {
		out.WaitForExpiry = *p.WaitForExpiry
	}
	return out, nil
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

func invalid(format string, args ...any) error {
	return kiterrors.Newf(kiterrors.CodeInvalidArgument, format, args...)
}

func invalidWrap(err error, message string) error {
	return kiterrors.Wrap(kiterrors.CodeInvalidArgument, err, message)
}
