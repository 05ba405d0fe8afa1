// Package resolver decides which account and key a tool acts for when the
// caller leaves them out.
//
// An autonomous agent acts as the ledger operator. A return-bytes flow acts
// for the connected user, who signs the returned transaction.
package resolver

import (
	"context"
	"log/slog"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/tool"
)

// DefaultAccount returns the account a tool acts for when none is given.
func DefaultAccount(client ledger.Client, hctx tool.Context) (hedera.AccountID, error) {
	if hctx.EffectiveMode() == tool.ModeReturnBytes && strings.TrimSpace(hctx.AccountID) != "" {
		id, err := hedera.AccountIDFromString(strings.TrimSpace(hctx.AccountID))
		if err != nil {
			return hedera.AccountID{}, kiterrors.Wrap(kiterrors.CodeConfiguration, err, "invalid context account id "+hctx.AccountID)
		}
		return id, nil
	}
	if client != nil {
		if id, ok := client.OperatorAccountID(); ok {
			return id, nil
		}
	}
	return hedera.AccountID{}, kiterrors.New(kiterrors.CodeConfiguration,
		"no default account: set an operator on the client or an account id in return-bytes mode")
}

// ResolveAccount returns the explicit account when present, otherwise the
// default account.
func ResolveAccount(explicit *string, client ledger.Client, hctx tool.Context) (hedera.AccountID, error) {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		return ParseAccount(*explicit)
	}
	return DefaultAccount(client, hctx)
}

// ResolveAccountString is ResolveAccount for query tools that pass the id to
// the mirror node as text.
func ResolveAccountString(explicit *string, client ledger.Client, hctx tool.Context) (string, error) {
	id, err := ResolveAccount(explicit, client, hctx)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ParseAccount parses a shard.realm.num account id.
func ParseAccount(s string) (hedera.AccountID, error) {
	id, err := hedera.AccountIDFromString(strings.TrimSpace(s))
	if err != nil {
		return hedera.AccountID{}, kiterrors.Wrap(kiterrors.CodeInvalidArgument, err, "invalid account id "+s)
	}
	return id, nil
}

// DefaultPublicKey returns the public key of the default account. Sources in
// order: the context key when the context account is the default account,
// the mirror node, the operator key.
func DefaultPublicKey(ctx context.Context, client ledger.Client, hctx tool.Context) (hedera.PublicKey, error) {
	account, err := DefaultAccount(client, hctx)
	if err != nil {
		return hedera.PublicKey{}, err
	}
	return PublicKeyOf(ctx, account, client, hctx)
}

// PublicKeyOf resolves the public key of account using the same sources as
// DefaultPublicKey.
func PublicKeyOf(ctx context.Context, account hedera.AccountID, client ledger.Client, hctx tool.Context) (hedera.PublicKey, error) {
	if hctx.AccountPublicKey != "" && strings.TrimSpace(hctx.AccountID) == account.String() {
		key, err := hedera.PublicKeyFromString(hctx.AccountPublicKey)
		if err != nil {
			return hedera.PublicKey{}, kiterrors.Wrap(kiterrors.CodeConfiguration, err, "invalid context public key")
		}
		return key, nil
	}

	if hctx.Mirror != nil {
		info, err := hctx.Mirror.GetAccount(ctx, account.String())
		switch {
		case err == nil && info.AccountPublicKey != "":
			key, perr := ParsePublicKey(info.AccountPublicKey, info.KeyType)
			if perr == nil {
				return key, nil
			}
			logger.Named("resolver").Warn("mirror returned an unparsable key",
				slog.String("account", account.String()), slog.String("error", perr.Error()))
		case err != nil && !mirror.IsNotFound(err):
			return hedera.PublicKey{}, kiterrors.Wrap(kiterrors.CodeMirrorFailure, err, "lookup public key of "+account.String())
		}
	}

	if client != nil {
		if key, ok := client.OperatorPublicKey(); ok {
			return key, nil
		}
	}
	return hedera.PublicKey{}, kiterrors.New(kiterrors.CodeResolution, "unable to resolve a public key for account "+account.String())
}

// ParsePublicKey parses a key as served by the mirror node, using keyType
// to pick the curve for raw hex keys.
func ParsePublicKey(s, keyType string) (hedera.PublicKey, error) {
	switch keyType {
	case mirror.KeyTypeED25519:
		return hedera.PublicKeyFromStringEd25519(s)
	case mirror.KeyTypeECDSA:
		return hedera.PublicKeyFromStringECDSA(s)
	default:
		return hedera.PublicKeyFromString(s)
	}
}

// ParseKeyOrDefault parses an explicit key, or resolves the default public
// key when s is nil or empty.
func ParseKeyOrDefault(ctx context.Context, s *string, client ledger.Client, hctx tool.Context) (hedera.PublicKey, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return DefaultPublicKey(ctx, client, hctx)
	}
	key, err := hedera.PublicKeyFromString(strings.TrimSpace(*s))
	if err != nil {
		return hedera.PublicKey{}, kiterrors.Wrap(kiterrors.CodeInvalidArgument, err, "invalid public key")
	}
	return key, nil
}
