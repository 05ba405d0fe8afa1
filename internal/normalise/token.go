package normalise

import (
	"context"
	"math"
	"strings"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/resolver"
	"hedera-agent-kit/internal/units"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/tool"
)

// CreateFungibleToken converts supplies to base units and enforces
// initialSupply <= maxSupply for finite tokens.
func CreateFungibleToken(ctx context.Context, p params.CreateFungibleTokenParams, client ledger.Client, hctx tool.Context) (params.CreateFungibleTokenNormalised, error) {
	var out params.CreateFungibleTokenNormalised
	treasury, err := resolver.ResolveAccount(p.TreasuryAccountID, client, hctx)
	if err != nil {
		return out, err
	}
	decimals := deref(p.Decimals, 0)
	if decimals < 0 {
		return out, invalid("decimals must not be negative")
	}

	initialHuman := deref(p.InitialSupply, 0)
	initial, err := units.ToBaseUnits(initialHuman, decimals)
	if err != nil {
		return out, invalidWrap(err, "invalid initial supply")
	}
	if initial.Sign() < 0 || !initial.IsUint64() || initial.Uint64() > math.MaxInt64 {
		return out, invalid("initial supply %s is out of range", units.FormatHuman(initialHuman))
	}

	supplyType := strings.ToLower(deref(p.SupplyType, params.SupplyTypeFinite))
	out = params.CreateFungibleTokenNormalised{
		TokenName:         p.TokenName,
		TokenSymbol:       p.TokenSymbol,
		Decimals:          uint(decimals),
		InitialSupply:     initial.Uint64(),
		TreasuryAccountID: treasury,
		AutoRenewAccount:  autoRenewAccount(client, hctx, treasury),
		TokenMemo:         deref(p.TokenMemo, ""),
	}
	switch supplyType {
	case params.SupplyTypeInfinite:
		out.SupplyType = hedera.TokenSupplyTypeInfinite
	case params.SupplyTypeFinite:
		maxHuman := deref(p.MaxSupply, float64(params.DefaultFungibleMaxSupply))
		maxSupply, err := units.ToPositiveBaseUnits(maxHuman, decimals)
		if err != nil {
			return out, invalidWrap(err, "invalid max supply")
		}
		if !maxSupply.IsInt64() {
			return out, invalid("max supply %s is out of range", units.FormatHuman(maxHuman))
		}
		if initial.Cmp(maxSupply) > 0 {
			return out, invalid("initial supply (%s) exceeds max supply (%s)", units.FormatHuman(initialHuman), units.FormatHuman(maxHuman))
		}
		out.SupplyType = hedera.TokenSupplyTypeFinite
		out.MaxSupply = maxSupply.Int64()
	default:
		return out, invalid("unknown supply type %q", supplyType)
	}

	if deref(p.IsSupplyKey, false) {
		key, err := resolver.PublicKeyOf(ctx, treasury, client, hctx)
		if err != nil {
			return out, err
		}
		out.SupplyKey = &key
	}
	return out, nil
}

// CreateNFT always attaches the treasury's key as supply key and forces a
// finite supply.
func CreateNFT(ctx context.Context, p params.CreateNFTParams, client ledger.Client, hctx tool.Context) (params.CreateNFTNormalised, error) {
	var out params.CreateNFTNormalised
	treasury, err := resolver.ResolveAccount(p.TreasuryAccountID, client, hctx)
	if err != nil {
		return out, err
	}
	maxSupply := deref(p.MaxSupply, params.DefaultNFTMaxSupply)
	if maxSupply < 1 {
		return out, invalid("max supply must be positive, got %d", maxSupply)
	}
	key, err := resolver.PublicKeyOf(ctx, treasury, client, hctx)
	if err != nil {
		return out, err
	}
	return params.CreateNFTNormalised{
		TokenName:         p.TokenName,
		TokenSymbol:       p.TokenSymbol,
		MaxSupply:         maxSupply,
		TreasuryAccountID: treasury,
		AutoRenewAccount:  autoRenewAccount(client, hctx, treasury),
		SupplyKey:         key,
		TokenMemo:         deref(p.TokenMemo, ""),
	}, nil
}

// Airdrop converts amounts with the token's decimals from the mirror node
// and appends the negated total for the source, so the entries of the token
// sum to zero.
func Airdrop(ctx context.Context, p params.AirdropParams, client ledger.Client, hctx tool.Context) (params.AirdropNormalised, error) {
	var out params.AirdropNormalised
	if len(p.Recipients) == 0 {
		return out, invalid("at least one recipient is required")
	}
	source, err := resolver.ResolveAccount(p.SourceAccountID, client, hctx)
	if err != nil {
		return out, err
	}
	token, err := parseToken(p.TokenID)
	if err != nil {
		return out, err
	}
	decimals, err := tokenDecimals(ctx, hctx, token)
	if err != nil {
		return out, err
	}

	var total int64
	entries := make([]params.TokenTransferEntry, 0, len(p.Recipients)+1)
	for _, r := range p.Recipients {
		recipient, err := resolver.ParseAccount(r.AccountID)
		if err != nil {
			return out, err
		}
		if sameAccount(recipient, source) {
			return out, invalid("cannot airdrop %s from %s to itself", token, source)
		}
		amount, err := positiveInt64(r.Amount, decimals, "invalid airdrop amount for "+r.AccountID)
		if err != nil {
			return out, err
		}
		if total > math.MaxInt64-amount {
			return out, invalid("total airdrop amount is out of range")
		}
		total += amount
		entries = append(entries, params.TokenTransferEntry{TokenID: token, AccountID: recipient, Amount: amount})
	}
	entries = append(entries, params.TokenTransferEntry{TokenID: token, AccountID: source, Amount: -total})

	schedule, err := Schedule(ctx, p.SchedulingParams, client, hctx)
	if err != nil {
		return out, err
	}
	return params.AirdropNormalised{
		SourceAccountID: source,
		Transfers:       entries,
		TransactionMemo: deref(p.TransactionMemo, ""),
		Schedule:        schedule,
	}, nil
}

// MintFungible converts the amount with the token's decimals.
func MintFungible(ctx context.Context, p params.MintFungibleParams, hctx tool.Context) (params.MintFungibleNormalised, error) {
	var out params.MintFungibleNormalised
	token, err := parseToken(p.TokenID)
	if err != nil {
		return out, err
	}
	decimals, err := tokenDecimals(ctx, hctx, token)
	if err != nil {
		return out, err
	}
	amount, err := positiveInt64(p.Amount, decimals, "invalid mint amount")
	if err != nil {
		return out, err
	}
	return params.MintFungibleNormalised{TokenID: token, Amount: uint64(amount)}, nil
}

// MintNFT turns each URI into the metadata of one NFT.
func MintNFT(_ context.Context, p params.MintNFTParams) (params.MintNFTNormalised, error) {
	var out params.MintNFTNormalised
	token, err := parseToken(p.TokenID)
	if err != nil {
		return out, err
	}
	if len(p.URIs) == 0 || len(p.URIs) > params.MaxNFTMetadataPerMint {
		return out, invalid("between 1 and %d URIs are required, got %d", params.MaxNFTMetadataPerMint, len(p.URIs))
	}
	metadata := make([][]byte, 0, len(p.URIs))
	for _, uri := range p.URIs {
		if strings.TrimSpace(uri) == "" {
			return out, invalid("metadata URI must not be empty")
		}
		metadata = append(metadata, []byte(uri))
	}
	return params.MintNFTNormalised{TokenID: token, Metadata: metadata}, nil
}

// AssociateToken resolves the account and parses every token id.
func AssociateToken(_ context.Context, p params.AssociateTokenParams, client ledger.Client, hctx tool.Context) (params.AssociateTokenNormalised, error) {
	var out params.AssociateTokenNormalised
	account, err := resolver.ResolveAccount(p.AccountID, client, hctx)
	if err != nil {
		return out, err
	}
	if len(p.TokenIDs) == 0 {
		return out, invalid("at least one token id is required")
	}
	tokens := make([]hedera.TokenID, 0, len(p.TokenIDs))
	for _, s := range p.TokenIDs {
		token, err := parseToken(s)
		if err != nil {
			return out, err
		}
		tokens = append(tokens, token)
	}
	return params.AssociateTokenNormalised{AccountID: account, TokenIDs: tokens}, nil
}

// TokenInfo validates the token id of get_token_info_query.
func TokenInfo(_ context.Context, p params.TokenInfoParams) (string, error) {
	token, err := parseToken(p.TokenID)
	if err != nil {
		return "", err
	}
	return token.String(), nil
}

// autoRenewAccount is the default account, which pays for the token create
// and therefore signs it. Frozen bytes carry no client to fill it in later.
func autoRenewAccount(client ledger.Client, hctx tool.Context, treasury hedera.AccountID) hedera.AccountID {
	if account, err := resolver.DefaultAccount(client, hctx); err == nil {
		return account
	}
	return treasury
}

func tokenDecimals(ctx context.Context, hctx tool.Context, token hedera.TokenID) (int, error) {
	if hctx.Mirror == nil {
		return 0, kiterrors.New(kiterrors.CodeConfiguration, "a mirror node service is required to look up token decimals")
	}
	info, err := hctx.Mirror.GetTokenInfo(ctx, token.String())
	if err != nil {
		if mirror.IsNotFound(err) {
			return 0, kiterrors.Wrap(kiterrors.CodeNotFound, err, "token "+token.String()+" not found")
		}
		return 0, kiterrors.Wrap(kiterrors.CodeMirrorFailure, err, "lookup decimals of "+token.String())
	}
	return info.Decimals, nil
}

func positiveInt64(amount float64, decimals int, message string) (int64, error) {
	v, err := units.ToPositiveBaseUnits(amount, decimals)
	if err != nil {
		return 0, invalidWrap(err, message)
	}
	if !v.IsInt64() {
		return 0, invalid("%s: amount %s is out of range", message, units.FormatHuman(amount))
	}
	return v.Int64(), nil
}
