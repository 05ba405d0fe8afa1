package normalise

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/internal/evm"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/resolver"
	"hedera-agent-kit/internal/units"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/tool"
)

// CreateERC20 picks the factory contract of the client's network and
// converts the initial supply to base units.
func CreateERC20(ctx context.Context, p params.CreateERC20Params, client ledger.Client, hctx tool.Context, networks ledger.Networks) (params.CreateERC20Normalised, error) {
	var out params.CreateERC20Normalised
	network, err := networks.Lookup(client.Network())
	if err != nil || network.ERC20Factory == "" {
		return out, kiterrors.Newf(kiterrors.CodeNotSupported, "no ERC-20 factory contract is configured for network %s", client.Network())
	}
	factory, err := evm.ContractID(network.ERC20Factory)
	if err != nil {
		return out, kiterrors.Wrap(kiterrors.CodeConfiguration, err, "invalid ERC-20 factory contract "+network.ERC20Factory)
	}
	decimals := deref(p.Decimals, params.DefaultERC20Decimals)
	if decimals < 0 || decimals > 255 {
		return out, invalid("decimals must be between 0 and 255, got %d", decimals)
	}
	supply, err := units.ToBaseUnits(deref(p.InitialSupply, 0), decimals)
	if err != nil {
		return out, invalidWrap(err, "invalid initial supply")
	}
	if supply.Sign() < 0 {
		return out, invalid("initial supply must not be negative")
	}
	schedule, err := Schedule(ctx, p.SchedulingParams, client, hctx)
	if err != nil {
		return out, err
	}
	return params.CreateERC20Normalised{
		FactoryContractID: factory,
		TokenName:         p.TokenName,
		TokenSymbol:       p.TokenSymbol,
		Decimals:          uint8(decimals),
		InitialSupply:     supply,
		Gas:               evm.DeployTokenGas,
		Schedule:          schedule,
	}, nil
}

// TransferERC20 resolves the recipient to an EVM address. Account ids are
// looked up on the mirror node; accounts without an alias use their long
// zero address.
func TransferERC20(ctx context.Context, p params.TransferERC20Params, client ledger.Client, hctx tool.Context) (params.TransferERC20Normalised, error) {
	var out params.TransferERC20Normalised
	contract, err := evm.ContractID(p.ContractID)
	if err != nil {
		return out, invalidWrap(err, "invalid contract id "+p.ContractID)
	}
	amount, ok := new(big.Int).SetString(p.Amount.String(), 10)
	if !ok || amount.Sign() <= 0 {
		return out, invalid("amount must be a positive integer number of base units, got %s", p.Amount)
	}
	recipient, err := evmAddress(ctx, p.RecipientAddress, hctx)
	if err != nil {
		return out, err
	}
	schedule, err := Schedule(ctx, p.SchedulingParams, client, hctx)
	if err != nil {
		return out, err
	}
	return params.TransferERC20Normalised{
		ContractID: contract,
		Recipient:  recipient,
		Amount:     amount,
		Gas:        evm.TransferGas,
		Schedule:   schedule,
	}, nil
}

func evmAddress(ctx context.Context, s string, hctx tool.Context) (common.Address, error) {
	s = strings.TrimSpace(s)
	if evm.IsAddress(s) {
		return common.HexToAddress(s), nil
	}
	account, err := resolver.ParseAccount(s)
	if err != nil {
		return common.Address{}, err
	}
	if hctx.Mirror != nil {
		info, err := hctx.Mirror.GetAccount(ctx, account.String())
		switch {
		case err == nil && evm.IsAddress(info.EVMAddress):
			return common.HexToAddress(info.EVMAddress), nil
		case err != nil && !mirror.IsNotFound(err):
			return common.Address{}, kiterrors.Wrap(kiterrors.CodeMirrorFailure, err, "lookup EVM address of "+account.String())
		}
	}
	return evm.LongZeroAddress(account), nil
}
