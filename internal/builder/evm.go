package builder

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/internal/evm"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/pkg/ledger"
)

// CreateERC20 builds the factory call that deploys a new ERC-20 token.
func CreateERC20(p params.CreateERC20Normalised) (*ledger.Transaction, error) {
	data, err := evm.DeployTokenCall(p.TokenName, p.TokenSymbol, p.Decimals, p.InitialSupply)
	if err != nil {
		return nil, err
	}
	tx := hedera.NewContractExecuteTransaction().
		SetContractID(p.FactoryContractID).
		SetGas(p.Gas).
		SetFunctionParameters(data)
	return ledger.Wrap("contract_execute", tx), nil
}

// TransferERC20 builds an ERC-20 transfer call.
func TransferERC20(p params.TransferERC20Normalised) (*ledger.Transaction, error) {
	data, err := evm.TransferCall(p.Recipient, p.Amount)
	if err != nil {
		return nil, err
	}
	tx := hedera.NewContractExecuteTransaction().
		SetContractID(p.ContractID).
		SetGas(p.Gas).
		SetFunctionParameters(data)
	return ledger.Wrap("contract_execute", tx), nil
}
