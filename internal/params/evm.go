package params

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/pkg/schema"
)

// DefaultERC20Decimals is used when create_erc20_tool omits decimals.
const DefaultERC20Decimals = 18

// CreateERC20Params is the raw input of create_erc20_tool.
type CreateERC20Params struct {
	TokenName        string            `json:"tokenName" jsonschema:"required,minLength=1" jsonschema_description:"Name of the ERC-20 token"`
	TokenSymbol      string            `json:"tokenSymbol" jsonschema:"required,minLength=1" jsonschema_description:"Symbol of the ERC-20 token"`
	Decimals         *int              `json:"decimals,omitempty" jsonschema:"minimum=0,maximum=255" jsonschema_description:"Number of decimals. Defaults to 18."`
	InitialSupply    *float64          `json:"initialSupply,omitempty" jsonschema:"minimum=0" jsonschema_description:"Initial supply in display units. Defaults to 0."`
	SchedulingParams *SchedulingParams `json:"schedulingParams,omitempty" jsonschema_description:"Optional scheduling parameters"`
}

// CreateERC20Normalised is ready for a factory deployToken call.
type CreateERC20Normalised struct {
	FactoryContractID hedera.ContractID
	TokenName         string
	TokenSymbol       string
	Decimals          uint8
	InitialSupply     *big.Int
	Gas               uint64
	Schedule          *Schedule
}

// TransferERC20Params is the raw input of transfer_erc20_tool. Amount is in
// base units and may exceed the float64 integer range.
type TransferERC20Params struct {
	ContractID       string            `json:"contractId" jsonschema:"required" jsonschema_description:"ERC-20 contract as 0.0.x or 0x address"`
	RecipientAddress string            `json:"recipientAddress" jsonschema:"required" jsonschema_description:"Recipient as 0.0.x account ID or 0x EVM address"`
	Amount           json.Number       `json:"amount" jsonschema:"required" jsonschema_description:"Amount in base units"`
	SchedulingParams *SchedulingParams `json:"schedulingParams,omitempty" jsonschema_description:"Optional scheduling parameters"`
}

// TransferERC20Normalised is ready for a transfer(address,uint256) call.
type TransferERC20Normalised struct {
	ContractID hedera.ContractID
	Recipient  common.Address
	Amount     *big.Int
	Gas        uint64
	Schedule   *Schedule
}

var (
	CreateERC20Schema   = schema.MustFor[CreateERC20Params]()
	TransferERC20Schema = schema.MustFor[TransferERC20Params]()
)
