package evm

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

// Gas limits used for the factory deployment and token transfers.
const (
	DeployTokenGas uint64 = 3_000_000
	TransferGas    uint64 = 100_000
)

const factoryABI = `[
  {"type":"function","name":"deployToken","stateMutability":"nonpayable",
   "inputs":[{"name":"name_","type":"string"},{"name":"symbol_","type":"string"},{"name":"decimals_","type":"uint8"},{"name":"initialSupply","type":"uint256"}],
   "outputs":[{"name":"","type":"address"}]}
]`

const erc20ABI = `[
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],
   "outputs":[{"name":"","type":"uint256"}]}
]`

var (
	factory = mustParse(factoryABI)
	erc20   = mustParse(erc20ABI)
)

func mustParse(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(fmt.Sprintf("parse ABI: %v", err))
	}
	return parsed
}

// DeployTokenCall packs deployToken(string,string,uint8,uint256).
func DeployTokenCall(name, symbol string, decimals uint8, initialSupply *big.Int) ([]byte, error) {
	if initialSupply == nil {
		initialSupply = new(big.Int)
	}
	if initialSupply.Sign() < 0 {
		return nil, errors.New("initial supply must not be negative")
	}
	data, err := factory.Pack("deployToken", name, symbol, decimals, initialSupply)
	if err != nil {
		return nil, fmt.Errorf("pack deployToken: %w", err)
	}
	return data, nil
}

// TransferCall packs transfer(address,uint256).
func TransferCall(to common.Address, amount *big.Int) ([]byte, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, errors.New("transfer amount must be positive")
	}
	data, err := erc20.Pack("transfer", to, amount)
	if err != nil {
		return nil, fmt.Errorf("pack transfer: %w", err)
	}
	return data, nil
}

// BalanceOfCall packs balanceOf(address).
func BalanceOfCall(account common.Address) ([]byte, error) {
	return erc20.Pack("balanceOf", account)
}

// IsAddress reports whether s is a 0x-prefixed 20 byte hex address.
func IsAddress(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(strings.ToLower(s), "0x") && common.IsHexAddress(s)
}

// LongZeroAddress is the EVM address Hedera derives from an account number
// when the account has no alias.
func LongZeroAddress(id hedera.AccountID) common.Address {
	return common.HexToAddress(id.ToSolidityAddress())
}

// ContractID parses a contract given as 0.0.x or as an EVM address.
func ContractID(s string) (hedera.ContractID, error) {
	s = strings.TrimSpace(s)
	if IsAddress(s) {
		return hedera.ContractIDFromEvmAddress(0, 0, strings.TrimPrefix(strings.ToLower(s), "0x"))
	}
	return hedera.ContractIDFromString(s)
}

// HexData renders call data for logs.
func HexData(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}
