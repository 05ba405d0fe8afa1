// Package evm encodes calls to the ERC-20 contracts the EVM tools drive on
// Hedera's smart contract service, and converts between Hedera entity ids
// and EVM addresses.
package evm
