// Package params declares, per operation, the raw input accepted from agents
// and the normalised form handed to the transaction builders.
//
// Raw structs carry the JSON Schema tags; optional fields are pointers so an
// absent field stays absent until a normaliser decides its default.
// Normalised structs use ledger SDK types and are never built by hand outside
// internal/normalise and tests.
package params

import (
	"hedera-agent-kit/pkg/ledger"
)

// SchedulingParams asks for the transaction to be wrapped in a schedule
// create transaction instead of being executed directly.
type SchedulingParams struct {
	IsScheduled    bool    `json:"isScheduled,omitempty" jsonschema_description:"If true, the transaction is created as a scheduled transaction that executes once all required signatures are collected."`
	AdminKey       *string `json:"adminKey,omitempty" jsonschema_description:"Admin key of the schedule: a public key string, or \"true\" to use the default account's key."`
	PayerAccountID *string `json:"payerAccountId,omitempty" jsonschema_description:"Account that pays for the scheduled transaction when it executes. Defaults to the account that signs the schedule."`
	ExpirationTime *string `json:"expirationTime,omitempty" jsonschema_description:"RFC 3339 time after which the schedule expires."`
	WaitForExpiry  *bool   `json:"waitForExpiry,omitempty" jsonschema_description:"If true, the scheduled transaction executes at expiration time instead of as soon as it is fully signed."`
}

// Scheduled reports whether p requests scheduling.
func (p *SchedulingParams) Scheduled() bool {
	return p != nil && p.IsScheduled
}

// Schedule is the normalised scheduling request. A nil *Schedule means the
// transaction is executed as built.
type Schedule = ledger.ScheduleOptions
