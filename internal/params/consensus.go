package params

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/pkg/schema"
)

// CreateTopicParams is the raw input of create_topic_tool.
type CreateTopicParams struct {
	TopicMemo       *string `json:"topicMemo,omitempty" jsonschema_description:"Memo of the topic"`
	TransactionMemo *string `json:"transactionMemo,omitempty" jsonschema_description:"Memo to include with the transaction"`
	IsSubmitKey     *bool   `json:"isSubmitKey,omitempty" jsonschema_description:"If true, only the default account's key may submit messages. Defaults to false."`
}

// CreateTopicNormalised is ready for NewTopicCreateTransaction.
type CreateTopicNormalised struct {
	TopicMemo       string
	TransactionMemo string
	AdminKey        *hedera.PublicKey
	SubmitKey       *hedera.PublicKey
}

// SubmitTopicMessageParams is the raw input of submit_topic_message_tool.
type SubmitTopicMessageParams struct {
	TopicID         string  `json:"topicId" jsonschema:"required" jsonschema_description:"Topic to submit the message to"`
	Message         string  `json:"message" jsonschema:"required,minLength=1" jsonschema_description:"Message text"`
	TransactionMemo *string `json:"transactionMemo,omitempty" jsonschema_description:"Memo to include with the transaction"`
}

// SubmitTopicMessageNormalised is ready for NewTopicMessageSubmitTransaction.
type SubmitTopicMessageNormalised struct {
	TopicID         hedera.TopicID
	Message         []byte
	TransactionMemo string
}

// DeleteTopicParams is the raw input of delete_topic_tool.
type DeleteTopicParams struct {
	TopicID string `json:"topicId" jsonschema:"required" jsonschema_description:"Topic to delete"`
}

// DeleteTopicNormalised is ready for NewTopicDeleteTransaction.
type DeleteTopicNormalised struct {
	TopicID hedera.TopicID
}

// TopicMessagesParams is the raw input of get_topic_messages_query.
type TopicMessagesParams struct {
	TopicID   string  `json:"topicId" jsonschema:"required" jsonschema_description:"Topic to read"`
	StartTime *string `json:"startTime,omitempty" jsonschema:"format=date-time" jsonschema_description:"RFC 3339 lower bound of the consensus timestamp"`
	EndTime   *string `json:"endTime,omitempty" jsonschema:"format=date-time" jsonschema_description:"RFC 3339 upper bound of the consensus timestamp"`
	Limit     *int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=100" jsonschema_description:"Maximum number of messages to return. Defaults to 100."`
}

var (
	CreateTopicSchema        = schema.MustFor[CreateTopicParams]()
	SubmitTopicMessageSchema = schema.MustFor[SubmitTopicMessageParams]()
	DeleteTopicSchema        = schema.MustFor[DeleteTopicParams]()
	TopicMessagesSchema      = schema.MustFor[TopicMessagesParams]()
)
