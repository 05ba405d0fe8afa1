// Package consensus provides the core consensus service plugins: topic
// lifecycle, message submission and message lookups.
package consensus

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"hedera-agent-kit/internal/builder"
	"hedera-agent-kit/internal/normalise"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/plugins/pluginkit"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/tool"
)

const (
	PluginName      = "core-consensus-plugin"
	QueryPluginName = "core-consensus-query-plugin"

	CreateTopicTool        = "create_topic_tool"
	SubmitTopicMessageTool = "submit_topic_message_tool"
	DeleteTopicTool        = "delete_topic_tool"
	GetTopicMessagesQuery  = "get_topic_messages_query"
)

// Plugin returns the consensus transaction plugin.
func Plugin() plugin.Definition {
	return plugin.New(plugin.Info{
		Name:         PluginName,
		Version:      "1.0.0",
		Description:  "Topic creation, message submission and topic deletion",
		Capabilities: []plugin.Capability{plugin.CapabilityLedgerWrite, plugin.CapabilityMirrorRead},
	}, CreateTopic, SubmitTopicMessage, DeleteTopic)
}

// QueryPlugin returns the consensus query plugin.
func QueryPlugin() plugin.Definition {
	return plugin.New(plugin.Info{
		Name:         QueryPluginName,
		Version:      "1.0.0",
		Description:  "Topic message lookups",
		Capabilities: []plugin.Capability{plugin.CapabilityMirrorRead},
	}, GetTopicMessages)
}

// CreateTopic builds create_topic_tool.
func CreateTopic(hctx tool.Context) tool.Tool {
	return pluginkit.Transaction[params.CreateTopicParams, params.CreateTopicNormalised]{
		Method: CreateTopicTool,
		Name:   "Create Topic",
		Description: "Creates a new consensus topic. Set isSubmitKey to restrict submissions to the key of the default account. " +
			pluginkit.ActorNote(hctx),
		Schema:    params.CreateTopicSchema,
		Normalise: normalise.CreateTopic,
		Build:     pluginkit.Static(builder.CreateTopic),
		Message: func(_ params.CreateTopicNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Topic created successfully with ID %s. Transaction ID: %s", r.TopicID, r.TransactionID)
		},
	}.Tool()
}

// SubmitTopicMessage builds submit_topic_message_tool.
func SubmitTopicMessage(tool.Context) tool.Tool {
	return pluginkit.Transaction[params.SubmitTopicMessageParams, params.SubmitTopicMessageNormalised]{
		Method:      SubmitTopicMessageTool,
		Name:        "Submit Topic Message",
		Description: "Submits a text message to a consensus topic.",
		Schema:      params.SubmitTopicMessageSchema,
		Normalise: func(ctx context.Context, p params.SubmitTopicMessageParams, _ ledger.Client, _ tool.Context) (params.SubmitTopicMessageNormalised, error) {
			return normalise.SubmitTopicMessage(ctx, p)
		},
		Build: pluginkit.Static(builder.SubmitTopicMessage),
		Message: func(n params.SubmitTopicMessageNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Message submitted to topic %s. Transaction ID: %s", n.TopicID, r.TransactionID)
		},
	}.Tool()
}

// DeleteTopic builds delete_topic_tool.
func DeleteTopic(tool.Context) tool.Tool {
	return pluginkit.Transaction[params.DeleteTopicParams, params.DeleteTopicNormalised]{
		Method:      DeleteTopicTool,
		Name:        "Delete Topic",
		Description: "Deletes a consensus topic. The topic must have an admin key held by the signer.",
		Schema:      params.DeleteTopicSchema,
		Normalise: func(ctx context.Context, p params.DeleteTopicParams, _ ledger.Client, _ tool.Context) (params.DeleteTopicNormalised, error) {
			return normalise.DeleteTopic(ctx, p)
		},
		Build: pluginkit.Static(builder.DeleteTopic),
		Message: func(n params.DeleteTopicNormalised, r ledger.Receipt) string {
			return fmt.Sprintf("Topic %s deleted. Transaction ID: %s", n.TopicID, r.TransactionID)
		},
	}.Tool()
}

// Message is a topic message with its text decoded.
type Message struct {
	ConsensusTimestamp string `json:"consensusTimestamp"`
	SequenceNumber     int64  `json:"sequenceNumber"`
	PayerAccountID     string `json:"payerAccountId,omitempty"`
	Text               string `json:"text"`
}

// Messages is the raw result of get_topic_messages_query.
type Messages struct {
	TopicID  string    `json:"topicId"`
	Messages []Message `json:"messages"`
}

// GetTopicMessages builds get_topic_messages_query.
func GetTopicMessages(tool.Context) tool.Tool {
	return pluginkit.Query[params.TopicMessagesParams, Messages]{
		Method:      GetTopicMessagesQuery,
		Name:        "Get Topic Messages",
		Description: "Returns the most recent messages of a topic, optionally between startTime and endTime (RFC 3339).",
		Schema:      params.TopicMessagesSchema,
		Run: func(ctx context.Context, p params.TopicMessagesParams, m mirror.Service, _ ledger.Client, _ tool.Context) (Messages, string, error) {
			q, err := normalise.TopicMessages(ctx, p)
			if err != nil {
				return Messages{}, "", err
			}
			res, err := m.GetTopicMessages(ctx, q)
			if err != nil {
				return Messages{}, "", pluginkit.MirrorError(err, "messages of topic "+q.TopicID)
			}
			out := Messages{TopicID: q.TopicID, Messages: make([]Message, 0, len(res.Messages))}
			lines := make([]string, 0, len(res.Messages))
			for _, msg := range res.Messages {
				text := decodeMessage(msg.Message)
				out.Messages = append(out.Messages, Message{
					ConsensusTimestamp: msg.ConsensusTimestamp,
					SequenceNumber:     msg.SequenceNumber,
					PayerAccountID:     msg.PayerAccountID,
					Text:               text,
				})
				lines = append(lines, fmt.Sprintf("%d. %s (%s)", msg.SequenceNumber, text, msg.ConsensusTimestamp))
			}
			if len(lines) == 0 {
				return out, fmt.Sprintf("No messages found for topic %s", q.TopicID), nil
			}
			return out, fmt.Sprintf("Messages for topic %s:\n%s", q.TopicID, strings.Join(lines, "\n")), nil
		},
	}.Tool()
}

func decodeMessage(s string) string {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	return string(raw)
}
