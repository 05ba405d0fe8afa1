package builder

import (
	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/pkg/ledger"
)

// CreateTopic builds a topic create transaction.
func CreateTopic(p params.CreateTopicNormalised) *ledger.Transaction {
	tx := hedera.NewTopicCreateTransaction()
	if p.TopicMemo != "" {
		tx.SetTopicMemo(p.TopicMemo)
	}
	if p.TransactionMemo != "" {
		tx.SetTransactionMemo(p.TransactionMemo)
	}
	if p.AdminKey != nil {
		tx.SetAdminKey(*p.AdminKey)
	}
	if p.SubmitKey != nil {
		tx.SetSubmitKey(*p.SubmitKey)
	}
	return ledger.Wrap("topic_create", tx)
}

// SubmitTopicMessage builds a topic message submission.
func SubmitTopicMessage(p params.SubmitTopicMessageNormalised) *ledger.Transaction {
	tx := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(p.TopicID).
		SetMessage(p.Message)
	if p.TransactionMemo != "" {
		tx.SetTransactionMemo(p.TransactionMemo)
	}
	return ledger.Wrap("topic_message_submit", tx)
}

// DeleteTopic builds a topic delete transaction.
func DeleteTopic(p params.DeleteTopicNormalised) *ledger.Transaction {
	return ledger.Wrap("topic_delete", hedera.NewTopicDeleteTransaction().SetTopicID(p.TopicID))
}
