package normalise

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"

	kiterrors "hedera-agent-kit/internal/errors"
	"hedera-agent-kit/internal/params"
	"hedera-agent-kit/internal/resolver"
	"hedera-agent-kit/pkg/ledger"
	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/mirror"
	"hedera-agent-kit/pkg/tool"
)

// DefaultTopicMessagesLimit is also the largest accepted limit.
const DefaultTopicMessagesLimit = 100

// CreateTopic attaches the default account's key as submit key when asked.
// The same key becomes the admin key when it can be resolved, so the topic
// can later be deleted.
func CreateTopic(ctx context.Context, p params.CreateTopicParams, client ledger.Client, hctx tool.Context) (params.CreateTopicNormalised, error) {
	out := params.CreateTopicNormalised{
		TopicMemo:       deref(p.TopicMemo, ""),
		TransactionMemo: deref(p.TransactionMemo, ""),
	}
	key, err := resolver.DefaultPublicKey(ctx, client, hctx)
	if deref(p.IsSubmitKey, false) {
		if err != nil {
			return out, err
		}
		out.SubmitKey = &key
	}
	if err != nil {
		// Only a key that cannot be resolved at all leaves the topic without an
		// admin key; mirror and configuration failures surface.
		if kiterrors.CodeOf(err) != kiterrors.CodeResolution {
			return out, err
		}
		logger.Named("normalise").Debug("topic created without admin key", slog.String("reason", err.Error()))
		return out, nil
	}
	out.AdminKey = &key
	return out, nil
}

// SubmitTopicMessage parses the topic id.
func SubmitTopicMessage(_ context.Context, p params.SubmitTopicMessageParams) (params.SubmitTopicMessageNormalised, error) {
	topic, err := parseTopic(p.TopicID)
	if err != nil {
		return params.SubmitTopicMessageNormalised{}, err
	}
	if p.Message == "" {
		return params.SubmitTopicMessageNormalised{}, invalid("message must not be empty")
	}
	return params.SubmitTopicMessageNormalised{
		TopicID:         topic,
		Message:         []byte(p.Message),
		TransactionMemo: deref(p.TransactionMemo, ""),
	}, nil
}

// DeleteTopic parses the topic id.
func DeleteTopic(_ context.Context, p params.DeleteTopicParams) (params.DeleteTopicNormalised, error) {
	topic, err := parseTopic(p.TopicID)
	return params.DeleteTopicNormalised{TopicID: topic}, err
}

// TopicMessages builds the mirror query: RFC 3339 bounds become mirror
// timestamps and the limit is clamped to DefaultTopicMessagesLimit.
func TopicMessages(_ context.Context, p params.TopicMessagesParams) (mirror.TopicMessagesQuery, error) {
	topic, err := parseTopic(p.TopicID)
	if err != nil {
		return mirror.TopicMessagesQuery{}, err
	}
	q := mirror.TopicMessagesQuery{TopicID: topic.String(), Limit: DefaultTopicMessagesLimit}
	if p.Limit != nil {
		if *p.Limit < 1 {
			return q, invalid("limit must be positive, got %d", *p.Limit)
		}
		q.Limit = min(*p.Limit, DefaultTopicMessagesLimit)
	}
	var start, end time.Time
	if p.StartTime != nil && strings.TrimSpace(*p.StartTime) != "" {
		if start, err = time.Parse(time.RFC3339Nano, strings.TrimSpace(*p.StartTime)); err != nil {
			return q, invalidWrap(err, "invalid startTime")
		}
		q.LowerTimestamp = MirrorTimestamp(start)
	}
	if p.EndTime != nil && strings.TrimSpace(*p.EndTime) != "" {
		if end, err = time.Parse(time.RFC3339Nano, strings.TrimSpace(*p.EndTime)); err != nil {
			return q, invalidWrap(err, "invalid endTime")
		}
		q.UpperTimestamp = MirrorTimestamp(end)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return q, invalid("endTime must not be before startTime")
	}
	return q, nil
}

// MirrorTimestamp renders t as "seconds.nanoseconds".
func MirrorTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%09d", t.Unix(), t.Nanosecond())
}

func parseTopic(s string) (hedera.TopicID, error) {
	topic, err := hedera.TopicIDFromString(strings.TrimSpace(s))
	if err != nil {
		return hedera.TopicID{}, invalidWrap(err, "invalid topic id "+s)
	}
	return topic, nil
}

func parseToken(s string) (hedera.TokenID, error) {
	token, err := hedera.TokenIDFromString(strings.TrimSpace(s))
	if err != nil {
		return hedera.TokenID{}, invalidWrap(err, "invalid token id "+s)
	}
	return token, nil
}
