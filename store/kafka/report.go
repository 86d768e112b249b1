package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kochabx/webpush/core/push"
	"github.com/kochabx/webpush/core/util/desensitize"
)

const (
	headerStatus     = "status"
	headerRetryAfter = "retry-after"
)

// Publisher 将推送报告写入 Kafka 主题, 实现 push.ReportSink
type Publisher struct {
	writer *kafka.Writer
	client *Client
}

// NewPublisher 创建报告发布者, topic 为空时使用配置中的主题
func NewPublisher(client *Client, topic string) (*Publisher, error) {
	if topic == "" {
		topic = client.config.Topic
	}
	w, err := client.Producer(topic)
	if err != nil {
		return nil, err
	}
	return &Publisher{writer: w, client: client}, nil
}

// Consume 批量写入一轮投递的报告, 以端点为消息 key
func (p *Publisher) Consume(ctx context.Context, reports []*push.Report) error {
	msgs, err := reportMessages(reports)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.client.logger.Error().Err(err).Int("reports", len(msgs)).Msg("publish push reports")
		return err
	}
	return nil
}

func reportMessages(reports []*push.Report) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(reports))
	for _, r := range reports {
		if r == nil {
			continue
		}
		value, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		msg := kafka.Message{
			Key:   []byte(r.Endpoint),
			Value: value,
			Headers: []kafka.Header{
				{Key: headerStatus, Value: []byte(strconv.Itoa(r.StatusCode))},
			},
		}
		if r.RetryAfter > 0 {
			msg.Headers = append(msg.Headers, kafka.Header{
				Key:   headerRetryAfter,
				Value: []byte(strconv.FormatInt(r.RetryAfter.Milliseconds(), 10)),
			})
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// ReportEvent 从主题读回的报告
type ReportEvent struct {
	Success    bool          `json:"success"`
	Expired    bool          `json:"expired"`
	Reason     string        `json:"reason"`
	Endpoint   string        `json:"endpoint"`
	Payload    []byte        `json:"payload"`
	StatusCode int           `json:"-"`
	RetryAfter time.Duration `json:"-"`
	Time       time.Time     `json:"-"`
}

// DecodeReport 解析一条报告消息
func DecodeReport(msg kafka.Message) (*ReportEvent, error) {
	ev := &ReportEvent{Time: msg.Time}
	if err := json.Unmarshal(msg.Value, ev); err != nil {
		return nil, err
	}
	for _, h := range msg.Headers {
		switch h.Key {
		case headerStatus:
			ev.StatusCode, _ = strconv.Atoi(string(h.Value))
		case headerRetryAfter:
			ms, _ := strconv.ParseInt(string(h.Value), 10, 64)
			ev.RetryAfter = time.Duration(ms) * time.Millisecond
		}
	}
	return ev, nil
}

// ReportHandler 处理一条报告, 返回错误时消息不提交
type ReportHandler func(ctx context.Context, ev *ReportEvent) error

// Subscribe 以消费者组读取报告主题, 直到 ctx 结束
func (c *Client) Subscribe(ctx context.Context, handler ReportHandler) error {
	r, err := c.ConsumerGroup(c.config.Topic, c.config.GroupID)
	if err != nil {
		return err
	}

	for {
		msg, err := r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		ev, err := DecodeReport(msg)
		if err != nil {
			// 无法解析的消息直接跳过
			c.logger.Warn().Err(err).Int64("offset", msg.Offset).Msg("skip malformed push report")
		} else if err := handler(ctx, ev); err != nil {
			c.logger.Error().Err(err).Str("endpoint", desensitize.Endpoint(ev.Endpoint, 6)).Msg("handle push report")
			return err
		}

		if err := r.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}
