package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"golang.org/x/sync/errgroup"
)

var (
	ErrKafkaBrokersRequired = errors.New("messaging: kafka brokers are required")
	ErrKafkaTopicRequired   = errors.New("messaging: kafka topic is required")
	ErrKafkaGroupRequired   = errors.New("messaging: kafka consumer group is required")
	ErrHandlerRequired      = errors.New("messaging: handler is required")
)

const kafkaMaxBytes = 10e6

// KafkaConfig configures the Kafka driver.
type KafkaConfig struct {
	Brokers  []string
	ClientID string
	// Dialer overrides the default broker dialer, e.g. for TLS or SASL.
	Dialer *kafka.Dialer
	// BatchTimeout bounds how long the writer waits to fill a batch.
	BatchTimeout time.Duration
}

// Kafka is a Messaging backed by segmentio/kafka-go. Writers are created per
// topic on first publish; each Consume call owns one group reader.
type Kafka struct {
	cfg KafkaConfig

	mu      sync.Mutex
	writers map[string]*kafka.Writer
	readers map[*kafka.Reader]struct{}
	closed  bool
}

// NewKafka validates cfg and returns a Kafka driver. No connection is made
// until the first Publish or Consume.
func NewKafka(cfg KafkaConfig) (*Kafka, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrKafkaBrokersRequired
	}
	if cfg.Dialer == nil && cfg.ClientID != "" {
		cfg.Dialer = &kafka.Dialer{ClientID: cfg.ClientID, Timeout: 10 * time.Second, DualStack: true}
	}
	cfg.Brokers = append([]string(nil), cfg.Brokers...)

	return &Kafka{
		cfg:     cfg,
		writers: make(map[string]*kafka.Writer),
		readers: make(map[*kafka.Reader]struct{}),
	}, nil
}

// Close closes every reader and writer. It is safe to call more than once.
func (k *Kafka) Close() error {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil
	}
	k.closed = true
	writers, readers := k.writers, k.readers
	k.writers, k.readers = nil, nil
	k.mu.Unlock()

	var err error
	for r := range readers {
		err = errors.Join(err, r.Close())
	}
	for _, w := range writers {
		err = errors.Join(err, w.Close())
	}
	return err
}

// Publish writes msg to the destination topic.
func (k *Kafka) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if destination == "" {
		return PublishResult{}, ErrKafkaTopicRequired
	}
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}

	w, err := k.writer(destination)
	if err != nil {
		return PublishResult{}, err
	}

	km := kafka.Message{Key: msg.Key, Value: msg.Body, Time: time.Now()}
	for _, h := range msg.Headers {
		if h.Key != "" {
			km.Headers = append(km.Headers, kafka.Header{Key: h.Key, Value: h.Value})
		}
	}

	if err := w.WriteMessages(ctx, km); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: kafka publish to %s: %w", destination, err)
	}

	return PublishResult{Topic: destination, Timestamp: km.Time}, nil
}

// Consume reads source as a member of the configured consumer group until ctx
// is done. Offsets are committed on Ack; a Nack leaves the offset uncommitted
// so the message is redelivered after a rebalance or restart.
func (k *Kafka) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	co := newConsumeOptions(opts...)
	switch {
	case source == "":
		return ErrKafkaTopicRequired
	case handler == nil:
		return ErrHandlerRequired
	case co.group == "":
		return ErrKafkaGroupRequired
	}

	reader, err := k.reader(source, co.group)
	if err != nil {
		return err
	}
	defer k.releaseReader(reader)

	g, gctx := errgroup.WithContext(ctx)
	queue := make(chan kafka.Message, max(co.maxInFlight, 0))

	g.Go(func() error {
		defer close(queue)
		for {
			m, err := reader.FetchMessage(gctx)
			if err != nil {
				return err
			}
			select {
			case queue <- m:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for range co.concurrency {
		g.Go(func() error {
			for m := range queue {
				// handler errors are reported through Nack, not by stopping the group
				_ = dispatch(gctx, DriverKafka, handler, &kafkaMessage{reader: reader, msg: m}, co.autoAck)
			}
			return nil
		})
	}

	err = g.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("messaging: kafka consume %s: %w", source, err)
}

func (k *Kafka) writer(topic string) (*kafka.Writer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, io.ErrClosedPipe
	}
	if w, ok := k.writers[topic]; ok {
		return w, nil
	}

	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      k.cfg.Brokers,
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Dialer:       k.cfg.Dialer,
		BatchTimeout: k.cfg.BatchTimeout,
	})
	k.writers[topic] = w
	return w, nil
}

func (k *Kafka) reader(topic, group string) (*kafka.Reader, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.closed {
		return nil, io.ErrClosedPipe
	}

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  k.cfg.Brokers,
		GroupID:  group,
		Topic:    topic,
		Dialer:   k.cfg.Dialer,
		MaxBytes: kafkaMaxBytes,
	})
	k.readers[r] = struct{}{}
	return r, nil
}

func (k *Kafka) releaseReader(r *kafka.Reader) {
	k.mu.Lock()
	_, owned := k.readers[r]
	delete(k.readers, r)
	k.mu.Unlock()

	// Close already shut it down otherwise.
	if owned {
		_ = r.Close()
	}
}

type kafkaMessage struct {
	reader *kafka.Reader
	msg    kafka.Message
	once   sync.Once
}

func (m *kafkaMessage) Body() []byte { return m.msg.Value }
func (m *kafkaMessage) Key() []byte  { return m.msg.Key }

func (m *kafkaMessage) Headers() []Header {
	out := make([]Header, 0, len(m.msg.Headers))
	for _, h := range m.msg.Headers {
		out = append(out, Header{Key: h.Key, Value: h.Value})
	}
	return out
}

func (m *kafkaMessage) ID() string {
	return m.msg.Topic + "/" + strconv.Itoa(m.msg.Partition) + "/" + strconv.FormatInt(m.msg.Offset, 10)
}

func (m *kafkaMessage) Topic() string        { return m.msg.Topic }
func (m *kafkaMessage) Timestamp() time.Time { return m.msg.Time }

func (m *kafkaMessage) Ack(ctx context.Context) error {
	var err error
	m.once.Do(func() { err = m.reader.CommitMessages(ctx, m.msg) })
	return err
}

// Nack is a no-op; the uncommitted offset is redelivered.
func (m *kafkaMessage) Nack(context.Context) error {
	m.once.Do(func() {})
	return nil
}
