package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

var (
	ErrNATSURLRequired     = errors.New("messaging: nats url is required")
	ErrNATSSubjectRequired = errors.New("messaging: nats subject is required")
)

const natsDefaultPending = 256

// NATSConfig configures the NATS driver.
type NATSConfig struct {
	URL  string
	Name string
	// Options are appended after the defaults derived from Name.
	Options []nats.Option
}

// NATS is a Messaging backed by core NATS. Delivery is at-most-once, so Ack
// and Nack only mark the message as handled.
type NATS struct {
	conn *nats.Conn

	mu     sync.Mutex
	closed bool
}

// NewNATS connects to the configured server.
func NewNATS(cfg NATSConfig) (*NATS, error) {
	if cfg.URL == "" {
		return nil, ErrNATSURLRequired
	}

	opts := []nats.Option{nats.MaxReconnects(-1)}
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	opts = append(opts, cfg.Options...)

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("messaging: nats connect: %w", err)
	}
	return &NATS{conn: conn}, nil
}

// Close drains the connection so in-flight callbacks can finish.
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true
	return n.conn.Drain()
}

func (n *NATS) ensureOpen() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return io.ErrClosedPipe
	}
	return nil
}

// Publish sends msg to the destination subject and flushes the connection.
func (n *NATS) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if destination == "" {
		return PublishResult{}, ErrNATSSubjectRequired
	}
	if err := n.ensureOpen(); err != nil {
		return PublishResult{}, err
	}

	nm := nats.NewMsg(destination)
	nm.Data = msg.Body
	for _, h := range msg.Headers {
		if h.Key != "" {
			nm.Header.Add(h.Key, string(h.Value))
		}
	}

	if err := n.conn.PublishMsg(nm); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats publish to %s: %w", destination, err)
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: nats flush: %w", err)
	}

	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Consume subscribes to source, in the queue group when one is set, and runs
// handler on concurrency workers until ctx is done.
func (n *NATS) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	co := newConsumeOptions(opts...)
	switch {
	case source == "":
		return ErrNATSSubjectRequired
	case handler == nil:
		return ErrHandlerRequired
	}
	if err := n.ensureOpen(); err != nil {
		return err
	}

	pending := co.maxInFlight
	if pending <= 0 {
		pending = natsDefaultPending
	}
	inbox := make(chan *nats.Msg, pending)

	sub, err := n.conn.ChanQueueSubscribe(source, co.queueGroup, inbox)
	if err != nil {
		return fmt.Errorf("messaging: nats subscribe %s: %w", source, err)
	}

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case m := <-inbox:
					_ = dispatch(ctx, DriverNATS, handler, &natsMessage{msg: m, received: time.Now()}, co.autoAck)
				}
			}
		})
	}

	<-ctx.Done()
	unsubErr := sub.Unsubscribe()
	wg.Wait()

	if errors.Is(unsubErr, nats.ErrConnectionClosed) || errors.Is(unsubErr, nats.ErrConnectionDraining) {
		unsubErr = nil
	}
	return errors.Join(ctx.Err(), unsubErr)
}

type natsMessage struct {
	msg      *nats.Msg
	received time.Time
}

func (m *natsMessage) Body() []byte { return m.msg.Data }
func (m *natsMessage) Key() []byte  { return nil }

func (m *natsMessage) Headers() []Header {
	var out []Header
	for k, vs := range m.msg.Header {
		for _, v := range vs {
			out = append(out, Header{Key: k, Value: []byte(v)})
		}
	}
	return out
}

// ID returns the Nats-Msg-Id header when the publisher set one.
func (m *natsMessage) ID() string {
	if m.msg.Header == nil {
		return ""
	}
	return m.msg.Header.Get(nats.MsgIdHdr)
}

func (m *natsMessage) Topic() string              { return m.msg.Subject }
func (m *natsMessage) Timestamp() time.Time       { return m.received }
func (m *natsMessage) Ack(context.Context) error  { return nil }
func (m *natsMessage) Nack(context.Context) error { return nil }
