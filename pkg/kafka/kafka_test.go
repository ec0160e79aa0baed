package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type handlerFunc struct {
	topic string
	fn    func(context.Context, []byte) error
}

func (h handlerFunc) Topic() string                              { return h.topic }
func (h handlerFunc) Handle(ctx context.Context, b []byte) error { return h.fn(ctx, b) }

func TestProducerPublishBatchEncodesValues(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, "gzip")

	err := p.PublishBatch(context.Background(), "draws", []Message{
		{Key: []byte("2024-01-02"), Value: map[string]int{"n": 1}, Headers: map[string]string{TraceHeader: "abc"}},
		{Key: []byte("2024-01-05"), Value: "raw"},
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	assert.Equal(t, "draws", w.msgs[0].Topic)
	assert.JSONEq(t, `{"n":1}`, string(w.msgs[0].Value))
	assert.Equal(t, "abc", ExtractTraceID(w.msgs[0]))
	assert.Equal(t, "raw", string(w.msgs[1].Value))
	assert.Empty(t, w.msgs[1].Headers)
}

func TestProducerWrapsWriteError(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{err: errors.New("broker down")}, "gzip")

	err := p.Publish(context.Background(), "draws", nil, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "draws")
}

func TestProducerEmptyBatchIsNoop(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, NewProducerWithWriter(w, "gzip").PublishBatch(context.Background(), "draws", nil))
	assert.Empty(t, w.msgs)
}

func newTestConsumer(t *testing.T, h MessageHandler) *Consumer {
	t.Helper()
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(2, time.Millisecond, time.Millisecond),
	)
	require.NoError(t, err)
	c.RegisterHandler(h)
	return c
}

func TestConsumerProcessRetriesUntilSuccess(t *testing.T) {
	calls := 0
	c := newTestConsumer(t, handlerFunc{topic: "draws", fn: func(context.Context, []byte) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}})

	ok := c.process(&message{topic: "draws", km: kafka.Message{Value: []byte("{}")}})
	assert.True(t, ok)
	assert.Equal(t, 3, calls)
}

func TestConsumerProcessSendsToDLQ(t *testing.T) {
	c := newTestConsumer(t, handlerFunc{topic: "draws", fn: func(context.Context, []byte) error {
		return errors.New("poison")
	}})
	dlq := &fakeWriter{}
	c.dlq = dlq
	c.cfg.DLQTopic = "draws.dlq"

	ok := c.process(&message{topic: "draws", km: kafka.Message{Value: []byte("bad")}})
	assert.True(t, ok)
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, "draws.dlq", dlq.msgs[0].Topic)
	assert.Equal(t, "bad", string(dlq.msgs[0].Value))
}

func TestConsumerProcessWithoutDLQKeepsOffset(t *testing.T) {
	c := newTestConsumer(t, handlerFunc{topic: "draws", fn: func(context.Context, []byte) error {
		return errors.New("poison")
	}})

	assert.False(t, c.process(&message{topic: "draws", km: kafka.Message{Value: []byte("bad")}}))
}

func TestConsumerProcessRecoversPanic(t *testing.T) {
	c := newTestConsumer(t, handlerFunc{topic: "draws", fn: func(context.Context, []byte) error {
		panic("boom")
	}})
	dlq := &fakeWriter{}
	c.dlq = dlq
	c.cfg.DLQTopic = "draws.dlq"

	assert.True(t, c.process(&message{topic: "draws", km: kafka.Message{Value: []byte("x")}}))
	assert.Len(t, dlq.msgs, 1)
}

func TestTraceHookPropagatesHeader(t *testing.T) {
	var seen string
	c := newTestConsumer(t, handlerFunc{topic: "draws", fn: func(ctx context.Context, _ []byte) error {
		seen = TraceIDFromContext(ctx)
		return nil
	}})
	c.WithConsumerHook(NewHookChain(TraceHook(), nil))

	km := kafka.Message{Value: []byte("{}"), Headers: []kafka.Header{{Key: TraceHeader, Value: []byte("t-1")}}}
	require.True(t, c.process(&message{topic: "draws", km: km}))
	assert.Equal(t, "t-1", seen)
}

func TestHookChainOrderAndPanicSafety(t *testing.T) {
	var order []string
	rec := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, d []byte) (context.Context, kafka.Message, []byte, error) {
				order = append(order, "before:"+name)
				return ctx, km, d, nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				order = append(order, "after:"+name)
			},
		}
	}
	chain := NewHookChain(rec("a"), rec("b"), HookFuncs{
		After: func(context.Context, string, kafka.Message, []byte, error) { panic("ignored") },
	})

	_, _, _, err := chain.BeforeHandle(context.Background(), "draws", kafka.Message{}, nil)
	require.NoError(t, err)
	chain.AfterHandle(context.Background(), "draws", kafka.Message{}, nil, nil)

	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, order)
}

func TestHookChainBeforePanicBecomesError(t *testing.T) {
	chain := NewHookChain(HookFuncs{
		Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("bad hook")
		},
	})

	_, _, _, err := chain.BeforeHandle(context.Background(), "draws", kafka.Message{}, nil)
	var herr *HookError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "ERR_PANIC", herr.Code)
}

func TestBackoffWithJitterBounds(t *testing.T) {
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(10*time.Millisecond, 80*time.Millisecond, attempt)
		assert.GreaterOrEqual(t, d, 5*time.Millisecond)
		assert.LessOrEqual(t, d, 80*time.Millisecond)
	}
}
