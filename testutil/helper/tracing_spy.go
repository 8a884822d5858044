package helper

import (
	"context"
	"sync"

	"github.com/shelfwise/circulation-go/circulation"
)

// SpanSpy is the span handle the TracingSpy hands out.
type SpanSpy struct {
	mu         sync.Mutex
	status     string
	attributes map[string]string
}

func (s *SpanSpy) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
}

func (s *SpanSpy) AddAttribute(key string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attributes == nil {
		s.attributes = make(map[string]string)
	}
	s.attributes[key] = value
}

// SpanRecord is one captured span with its lifecycle attributes.
type SpanRecord struct {
	Name            string
	StartAttributes map[string]string
	Status          string
	EndAttributes   map[string]string
	span            *SpanSpy
}

// TracingSpy captures span lifecycles for assertions.
type TracingSpy struct {
	mu      sync.Mutex
	records []SpanRecord
}

func NewTracingSpy() *TracingSpy {
	return &TracingSpy{}
}

// StartSpan implements circulation.TracingCollector.
func (t *TracingSpy) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, circulation.SpanContext) {
	t.mu.Lock()
	defer t.mu.Unlock()

	span := &SpanSpy{}
	t.records = append(t.records, SpanRecord{
		Name:            name,
		StartAttributes: copyAttributes(attrs),
		span:            span,
	})

	return ctx, span
}

// FinishSpan implements circulation.TracingCollector.
func (t *TracingSpy) FinishSpan(spanCtx circulation.SpanContext, status string, attrs map[string]string) {
	span, ok := spanCtx.(*SpanSpy)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.records {
		if t.records[i].span == span {
			t.records[i].Status = status
			t.records[i].EndAttributes = copyAttributes(attrs)
			break
		}
	}
}

// SpanRecords returns a copy of all captured spans in start order.
func (t *TracingSpy) SpanRecords() []SpanRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]SpanRecord(nil), t.records...)
}

// FindSpan returns the first captured span with the given name.
func (t *TracingSpy) FindSpan(name string) (SpanRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, record := range t.records {
		if record.Name == name {
			return record, true
		}
	}

	return SpanRecord{}, false
}

func copyAttributes(attrs map[string]string) map[string]string {
	copied := make(map[string]string, len(attrs))
	for key, value := range attrs {
		copied[key] = value
	}

	return copied
}

var _ circulation.TracingCollector = (*TracingSpy)(nil)
