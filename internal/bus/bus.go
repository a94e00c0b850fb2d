package bus

import (
	"context"
	"sync"
)

// MessageBus routes inbound/outbound channel messages and broadcasts
// server-side events to subscribers (WebSocket clients, the CLI chat
// client). It implements both MessageRouter and EventPublisher.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage

	mu       sync.RWMutex
	handlers map[string]EventHandler
}

// NewMessageBus creates a bus with the given inbound/outbound channel
// buffer sizes.
func NewMessageBus(bufferSize int) *MessageBus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &MessageBus{
		inbound:  make(chan InboundMessage, bufferSize),
		outbound: make(chan OutboundMessage, bufferSize),
		handlers: make(map[string]EventHandler),
	}
}

// PublishInbound enqueues a message received from a channel adapter.
// Never blocks: if the buffer is full the message is dropped silently and
// the caller is not told, so the channel adapter's receive loop never stalls.
func (b *MessageBus) PublishInbound(msg InboundMessage) {
	select {
	case b.inbound <- msg:
	default:
	}
}

// ConsumeInbound blocks until a message is available or ctx is cancelled.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case msg := <-b.inbound:
		return msg, true
	case <-ctx.Done():
		return InboundMessage{}, false
	}
}

// PublishOutbound enqueues a message to be delivered to a channel adapter.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) {
	select {
	case b.outbound <- msg:
	default:
	}
}

// SubscribeOutbound blocks until an outbound message is available or ctx is
// cancelled.
func (b *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg := <-b.outbound:
		return msg, true
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

// Subscribe registers a handler for broadcast events under id (e.g. a
// WebSocket connection ID). Replaces any existing handler for the same id.
func (b *MessageBus) Subscribe(id string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[id] = handler
}

// Unsubscribe removes the handler registered under id.
func (b *MessageBus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
}

// Broadcast fans event out to every subscribed handler.
func (b *MessageBus) Broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		h(event)
	}
}
