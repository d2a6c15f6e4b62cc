// Package events defines the tagged stream events flowing from a chat
// provider to the UI loop. Every value on the queue is an Event with an
// explicit Kind; consumers switch on the tag instead of guessing at the
// payload's shape.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/hearthchat/hearth/pkg/llm"
)

// Kind tags an event's variant.
type Kind string

const (
	// KindStreamStart opens a streamed assistant response.
	KindStreamStart Kind = "stream_start"

	// KindStreamChunk carries one content delta.
	KindStreamChunk Kind = "stream_chunk"

	// KindStreamEnd closes a completed stream.
	KindStreamEnd Kind = "stream_end"

	// KindStreamInterrupted closes a stream the user aborted; any partial
	// content is discarded.
	KindStreamInterrupted Kind = "stream_interrupted"

	// KindSuccess reports a completed non-streaming operation.
	KindSuccess Kind = "success"

	// KindError reports a failed operation.
	KindError Kind = "error"
)

// Event is a single tagged message on the stream queue. Exactly the fields
// implied by Kind are set: Delta for stream_chunk, Response for
// stream_end/success, Err for error.
type Event struct {
	Kind      Kind
	ID        string
	EmittedAt time.Time

	// TurnID ties stream events to the pending assistant turn they build.
	TurnID string

	Delta    string
	Response *llm.ChatResponse
	Err      error
}

func newEvent(kind Kind, turnID string) Event {
	return Event{
		Kind:      kind,
		ID:        uuid.NewString(),
		EmittedAt: time.Now(),
		TurnID:    turnID,
	}
}

// StreamStart builds a stream_start event for the given pending turn.
func StreamStart(turnID string) Event {
	return newEvent(KindStreamStart, turnID)
}

// StreamChunk builds a stream_chunk event carrying one delta.
func StreamChunk(turnID, delta string) Event {
	ev := newEvent(KindStreamChunk, turnID)
	ev.Delta = delta
	return ev
}

// StreamEnd builds a stream_end event with the assembled response.
func StreamEnd(turnID string, response *llm.ChatResponse) Event {
	ev := newEvent(KindStreamEnd, turnID)
	ev.Response = response
	return ev
}

// StreamInterrupted builds a stream_interrupted event.
func StreamInterrupted(turnID string) Event {
	return newEvent(KindStreamInterrupted, turnID)
}

// Success builds a success event for a non-streaming completion.
func Success(response *llm.ChatResponse) Event {
	ev := newEvent(KindSuccess, "")
	ev.Response = response
	return ev
}

// Error builds an error event.
func Error(err error) Event {
	ev := newEvent(KindError, "")
	ev.Err = err
	return ev
}
