package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/davenowercise/nowercise-app-sub004/internal/adaptive"
	"github.com/davenowercise/nowercise-app-sub004/internal/queue"
)

// Processor applies session events to adaptive state.
type Processor interface {
	MarkSessionComplete(ctx context.Context, userID string, completedAt time.Time) (adaptive.State, error)
	RecordSessionFeedback(ctx context.Context, userID string, feedback adaptive.Feedback, at time.Time) (adaptive.State, error)
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrInvalidMessage is a well-formed payload that cannot be applied: no
// user, an unknown type, or feedback outside the vocabulary.
type ErrInvalidMessage struct {
	Meta      MessageMeta
	RequestID string
	Reason    string
}

func (e ErrInvalidMessage) Error() string { return "invalid message: " + e.Reason }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	Type      string
	UserID    string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process " + e.Type
	}
	return "process " + e.Type + ": " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// IsUnrecoverable reports whether redelivering the message can never help.
func IsUnrecoverable(err error) bool {
	var (
		empty   ErrEmptyBody
		decode  ErrDecode
		invalid ErrInvalidMessage
	)
	return errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &invalid)
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.UserID) == "" {
		return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: "missing user id"}
	}
	switch msg.Type {
	case queue.TypeSessionCompleted:
	case queue.TypeSessionFeedback:
		if _, err := adaptive.ParseFeedback(msg.Feedback); err != nil {
			return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: err.Error()}
		}
	default:
		return msg, meta, ErrInvalidMessage{Meta: meta, RequestID: msg.RequestID, Reason: "unknown type " + msg.Type}
	}
	return msg, meta, nil
}

type parsedMessageKey struct{}

// WithParsedMessage stores a decoded message in the context for reuse.
func WithParsedMessage(ctx context.Context, msg queue.Message) context.Context {
	return context.WithValue(ctx, parsedMessageKey{}, msg)
}

func parsedMessageFromContext(ctx context.Context) (queue.Message, bool) {
	if ctx == nil {
		return queue.Message{}, false
	}
	msg, ok := ctx.Value(parsedMessageKey{}).(queue.Message)
	return msg, ok
}

// HandleMessage parses, validates, and applies a message payload. A message
// without an occurrence time is applied at receipt.
func HandleMessage(ctx context.Context, processor Processor, body string) error {
	if processor == nil {
		return errors.New("adaptive service not configured")
	}

	msg, ok := parsedMessageFromContext(ctx)
	if !ok {
		var err error
		msg, _, err = ParseMessage(body)
		if err != nil {
			return err
		}
	}

	at := msg.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	var err error
	switch msg.Type {
	case queue.TypeSessionCompleted:
		_, err = processor.MarkSessionComplete(ctx, msg.UserID, at)
	case queue.TypeSessionFeedback:
		_, err = processor.RecordSessionFeedback(ctx, msg.UserID, adaptive.Feedback(msg.Feedback), at)
	default:
		return ErrInvalidMessage{Meta: ComputeMeta(body), RequestID: msg.RequestID, Reason: "unknown type " + msg.Type}
	}
	if err != nil {
		return ErrProcess{Type: msg.Type, UserID: msg.UserID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}
