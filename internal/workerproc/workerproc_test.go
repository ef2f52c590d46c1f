package workerproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/davenowercise/nowercise-app-sub004/internal/adaptive"
	"github.com/davenowercise/nowercise-app-sub004/internal/decision"
	"github.com/davenowercise/nowercise-app-sub004/internal/queue"
)

func encode(t *testing.T, msg queue.Message) string {
	t.Helper()
	payload, err := queue.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(payload)
}

func TestParseMessageErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty", "  ", "empty"},
		{"bad json", "{nope", "decode"},
		{"no user", `{"type":"session.completed"}`, "invalid"},
		{"unknown type", `{"type":"session.started","userId":"u"}`, "invalid"},
		{"bad feedback", `{"type":"session.feedback","userId":"u","feedback":"MEH"}`, "invalid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ParseMessage(tc.body)
			if got := errorKind(err); got != tc.want {
				t.Fatalf("got %s error (%v), want %s", got, err, tc.want)
			}
			if !IsUnrecoverable(err) {
				t.Fatalf("expected unrecoverable: %v", err)
			}
		})
	}
}

func errorKind(err error) string {
	switch err.(type) {
	case ErrEmptyBody:
		return "empty"
	case ErrDecode:
		return "decode"
	case ErrInvalidMessage:
		return "invalid"
	case nil:
		return "none"
	default:
		return "other"
	}
}

func TestHandleMessageAppliesEvents(t *testing.T) {
	svc := adaptive.NewService(adaptive.NewMemoryRepo(), decision.DefaultRules())
	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if err := HandleMessage(ctx, svc, encode(t, queue.Message{Type: queue.TypeSessionCompleted, UserID: "u", OccurredAt: at})); err != nil {
		t.Fatalf("completed: %v", err)
	}
	if err := HandleMessage(ctx, svc, encode(t, queue.Message{Type: queue.TypeSessionFeedback, UserID: "u", OccurredAt: at, Feedback: "A_BIT_TIRING"})); err != nil {
		t.Fatalf("feedback: %v", err)
	}

	st, err := svc.State(ctx, "u")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if st.WeekSessionCount != 1 || st.TomorrowAdjustment != adaptive.AdjustSame {
		t.Fatalf("unexpected state: %+v", st)
	}
}

type failingProcessor struct{}

func (failingProcessor) MarkSessionComplete(context.Context, string, time.Time) (adaptive.State, error) {
	return adaptive.State{}, errors.New("db down")
}

func (failingProcessor) RecordSessionFeedback(context.Context, string, adaptive.Feedback, time.Time) (adaptive.State, error) {
	return adaptive.State{}, errors.New("db down")
}

func TestHandleMessageWrapsProcessingErrors(t *testing.T) {
	body := encode(t, queue.Message{Type: queue.TypeSessionCompleted, UserID: "u", RequestID: "r-1"})
	msg, _, err := ParseMessage(body)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}

	err = HandleMessage(WithParsedMessage(context.Background(), msg), failingProcessor{}, body)
	var procErr ErrProcess
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ErrProcess, got %T: %v", err, err)
	}
	if procErr.RequestID != "r-1" || IsUnrecoverable(err) {
		t.Fatalf("unexpected error: %+v", procErr)
	}
}

func TestComputeMeta(t *testing.T) {
	if m := ComputeMeta(""); m.BodyLen != 0 || m.BodySHA != "" {
		t.Fatalf("unexpected meta for empty body: %+v", m)
	}
	if m := ComputeMeta("abc"); m.BodyLen != 3 || len(m.BodySHA) != 64 {
		t.Fatalf("unexpected meta: %+v", m)
	}
}
