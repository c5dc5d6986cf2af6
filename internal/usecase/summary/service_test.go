package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
)

type fakeTranscripts struct {
	docs []*entities.Transcript
	err  error
}

func (f *fakeTranscripts) AppendSegment(ctx context.Context, callID uuid.UUID, userID *uuid.UUID, userName string, seg entities.TranscriptSegment) error {
	return nil
}

func (f *fakeTranscripts) FindByCall(ctx context.Context, callID uuid.UUID) ([]*entities.Transcript, error) {
	return f.docs, f.err
}

func (f *fakeTranscripts) DeleteByCall(ctx context.Context, callID uuid.UUID) error { return nil }

type fakeSummarizer struct {
	got string
	out string
	err error
}

func (f *fakeSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	f.got = transcript
	return f.out, f.err
}

func seg(text string, at time.Time) entities.TranscriptSegment {
	return entities.TranscriptSegment{Text: text, StartTime: at, EndTime: at}
}

func TestSummarizeCall_InterleavesSpeakersChronologically(t *testing.T) {
	base := time.Now()
	repo := &fakeTranscripts{docs: []*entities.Transcript{
		{
			UserName: "Alice",
			Segments: datatypes.NewJSONSlice([]entities.TranscriptSegment{
				seg("hello everyone", base),
				seg("let us begin", base.Add(2*time.Second)),
			}),
		},
		{
			UserName: "Bob",
			Segments: datatypes.NewJSONSlice([]entities.TranscriptSegment{
				seg("hi Alice", base.Add(time.Second)),
			}),
		},
	}}
	sum := &fakeSummarizer{out: "summary text"}
	svc := NewService(repo, sum, zap.NewNop())

	got, err := svc.SummarizeCall(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if got != "summary text" {
		t.Fatalf("summary = %q", got)
	}

	want := "Alice: hello everyone\nBob: hi Alice\nAlice: let us begin"
	if sum.got != want {
		t.Fatalf("rendered transcript =\n%q\nwant\n%q", sum.got, want)
	}
}

func TestSummarizeCall_NoTranscripts(t *testing.T) {
	svc := NewService(&fakeTranscripts{}, &fakeSummarizer{}, zap.NewNop())
	if _, err := svc.SummarizeCall(context.Background(), uuid.New()); !errors.Is(err, ErrNoTranscripts) {
		t.Fatalf("err = %v, want ErrNoTranscripts", err)
	}
}

func TestSummarizeCall_BlankSegmentsSkipped(t *testing.T) {
	repo := &fakeTranscripts{docs: []*entities.Transcript{
		{
			UserName: "Alice",
			Segments: datatypes.NewJSONSlice([]entities.TranscriptSegment{
				seg("   ", time.Now()),
			}),
		},
	}}
	svc := NewService(repo, &fakeSummarizer{}, zap.NewNop())
	if _, err := svc.SummarizeCall(context.Background(), uuid.New()); !errors.Is(err, ErrNoTranscripts) {
		t.Fatalf("err = %v, want ErrNoTranscripts", err)
	}
}
