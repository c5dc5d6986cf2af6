// Package summary turns a call's stored transcripts into an LLM-generated
// meeting summary.
package summary

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sentrymeet/sentrymeet/internal/domain/repositories"
)

// ErrNoTranscripts is returned when a call has nothing to summarize.
var ErrNoTranscripts = errors.New("no transcripts found for this call")

// Summarizer produces a summary for a rendered transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// Service renders a call's transcripts into speaker-attributed lines and
// hands them to the summarizer.
type Service struct {
	transcripts repositories.TranscriptRepository
	summarizer  Summarizer
	logger      *zap.Logger
}

func NewService(transcripts repositories.TranscriptRepository, summarizer Summarizer, logger *zap.Logger) *Service {
	return &Service{transcripts: transcripts, summarizer: summarizer, logger: logger}
}

type line struct {
	at   int64
	text string
}

// SummarizeCall flattens every participant's segments into chronological
// "Name: text" lines and summarizes them.
func (s *Service) SummarizeCall(ctx context.Context, callID uuid.UUID) (string, error) {
	docs, err := s.transcripts.FindByCall(ctx, callID)
	if err != nil {
		return "", err
	}

	var lines []line
	for _, doc := range docs {
		for _, seg := range doc.Segments {
			text := strings.TrimSpace(seg.Text)
			if text == "" {
				continue
			}
			lines = append(lines, line{
				at:   seg.StartTime.UnixMilli(),
				text: doc.UserName + ": " + text,
			})
		}
	}
	if len(lines) == 0 {
		return "", ErrNoTranscripts
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].at < lines[j].at })

	var b strings.Builder
	for i, l := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.text)
	}

	s.logger.Info("summarizing call",
		zap.String("call_id", callID.String()),
		zap.Int("lines", len(lines)))
	return s.summarizer.Summarize(ctx, b.String())
}
