package handler

import (
	"context"
	stdErrors "errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sentrymeet/sentrymeet/errors"
	calldto "github.com/sentrymeet/sentrymeet/internal/adapter/dto/call"
	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
	"github.com/sentrymeet/sentrymeet/internal/domain/repositories"
	"github.com/sentrymeet/sentrymeet/internal/usecase/summary"
)

// Call serves the call history endpoints.
type Call struct {
	calls       repositories.CallRepository
	transcripts repositories.TranscriptRepository
	alerts      repositories.AlertRepository
	summaries   *summary.Service
	logger      *zap.Logger
}

// NewCall creates the call history handler. summaries may be nil when no
// summarization key is configured.
func NewCall(
	calls repositories.CallRepository,
	transcripts repositories.TranscriptRepository,
	alerts repositories.AlertRepository,
	summaries *summary.Service,
	logger *zap.Logger,
) *Call {
	return &Call{
		calls:       calls,
		transcripts: transcripts,
		alerts:      alerts,
		summaries:   summaries,
		logger:      logger,
	}
}

// resolveCall accepts either a call UUID or a room id; room ids resolve to
// the room's most recent call.
func (h *Call) resolveCall(ctx context.Context, ref string) (*entities.Call, error) {
	if id, err := uuid.Parse(ref); err == nil {
		call, err := h.calls.FindByID(ctx, id)
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrCallNotFound(ref)
		}
		if err != nil {
			return nil, errors.ErrDBQueryFailed(err)
		}
		return call, nil
	}

	call, err := h.calls.FindLatestByRoom(ctx, ref)
	if stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.ErrCallNotFound(ref)
	}
	if err != nil {
		return nil, errors.ErrDBQueryFailed(err)
	}
	return call, nil
}

// Get returns a call record.
func (h *Call) Get(c echo.Context) error {
	call, err := h.resolveCall(c.Request().Context(), c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	return HandleSuccess(h.logger, c, calldto.FromCall(call))
}

// Transcripts returns every participant transcript of a call.
func (h *Call) Transcripts(c echo.Context) error {
	ctx := c.Request().Context()
	call, err := h.resolveCall(ctx, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	docs, err := h.transcripts.FindByCall(ctx, call.ID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}

	out := make([]calldto.TranscriptResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, calldto.FromTranscript(d))
	}
	return HandleSuccess(h.logger, c, out)
}

// Alerts returns every alert raised during a call.
func (h *Call) Alerts(c echo.Context) error {
	ctx := c.Request().Context()
	call, err := h.resolveCall(ctx, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	alerts, err := h.alerts.FindByCall(ctx, call.ID)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}

	out := make([]calldto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, calldto.FromAlert(a))
	}
	return HandleSuccess(h.logger, c, out)
}

// Summarize generates an LLM summary for a call's transcripts.
func (h *Call) Summarize(c echo.Context) error {
	if h.summaries == nil {
		return HandleError(h.logger, c,
			errors.ErrSummaryFailed(stdErrors.New("summarization is not configured")))
	}

	ctx := c.Request().Context()
	call, err := h.resolveCall(ctx, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	text, err := h.summaries.SummarizeCall(ctx, call.ID)
	if stdErrors.Is(err, summary.ErrNoTranscripts) {
		return HandleError(h.logger, c, errors.ErrNoTranscripts(call.ID.String()))
	}
	if err != nil {
		return HandleError(h.logger, c, errors.ErrSummaryFailed(err))
	}

	return HandleSuccess(h.logger, c, calldto.SummaryResponse{
		CallID:  call.ID.String(),
		Summary: text,
	})
}

// Delete removes a call with its transcripts and alerts. Active calls are
// refused.
func (h *Call) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	call, err := h.resolveCall(ctx, c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, err)
	}
	if call.IsActive {
		return HandleError(h.logger, c, errors.ErrCallStillActive(call.ID.String()))
	}

	if err := h.alerts.DeleteByCall(ctx, call.ID); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}
	if err := h.transcripts.DeleteByCall(ctx, call.ID); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}
	if err := h.calls.Delete(ctx, call.ID); err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed(err))
	}

	return HandleSuccess(h.logger, c, map[string]string{"deleted": call.ID.String()})
}
