package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sentrymeet/sentrymeet/internal/domain/entities"
	"github.com/sentrymeet/sentrymeet/internal/usecase/summary"
)

type stubCalls struct {
	byID   map[uuid.UUID]*entities.Call
	byRoom map[string]*entities.Call
}

func (s *stubCalls) FindActive(ctx context.Context, roomID string) (*entities.Call, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCalls) Create(ctx context.Context, roomID string, first entities.Participant) (*entities.Call, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCalls) AddParticipant(ctx context.Context, callID uuid.UUID, p entities.Participant) error {
	return nil
}

func (s *stubCalls) FindByID(ctx context.Context, id uuid.UUID) (*entities.Call, error) {
	if c, ok := s.byID[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCalls) FindLatestByRoom(ctx context.Context, roomID string) (*entities.Call, error) {
	if c, ok := s.byRoom[roomID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCalls) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return nil
}

type stubTranscripts struct {
	docs []*entities.Transcript
}

func (s *stubTranscripts) AppendSegment(ctx context.Context, callID uuid.UUID, userID *uuid.UUID, userName string, seg entities.TranscriptSegment) error {
	return nil
}

func (s *stubTranscripts) FindByCall(ctx context.Context, callID uuid.UUID) ([]*entities.Transcript, error) {
	return s.docs, nil
}

func (s *stubTranscripts) DeleteByCall(ctx context.Context, callID uuid.UUID) error { return nil }

type stubAlerts struct {
	alerts []*entities.Alert
}

func (s *stubAlerts) Create(ctx context.Context, alert *entities.Alert) error { return nil }

func (s *stubAlerts) FindByCall(ctx context.Context, callID uuid.UUID) ([]*entities.Alert, error) {
	return s.alerts, nil
}

func (s *stubAlerts) DeleteByCall(ctx context.Context, callID uuid.UUID) error { return nil }

type stubSummarizer struct{ out string }

func (s *stubSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	return s.out, nil
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, id string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(target)
	c.SetParamNames("id")
	c.SetParamValues(id)
	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func testCall(roomID string, active bool) *entities.Call {
	name := "Alice"
	return &entities.Call{
		ID:        uuid.New(),
		RoomID:    roomID,
		StartedAt: time.Now(),
		IsActive:  active,
		Participants: datatypes.NewJSONSlice([]entities.Participant{
			{Name: name, JoinAt: time.Now()},
		}),
	}
}

func TestCallGet_ByID(t *testing.T) {
	call := testCall("r1", false)
	h := NewCall(
		&stubCalls{byID: map[uuid.UUID]*entities.Call{call.ID: call}},
		&stubTranscripts{}, &stubAlerts{}, nil, zap.NewNop(),
	)

	rec := doRequest(t, h.Get, http.MethodGet, "/v1/calls/:id", call.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data struct {
			ID     string `json:"id"`
			RoomID string `json:"roomId"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.ID != call.ID.String() || body.Data.RoomID != "r1" {
		t.Fatalf("body = %+v", body)
	}
}

func TestCallGet_ByRoomResolvesLatest(t *testing.T) {
	call := testCall("team-standup", false)
	h := NewCall(
		&stubCalls{byRoom: map[string]*entities.Call{"team-standup": call}},
		&stubTranscripts{}, &stubAlerts{}, nil, zap.NewNop(),
	)

	rec := doRequest(t, h.Get, http.MethodGet, "/v1/calls/:id", "team-standup")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestCallGet_NotFound(t *testing.T) {
	h := NewCall(&stubCalls{}, &stubTranscripts{}, &stubAlerts{}, nil, zap.NewNop())

	rec := doRequest(t, h.Get, http.MethodGet, "/v1/calls/:id", uuid.NewString())
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCallAlerts_ReturnsStoredAlerts(t *testing.T) {
	call := testCall("r1", false)
	h := NewCall(
		&stubCalls{byID: map[uuid.UUID]*entities.Call{call.ID: call}},
		&stubTranscripts{},
		&stubAlerts{alerts: []*entities.Alert{{
			ID:           uuid.New(),
			CallID:       call.ID,
			UserName:     "Alice",
			MatchedWords: datatypes.NewJSONSlice([]string{"bomb"}),
			Context:      "there is a bomb",
			Severity:     entities.AlertSeverityHigh,
			CreatedAt:    time.Now(),
		}}},
		nil, zap.NewNop(),
	)

	rec := doRequest(t, h.Alerts, http.MethodGet, "/v1/calls/:id/alerts", call.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data []struct {
			MatchedWords []string `json:"matchedWords"`
			Severity     string   `json:"severity"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Severity != "high" || body.Data[0].MatchedWords[0] != "bomb" {
		t.Fatalf("body = %+v", body)
	}
}

func TestCallSummarize(t *testing.T) {
	call := testCall("r1", false)
	transcripts := &stubTranscripts{docs: []*entities.Transcript{{
		UserName: "Alice",
		Segments: datatypes.NewJSONSlice([]entities.TranscriptSegment{
			{Text: "hello", StartTime: time.Now(), EndTime: time.Now()},
		}),
	}}}
	summaries := summary.NewService(transcripts, &stubSummarizer{out: "a short meeting"}, zap.NewNop())

	h := NewCall(
		&stubCalls{byID: map[uuid.UUID]*entities.Call{call.ID: call}},
		transcripts, &stubAlerts{}, summaries, zap.NewNop(),
	)

	rec := doRequest(t, h.Summarize, http.MethodPost, "/v1/calls/:id/summarize", call.ID.String())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data struct {
			Summary string `json:"summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Summary != "a short meeting" {
		t.Fatalf("summary = %q", body.Data.Summary)
	}
}

func TestCallDelete_RefusesActiveCall(t *testing.T) {
	call := testCall("r1", true)
	h := NewCall(
		&stubCalls{byID: map[uuid.UUID]*entities.Call{call.ID: call}},
		&stubTranscripts{}, &stubAlerts{}, nil, zap.NewNop(),
	)

	rec := doRequest(t, h.Delete, http.MethodDelete, "/v1/calls/:id", call.ID.String())
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}
