package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goonhub/goonhub/internal/metrics"
	apperrors "github.com/goonhub/goonhub/pkg/app/errors"
	"github.com/goonhub/goonhub/pkg/events"
	"github.com/goonhub/goonhub/pkg/store/memory"
	"github.com/goonhub/goonhub/pkg/stream"
	"github.com/goonhub/goonhub/pkg/user"
)

type recordingBus struct {
	events []*events.Event
}

func (b *recordingBus) Publish(_ context.Context, e *events.Event) {
	b.events = append(b.events, e)
}

func newTestService(t *testing.T) (Service, *recordingBus) {
	t.Helper()
	s := memory.New()
	for _, u := range []struct {
		id, handle string
		creator    bool
	}{{"c1", "luna_nights", true}, {"w1", "fan_one", false}} {
		usr, err := user.New(u.id, u.handle)
		require.NoError(t, err)
		usr.IsCreator = u.creator
		_, err = s.CreateUser(context.Background(), usr)
		require.NoError(t, err)
	}
	bus := &recordingBus{}
	return NewService(s, bus, zap.NewNop()), bus
}

func liveGauge(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.LiveStreams.Write(&m))
	return m.GetGauge().GetValue()
}

func TestCreate(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()
	gauge := liveGauge(t)

	ls, err := svc.Create(ctx, &CreateRequest{CreatorID: "c1", Title: "  late night ranked  "})
	require.NoError(t, err)
	assert.Equal(t, stream.StatusLive, ls.Status)
	assert.Equal(t, "late night ranked", ls.Title)
	assert.NotEmpty(t, ls.StreamKey, "the creator receives the stream key")
	assert.Equal(t, gauge+1, liveGauge(t))

	require.Len(t, bus.events, 1)
	e := bus.events[0]
	assert.Equal(t, events.StreamStarted, e.Type)
	assert.Equal(t, ls.ID, e.String(events.KeyStreamID))
	assert.Equal(t, "luna_nights", e.String(events.KeyActorHandle))

	got, err := svc.Get(ctx, ls.ID)
	require.NoError(t, err)
	assert.Empty(t, got.StreamKey)
}

func TestCreate_Errors(t *testing.T) {
	svc, bus := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateRequest{CreatorID: "ghost", Title: "x"})
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound), "got %v", err)

	_, err = svc.Create(ctx, &CreateRequest{CreatorID: "w1", Title: "x"})
	assert.True(t, apperrors.Is(err, apperrors.CategoryForbidden), "got %v", err)

	_, err = svc.Create(ctx, &CreateRequest{CreatorID: "c1", Title: "   "})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "got %v", err)

	assert.Empty(t, bus.events)
}

func TestEnd_Idempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ls, err := svc.Create(ctx, &CreateRequest{CreatorID: "c1", Title: "speedrun"})
	require.NoError(t, err)
	gauge := liveGauge(t)

	ended, err := svc.End(ctx, ls.ID)
	require.NoError(t, err)
	assert.Equal(t, stream.StatusEnded, ended.Status)
	require.NotNil(t, ended.EndedAt)
	assert.Equal(t, gauge-1, liveGauge(t))

	again, err := svc.End(ctx, ls.ID)
	require.NoError(t, err)
	assert.Equal(t, stream.StatusEnded, again.Status)
	assert.Equal(t, gauge-1, liveGauge(t), "a second end does not move the gauge")

	_, err = svc.End(ctx, "missing")
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound), "got %v", err)
}

func TestEnd_ConcurrentEndsMoveGaugeOnce(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ls, err := svc.Create(ctx, &CreateRequest{CreatorID: "c1", Title: "finale"})
	require.NoError(t, err)
	gauge := liveGauge(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.End(ctx, ls.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, gauge-1, liveGauge(t))
}

func TestSetViewers_MaxNeverDecreases(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	ls, err := svc.Create(ctx, &CreateRequest{CreatorID: "c1", Title: "chill"})
	require.NoError(t, err)

	for _, n := range []int{10, 42, 7} {
		ls, err = svc.SetViewers(ctx, ls.ID, n)
		require.NoError(t, err)
	}
	assert.Equal(t, 7, ls.ViewerCount)
	assert.Equal(t, 42, ls.MaxViewers)

	_, err = svc.SetViewers(ctx, ls.ID, -1)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "got %v", err)
}

func TestList(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, &CreateRequest{CreatorID: "c1", Title: "one"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &CreateRequest{CreatorID: "c1", Title: "two"})
	require.NoError(t, err)
	_, err = svc.End(ctx, a.ID)
	require.NoError(t, err)

	live, err := svc.List(ctx, stream.StatusLive)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "two", live[0].Title)
	assert.Empty(t, live[0].StreamKey)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(ctx, "paused")
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), "got %v", err)
}

func TestStreamHTTP(t *testing.T) {
	svc, _ := newTestService(t)
	r := chi.NewRouter()
	RegisterRoutes(r, svc, zap.NewNop())

	do := func(method, target, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, target, bytes.NewBufferString(body)))
		return rec
	}

	rec := do(http.MethodPost, "/api/streams", `{"creatorId":"c1","title":"live now"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created stream.LiveStream
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.StreamKey)

	rec = do(http.MethodPost, "/api/streams", `{"creatorId":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodPost, "/api/streams/"+created.ID+"/viewers", `{"count":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(http.MethodPost, "/api/streams/"+created.ID+"/viewers", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(http.MethodGet, "/api/streams?status=live", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), created.StreamKey)

	rec = do(http.MethodPost, "/api/streams/"+created.ID+"/end", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ended stream.LiveStream
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ended))
	assert.Equal(t, stream.StatusEnded, ended.Status)
	assert.Equal(t, 12, ended.MaxViewers)

	rec = do(http.MethodGet, "/api/streams/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
