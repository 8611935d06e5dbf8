package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func serve(fn http.HandlerFunc) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	fn(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestLiveEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		ticks  int
		status int
		body   string
	}{
		{name: "starts healthy", ticks: 0, status: http.StatusOK, body: `{"status":"ok"}`},
		{name: "below threshold", ticks: 2, status: http.StatusOK, body: `{"status":"ok"}`},
		{
			name:   "at threshold",
			ticks:  3,
			status: http.StatusServiceUnavailable,
			body:   `{"status":"unhealthy","checks":{"db":"connection refused"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			h.Add(Check{Name: "db", Kind: Liveness, Func: failing("connection refused")})
			for range tt.ticks {
				h.probes[0].tick(context.Background())
			}

			w := serve(h.LiveEndpoint)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("not marked ready", func(t *testing.T) {
		h := New()
		w := serve(h.ReadyEndpoint)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"_readiness":"service is not ready"}}`, w.Body.String())
	})

	t.Run("ready with liveness failure", func(t *testing.T) {
		h := New()
		h.Add(Check{Name: "gc", Kind: Liveness, Func: failing("slow"), FailureThreshold: 1})
		h.Add(Check{Name: "postgres", Kind: Readiness, Func: passing})
		h.SetReady(true)
		h.probes[0].tick(context.Background())

		assert.Equal(t, http.StatusOK, serve(h.ReadyEndpoint).Code)
		assert.Equal(t, http.StatusServiceUnavailable, serve(h.LiveEndpoint).Code)
	})

	t.Run("readiness failure", func(t *testing.T) {
		h := New()
		h.Add(Check{Name: "postgres", Kind: Readiness, Func: failing("down"), FailureThreshold: 1})
		h.SetReady(true)
		h.probes[0].tick(context.Background())

		assert.False(t, h.IsReady())
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"postgres":"down"}}`, serve(h.ReadyEndpoint).Body.String())
	})
}

func TestProbe_Recovers(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	h := New()
	h.Add(Check{Name: "flaky", Kind: Readiness, FailureThreshold: 1, SuccessThreshold: 2, Func: func(context.Context) error {
		if fail.Load() {
			return errors.New("nope")
		}
		return nil
	}})
	h.SetReady(true)
	p := h.probes[0]
	ctx := context.Background()

	p.tick(ctx)
	require.False(t, h.IsReady())

	fail.Store(false)
	p.tick(ctx)
	assert.False(t, h.IsReady(), "one success is below the threshold")
	p.tick(ctx)
	assert.True(t, h.IsReady())
}

func TestProbe_Timeout(t *testing.T) {
	h := New()
	h.Add(Check{Name: "slow", Kind: Liveness, Timeout: 10 * time.Millisecond, FailureThreshold: 1, Func: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}})

	h.probes[0].tick(context.Background())

	assert.Equal(t, map[string]string{"slow": context.DeadlineExceeded.Error()}, h.failures(Liveness))
}

func TestStartStop(t *testing.T) {
	var calls atomic.Int32
	h := New()
	h.Add(Check{Name: "count", Kind: Liveness, Func: func(context.Context) error {
		calls.Add(1)
		return nil
	}})

	h.Start(context.Background(), 5*time.Millisecond)
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	h.Stop()

	stopped := calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load(), "no checks after Stop")

	h.Stop()
}

func TestConcurrentAccess(t *testing.T) {
	h := New()
	h.Add(Check{Name: "a", Kind: Readiness, Func: failing("x"), FailureThreshold: 1})
	h.SetReady(true)
	h.Start(context.Background(), time.Millisecond)
	defer h.Stop()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = serve(h.ReadyEndpoint)
			_ = h.IsReady()
		}()
	}
	wg.Wait()
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckers(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, PingCheck(pingerFunc(passing))(ctx))
	err := PingCheck(pingerFunc(failing("refused")))(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")

	assert.NoError(t, GoroutineCountCheck(1_000_000)(ctx))
	assert.Error(t, GoroutineCountCheck(0)(ctx))
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(ctx))
}
