package telemetry

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/hxstate/pkg/binding"
	"github.com/vango-dev/hxstate/pkg/dom"
	"github.com/vango-dev/hxstate/pkg/reactive"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func counterPage() *dom.Element {
	return dom.El("article", dom.A("hx-state", ""),
		dom.El("p", dom.A("id", "n"), dom.A("hx-bind", "innerText=count:Number"), "3"),
		dom.El("div", dom.A("id", "box"), dom.A("hx-effect", "style.color = state.count > 2 ? 'red' : 'blue'")),
	)
}

func TestMetricsRecordEffectRuns(t *testing.T) {
	m := NewMetrics()
	rt := reactive.NewRuntime(m.RuntimeOption(), reactive.WithErrorHandler(func(*reactive.Effect, error) {}))
	reg := binding.NewRegistrar(binding.Options{Scheduler: binding.NewScheduler(rt)})

	root := counterPage()
	res, err := reg.Setup(context.Background(), root)
	m.ObserveSetup(res, err)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if got := counterValue(t, m.effectRuns.WithLabelValues("bind")); got != 1 {
		t.Errorf("expected 1 bind run, got %v", got)
	}
	if got := counterValue(t, m.effectRuns.WithLabelValues("effect")); got != 1 {
		t.Errorf("expected 1 effect run, got %v", got)
	}
	if got := histogramCount(t, m.effectDuration.WithLabelValues("bind")); got != 1 {
		t.Errorf("expected 1 bind duration sample, got %d", got)
	}

	store, err := reg.Scopes().StateOf(dom.ByID(root, "n"))
	if err != nil {
		t.Fatalf("StateOf: %v", err)
	}
	if err := store.Set("count", 1.0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := counterValue(t, m.effectRuns.WithLabelValues("bind")); got != 2 {
		t.Errorf("expected 2 bind runs after write, got %v", got)
	}
	if got := counterValue(t, m.effectErrors.WithLabelValues("bind")); got != 0 {
		t.Errorf("expected no bind errors, got %v", got)
	}

	if got := counterValue(t, m.setupsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("expected 1 successful setup, got %v", got)
	}
	if got := counterValue(t, m.bindingsTotal.WithLabelValues("store")); got != 1 {
		t.Errorf("expected 1 store, got %v", got)
	}
	if got := counterValue(t, m.bindingsTotal.WithLabelValues("effect")); got != 1 {
		t.Errorf("expected 1 effect, got %v", got)
	}
}

func TestMetricsCountEffectErrors(t *testing.T) {
	m := NewMetrics()
	e := &reactive.Effect{}
	m.ObserveRun(e, 0, errors.New("boom"))

	if got := counterValue(t, m.effectErrors.WithLabelValues("other")); got != 1 {
		t.Errorf("expected unnamed effect error under kind other, got %v", got)
	}
}

func TestObserveSetupError(t *testing.T) {
	m := NewMetrics()
	m.ObserveSetup(nil, errors.New("bad"))
	if got := counterValue(t, m.setupsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("expected 1 failed setup, got %v", got)
	}
}

func TestSessionsAndMessages(t *testing.T) {
	m := NewMetrics(WithNamespace("test"))
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	if got := gaugeValue(t, m.activeSessions); got != 1 {
		t.Errorf("expected 1 active session, got %v", got)
	}

	m.ObserveMessage("set", nil)
	m.ObserveMessage("set", errors.New("x"))
	if got := counterValue(t, m.messagesTotal.WithLabelValues("set", "error")); got != 1 {
		t.Errorf("expected 1 failed set, got %v", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics(WithNamespace("hxtest"), WithConstLabels(prometheus.Labels{"app": "demo"}))
	m.SessionOpened()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `hxtest_active_sessions{app="demo"} 1`) {
		t.Errorf("expected active sessions in exposition, got:\n%s", body)
	}
}

func TestEffectKind(t *testing.T) {
	tests := map[string]string{
		"bind p#n":     "bind",
		"effect div":   "effect",
		"":             "other",
		"custom thing": "other",
	}
	for in, want := range tests {
		if got := effectKind(in); got != want {
			t.Errorf("effectKind(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestTracerSetup(t *testing.T) {
	tr := NewTracer("")
	reg := binding.NewRegistrar(binding.Options{})

	res, err := tr.Setup(context.Background(), reg, counterPage())
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if res.Stores != 1 || res.Bindings != 1 || res.Effects != 1 {
		t.Errorf("unexpected result %+v", res)
	}

	bad := dom.El("div", dom.A("hx-bind", "nope"))
	if _, err := tr.Setup(context.Background(), binding.NewRegistrar(binding.Options{}), bad); !errors.Is(err, binding.ErrMalformedBind) {
		t.Errorf("expected ErrMalformedBind through tracer, got %v", err)
	}
}
