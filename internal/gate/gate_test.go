package gate

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"momskitchen/internal/logging"
	"momskitchen/internal/models"
)

var lunchAndDinner = []models.OrderingWindow{
	{Start: "09:00", End: "12:00"},
	{Start: "17:00", End: "20:00"},
}

func at(hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(2026, 10, 18, t.Hour(), t.Minute(), 30, 0, time.Local)
}

func TestIsWithinWindow(t *testing.T) {
	tests := []struct {
		now     string
		windows []models.OrderingWindow
		want    bool
	}{
		{now: "11:59", windows: lunchAndDinner, want: true},
		{now: "12:01", windows: lunchAndDinner, want: false},
		{now: "19:59", windows: lunchAndDinner, want: true},
		{now: "09:00", windows: lunchAndDinner, want: true},
		{now: "12:00", windows: lunchAndDinner, want: true},
		{now: "08:59", windows: lunchAndDinner, want: false},
		{now: "20:01", windows: lunchAndDinner, want: false},
		{now: "10:00", windows: nil, want: false},
		{now: "00:00", windows: []models.OrderingWindow{{Start: "00:00", End: "00:30"}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.now, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithinWindow(at(tt.now), tt.windows))
			assert.Equal(t, tt.want, IsWithinWindow(at(tt.now), tt.windows), "pure")
		})
	}
}

func TestFormatHHMMZeroPads(t *testing.T) {
	assert.Equal(t, "07:05", FormatHHMM(time.Date(2026, 1, 1, 7, 5, 59, 0, time.UTC)))
}

type fakeCart struct {
	mu     sync.Mutex
	lines  int
	clears int
}

func (c *fakeCart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines == 0
}

func (c *fakeCart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = 0
	c.clears++
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages)
}

func TestClosingWindowClearsCartOnce(t *testing.T) {
	cart := &fakeCart{lines: 1}
	notes := &recordingNotifier{}
	g := New(Options{Name: "ordering", Cart: cart, Notifier: notes, Logger: logging.Discard()})

	assert.True(t, g.Evaluate(at("11:58"), lunchAndDinner))
	assert.True(t, g.Evaluate(at("11:59"), lunchAndDinner))
	assert.Equal(t, 0, cart.clears)

	assert.False(t, g.Evaluate(at("12:01"), lunchAndDinner))
	assert.False(t, g.Evaluate(at("12:02"), lunchAndDinner))
	assert.False(t, g.Evaluate(at("12:03"), lunchAndDinner))

	assert.Equal(t, 1, cart.clears)
	assert.True(t, cart.IsEmpty())
	require.Equal(t, 1, notes.count())
	assert.Equal(t, KitchenClosedNotice, notes.messages[0])
}

func TestInitialClosedEvaluationDoesNotClear(t *testing.T) {
	cart := &fakeCart{lines: 2}
	notes := &recordingNotifier{}
	g := New(Options{Cart: cart, Notifier: notes, Logger: logging.Discard()})

	assert.False(t, g.Evaluate(at("15:00"), lunchAndDinner))
	assert.Equal(t, 0, cart.clears)
	assert.Zero(t, notes.count())
}

func TestClosingWithEmptyCartRaisesNoNotice(t *testing.T) {
	cart := &fakeCart{}
	notes := &recordingNotifier{}
	g := New(Options{Cart: cart, Notifier: notes, Logger: logging.Discard()})

	g.Evaluate(at("10:00"), lunchAndDinner)
	g.Evaluate(at("13:00"), lunchAndDinner)

	assert.Zero(t, cart.clears)
	assert.Zero(t, notes.count())
}

func TestReopeningArmsTheEdgeAgain(t *testing.T) {
	cart := &fakeCart{lines: 1}
	notes := &recordingNotifier{}
	g := New(Options{Cart: cart, Notifier: notes, Logger: logging.Discard()})

	g.Evaluate(at("11:00"), lunchAndDinner)
	g.Evaluate(at("13:00"), lunchAndDinner)
	cart.lines = 3
	g.Evaluate(at("18:00"), lunchAndDinner)
	g.Evaluate(at("21:00"), lunchAndDinner)

	assert.Equal(t, 2, cart.clears)
	assert.Equal(t, 2, notes.count())
}

func TestMissingWindowPolicy(t *testing.T) {
	tests := []struct {
		name      string
		policy    MissingWindowPolicy
		startOpen bool
		want      bool
	}{
		{name: "keep open", policy: KeepState, startOpen: true, want: true},
		{name: "keep closed", policy: KeepState, startOpen: false, want: false},
		{name: "fail open", policy: FailOpen, startOpen: false, want: true},
		{name: "fail closed", policy: FailClosed, startOpen: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(Options{Policy: tt.policy, Logger: logging.Discard()})
			if tt.startOpen {
				require.True(t, g.Evaluate(at("10:00"), lunchAndDinner))
			}
			assert.Equal(t, tt.want, g.Evaluate(at("10:00"), nil))
			assert.Equal(t, tt.want, g.Evaluate(at("10:00"), []models.OrderingWindow{}))
			assert.Equal(t, tt.want, g.Open())
		})
	}
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, FailOpen, ParsePolicy("open"))
	assert.Equal(t, FailClosed, ParsePolicy("closed"))
	assert.Equal(t, KeepState, ParsePolicy("keep"))
	assert.Equal(t, KeepState, ParsePolicy(""))
}

func TestSchedulerRunsImmediatelyAndStops(t *testing.T) {
	var runs atomic.Int32
	h := Start(context.Background(), 5*time.Millisecond, func(context.Context) { runs.Add(1) })
	assert.GreaterOrEqual(t, runs.Load(), int32(1), "first run is immediate")

	require.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, time.Millisecond)

	h.Stop()
	h.Stop()
	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load(), "no runs after Stop")

	select {
	case <-h.Done():
	default:
		t.Fatal("Done not closed after Stop")
	}
}

func TestSchedulerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := Start(ctx, time.Hour, func(context.Context) {})
	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("task still running after context cancel")
	}
	h.Stop()
}

type fakeSource struct {
	mu       sync.Mutex
	settings *models.Settings
	err      error
	calls    int
}

func (s *fakeSource) Get(ctx context.Context) (*models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.settings, s.err
}

func TestMonitorActivateEvaluatesAndDeactivateStops(t *testing.T) {
	cart := &fakeCart{lines: 1}
	notes := &recordingNotifier{}
	g := New(Options{Cart: cart, Notifier: notes, Logger: logging.Discard()})
	source := &fakeSource{settings: &models.Settings{OrderingWindows: lunchAndDinner}}

	m := NewMonitor(g, source, OrderingWindows, 5*time.Millisecond, logging.Discard())
	var mu sync.Mutex
	now := at("11:59")
	m.clock = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	require.NoError(t, m.Activate(context.Background()))
	assert.True(t, m.Open())
	assert.Equal(t, lunchAndDinner, m.Windows())

	mu.Lock()
	now = at("12:01")
	mu.Unlock()

	require.Eventually(t, func() bool { return !m.Open() }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	m.Deactivate()
	m.Deactivate()

	assert.Equal(t, 1, cart.clears)
	assert.Equal(t, 1, notes.count(), "notice raised once across many ticks")
	assert.Equal(t, 1, source.calls, "ticks reuse cached windows")
}

func TestMonitorWatchFollowsSettingsChanges(t *testing.T) {
	cart := &fakeCart{lines: 1}
	notes := &recordingNotifier{}
	g := New(Options{Cart: cart, Notifier: notes, Logger: logging.Discard()})
	source := &fakeSource{settings: &models.Settings{OrderingWindows: lunchAndDinner}}

	m := NewMonitor(g, source, OrderingWindows, 5*time.Millisecond, logging.Discard())
	m.clock = func() time.Time { return at("10:30") }

	var mu sync.Mutex
	var states []bool
	h := m.Watch(context.Background(), func(open bool) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, open)
	})
	defer h.Stop()

	require.Eventually(t, func() bool { return m.Open() }, time.Second, time.Millisecond)

	// The kitchen shortens its hours while the watcher runs
	source.mu.Lock()
	source.settings = &models.Settings{OrderingWindows: []models.OrderingWindow{{Start: "17:00", End: "20:00"}}}
	source.mu.Unlock()

	require.Eventually(t, func() bool { return !m.Open() }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	h.Stop()

	mu.Lock()
	assert.Equal(t, []bool{true, false}, states)
	mu.Unlock()
	assert.Equal(t, 1, cart.clears)
	assert.Equal(t, 1, notes.count())

	source.mu.Lock()
	defer source.mu.Unlock()
	assert.Greater(t, source.calls, 2, "every tick refetches")
}

func TestMonitorActivateReportsFetchError(t *testing.T) {
	g := New(Options{Logger: logging.Discard()})
	source := &fakeSource{err: errors.New("offline")}
	m := NewMonitor(g, source, CancellationWindows, time.Hour, logging.Discard())

	assert.Error(t, m.Activate(context.Background()))
	assert.False(t, m.Open())
	m.Deactivate()
}

func TestCancellationWindowsFallBack(t *testing.T) {
	s := &models.Settings{OrderingWindows: lunchAndDinner}
	assert.Equal(t, lunchAndDinner, CancellationWindows(s))
	assert.Equal(t, lunchAndDinner, OrderingWindows(s))
}
