package gate

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"momskitchen/internal/models"
)

// SettingsSource fetches runtime settings from the backend
type SettingsSource interface {
	Get(ctx context.Context) (*models.Settings, error)
}

// WindowSelector picks the windows a gate cares about out of the settings
type WindowSelector func(s *models.Settings) []models.OrderingWindow

// OrderingWindows selects the ordering windows
func OrderingWindows(s *models.Settings) []models.OrderingWindow {
	return s.OrderingWindows
}

// CancellationWindows selects the cancellation windows, falling back to ordering windows
func CancellationWindows(s *models.Settings) []models.OrderingWindow {
	return s.CancellationOrOrdering()
}

// Monitor keeps a gate current while some view needs it: Activate fetches the
// windows and starts periodic evaluation, Deactivate stops it
type Monitor struct {
	gate     *Gate
	source   SettingsSource
	selector WindowSelector
	interval time.Duration
	clock    func() time.Time
	log      logrus.FieldLogger

	mu      sync.Mutex
	windows []models.OrderingWindow
	handle  *Handle
}

func NewMonitor(g *Gate, source SettingsSource, selector WindowSelector, interval time.Duration, log logrus.FieldLogger) *Monitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Monitor{
		gate:     g,
		source:   source,
		selector: selector,
		interval: interval,
		clock:    time.Now,
		log:      log,
	}
}

// Activate fetches the windows, evaluates the gate and keeps re-evaluating every
// interval. A fetch error is returned but evaluation still starts with whatever
// windows were cached. Activating an active monitor only refetches.
func (m *Monitor) Activate(ctx context.Context) error {
	err := m.Reload(ctx)
	if err != nil {
		m.log.WithError(err).Warn("Failed to load ordering windows")
	}

	m.mu.Lock()
	active := m.handle != nil
	m.mu.Unlock()
	if active {
		return err
	}

	h := Start(ctx, m.interval, func(context.Context) { m.Check() })

	m.mu.Lock()
	if m.handle != nil {
		m.mu.Unlock()
		h.Stop()
		return err
	}
	m.handle = h
	m.mu.Unlock()
	return err
}

// Reload refetches the windows and re-evaluates. Settings without windows leave
// the decision to the gate's missing-window policy.
func (m *Monitor) Reload(ctx context.Context) error {
	settings, err := m.source.Get(ctx)
	if err != nil {
		return err
	}

	var windows []models.OrderingWindow
	if settings != nil {
		windows = m.selector(settings)
	}

	m.mu.Lock()
	m.windows = append([]models.OrderingWindow(nil), windows...)
	m.mu.Unlock()

	m.Check()
	return nil
}

// Watch runs one loop that refetches the windows and re-evaluates the gate right
// away and then every interval, for views that must follow settings changes too.
// onChange is called with the first state and on every change after it. A failed
// fetch evaluates the cached windows instead.
func (m *Monitor) Watch(ctx context.Context, onChange func(open bool)) *Handle {
	first := true
	var last bool
	return Start(ctx, m.interval, func(ctx context.Context) {
		open := false
		if err := m.Reload(ctx); err != nil {
			m.log.WithError(err).Debug("Settings refresh failed, using cached windows")
			open = m.Check()
		} else {
			open = m.Open()
		}
		if onChange != nil && (first || open != last) {
			onChange(open)
		}
		first, last = false, open
	})
}

// Check evaluates the gate against the cached windows and returns its state
func (m *Monitor) Check() bool {
	m.mu.Lock()
	windows := m.windows
	m.mu.Unlock()
	return m.gate.Evaluate(m.clock(), windows)
}

// Deactivate stops periodic evaluation; the gate keeps its last state
func (m *Monitor) Deactivate() {
	m.mu.Lock()
	h := m.handle
	m.handle = nil
	m.mu.Unlock()

	if h != nil {
		h.Stop()
	}
}

// Open reports the gate state from the last evaluation
func (m *Monitor) Open() bool {
	return m.gate.Open()
}

// Windows returns the cached windows
func (m *Monitor) Windows() []models.OrderingWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.OrderingWindow(nil), m.windows...)
}
