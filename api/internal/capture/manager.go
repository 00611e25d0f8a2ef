package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	LabelStarted    = "Auto-capture started"
	LabelPeriodic   = "Auto-capture"
	LabelSubmission = "Solution submission"

	DefaultInterval = 2 * time.Minute
)

// Snapshotter снимает элемент targetID. Ошибок наружу не отдаёт:
// ok=false значит «снимка нет», вызывающий просто пропускает его.
type Snapshotter interface {
	Capture(ctx context.Context, targetID, description string) (Record, bool)
}

// SnapshotFunc adapts a plain function to Snapshotter.
type SnapshotFunc func(ctx context.Context, targetID, description string) (Record, bool)

func (f SnapshotFunc) Capture(ctx context.Context, targetID, description string) (Record, bool) {
	return f(ctx, targetID, description)
}

// Option configures a Manager.
type Option func(*Manager)

func WithClock(c Clock) Option {
	return func(m *Manager) {
		if c != nil {
			m.clock = c
		}
	}
}

func WithCapacity(n int) Option {
	return func(m *Manager) { m.capacity = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithCaptureHook is called after every capture attempt (manual or periodic).
func WithCaptureHook(fn func(added bool)) Option {
	return func(m *Manager) { m.onCapture = fn }
}

// Manager владеет буфером снимков и не более чем одним периодическим продюсером.
type Manager struct {
	snap      Snapshotter
	clock     Clock
	log       *zap.Logger
	onCapture func(added bool)
	capacity  int
	buf       *Buffer

	mu       sync.Mutex
	active   bool
	ticker   Ticker
	done     chan struct{}
	closed   bool
	targetID string
	interval time.Duration

	// родительский контекст для периодических снимков; отменяется только в Close
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(snap Snapshotter, opts ...Option) *Manager {
	m := &Manager{
		snap:     snap,
		clock:    RealClock(),
		log:      zap.NewNop(),
		capacity: DefaultCapacity,
	}
	for _, o := range opts {
		o(m)
	}
	m.buf = NewBuffer(m.capacity)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// Start включает автосъёмку. Повторный вызов в состоянии Active ничего не делает
// и возвращает false.
func (m *Manager) Start(targetID string, interval time.Duration) bool {
	if interval <= 0 {
		interval = DefaultInterval
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active || m.closed {
		return false
	}

	t := m.clock.NewTicker(interval)
	done := make(chan struct{})
	m.active = true
	m.ticker = t
	m.done = done
	m.targetID = targetID
	m.interval = interval

	m.wg.Add(1)
	go m.loop(targetID, t, done)

	m.log.Info("auto-capture started",
		zap.String("target", targetID),
		zap.Duration("interval", interval))
	return true
}

// Stop снимает таймер. Снимок, который уже выполняется, доедет до буфера.
func (m *Manager) Stop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked()
}

// stopLocked requires m.mu.
func (m *Manager) stopLocked() bool {
	if !m.active {
		return false
	}
	m.ticker.Stop()
	close(m.done)
	m.active = false
	m.ticker = nil
	m.done = nil

	m.log.Info("auto-capture stopped", zap.String("target", m.targetID))
	return true
}

// Active reports whether the periodic producer is running.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Interval returns the cadence of the running producer, zero when idle.
func (m *Manager) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return 0
	}
	return m.interval
}

// CaptureNow делает один снимок вне расписания. Возвращает true, если запись добавлена.
func (m *Manager) CaptureNow(ctx context.Context, targetID, description string) bool {
	rec, ok := m.snapshot(ctx, targetID, description)
	if !ok {
		m.log.Warn("capture skipped",
			zap.String("target", targetID),
			zap.String("label", description))
		m.hook(false)
		return false
	}
	m.buf.Append(rec)
	m.hook(true)
	return true
}

func (m *Manager) GetRecentCaptures(count int) []Record { return m.buf.Recent(count) }
func (m *Manager) GetCaptures() []Record               { return m.buf.All() }
func (m *Manager) GetCaptureCount() int                { return m.buf.Count() }
func (m *Manager) ClearCaptures()                      { m.buf.Clear() }

// Close останавливает продюсер, дожидается завершения фоновых снимков и чистит буфер.
func (m *Manager) Close() {
	// Stop и closed одним шагом под mu: после него Start уже не запустит loop.
	m.mu.Lock()
	m.stopLocked()
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	m.buf.Clear()
}

func (m *Manager) loop(targetID string, t Ticker, done <-chan struct{}) {
	defer m.wg.Done()

	m.CaptureNow(m.ctx, targetID, LabelStarted)
	for {
		select {
		case <-done:
			return
		case <-t.C():
			// тик и Stop могли прийти одновременно - Stop важнее
			select {
			case <-done:
				return
			default:
			}
			m.CaptureNow(m.ctx, targetID, LabelPeriodic)
		}
	}
}

func (m *Manager) snapshot(ctx context.Context, targetID, description string) (rec Record, ok bool) {
	if m.snap == nil {
		return Record{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.Error("snapshot panicked", zap.String("target", targetID), zap.Error(fmt.Errorf("%v", r)))
			rec, ok = Record{}, false
		}
	}()
	return m.snap.Capture(ctx, targetID, description)
}

func (m *Manager) hook(added bool) {
	if m.onCapture != nil {
		m.onCapture(added)
	}
}
