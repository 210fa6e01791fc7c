package playback

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mgpai22/subview/internal/logging"
	"github.com/mgpai22/subview/internal/subtitle"
)

// TickInterval is how often a running driver samples the clock. Matching
// latency is bounded by it.
const TickInterval = 100 * time.Millisecond

// ErrClosed is returned when starting a driver after Close.
var ErrClosed = errors.New("playback driver closed")

// State of the driver's run.
type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Transition describes a change of the active record. Index is the position
// of the new active record in the sequence; ids may repeat, so From and To
// can be equal.
type Transition struct {
	From    int
	HadFrom bool
	To      int
	Index   int
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type span struct {
	start, end int64
}

type listener struct {
	id uint64
	fn func(Transition)
}

// Driver matches a running clock against a record sequence.
//
// A run starts at a reference instant with an offset; every tick computes
// elapsed = now - reference + offset and makes the first record whose
// [start, end] contains elapsed the active one. When nothing matches the
// previous active record is kept. The active record is tracked by position,
// so repeated ids stay distinct.
type Driver struct {
	records  []subtitle.Record
	spans    []span
	clock    Clock
	interval time.Duration
	logger   *logging.Logger

	mu        sync.Mutex
	state     State
	closed    bool
	reference time.Time
	offset    int64
	trim      int64
	elapsed   int64
	active    int
	hasActive bool
	stopCh    chan struct{}
	done      chan struct{}

	listeners    []listener
	nextListener uint64
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(d *Driver) { d.clock = c }
}

// WithLogger attaches a logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// New builds an idle driver. Every record's timestamps must convert to
// milliseconds.
func New(records []subtitle.Record, opts ...Option) (*Driver, error) {
	spans := make([]span, len(records))
	for i, r := range records {
		start, err := r.StartMillis()
		if err != nil {
			return nil, fmt.Errorf("record %d: start: %w", r.ID, err)
		}
		end, err := r.EndMillis()
		if err != nil {
			return nil, fmt.Errorf("record %d: end: %w", r.ID, err)
		}
		spans[i] = span{start: start, end: end}
	}

	d := &Driver{
		records:  records,
		spans:    spans,
		clock:    ClockFunc(time.Now),
		interval: TickInterval,
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Records returns the sequence the driver plays, in file order.
func (d *Driver) Records() []subtitle.Record {
	return d.records
}

// Subscribe registers fn to be called on every change of the active record.
// Calls come from the tick goroutine or from Seek, never with the driver
// locked. fn must not block, and must not call Start, Seek, Stop or Close.
//
// The returned func removes fn. A notification already in flight may still
// reach it once.
func (d *Driver) Subscribe(fn func(Transition)) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextListener++
	id := d.nextListener
	// notify works on a copy taken under the lock, so never append in place
	d.listeners = append(d.listeners[:len(d.listeners):len(d.listeners)], listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			kept := make([]listener, 0, len(d.listeners))
			for _, l := range d.listeners {
				if l.id != id {
					kept = append(kept, l)
				}
			}
			d.listeners = kept
		})
	}
}

// Start begins a run using the offset last given to AdjustOffset.
func (d *Driver) Start() error {
	d.mu.Lock()
	trim := d.trim
	d.mu.Unlock()
	return d.StartFrom(trim)
}

// StartFrom begins a run whose elapsed time starts at offsetMs. A run already
// in progress is stopped first.
func (d *Driver) StartFrom(offsetMs int64) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	prev := d.stopLocked()
	d.startLocked(offsetMs)
	d.mu.Unlock()

	wait(prev)
	d.logger.Debugw("Playback started", "offset_ms", offsetMs)
	return nil
}

// Seek restarts playback at rec's start time and makes rec active at once,
// without waiting for a tick. rec must be one of Records; an identical
// record is matched first, then the first record with the same id.
func (d *Driver) Seek(rec subtitle.Record) error {
	idx := d.indexOf(rec)
	if idx < 0 {
		return fmt.Errorf("seek to record %d: not in the playback sequence", rec.ID)
	}
	return d.SeekIndex(idx)
}

// SeekIndex is Seek for the record at position idx of Records.
func (d *Driver) SeekIndex(idx int) error {
	if idx < 0 || idx >= len(d.records) {
		return fmt.Errorf("seek to position %d: out of range (%d records)", idx, len(d.records))
	}
	rec := d.records[idx]
	start := d.spans[idx].start

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	prev := d.stopLocked()
	d.startLocked(start)
	tr, changed := d.setActiveLocked(idx)
	listeners := d.listeners
	d.mu.Unlock()

	wait(prev)
	d.logger.Debugw("Seek", "record", rec.ID, "position_ms", start)
	if changed {
		notify(listeners, tr)
	}
	return nil
}

// Stop ends the current run. Calling it while not running does nothing. The
// active record is left as it is.
func (d *Driver) Stop() {
	d.mu.Lock()
	done := d.stopLocked()
	d.mu.Unlock()

	if done != nil {
		wait(done)
		d.logger.Debugw("Playback stopped")
	}
}

// Close stops the driver for good and waits for its tick goroutine to exit.
func (d *Driver) Close() error {
	d.mu.Lock()
	done := d.stopLocked()
	d.closed = true
	d.mu.Unlock()

	wait(done)
	return nil
}

// AdjustOffset sets the offset used by the next Start. A run in progress keeps
// the offset it was started with.
func (d *Driver) AdjustOffset(offsetMs int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.trim = offsetMs
}

// Offset returns the value last given to AdjustOffset.
func (d *Driver) Offset() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.trim
}

// Active returns the id of the active record, if any.
func (d *Driver) Active() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hasActive {
		return 0, false
	}
	return d.records[d.active].ID, true
}

// ActiveIndex returns the position of the active record in Records, if any.
func (d *Driver) ActiveIndex() (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active, d.hasActive
}

// Running reports whether a run is in progress.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == Running
}

// State returns the run state.
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Elapsed returns the playback position in milliseconds. While stopped it is
// the position reached when the run ended.
func (d *Driver) Elapsed() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state == Running {
		return d.elapsedLocked()
	}
	return d.elapsed
}

func (d *Driver) startLocked(offsetMs int64) {
	d.reference = d.clock.Now()
	d.offset = offsetMs
	d.elapsed = offsetMs
	d.state = Running

	stop := make(chan struct{})
	done := make(chan struct{})
	d.stopCh, d.done = stop, done
	go d.run(stop, done)
}

// stopLocked cancels the run and returns the channel closed once its
// goroutine has exited, or nil when nothing was running.
func (d *Driver) stopLocked() chan struct{} {
	if d.state != Running {
		return nil
	}
	d.elapsed = d.elapsedLocked()
	close(d.stopCh)
	done := d.done
	d.stopCh, d.done = nil, nil
	d.state = Stopped
	return done
}

func (d *Driver) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.tick(stop)
		}
	}
}

// tick evaluates the run identified by stop. A tick from a run that has
// since been replaced is ignored.
func (d *Driver) tick(stop chan struct{}) {
	d.mu.Lock()
	if d.stopCh != stop {
		d.mu.Unlock()
		return
	}
	d.evaluateLocked()
}

// evaluateLocked expects d.mu held and releases it.
func (d *Driver) evaluateLocked() {
	elapsed := d.elapsedLocked()
	d.elapsed = elapsed

	var (
		tr      Transition
		changed bool
	)
	if i := d.match(elapsed); i >= 0 {
		tr, changed = d.setActiveLocked(i)
	}
	listeners := d.listeners
	d.mu.Unlock()

	if changed {
		notify(listeners, tr)
	}
}

// match returns the index of the first record covering ms, or -1.
func (d *Driver) match(ms int64) int {
	for i, s := range d.spans {
		if ms >= s.start && ms <= s.end {
			return i
		}
	}
	return -1
}

func (d *Driver) elapsedLocked() int64 {
	return d.clock.Now().Sub(d.reference).Milliseconds() + d.offset
}

// indexOf finds rec in the sequence, or returns -1.
func (d *Driver) indexOf(rec subtitle.Record) int {
	byID := -1
	for i, r := range d.records {
		if r == rec {
			return i
		}
		if byID < 0 && r.ID == rec.ID {
			byID = i
		}
	}
	return byID
}

// setActiveLocked makes the record at idx active. d.active holds a position.
func (d *Driver) setActiveLocked(idx int) (Transition, bool) {
	if d.hasActive && d.active == idx {
		return Transition{}, false
	}
	tr := Transition{To: d.records[idx].ID, Index: idx}
	if d.hasActive {
		tr.From, tr.HadFrom = d.records[d.active].ID, true
	}
	d.active = idx
	d.hasActive = true
	return tr, true
}

func notify(listeners []listener, tr Transition) {
	for _, l := range listeners {
		l.fn(tr)
	}
}

func wait(done chan struct{}) {
	if done != nil {
		<-done
	}
}
