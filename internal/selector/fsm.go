package selector

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/ironsheep/handwrite-mcp/internal/geometry"
	"github.com/ironsheep/handwrite-mcp/internal/imaging"
	"github.com/ironsheep/handwrite-mcp/internal/logging"
)

// State is the drag state of a Selector.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Extractor produces the line image for a committed rectangle.
// *imaging.LineExtractor satisfies it.
type Extractor interface {
	Extract(r geometry.Rect) (*imaging.ExtractedLine, error)
}

// Region is a committed rectangle and the outcome of its extraction.
type Region struct {
	geometry.Rect

	// Line is nil when extraction failed.
	Line *imaging.ExtractedLine `json:"-"`

	// Failed is set when Err is non-nil.
	Failed bool  `json:"failed"`
	Err    error `json:"-"`
}

// Commit is the result of finishing a drag.
type Commit struct {
	// Region is the normalized rectangle, committed or not.
	Region Region

	// Committed is false when the drag was too small or no drag was active.
	Committed bool

	// Err is the extraction error for a committed region.
	Err error
}

// EventKind identifies a selector state change.
type EventKind int

const (
	EventDragStart EventKind = iota
	EventDragMove
	EventCommit
	EventDiscard
	EventClear
)

func (k EventKind) String() string {
	switch k {
	case EventDragStart:
		return "drag_start"
	case EventDragMove:
		return "drag_move"
	case EventCommit:
		return "commit"
	case EventDiscard:
		return "discard"
	case EventClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after every state change.
type Event struct {
	Kind EventKind
	Rect geometry.Rect
}

// Selector collects line regions drawn over one displayed image.
type Selector struct {
	display   geometry.DisplayImage
	extractor Extractor
	logger    *slog.Logger

	state   State
	start   geometry.Point
	current *geometry.Rect
	regions []Region

	listeners []func(Event)
	newID     func() string
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger used for commit and failure messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the UUID generator for region IDs.
func WithIDGenerator(f func() string) Option {
	return func(s *Selector) {
		if f != nil {
			s.newID = f
		}
	}
}

// New returns an idle Selector for the given display geometry. extractor
// may be nil, in which case regions are committed without lines.
func New(display geometry.DisplayImage, extractor Extractor, opts ...Option) *Selector {
	s := &Selector{
		display:   display,
		extractor: extractor,
		logger:    logging.Discard(),
		newID:     uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// OnChange registers a listener called synchronously after each state
// change.
func (s *Selector) OnChange(l func(Event)) {
	if l != nil {
		s.listeners = append(s.listeners, l)
	}
}

func (s *Selector) emit(kind EventKind, r geometry.Rect) {
	ev := Event{Kind: kind, Rect: r}
	for _, l := range s.listeners {
		l(ev)
	}
}

// State returns the current drag state.
func (s *Selector) State() State { return s.state }

// Display returns the display geometry the selector was created with.
func (s *Selector) Display() geometry.DisplayImage { return s.display }

// PointerDown starts a drag at p. It returns false, and does nothing, when
// a drag is already active or p is off the image.
func (s *Selector) PointerDown(p geometry.Point) bool {
	if s.state != Idle || !s.display.Contains(p) {
		return false
	}
	s.state = Dragging
	s.start = p
	s.current = &geometry.Rect{ID: s.newID(), X: p.X, Y: p.Y}
	s.emit(EventDragStart, *s.current)
	return true
}

// PointerMove stretches the in-progress rectangle to p. Extents may be
// negative when dragging up or left. It returns false when idle.
func (s *Selector) PointerMove(p geometry.Point) bool {
	if s.state != Dragging {
		return false
	}
	s.stretch(p)
	s.emit(EventDragMove, *s.current)
	return true
}

func (s *Selector) stretch(p geometry.Point) {
	p = s.display.Clamp(p)
	s.current.Width = p.X - s.start.X
	s.current.Height = p.Y - s.start.Y
}

// PointerUp finishes the drag at p.
func (s *Selector) PointerUp(p geometry.Point) Commit {
	if s.state != Dragging {
		return Commit{}
	}
	s.stretch(p)
	return s.finish()
}

// PointerLeave finishes the drag at the last known pointer position.
func (s *Selector) PointerLeave() Commit {
	if s.state != Dragging {
		return Commit{}
	}
	return s.finish()
}

func (s *Selector) finish() Commit {
	raw := *s.current
	s.current = nil
	s.state = Idle

	r := geometry.Normalize(raw)
	if !geometry.PassesThreshold(raw) {
		s.logger.Debug("selection discarded", "width", r.Width, "height", r.Height)
		s.emit(EventDiscard, r)
		return Commit{Region: Region{Rect: r}}
	}

	region := Region{Rect: r}
	if s.extractor != nil {
		line, err := s.extractor.Extract(r)
		if err != nil {
			region.Err = err
			region.Failed = true
			s.logger.Warn("line extraction failed", "region", r.ID, "error", err)
		} else {
			region.Line = line
		}
	}
	s.regions = append(s.regions, region)
	s.logger.Debug("selection committed", "region", r.ID, "index", len(s.regions))
	s.emit(EventCommit, r)

	return Commit{Region: region, Committed: true, Err: region.Err}
}

// ClearAll removes every committed region and any drag in progress.
func (s *Selector) ClearAll() {
	s.regions = nil
	s.current = nil
	s.state = Idle
	s.emit(EventClear, geometry.Rect{})
}

// Regions returns the committed regions in commit order.
func (s *Selector) Regions() []Region {
	out := make([]Region, len(s.regions))
	copy(out, s.regions)
	return out
}

// Len returns the number of committed regions.
func (s *Selector) Len() int { return len(s.regions) }

// Lines returns the extracted lines of committed regions in commit order,
// skipping regions whose extraction failed.
func (s *Selector) Lines() []*imaging.ExtractedLine {
	var lines []*imaging.ExtractedLine
	for _, r := range s.regions {
		if r.Line != nil {
			lines = append(lines, r.Line)
		}
	}
	return lines
}

// Failed returns the number of committed regions whose extraction failed.
func (s *Selector) Failed() int {
	n := 0
	for _, r := range s.regions {
		if r.Failed {
			n++
		}
	}
	return n
}

// InProgress returns the rectangle being dragged, if any. Its extents may
// be negative.
func (s *Selector) InProgress() (geometry.Rect, bool) {
	if s.current == nil {
		return geometry.Rect{}, false
	}
	return *s.current, true
}
