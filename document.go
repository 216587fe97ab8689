package tip

import (
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// NativeEventBridge is called whenever an event listener is added to an
// element so that a driver may install the matching native listener.
type NativeEventBridge func(event string, target *Element)

// Document owns the element tree and everything that must be arbitrated
// globally: the event claim registry, the global key listeners, the
// outside-click registrations and the logical tree. All its methods are meant
// to be called from the single event-processing goroutine of the host.
type Document struct {
	Root *Element

	// Attachment is the document-level mount point for tooltip content. It is
	// a structural child of Root so tooltip content bubbles events to Root
	// without ever passing through its logical owner; the LogicalTree is what
	// ties it back to the owning region.
	Attachment *Element

	logical *LogicalTree
	claims  claimRegistry

	keyListeners map[string][]*EventHandler
	outside      []*outsideClickRegistration

	scheduler    Scheduler
	solver       Solver
	nativeBridge NativeEventBridge
	logger       *zap.Logger

	cleanups []func() error
}

type DocumentOption func(*Document)

// WithLogger enables debug logging of dispatch, claims and state transitions.
func WithLogger(l *zap.Logger) DocumentOption {
	return func(d *Document) { d.logger = l }
}

// WithScheduler replaces the wall-clock scheduler: a ManualScheduler in
// tests and simulations, a LoopScheduler drained by the host loop in real
// hosts. The default runs timer callbacks on their own goroutines and is
// only safe when nothing else touches the document.
func WithScheduler(s Scheduler) DocumentOption {
	return func(d *Document) { d.scheduler = s }
}

// WithSolver replaces the default placement solver.
func WithSolver(s Solver) DocumentOption {
	return func(d *Document) { d.solver = s }
}

// WithNativeBridge installs the driver hook bridging listener registration to
// the native ui platform.
func WithNativeBridge(b NativeEventBridge) DocumentOption {
	return func(d *Document) { d.nativeBridge = b }
}

func NewDocument(options ...DocumentOption) *Document {
	d := &Document{
		logical:      NewLogicalTree(),
		claims:       newClaimRegistry(),
		keyListeners: make(map[string][]*EventHandler),
		scheduler:    realScheduler{},
		solver:       NewFlipSolver(),
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		opt(d)
	}
	d.Root = d.NewElement("root")
	d.Root.path = NewElements()
	d.Attachment = d.NewElement("tiplayer")
	d.Root.AppendChild(d.Attachment)
	return d
}

// NewElement creates a detached element owned by the document. It becomes
// dispatchable once appended somewhere under Root.
func (d *Document) NewElement(name string) *Element {
	return &Element{
		doc:                    d,
		path:                   NewElements(),
		Name:                   name,
		ID:                     uuid.NewString(),
		Attrs:                  make(map[string]string),
		Children:               NewElements(),
		OnEvent:                NewEventListenerStore(),
		NativeEventUnlisteners: NewNativeEventUnlisteners(),
	}
}

// Logical exposes the logical-ownership tree, the second containment tree
// next to the structural one held by the elements themselves.
func (d *Document) Logical() *LogicalTree { return d.logical }

// Scheduler returns the scheduler timers are created on.
func (d *Document) Scheduler() Scheduler { return d.scheduler }

// Claim marks the event as processed by the given element. It returns true
// for the first claimant only; every later claim of the same physical event
// fails. This is what guarantees that exactly one hover consumer in a nested
// stack reacts to a pointer event.
func (d *Document) Claim(evt Event, by *Element) bool {
	ok := d.claims.claim(evt, by)
	if ok {
		d.logger.Debug("event claimed",
			zap.String("event", evt.Type()), zap.String("by", by.ID))
	}
	return ok
}

// DispatchPointer routes a pointer event through the tree from its target and
// then runs the outside-click registrations for pointerdown events.
func (d *Document) DispatchPointer(evt *PointerEvent) {
	target := evt.Target()
	if target == nil {
		target = d.Root
	}
	target.DispatchEvent(evt)
	if evt.Type() == PointerDown {
		d.notifyOutsideClick(evt)
	}
}

// DispatchKey delivers a key event to every global key listener. Key events
// do not traverse the tree: modifier state is process-wide.
func (d *Document) DispatchKey(evt *KeyEvent) {
	evt.SetPhase(2)
	for _, h := range snapshotHandlers(d.keyListeners[evt.Type()]) {
		h.Handle(evt)
	}
}

// AddKeyListener installs a global key listener and returns its removal
// function. Callers must invoke the removal function on unmount.
func (d *Document) AddKeyListener(event string, h *EventHandler) (remove func()) {
	d.keyListeners[event] = append(d.keyListeners[event], h)
	return func() {
		list := d.keyListeners[event]
		for k, v := range list {
			if v == h {
				d.keyListeners[event] = append(list[:k], list[k+1:]...)
				return
			}
		}
	}
}

type outsideClickRegistration struct {
	root *Element
	fn   func(Event)
}

// OnOutsideClick invokes fn exactly once per pointerdown whose target is not
// a logical descendant of root. It returns the removal function.
func (d *Document) OnOutsideClick(root *Element, fn func(Event)) (remove func()) {
	reg := &outsideClickRegistration{root, fn}
	d.outside = append(d.outside, reg)
	return func() {
		for k, v := range d.outside {
			if v == reg {
				d.outside = append(d.outside[:k], d.outside[k+1:]...)
				return
			}
		}
	}
}

func (d *Document) notifyOutsideClick(evt *PointerEvent) {
	regs := make([]*outsideClickRegistration, len(d.outside))
	copy(regs, d.outside)
	for _, reg := range regs {
		if d.logical.IsLogicalDescendant(reg.root, evt.Target()) {
			continue
		}
		reg.fn(evt)
	}
}

// AddCleanup registers a teardown function run by Close, typically installed
// by drivers holding native resources.
func (d *Document) AddCleanup(fn func() error) {
	d.cleanups = append(d.cleanups, fn)
}

// Close tears the document down, running every registered cleanup and
// aggregating their errors.
func (d *Document) Close() error {
	var err error
	for k := len(d.cleanups) - 1; k >= 0; k-- {
		err = multierr.Append(err, d.cleanups[k]())
	}
	d.cleanups = nil
	d.keyListeners = make(map[string][]*EventHandler)
	d.outside = nil
	return err
}

// claimRegistry records which element processed a physical event, keyed by
// the event's identity rather than by mutating the shared event value.
type claimRegistry struct {
	owners map[string]string // event id -> element id
}

func newClaimRegistry() claimRegistry {
	return claimRegistry{make(map[string]string)}
}

func (c claimRegistry) claim(evt Event, by *Element) bool {
	if _, taken := c.owners[evt.ID()]; taken {
		return false
	}
	c.owners[evt.ID()] = by.ID
	return true
}

// release drops the registry entry once dispatch has returned; claims only
// have to hold for the lifetime of a single propagation pass.
func (c claimRegistry) release(evt Event) {
	delete(c.owners, evt.ID())
}
