// Package gio bridges a tip.Document onto a gioui.org input source. The host
// declares one hit area per listening element every frame and the driver
// translates the pointer and modifier-key traffic into tip events.
package gio

import (
	"image"

	"gioui.org/io/event"
	"gioui.org/io/input"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/op"
	"gioui.org/op/clip"
	"go.uber.org/zap"

	"github.com/atdiar/tip"
)

const pointerKinds = pointer.Enter | pointer.Leave | pointer.Move |
	pointer.Press | pointer.Release | pointer.Cancel

// Driver accumulates the elements that registered event listeners, declares
// their hit areas on each frame and feeds the drained events back into the
// document. Create it first, then pass Bridge to tip.WithNativeBridge and
// Scheduler to tip.WithScheduler, and call Bind once the document exists:
//
//	d := gio.NewDriver(logger, gio.WithWake(w.Invalidate))
//	doc := tip.NewDocument(tip.WithNativeBridge(d.Bridge()), tip.WithScheduler(d.Scheduler()))
//	d.Bind(doc)
//
// The document is single-goroutine; Frame runs on the window loop and is
// where both input events and expired debounce timers are delivered.
type Driver struct {
	doc    *tip.Document
	logger *zap.Logger
	sched  *tip.LoopScheduler
	wake   func()

	listening map[*tip.Element]map[string]struct{}
	pressed   map[*tip.Element]bool
}

type Option func(*Driver)

// WithWake installs the callback invoked when a debounce timer expires while
// the window loop is idle, typically the window's Invalidate, so the next
// Frame runs and delivers it.
func WithWake(wake func()) Option {
	return func(d *Driver) { d.wake = wake }
}

func NewDriver(logger *zap.Logger, options ...Option) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Driver{
		logger:    logger,
		listening: make(map[*tip.Element]map[string]struct{}),
		pressed:   make(map[*tip.Element]bool),
	}
	for _, opt := range options {
		opt(d)
	}
	d.sched = tip.NewLoopScheduler(d.wakeLoop)
	return d
}

func (d *Driver) wakeLoop() {
	if d.wake != nil {
		d.wake()
	}
}

// Scheduler returns the loop-serialized scheduler the document must be
// created with. Timer callbacks queue until Frame drains them, so they run
// on the window loop like everything else touching the document.
func (d *Driver) Scheduler() tip.Scheduler { return d.sched }

// Bridge returns the listener-registration hook for tip.WithNativeBridge.
func (d *Driver) Bridge() tip.NativeEventBridge {
	return func(evt string, target *tip.Element) {
		events, ok := d.listening[target]
		if !ok {
			events = make(map[string]struct{})
			d.listening[target] = events
		}
		if _, dup := events[evt]; dup {
			return
		}
		events[evt] = struct{}{}
		target.NativeEventUnlisteners.Add(evt, func() {
			delete(events, evt)
			if len(events) == 0 {
				delete(d.listening, target)
				delete(d.pressed, target)
			}
		})
	}
}

// Bind attaches the driver to its document and registers its teardown.
func (d *Driver) Bind(doc *tip.Document) {
	d.doc = doc
	doc.AddCleanup(func() error {
		d.listening = make(map[*tip.Element]map[string]struct{})
		d.pressed = make(map[*tip.Element]bool)
		return nil
	})
}

// Frame runs once per render frame, after the host has laid the tree out and
// refreshed element bounds. It declares the hit areas into ops and drains the
// input events of the previous frame into the document.
func (d *Driver) Frame(src input.Source, ops *op.Ops) {
	if d.doc == nil {
		return
	}
	d.sched.Drain()

	for el := range d.listening {
		if el.Detached() {
			continue
		}
		area := clip.Rect(el.Bounds).Push(ops)
		event.Op(ops, el)
		area.Pop()
	}

	for el := range d.listening {
		for {
			ev, ok := src.Event(pointer.Filter{Target: el, Kinds: pointerKinds})
			if !ok {
				break
			}
			pe, ok := ev.(pointer.Event)
			if !ok {
				continue
			}
			d.pointerEvent(el, pe)
		}
	}

	for {
		ev, ok := src.Event(
			key.Filter{Name: key.NameCtrl},
			key.Filter{Name: key.NameShift},
			key.Filter{Name: key.NameAlt},
			key.Filter{Name: key.NameSuper},
			key.Filter{Name: key.NameCommand},
		)
		if !ok {
			break
		}
		ke, ok := ev.(key.Event)
		if !ok {
			continue
		}
		typ := tip.KeyDown
		if ke.State == key.Release {
			typ = tip.KeyUp
		}
		d.doc.DispatchKey(tip.NewKeyEvent(typ, keyName(ke.Name), modifiers(ke.Modifiers), ke))
	}
}

func (d *Driver) pointerEvent(el *tip.Element, pe pointer.Event) {
	// gio delivers positions local to the hit area; the tree works in
	// document coordinates.
	pos := el.Bounds.Min.Add(image.Pt(int(pe.Position.X), int(pe.Position.Y)))
	mods := modifiers(pe.Modifiers)

	switch pe.Kind {
	case pointer.Enter:
		d.dispatch(tip.PointerOver, el, pos, mods, pe)
	case pointer.Leave:
		delete(d.pressed, el)
		d.dispatch(tip.PointerOut, el, pos, mods, pe)
	case pointer.Move:
		d.dispatch(tip.PointerMove, el, pos, mods, pe)
	case pointer.Press:
		d.pressed[el] = true
		d.dispatch(tip.PointerDown, el, pos, mods, pe)
	case pointer.Release:
		// a press and release on the same element makes a click; gio has no
		// click event of its own.
		if d.pressed[el] {
			delete(d.pressed, el)
			d.dispatch(tip.Click, el, pos, mods, pe)
		}
	case pointer.Cancel:
		delete(d.pressed, el)
	}
}

func (d *Driver) dispatch(typ string, el *tip.Element, pos image.Point, mods tip.Modifiers, native pointer.Event) {
	d.logger.Debug("pointer event",
		zap.String("type", typ), zap.String("element", el.ID))
	d.doc.DispatchPointer(tip.NewPointerEvent(typ, el, pos, mods, native))
}

func keyName(n key.Name) string {
	switch n {
	case key.NameCtrl:
		return tip.KeyControl
	case key.NameShift:
		return tip.KeyShift
	case key.NameAlt:
		return tip.KeyAlt
	case key.NameSuper, key.NameCommand:
		return tip.KeyMeta
	}
	return string(n)
}

func modifiers(m key.Modifiers) tip.Modifiers {
	var out tip.Modifiers
	if m.Contain(key.ModCtrl) {
		out |= tip.ModCtrl
	}
	if m.Contain(key.ModCommand) || m.Contain(key.ModSuper) {
		out |= tip.ModMeta
	}
	if m.Contain(key.ModAlt) {
		out |= tip.ModAlt
	}
	if m.Contain(key.ModShift) {
		out |= tip.ModShift
	}
	return out
}
