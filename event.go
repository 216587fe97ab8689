// Package tip implements hover and click driven tooltip disclosure over a
// generic ui element tree.
package tip

import (
	"image"

	"github.com/google/uuid"
)

// Pointer and key event types dispatched through the element tree.
const (
	PointerOver = "pointerover"
	PointerOut  = "pointerout"
	PointerMove = "pointermove"
	PointerDown = "pointerdown"
	Click       = "click"

	KeyDown = "keydown"
	KeyUp   = "keyup"
)

// Key names for the modifier keys the hover machinery reacts to.
const (
	KeyControl = "Control"
	KeyMeta    = "Meta"
	KeyAlt     = "Alt"
	KeyShift   = "Shift"
)

// Modifiers is the set of modifier keys held while an input event fired.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModMeta
	ModAlt
	ModShift
)

func (m Modifiers) Has(mod Modifiers) bool { return m&mod != 0 }

// HasControl reports whether Ctrl or Meta is held. Both keys carry the
// same meaning for hover promotion.
func (m Modifiers) HasControl() bool { return m.Has(ModCtrl) || m.Has(ModMeta) }

type Event interface {
	Type() string
	ID() string // unique per physical event, used by the claim registry
	Target() *Element
	CurrentTarget() *Element

	PreventDefault()
	StopPropagation()          // the phase is still 1,2 or 3 but Stopped returns true
	StopImmediatePropagation() // sets the Phase to 0 and Stopped to true
	SetPhase(int)
	SetCurrentTarget(*Element)

	Phase() int
	Bubbles() bool
	DefaultPrevented() bool
	Stopped() bool

	Native() any // returns the native event object
}

type eventObject struct {
	typ           string
	id            string
	target        *Element
	currentTarget *Element

	defaultPrevented bool
	bubbles          bool
	stopped          bool
	phase            int

	nativeObject any
}

type defaultPreventer interface {
	PreventDefault()
}

func (e *eventObject) Type() string            { return e.typ }
func (e *eventObject) ID() string              { return e.id }
func (e *eventObject) Target() *Element        { return e.target }
func (e *eventObject) CurrentTarget() *Element { return e.currentTarget }
func (e *eventObject) PreventDefault() {
	if v, ok := e.nativeObject.(defaultPreventer); ok {
		v.PreventDefault()
	}
	e.defaultPrevented = true
}
func (e *eventObject) StopPropagation() { e.stopped = true }
func (e *eventObject) StopImmediatePropagation() {
	e.stopped = true
	e.phase = 0
}
func (e *eventObject) SetPhase(i int)              { e.phase = i }
func (e *eventObject) SetCurrentTarget(t *Element) { e.currentTarget = t }
func (e *eventObject) Phase() int                  { return e.phase }
func (e *eventObject) Bubbles() bool               { return e.bubbles }
func (e *eventObject) DefaultPrevented() bool      { return e.defaultPrevented }
func (e *eventObject) Stopped() bool               { return e.stopped }
func (e *eventObject) Native() any                 { return e.nativeObject }

func newEventObject(typ string, bubbles bool, target *Element, nativeEvent any) *eventObject {
	return &eventObject{typ, uuid.NewString(), target, target, false, bubbles, false, 0, nativeEvent}
}

// NewEvent creates a plain event. Pointer and key events should be created
// with NewPointerEvent and NewKeyEvent instead.
func NewEvent(typ string, bubbles bool, target *Element, nativeEvent any) Event {
	return newEventObject(typ, bubbles, target, nativeEvent)
}

// PointerEvent carries the pointer position and the modifier keys held when
// the event fired.
type PointerEvent struct {
	Event
	Position  image.Point
	Modifiers Modifiers
}

func NewPointerEvent(typ string, target *Element, pos image.Point, mods Modifiers, nativeEvent any) *PointerEvent {
	return &PointerEvent{newEventObject(typ, true, target, nativeEvent), pos, mods}
}

// KeyEvent carries the name of the key that went down or up. Key events are
// delivered to the global key listeners of a Document, not to the tree.
type KeyEvent struct {
	Event
	Key       string
	Modifiers Modifiers
}

func NewKeyEvent(typ string, key string, mods Modifiers, nativeEvent any) *KeyEvent {
	return &KeyEvent{newEventObject(typ, false, nil, nativeEvent), key, mods}
}

// EventListeners stores the event handlers of an Element, keyed by event type.
type EventListeners struct {
	list map[string]*eventHandlers
}

func NewEventListenerStore() EventListeners {
	return EventListeners{make(map[string]*eventHandlers)}
}

func (e EventListeners) AddEventHandler(event string, handler *EventHandler) {
	eh, ok := e.list[event]
	if !ok {
		e.list[event] = newEventHandlers().Add(handler)
		return
	}
	eh.Add(handler)
}

func (e EventListeners) RemoveEventHandler(event string, handler *EventHandler) {
	eh, ok := e.list[event]
	if !ok {
		return
	}
	eh.Remove(handler)
}

func (e EventListeners) Handle(evt Event) bool {
	evh, ok := e.list[evt.Type()]
	if !ok {
		return false
	}
	switch evt.Phase() {
	case 0:
		return false
	case 1:
		for _, h := range snapshotHandlers(evh.List) {
			if !h.Capture {
				continue
			}
			done := h.Handle(evt)
			if h.Once {
				evh.Remove(h)
			}
			if done {
				return done
			}
			if evt.Stopped() && (evt.Phase() == 0) {
				return true
			}
		}
	case 2:
		for _, h := range snapshotHandlers(evh.List) {
			done := h.Handle(evt)
			if h.Once {
				evh.Remove(h)
			}
			if done {
				return done
			}
			if evt.Stopped() && (evt.Phase() == 0) {
				return true
			}
		}
	case 3:
		if !evt.Bubbles() {
			return false
		}
		for _, h := range snapshotHandlers(evh.List) {
			if h.Capture {
				continue
			}
			done := h.Handle(evt)
			if h.Once {
				evh.Remove(h)
			}
			if done {
				return done
			}
			if evt.Stopped() && (evt.Phase() == 0) {
				return true
			}
		}
	}
	return false
}

// snapshotHandlers guards against handler list mutation while iterating,
// e.g. a Once handler removing itself.
func snapshotHandlers(list []*EventHandler) []*EventHandler {
	s := make([]*EventHandler, len(list))
	copy(s, list)
	return s
}

type eventHandlers struct {
	List []*EventHandler
}

func newEventHandlers() *eventHandlers {
	return &eventHandlers{make([]*EventHandler, 0)}
}

func (e *eventHandlers) Add(h *EventHandler) *eventHandlers {
	e.List = append(e.List, h)
	return e
}

func (e *eventHandlers) Remove(h *EventHandler) *eventHandlers {
	index := -1
	for k, v := range e.List {
		if v != h {
			continue
		}
		index = k
		break
	}
	if index >= 0 {
		e.List = append(e.List[:index], e.List[index+1:]...)
	}
	return e
}

type EventHandler struct {
	Fn      func(Event) bool
	Capture bool // if false the handler runs while bubbling up, otherwise during the capture phase

	Once bool
}

func (e EventHandler) Handle(evt Event) bool {
	return e.Fn(evt)
}

func NewEventHandler(fn func(Event) bool) *EventHandler {
	return &EventHandler{fn, false, false}
}

func (e *EventHandler) ForCapture() *EventHandler {
	e.Capture = true
	return e
}

func (e *EventHandler) TriggerOnce() *EventHandler {
	e.Once = true
	return e
}
