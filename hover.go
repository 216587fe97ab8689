package tip

// HoverState is the per-region hover state resolved by a HoverDetector.
type HoverState int

const (
	HoverOff HoverState = iota
	HoverOver
	HoverCtrlOver
)

func (s HoverState) String() string {
	switch s {
	case HoverOff:
		return "off"
	case HoverOver:
		return "over"
	case HoverCtrlOver:
		return "ctrlover"
	}
	return "unknown"
}

// HoverDetector converts the raw pointer events reaching one hoverable region
// plus the global modifier key stream into a HoverState. Detectors of nested
// regions all observe the same physical pointer event while it bubbles; the
// claim registry makes sure only the innermost one, which handles the event
// first, reacts to it.
type HoverDetector struct {
	region *Element
	set    func(HoverState)

	state HoverState

	overHandler *EventHandler
	outHandler  *EventHandler
	moveHandler *EventHandler

	removeKeyDown func()
	removeKeyUp   func()

	attached bool
}

// NewHoverDetector creates a detector for region. State changes are reported
// through set, which is only invoked on actual changes. The detector is inert
// until Attach is called.
func NewHoverDetector(region *Element, set func(HoverState)) *HoverDetector {
	d := &HoverDetector{region: region, set: set}

	d.overHandler = NewEventHandler(func(evt Event) bool {
		pe, ok := evt.(*PointerEvent)
		if !ok {
			return false
		}
		if !d.region.Contains(evt.Target()) {
			return false
		}
		if !d.region.doc.Claim(evt, d.region) {
			return false
		}
		if pe.Modifiers.HasControl() {
			d.setState(HoverCtrlOver)
		} else {
			d.setState(HoverOver)
		}
		return false
	})

	d.outHandler = NewEventHandler(func(evt Event) bool {
		if _, ok := evt.(*PointerEvent); !ok {
			return false
		}
		if !d.region.Contains(evt.Target()) {
			return false
		}
		if !d.region.doc.Claim(evt, d.region) {
			return false
		}
		d.setState(HoverOff)
		return false
	})

	d.moveHandler = NewEventHandler(func(evt Event) bool {
		pe, ok := evt.(*PointerEvent)
		if !ok {
			return false
		}
		if !d.region.Contains(evt.Target()) {
			return false
		}
		// moves never affect an idle region, only promote or demote.
		switch {
		case d.state == HoverOver && pe.Modifiers.HasControl():
			d.setState(HoverCtrlOver)
		case d.state == HoverCtrlOver && !pe.Modifiers.HasControl():
			d.setState(HoverOver)
		}
		return false
	})

	return d
}

// State returns the current hover state.
func (d *HoverDetector) State() HoverState { return d.state }

// Attach wires the region handlers and the global key listeners. Attaching an
// already attached detector is a no-op.
func (d *HoverDetector) Attach() {
	if d.attached {
		return
	}
	d.attached = true

	d.region.AddEventListener(PointerOver, d.overHandler)
	d.region.AddEventListener(PointerOut, d.outHandler)
	d.region.AddEventListener(PointerMove, d.moveHandler)

	doc := d.region.doc
	d.removeKeyDown = doc.AddKeyListener(KeyDown, NewEventHandler(func(evt Event) bool {
		ke, ok := evt.(*KeyEvent)
		if !ok || !isControlKey(ke.Key) {
			return false
		}
		if d.state == HoverOver {
			d.setState(HoverCtrlOver)
		}
		return false
	}))
	d.removeKeyUp = doc.AddKeyListener(KeyUp, NewEventHandler(func(evt Event) bool {
		ke, ok := evt.(*KeyEvent)
		if !ok || !isControlKey(ke.Key) {
			return false
		}
		if d.state == HoverCtrlOver {
			d.setState(HoverOver)
		}
		return false
	}))
}

// Detach removes every listener the detector installed. No state transition
// can be observed afterwards.
func (d *HoverDetector) Detach() {
	if !d.attached {
		return
	}
	d.attached = false

	d.region.RemoveEventListener(PointerOver, d.overHandler)
	d.region.RemoveEventListener(PointerOut, d.outHandler)
	d.region.RemoveEventListener(PointerMove, d.moveHandler)

	if d.removeKeyDown != nil {
		d.removeKeyDown()
		d.removeKeyDown = nil
	}
	if d.removeKeyUp != nil {
		d.removeKeyUp()
		d.removeKeyUp = nil
	}
}

func (d *HoverDetector) setState(s HoverState) {
	if s == d.state {
		return
	}
	d.state = s
	if d.set != nil {
		d.set(s)
	}
}

func isControlKey(key string) bool {
	return key == KeyControl || key == KeyMeta
}
