package tip

import (
	"image"

	"go.uber.org/zap"
)

// Element is the building block of the ui tree the tooltip machinery operates
// on. It intentionally carries no rendering state beyond Bounds and a set of
// free-form attributes: rendering belongs to the host, the element tree only
// arbitrates event ownership and containment.
type Element struct {
	doc *Document

	Parent *Element
	path   *Elements // ancestor list, root first

	Name string
	ID   string

	// Bounds is the on-screen rectangle of the element, maintained by the
	// host render surface. The default placement solver reads and writes it.
	Bounds image.Rectangle

	Attrs map[string]string

	Children *Elements

	OnEvent                EventListeners
	NativeEventUnlisteners NativeEventUnlisteners

	Native NativeElement
}

// Document returns the document the element was created by.
func (e *Element) Document() *Document { return e.doc }

type Elements struct {
	List []*Element
}

func NewElements(elements ...*Element) *Elements {
	return &Elements{elements}
}

func (e *Elements) InsertLast(elements ...*Element) *Elements {
	e.List = append(e.List, elements...)
	return e
}

func (e *Elements) InsertFirst(elements ...*Element) *Elements {
	e.List = append(elements, e.List...)
	return e
}

func (e *Elements) Remove(el *Element) *Elements {
	index := -1
	for k, element := range e.List {
		if element == el {
			index = k
			break
		}
	}
	if index >= 0 {
		e.List = append(e.List[:index], e.List[index+1:]...)
	}
	return e
}

func (e *Elements) RemoveAll() *Elements {
	e.List = nil
	return e
}

// Handle calls up the event handlers in charge of processing the event for
// which the Element is listening.
func (e *Element) Handle(evt Event) bool {
	evt.SetCurrentTarget(e)
	return e.OnEvent.Handle(evt)
}

// DispatchEvent propagates an event through the ui tree following the model
// set by web browser DOM events: capture phase from the root down, at-target,
// then bubbling up if allowed. Handlers running during the bubble phase see
// the event bottom-up, which is what lets the innermost of several nested
// hoverable regions claim a pointer event first.
func (e *Element) DispatchEvent(evt Event) *Element {
	if e.doc != nil {
		defer e.doc.claims.release(evt)
	}
	if e.Detached() {
		if e.doc != nil {
			e.doc.logger.Debug("dispatch on detached element ignored",
				zap.String("element", e.ID), zap.String("event", evt.Type()))
		}
		return e
	}

	// capture PHASE 1
	evt.SetPhase(1)
	var done bool
	for _, ancestor := range e.path.List {
		if evt.Stopped() {
			return e
		}
		done = ancestor.Handle(evt)
		if done || evt.Stopped() {
			return e
		}
	}

	// at target PHASE 2
	evt.SetPhase(2)
	done = e.Handle(evt)
	if done || evt.Stopped() {
		return e
	}

	// bubbling PHASE 3
	if !evt.Bubbles() {
		return e
	}
	evt.SetPhase(3)
	for k := len(e.path.List) - 1; k >= 0; k-- {
		ancestor := e.path.List[k]
		if evt.Stopped() {
			return e
		}
		done = ancestor.Handle(evt)
		if done {
			return e
		}
	}
	return e
}

// attach links a child Element to the subtree its target parent belongs to,
// rebuilding ancestor paths for the whole descendant subtree.
func attach(parent, child *Element) {
	child.Parent = parent
	child.path.RemoveAll()
	child.path.InsertLast(parent.path.List...)
	child.path.InsertLast(parent)

	for _, descendant := range child.Children.List {
		attach(child, descendant)
	}
}

// detach unlinks an Element from its parent. The detached subtree keeps its
// internal structure but can no longer receive dispatched events.
func detach(e *Element) {
	if e.Parent == nil {
		return
	}
	e.Parent = nil
	e.path.RemoveAll()

	for _, descendant := range e.Children.List {
		attach(e, descendant)
	}
}

// AppendChild appends a new element to the element's children list.
func (e *Element) AppendChild(child *Element) *Element {
	if old := child.Parent; old != nil {
		detach(child)
		old.Children.Remove(child)
	}
	attach(e, child)
	e.Children.InsertLast(child)
	if e.Native != nil {
		e.Native.AppendChild(child)
	}
	return e
}

func (e *Element) RemoveChild(child *Element) *Element {
	detach(child)
	e.Children.Remove(child)
	if e.Native != nil {
		e.Native.RemoveChild(child)
	}
	return e
}

func (e *Element) RemoveChildren() *Element {
	for _, child := range snapshotElements(e.Children.List) {
		e.RemoveChild(child)
	}
	return e
}

func snapshotElements(list []*Element) []*Element {
	s := make([]*Element, len(list))
	copy(s, list)
	return s
}

// Contains reports whether target sits in the structural subtree rooted at e.
// An element contains itself. For the logical variant that also follows
// detached tooltip content, see LogicalTree.IsLogicalDescendant.
func (e *Element) Contains(target *Element) bool {
	if target == nil {
		return false
	}
	if target == e {
		return true
	}
	for _, ancestor := range target.path.List {
		if ancestor == e {
			return true
		}
	}
	return false
}

// Detached returns whether the element belongs to a subtree that is not
// attached to its document root.
func (e *Element) Detached() bool {
	if e.doc == nil {
		return true
	}
	if e == e.doc.Root {
		return false
	}
	if len(e.path.List) == 0 {
		return true
	}
	return e.path.List[0] != e.doc.Root
}

func (e *Element) AddEventListener(event string, handler *EventHandler) *Element {
	e.OnEvent.AddEventHandler(event, handler)
	if e.doc != nil && e.doc.nativeBridge != nil {
		e.doc.nativeBridge(event, e)
	}
	return e
}

func (e *Element) RemoveEventListener(event string, handler *EventHandler) *Element {
	e.OnEvent.RemoveEventHandler(event, handler)
	if e.NativeEventUnlisteners.List != nil {
		e.NativeEventUnlisteners.Apply(event)
	}
	return e
}
