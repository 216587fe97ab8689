package tip

// NativeElement is implemented by drivers wrapping an element of the host ui
// platform, so tree mutations made here are mirrored natively.
type NativeElement interface {
	AppendChild(child *Element)
	RemoveChild(child *Element)
}

// NativeEventUnlisteners collects the removal functions for event listeners a
// driver registered on the native element, keyed by event type. Bridged
// listeners are torn down through it when the Go-side listener is removed.
type NativeEventUnlisteners struct {
	List map[string]func()
}

func NewNativeEventUnlisteners() NativeEventUnlisteners {
	return NativeEventUnlisteners{}
}

func (n *NativeEventUnlisteners) Add(event string, f func()) {
	if n.List == nil {
		n.List = make(map[string]func())
	}
	if _, ok := n.List[event]; ok {
		return
	}
	n.List[event] = f
}

func (n NativeEventUnlisteners) Apply(event string) {
	removeNativeEventListener, ok := n.List[event]
	if !ok {
		return
	}
	removeNativeEventListener()
	delete(n.List, event)
}
