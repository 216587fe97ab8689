package tip

// StateHandler is a wrapper type around a callback function run after a
// disclosure state change. Returning true stops the remaining handlers.
type StateHandler struct {
	Fn func(old, new DisclosureState) bool
}

func NewStateHandler(f func(old, new DisclosureState) bool) *StateHandler {
	return &StateHandler{f}
}

func (m *StateHandler) Handle(old, new DisclosureState) bool {
	return m.Fn(old, new)
}

type stateCallbacks struct {
	list []*StateHandler
}

func (m *stateCallbacks) Add(h *StateHandler) *stateCallbacks {
	m.list = append(m.list, h)
	return m
}

func (m *stateCallbacks) Remove(h *StateHandler) *stateCallbacks {
	index := -1
	for k, v := range m.list {
		if v != h {
			continue
		}
		index = k
		break
	}
	if index >= 0 {
		m.list = append(m.list[:index], m.list[index+1:]...)
	}
	return m
}

func (m *stateCallbacks) Dispatch(old, new DisclosureState) {
	list := make([]*StateHandler, len(m.list))
	copy(list, m.list)
	for _, h := range list {
		if h.Handle(old, new) {
			return
		}
	}
}
