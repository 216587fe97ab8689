package tip

import (
	"time"

	"go.uber.org/zap"
)

// DisclosureState is the open/closed lifecycle state of one tooltip.
type DisclosureState int

const (
	// StateHide means the tooltip is unmounted.
	StateHide DisclosureState = iota
	// StateShow means the tooltip is mounted because of hover and may
	// auto-close once the pointer has left both the region and the tooltip.
	StateShow
	// StatePin means the tooltip was opened by an explicit click or by a
	// descendant pinning its ancestors. It never auto-closes; only a re-click
	// or a click outside dismisses it.
	StatePin
)

func (s DisclosureState) String() string {
	switch s {
	case StateHide:
		return "hide"
	case StateShow:
		return "show"
	case StatePin:
		return "pin"
	}
	return "unknown"
}

// Default debounce delays between a qualifying pointer event and the
// resulting state transition.
const (
	DefaultShowDelay = 500 * time.Millisecond
	DefaultHideDelay = 300 * time.Millisecond
)

// ClickInterceptor lets a caller take over the click semantics of a region.
// proceed performs the default pin/unpin toggle; an interceptor that never
// calls it fully suppresses the default.
type ClickInterceptor func(evt Event, proceed func())

// ContentFunc builds the tooltip content for a view. It runs on every mount,
// before the first layout pass, so it may size view.Root and create nested
// controllers using the view's Chain and Trend.
type ContentFunc func(view *TooltipView) *Element

// TooltipDisclosureController owns the DisclosureState of one hoverable
// region. It mediates between the region's hover state, explicit clicks, the
// ancestor pin chain and outside-click detection, and mounts a TooltipView at
// the document attachment point whenever the state is not StateHide.
type TooltipDisclosureController struct {
	doc     *Document
	region  *Element
	content ContentFunc

	state   DisclosureState
	hover   HoverState
	overTip bool

	showDelay      time.Duration
	hideDelay      time.Duration
	intercept      ClickInterceptor
	fixedPlacement Placement

	inherited *TipChain
	link      *TipChain
	trend     *PlacementTrend

	detector      *HoverDetector
	clickHandler  *EventHandler
	removeOutside func()

	showSlot slot
	hideSlot slot

	watchers stateCallbacks
	view     *TooltipView

	closed bool
}

type ControllerOption func(*TooltipDisclosureController)

// WithShowDelay overrides the delay before a hover opens the tooltip.
func WithShowDelay(d time.Duration) ControllerOption {
	return func(c *TooltipDisclosureController) { c.showDelay = d }
}

// WithHideDelay overrides the delay before leaving the region closes it.
func WithHideDelay(d time.Duration) ControllerOption {
	return func(c *TooltipDisclosureController) { c.hideDelay = d }
}

// WithClickInterceptor installs middleware over the region's click handling.
func WithClickInterceptor(i ClickInterceptor) ControllerOption {
	return func(c *TooltipDisclosureController) { c.intercept = i }
}

// WithPlacement forces the tooltip side, bypassing the placement trend.
func WithPlacement(p Placement) ControllerOption {
	return func(c *TooltipDisclosureController) { c.fixedPlacement = p }
}

// WithChain threads the parent chain link into a nested controller. Content
// builders pass view.Chain() here so a click deep in nested tooltip content
// keeps the whole ancestor stack pinned.
func WithChain(link *TipChain) ControllerOption {
	return func(c *TooltipDisclosureController) { c.inherited = link }
}

// WithTrend shares the placement trend of an enclosing chain.
func WithTrend(t *PlacementTrend) ControllerOption {
	return func(c *TooltipDisclosureController) { c.trend = t }
}

// NewController wires a disclosure controller to region and mounts it: hover
// detection, click handling and outside-click dismissal are live once it
// returns. content may be nil for a bare tooltip bubble.
func NewController(region *Element, content ContentFunc, options ...ControllerOption) *TooltipDisclosureController {
	c := &TooltipDisclosureController{
		doc:       region.doc,
		region:    region,
		content:   content,
		showDelay: DefaultShowDelay,
		hideDelay: DefaultHideDelay,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.trend == nil {
		c.trend = NewPlacementTrend()
	}
	c.link = NewTipChain(c.inherited, func() { c.setState(StatePin) })

	c.detector = NewHoverDetector(region, c.onHoverChange)
	c.detector.Attach()

	c.clickHandler = NewEventHandler(c.onClick)
	region.AddEventListener(Click, c.clickHandler)

	c.removeOutside = c.doc.OnOutsideClick(region, c.onClickOutside)
	return c
}

// State returns the current disclosure state.
func (c *TooltipDisclosureController) State() DisclosureState { return c.state }

// ShouldShow reports whether a tooltip view is mounted.
func (c *TooltipDisclosureController) ShouldShow() bool { return c.state != StateHide }

// Hover returns the region's current hover state.
func (c *TooltipDisclosureController) Hover() HoverState { return c.detector.State() }

// View returns the mounted tooltip view, or nil while hidden.
func (c *TooltipDisclosureController) View() *TooltipView { return c.view }

// Region returns the hoverable region the controller is bound to.
func (c *TooltipDisclosureController) Region() *Element { return c.region }

// Chain returns the controller's own chain link: pinning through it pins the
// controller and every inherited ancestor. Descendant controllers receive it
// through WithChain.
func (c *TooltipDisclosureController) Chain() *TipChain { return c.link }

// OnStateChange registers a watcher notified after every state transition and
// returns its removal function.
func (c *TooltipDisclosureController) OnStateChange(h *StateHandler) (remove func()) {
	c.watchers.Add(h)
	return func() { c.watchers.Remove(h) }
}

// Pin forces the controller and every chained ancestor into StatePin.
func (c *TooltipDisclosureController) Pin() {
	if c.closed {
		return
	}
	c.link.Pin()
}

// Hide cancels pending timers and forces StateHide.
func (c *TooltipDisclosureController) Hide() {
	if c.closed {
		return
	}
	c.showSlot.Cancel()
	c.hideSlot.Cancel()
	c.setState(StateHide)
}

func (c *TooltipDisclosureController) onHoverChange(s HoverState) {
	if c.closed {
		return
	}
	prev := c.hover
	c.hover = s
	switch {
	case s == HoverOver && prev == HoverOff:
		c.scheduleShow()
	case s == HoverOff:
		c.scheduleHide()
		// promotions and demotions between over and ctrlover leave pending
		// timers alone.
	}
}

func (c *TooltipDisclosureController) scheduleShow() {
	c.hideSlot.Cancel()
	c.showSlot.Schedule(c.doc.Scheduler(), c.showDelay, func() {
		if c.closed {
			return
		}
		// revalidate: a click may already have pinned or a click outside may
		// have reset the region since the timer was armed.
		if c.state == StateHide {
			c.setState(StateShow)
		}
	})
}

func (c *TooltipDisclosureController) scheduleHide() {
	c.showSlot.Cancel()
	c.hideSlot.Schedule(c.doc.Scheduler(), c.hideDelay, func() {
		if c.closed {
			return
		}
		if c.overTip {
			// the pointer travelled from the region onto the tooltip; leaving
			// the tooltip re-arms the timer.
			return
		}
		if c.state == StateShow {
			c.setState(StateHide)
		}
	})
}

func (c *TooltipDisclosureController) onClick(evt Event) bool {
	pe, ok := evt.(*PointerEvent)
	if !ok {
		return false
	}
	if !c.region.Contains(evt.Target()) {
		return false
	}
	if !c.doc.Claim(evt, c.region) {
		return false
	}
	if pe.Modifiers != 0 {
		// suppress navigation side effects; disclosure is up to the caller's
		// middleware, which may or may not proceed with the default toggle.
		evt.PreventDefault()
		if c.intercept != nil {
			c.intercept(evt, c.toggle)
		}
		return false
	}
	if c.intercept != nil {
		c.intercept(evt, c.toggle)
		return false
	}
	c.toggle()
	return false
}

// toggle is the default click semantics: pin when not pinned, hide when
// pinned, with any pending timer cancelled either way.
func (c *TooltipDisclosureController) toggle() {
	if c.closed {
		return
	}
	c.showSlot.Cancel()
	c.hideSlot.Cancel()
	if c.state == StatePin {
		c.setState(StateHide)
		return
	}
	c.link.Pin()
}

func (c *TooltipDisclosureController) onClickOutside(evt Event) {
	if c.closed {
		return
	}
	c.showSlot.Cancel()
	c.hideSlot.Cancel()
	c.setState(StateHide)
}

// setPointerOverTip is invoked by the view when the pointer enters or leaves
// the tooltip content.
func (c *TooltipDisclosureController) setPointerOverTip(over bool) {
	if c.closed || c.overTip == over {
		return
	}
	c.overTip = over
	if !over && c.state == StateShow {
		c.scheduleHide()
	}
}

func (c *TooltipDisclosureController) setState(s DisclosureState) {
	if c.closed || s == c.state {
		return
	}
	old := c.state
	c.state = s
	c.doc.logger.Debug("disclosure transition",
		zap.String("region", c.region.ID),
		zap.Stringer("from", old),
		zap.Stringer("to", s))

	if old == StateHide {
		c.mountView()
	} else if s == StateHide {
		c.unmountView()
	}
	c.watchers.Dispatch(old, s)
}

func (c *TooltipDisclosureController) mountView() {
	if c.view != nil {
		return
	}
	c.view = newTooltipView(c)
}

func (c *TooltipDisclosureController) unmountView() {
	if c.view == nil {
		return
	}
	// the placement trend deliberately survives the unmount so a re-opened or
	// chained tooltip keeps bouncing in the same direction.
	c.view.unmount()
	c.view = nil
}

// Unmount is a hard cancellation boundary: pending timers are cancelled,
// every listener is removed, the view is torn down and no state transition
// can be observed afterwards.
func (c *TooltipDisclosureController) Unmount() {
	if c.closed {
		return
	}
	c.showSlot.Cancel()
	c.hideSlot.Cancel()
	c.detector.Detach()
	c.region.RemoveEventListener(Click, c.clickHandler)
	if c.removeOutside != nil {
		c.removeOutside()
		c.removeOutside = nil
	}
	c.unmountView()
	c.watchers.list = nil
	c.closed = true
}
