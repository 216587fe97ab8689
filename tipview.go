package tip

import (
	"image"
)

// DefaultViewSize is the nominal bubble size used until content measures
// itself.
var DefaultViewSize = image.Pt(120, 40)

// PlacementTrend is the chain-propagated preferred side. Once the solver
// resolves a side for the first tooltip of a chain, descendants seed their
// initial placement from it so stacked tooltips bounce in a consistent
// direction instead of flickering while the solver corrects them one by one.
type PlacementTrend struct {
	side  Placement
	known bool
}

func NewPlacementTrend() *PlacementTrend { return &PlacementTrend{} }

// Current returns the remembered side, if any tooltip of the chain has
// completed a first layout yet.
func (t *PlacementTrend) Current() (Placement, bool) { return t.side, t.known }

func (t *PlacementTrend) record(p Placement) {
	t.side = p
	t.known = true
}

// TooltipView is the presentational shell of a mounted tooltip. Its root
// element lives under the document attachment point, structurally detached
// from the owning region, and is registered as a logical descendant of the
// region so containment and outside-click tests still treat it as inside.
type TooltipView struct {
	controller *TooltipDisclosureController

	// Root is the floating element positioned by the placement solver.
	// Content builders may size it before the first layout pass.
	Root *Element

	solution *Solution
	current  Placement
	placed   bool

	enterHandler *EventHandler
	leaveHandler *EventHandler
}

func newTooltipView(c *TooltipDisclosureController) *TooltipView {
	doc := c.doc
	v := &TooltipView{controller: c}
	v.Root = doc.NewElement("tipview")
	v.Root.Attrs["data-tip-owner"] = c.region.ID

	if c.content != nil {
		if body := c.content(v); body != nil {
			v.Root.AppendChild(body)
		}
	}
	if v.Root.Bounds.Empty() {
		// nothing measured the bubble yet; start from a nominal size so the
		// first solve pass is meaningful. Hosts resize Root and RequestLayout.
		v.Root.Bounds = image.Rectangle{Max: DefaultViewSize}
	}

	doc.Attachment.AppendChild(v.Root)
	doc.Logical().RegisterDescendant(c.region, v.Root)

	// travelling from the region onto the tooltip must not flash it closed;
	// the controller checks this flag when its hide timer fires.
	v.enterHandler = NewEventHandler(func(evt Event) bool {
		if _, ok := evt.(*PointerEvent); !ok {
			return false
		}
		if !v.Root.Contains(evt.Target()) {
			return false
		}
		c.setPointerOverTip(true)
		return false
	})
	v.leaveHandler = NewEventHandler(func(evt Event) bool {
		if _, ok := evt.(*PointerEvent); !ok {
			return false
		}
		if !v.Root.Contains(evt.Target()) {
			return false
		}
		c.setPointerOverTip(false)
		return false
	})
	v.Root.AddEventListener(PointerOver, v.enterHandler)
	v.Root.AddEventListener(PointerOut, v.leaveHandler)

	placement := c.fixedPlacement
	if placement == "" {
		if side, ok := c.trend.Current(); ok {
			placement = side
		}
	}
	v.solution = doc.solver.Solve(c.region, v.Root, SolveOptions{
		Placement:     placement,
		Boundary:      doc.Root.Bounds,
		OnFirstUpdate: v.onFirstUpdate,
	})
	return v
}

// onFirstUpdate records the resolved side as the new placement trend. The
// solver may deliver the callback again on later recomputes; only the first
// one counts.
func (v *TooltipView) onFirstUpdate(st SolveState) {
	if v.placed {
		return
	}
	v.placed = true
	v.current = st.Placement
	v.controller.trend.record(st.Placement)
}

// Placement returns the side resolved on the first layout pass.
func (v *TooltipView) Placement() Placement { return v.current }

// Chain returns the link nested controllers must inherit (via WithChain) so
// their pins propagate to this view's owner and beyond.
func (v *TooltipView) Chain() *TipChain { return v.controller.link }

// Trend returns the placement trend shared down the chain (via WithTrend).
func (v *TooltipView) Trend() *PlacementTrend { return v.controller.trend }

// RequestLayout re-runs the placement solver. Content must call it after any
// self-induced size change since the solver cannot observe layout changes it
// was not told about.
func (v *TooltipView) RequestLayout() {
	if v.solution != nil {
		v.solution.Update()
	}
}

// Attributes exposes the solver's rendering attributes for the host surface.
func (v *TooltipView) Attributes() map[string]string {
	if v.solution == nil {
		return nil
	}
	return v.solution.Attributes
}

func (v *TooltipView) unmount() {
	doc := v.controller.doc
	v.Root.RemoveEventListener(PointerOver, v.enterHandler)
	v.Root.RemoveEventListener(PointerOut, v.leaveHandler)
	doc.Logical().Unregister(v.Root)
	doc.Attachment.RemoveChild(v.Root)
	v.solution = nil
	v.controller.overTip = false
}
