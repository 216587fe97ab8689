package tip

import (
	"image"
)

// Placement is the side of the anchor a floating element settles on.
type Placement string

const (
	PlacementTop    Placement = "top"
	PlacementBottom Placement = "bottom"
	PlacementLeft   Placement = "left"
	PlacementRight  Placement = "right"
)

func (p Placement) Opposite() Placement {
	switch p {
	case PlacementTop:
		return PlacementBottom
	case PlacementBottom:
		return PlacementTop
	case PlacementLeft:
		return PlacementRight
	case PlacementRight:
		return PlacementLeft
	}
	return p
}

// DefaultOffset is the [cross-axis, main-axis] distance between the anchor
// and the floating element.
var DefaultOffset = image.Pt(0, 8)

// SolveState is handed to the one-shot first-update callback with the side
// the solver actually resolved.
type SolveState struct {
	Position  image.Point
	Placement Placement
}

type SolveOptions struct {
	// Offset.X shifts the floating element along the cross axis, Offset.Y is
	// the gap on the main axis. The zero value means DefaultOffset.
	Offset image.Point

	// Placement is the preferred side. Empty means PlacementTop.
	Placement Placement

	// Boundary the floating element should stay inside. The zero rectangle
	// disables overflow handling.
	Boundary image.Rectangle

	// OnFirstUpdate fires once, on the first layout pass, carrying the
	// resolved placement.
	OnFirstUpdate func(SolveState)
}

// Solution is the live result of a Solve call. Update recomputes it; the
// solver cannot observe layout changes it was not told about, so content must
// trigger Update after any self-induced size change.
type Solution struct {
	Position   image.Point
	Placement  Placement
	Attributes map[string]string
	Update     func()
}

// Solver is the placement engine consumed by TooltipView. It positions a
// floating element relative to an anchor and keeps doing so on demand.
type Solver interface {
	Solve(anchor, floating *Element, opts SolveOptions) *Solution
}

// flipSolver is a minimal placement engine: it puts the floating element on
// the preferred side at the configured offset and flips to the opposite side
// when the result would overflow the boundary.
type flipSolver struct{}

func NewFlipSolver() Solver { return flipSolver{} }

func (flipSolver) Solve(anchor, floating *Element, opts SolveOptions) *Solution {
	if opts.Offset == (image.Point{}) {
		opts.Offset = DefaultOffset
	}
	if opts.Placement == "" {
		opts.Placement = PlacementTop
	}

	sol := &Solution{Attributes: make(map[string]string)}
	fired := false

	sol.Update = func() {
		size := floating.Bounds.Size()
		side := opts.Placement
		r := placeRect(anchor.Bounds, size, side, opts.Offset)
		if !fitsIn(r, opts.Boundary) {
			if alt := placeRect(anchor.Bounds, size, side.Opposite(), opts.Offset); fitsIn(alt, opts.Boundary) {
				side = side.Opposite()
				r = alt
			}
		}
		floating.Bounds = r
		sol.Position = r.Min
		sol.Placement = side
		sol.Attributes["data-tip-side"] = string(side)
		if !fired {
			fired = true
			if opts.OnFirstUpdate != nil {
				opts.OnFirstUpdate(SolveState{Position: r.Min, Placement: side})
			}
		}
	}

	sol.Update()
	return sol
}

func placeRect(anchor image.Rectangle, size image.Point, side Placement, offset image.Point) image.Rectangle {
	var min image.Point
	switch side {
	case PlacementTop:
		min = image.Pt(anchor.Min.X+(anchor.Dx()-size.X)/2+offset.X, anchor.Min.Y-offset.Y-size.Y)
	case PlacementBottom:
		min = image.Pt(anchor.Min.X+(anchor.Dx()-size.X)/2+offset.X, anchor.Max.Y+offset.Y)
	case PlacementLeft:
		min = image.Pt(anchor.Min.X-offset.Y-size.X, anchor.Min.Y+(anchor.Dy()-size.Y)/2+offset.X)
	case PlacementRight:
		min = image.Pt(anchor.Max.X+offset.Y, anchor.Min.Y+(anchor.Dy()-size.Y)/2+offset.X)
	}
	return image.Rectangle{Min: min, Max: min.Add(size)}
}

func fitsIn(r, boundary image.Rectangle) bool {
	if boundary == (image.Rectangle{}) {
		return true
	}
	return r.In(boundary)
}
