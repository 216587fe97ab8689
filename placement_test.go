package tip

import (
	"image"
	"testing"
)

func solveFixture(t *testing.T) (*fixture, *Element, *Element) {
	t.Helper()
	f := newFixture(t)
	anchor := f.region(nil, rect(400, 400, 500, 450))
	floating := f.doc.NewElement("floating")
	floating.Bounds = rect(0, 0, 80, 30)
	f.doc.Attachment.AppendChild(floating)
	return f, anchor, floating
}

func TestSolveSides(t *testing.T) {
	cases := []struct {
		side Placement
		want image.Point
	}{
		{PlacementTop, image.Pt(410, 362)},    // centered, 8px above
		{PlacementBottom, image.Pt(410, 458)}, // centered, 8px below
		{PlacementLeft, image.Pt(312, 410)},
		{PlacementRight, image.Pt(508, 410)},
	}
	for _, tc := range cases {
		t.Run(string(tc.side), func(t *testing.T) {
			f, anchor, floating := solveFixture(t)
			sol := f.doc.solver.Solve(anchor, floating, SolveOptions{Placement: tc.side})
			if sol.Position != tc.want {
				t.Fatalf("position = %v, want %v", sol.Position, tc.want)
			}
			if sol.Placement != tc.side {
				t.Fatalf("placement = %v, want %v", sol.Placement, tc.side)
			}
			if got := sol.Attributes["data-tip-side"]; got != string(tc.side) {
				t.Fatalf("side attribute = %q, want %q", got, tc.side)
			}
		})
	}
}

func TestSolveFlipsWhenOverflowing(t *testing.T) {
	f := newFixture(t)
	// anchor glued to the top edge: a top placement cannot fit
	anchor := f.region(nil, rect(400, 0, 500, 50))
	floating := f.doc.NewElement("floating")
	floating.Bounds = rect(0, 0, 80, 30)
	f.doc.Attachment.AppendChild(floating)

	sol := f.doc.solver.Solve(anchor, floating, SolveOptions{
		Placement: PlacementTop,
		Boundary:  f.doc.Root.Bounds,
	})
	if sol.Placement != PlacementBottom {
		t.Fatalf("placement = %v, want flipped to bottom", sol.Placement)
	}
	if !floating.Bounds.In(f.doc.Root.Bounds) {
		t.Fatalf("flipped rect %v overflows boundary", floating.Bounds)
	}
}

func TestSolveKeepsPreferredWhenNeitherFits(t *testing.T) {
	f := newFixture(t)
	anchor := f.region(nil, rect(0, 0, 10, 10))
	floating := f.doc.NewElement("floating")
	floating.Bounds = rect(0, 0, 5000, 5000) // cannot fit anywhere
	f.doc.Attachment.AppendChild(floating)

	sol := f.doc.solver.Solve(anchor, floating, SolveOptions{
		Placement: PlacementTop,
		Boundary:  f.doc.Root.Bounds,
	})
	if sol.Placement != PlacementTop {
		t.Fatalf("placement = %v, want preferred side kept", sol.Placement)
	}
}

func TestSolveFirstUpdateFiresOnce(t *testing.T) {
	f, anchor, floating := solveFixture(t)
	calls := 0
	var got SolveState
	sol := f.doc.solver.Solve(anchor, floating, SolveOptions{
		Placement: PlacementBottom,
		OnFirstUpdate: func(st SolveState) {
			calls++
			got = st
		},
	})
	sol.Update()
	sol.Update()
	if calls != 1 {
		t.Fatalf("first-update callback fired %d times", calls)
	}
	if got.Placement != PlacementBottom {
		t.Fatalf("first-update placement = %v, want bottom", got.Placement)
	}
}

func TestSolveUpdateTracksAnchor(t *testing.T) {
	f, anchor, floating := solveFixture(t)
	sol := f.doc.solver.Solve(anchor, floating, SolveOptions{Placement: PlacementBottom})
	before := sol.Position

	anchor.Bounds = anchor.Bounds.Add(image.Pt(50, 0))
	sol.Update()
	if sol.Position == before {
		t.Fatal("update did not follow the anchor")
	}
	if want := before.Add(image.Pt(50, 0)); sol.Position != want {
		t.Fatalf("position = %v, want %v", sol.Position, want)
	}
}
