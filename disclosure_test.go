package tip

import (
	"testing"
	"time"
)

func TestShowAfterDelay(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.over(region)
	wantState(t, c, StateHide)

	f.advance(499 * time.Millisecond)
	wantState(t, c, StateHide)

	f.advance(time.Millisecond)
	wantState(t, c, StateShow)
	if c.View() == nil {
		t.Fatal("no view mounted in show state")
	}
}

func TestLeavingBeforeShowDelayNeverShows(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.over(region)
	f.advance(200 * time.Millisecond)
	f.out(region)
	f.advance(5 * time.Second)
	wantState(t, c, StateHide)
}

func TestHideAfterLeaving(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.over(region)
	f.advance(DefaultShowDelay)
	wantState(t, c, StateShow)

	f.out(region)
	f.advance(299 * time.Millisecond)
	wantState(t, c, StateShow)
	f.advance(time.Millisecond)
	wantState(t, c, StateHide)
	if c.View() != nil {
		t.Fatal("view still mounted in hide state")
	}
}

func TestPointerOverTooltipBlocksHide(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.over(region)
	f.advance(DefaultShowDelay)
	view := c.View()
	if view == nil {
		t.Fatal("no view after show delay")
	}

	f.out(region)       // arms the hide timer
	f.over(view.Root)   // pointer lands on the tooltip before it fires
	f.advance(DefaultHideDelay)
	wantState(t, c, StateShow)

	// leaving the tooltip re-arms the timer and the tooltip closes
	f.out(view.Root)
	f.advance(DefaultHideDelay)
	wantState(t, c, StateHide)
}

func TestCtrlHoverDoesNotShow(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.pointer(PointerOver, region, ModCtrl)
	f.advance(5 * time.Second)
	wantState(t, c, StateHide)
}

func TestClickTogglesPin(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.click(region)
	wantState(t, c, StatePin)
	f.click(region)
	wantState(t, c, StateHide)
}

func TestTransitionsWaitForHostDrain(t *testing.T) {
	// with a LoopScheduler the expired show timer must not transition on the
	// timer goroutine; the state only moves once the host loop drains.
	sched, wait := loopSchedulerForTest(t)
	doc := NewDocument(WithScheduler(sched))
	doc.Root.Bounds = rect(0, 0, 1000, 1000)
	region := doc.NewElement("region")
	region.Bounds = rect(0, 0, 100, 100)
	doc.Root.AppendChild(region)
	c := NewController(region, nil, WithShowDelay(time.Millisecond))

	doc.DispatchPointer(NewPointerEvent(PointerOver, region, region.Bounds.Min, 0, nil))
	wait()
	wantState(t, c, StateHide)

	sched.Drain()
	wantState(t, c, StateShow)
}

func TestClickFromShowPins(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.over(region)
	f.advance(DefaultShowDelay)
	wantState(t, c, StateShow)

	f.click(region)
	wantState(t, c, StatePin)
}

func TestPinSurvivesLeaving(t *testing.T) {
	// hover, show, click to pin, leave everything: the pinned tooltip stays;
	// only a pointer-down outside finally dismisses it.
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	outside := f.region(nil, rect(500, 500, 600, 600))
	c := NewController(region, nil)

	f.over(region)
	f.advance(DefaultShowDelay)
	wantState(t, c, StateShow)

	f.click(region)
	wantState(t, c, StatePin)

	f.out(region)
	f.advance(5 * time.Second)
	wantState(t, c, StatePin)

	f.down(outside)
	wantState(t, c, StateHide)
}

func TestClickOutsideAlwaysHides(t *testing.T) {
	states := []DisclosureState{StateHide, StateShow, StatePin}
	for _, start := range states {
		t.Run(start.String(), func(t *testing.T) {
			f := newFixture(t)
			region := f.region(nil, rect(0, 0, 100, 100))
			outside := f.region(nil, rect(500, 500, 600, 600))
			c := NewController(region, nil)

			switch start {
			case StateShow:
				f.over(region)
				f.advance(DefaultShowDelay)
			case StatePin:
				f.click(region)
			}
			wantState(t, c, start)

			f.down(outside)
			wantState(t, c, StateHide)
		})
	}
}

func TestPointerDownInsideTooltipDoesNotDismiss(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.click(region)
	view := c.View()
	if view == nil {
		t.Fatal("no view while pinned")
	}
	f.down(view.Root)
	wantState(t, c, StatePin)
}

func TestStaleHideTimerCannotUndoPin(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.over(region)
	f.advance(DefaultShowDelay)
	f.out(region) // hide timer armed
	f.click(region)
	wantState(t, c, StatePin)

	f.advance(5 * time.Second)
	wantState(t, c, StatePin)
}

func TestSiblingControllersAreIndependent(t *testing.T) {
	f := newFixture(t)
	r1 := f.region(nil, rect(0, 0, 100, 100))
	r2 := f.region(nil, rect(200, 0, 300, 100))
	c1 := NewController(r1, nil)
	c2 := NewController(r2, nil)

	f.over(r1)
	f.advance(DefaultShowDelay)
	wantState(t, c1, StateShow)

	f.over(r2)
	f.advance(DefaultShowDelay)
	wantState(t, c2, StateShow)
	wantState(t, c1, StateShow)
}

func TestPinChainThreeLevels(t *testing.T) {
	// regions chained through tooltip content: clicking the innermost one
	// pins the whole stack.
	f := newFixture(t)
	regionA := f.region(nil, rect(0, 0, 100, 100))

	var cB, cC *TooltipDisclosureController
	var regionB, regionC *Element

	contentB := func(view *TooltipView) *Element {
		regionC = f.doc.NewElement("regionC")
		regionC.Bounds = rect(0, 0, 40, 20)
		holder := f.doc.NewElement("holder")
		holder.AppendChild(regionC)
		cC = NewController(regionC, nil, WithChain(view.Chain()), WithTrend(view.Trend()))
		return holder
	}
	contentA := func(view *TooltipView) *Element {
		regionB = f.doc.NewElement("regionB")
		regionB.Bounds = rect(0, 0, 40, 20)
		holder := f.doc.NewElement("holder")
		holder.AppendChild(regionB)
		cB = NewController(regionB, contentB, WithChain(view.Chain()), WithTrend(view.Trend()))
		return holder
	}
	cA := NewController(regionA, contentA)

	f.over(regionA)
	f.advance(DefaultShowDelay)
	wantState(t, cA, StateShow)
	if cB == nil {
		t.Fatal("content builder for A did not run")
	}

	f.over(regionB)
	f.advance(DefaultShowDelay)
	wantState(t, cB, StateShow)
	if cC == nil {
		t.Fatal("content builder for B did not run")
	}

	f.click(regionC)
	wantState(t, cC, StatePin)
	wantState(t, cB, StatePin)
	wantState(t, cA, StatePin)
}

func TestPinChainSkipsNothingWhenMiddleAlreadyPinned(t *testing.T) {
	f := newFixture(t)
	rA := f.region(nil, rect(0, 0, 100, 100))
	rB := f.region(nil, rect(200, 0, 300, 100))
	rC := f.region(nil, rect(400, 0, 500, 100))

	cA := NewController(rA, nil)
	cB := NewController(rB, nil, WithChain(cA.Chain()))
	cC := NewController(rC, nil, WithChain(cB.Chain()))

	cB.Pin() // middle pinned first
	wantState(t, cA, StatePin)

	cA.Hide()
	wantState(t, cA, StateHide)
	wantState(t, cB, StatePin)

	cC.Pin() // must re-pin A through the already-pinned B
	wantState(t, cA, StatePin)
	wantState(t, cB, StatePin)
	wantState(t, cC, StatePin)
}

func TestClickOutsideIgnoresChainedTooltipContent(t *testing.T) {
	// a pointer-down deep inside a nested tooltip must not count as outside
	// for any ancestor controller.
	f := newFixture(t)
	regionA := f.region(nil, rect(0, 0, 100, 100))

	var cB *TooltipDisclosureController
	var regionB *Element
	contentA := func(view *TooltipView) *Element {
		regionB = f.doc.NewElement("regionB")
		regionB.Bounds = rect(0, 0, 40, 20)
		cB = NewController(regionB, nil, WithChain(view.Chain()), WithTrend(view.Trend()))
		return regionB
	}
	cA := NewController(regionA, contentA)

	f.click(regionA)
	wantState(t, cA, StatePin)

	f.click(regionB)
	wantState(t, cB, StatePin)
	wantState(t, cA, StatePin)

	f.down(cB.View().Root)
	wantState(t, cA, StatePin)
	wantState(t, cB, StatePin)
}

func TestModifierClickSuppressesDefaultWithoutMiddleware(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	evt := f.pointer(Click, region, ModAlt)
	if !evt.DefaultPrevented() {
		t.Fatal("modifier click did not suppress the default action")
	}
	wantState(t, c, StateHide)
}

func TestModifierClickRoutesThroughMiddleware(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))

	var sawMods Modifiers
	c := NewController(region, nil, WithClickInterceptor(func(evt Event, proceed func()) {
		sawMods = evt.(*PointerEvent).Modifiers
		proceed()
	}))

	f.pointer(Click, region, ModShift)
	if sawMods != ModShift {
		t.Fatalf("middleware saw modifiers %v, want shift", sawMods)
	}
	wantState(t, c, StatePin)
}

func TestMiddlewareMaySuppressDefaultToggle(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))

	calls := 0
	c := NewController(region, nil, WithClickInterceptor(func(evt Event, proceed func()) {
		calls++ // never proceeds
	}))

	f.click(region)
	if calls != 1 {
		t.Fatalf("middleware called %d times", calls)
	}
	wantState(t, c, StateHide)
}

func TestNestedClickPinsOnlyInnermost(t *testing.T) {
	// two independently-rooted controllers on nested regions: the innermost
	// claims the click, the outer one must not toggle.
	f := newFixture(t)
	outer := f.region(nil, rect(0, 0, 300, 300))
	inner := f.region(outer, rect(10, 10, 100, 100))
	cOuter := NewController(outer, nil)
	cInner := NewController(inner, nil)

	f.click(inner)
	wantState(t, cInner, StatePin)
	wantState(t, cOuter, StateHide)
}

func TestStateWatchersObserveTransitions(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	type transition struct{ old, new DisclosureState }
	var seen []transition
	remove := c.OnStateChange(NewStateHandler(func(old, new DisclosureState) bool {
		seen = append(seen, transition{old, new})
		return false
	}))

	f.click(region)
	f.click(region)
	remove()
	f.click(region)

	want := []transition{{StateHide, StatePin}, {StatePin, StateHide}}
	if len(seen) != len(want) {
		t.Fatalf("transitions = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", seen, want)
		}
	}
}

func TestCustomDelays(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil,
		WithShowDelay(50*time.Millisecond),
		WithHideDelay(20*time.Millisecond))

	f.over(region)
	f.advance(50 * time.Millisecond)
	wantState(t, c, StateShow)

	f.out(region)
	f.advance(20 * time.Millisecond)
	wantState(t, c, StateHide)
}

func TestUnmountIsHardCancellation(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	outside := f.region(nil, rect(500, 500, 600, 600))
	c := NewController(region, nil)

	f.over(region) // show timer armed
	c.Unmount()

	f.advance(5 * time.Second)
	wantState(t, c, StateHide)

	f.click(region)
	wantState(t, c, StateHide)

	f.down(outside) // outside registration must be gone too
	if got := len(f.doc.outside); got != 0 {
		t.Fatalf("%d outside-click registrations leaked", got)
	}
	if got := len(f.doc.keyListeners[KeyDown]); got != 0 {
		t.Fatalf("%d key listeners leaked", got)
	}
}

func TestUnmountTearsDownMountedView(t *testing.T) {
	f := newFixture(t)
	region := f.region(nil, rect(0, 0, 100, 100))
	c := NewController(region, nil)

	f.click(region)
	if len(f.doc.Attachment.Children.List) == 0 {
		t.Fatal("no tooltip mounted at the attachment point")
	}
	c.Unmount()
	if len(f.doc.Attachment.Children.List) != 0 {
		t.Fatal("tooltip still mounted after Unmount")
	}
}
