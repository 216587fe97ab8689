package tip

import (
	"image"
	"testing"
	"time"
)

// fixture bundles a document driven by a manual scheduler, the shape every
// test in this package starts from.
type fixture struct {
	doc   *Document
	clock *ManualScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := NewManualScheduler()
	doc := NewDocument(WithScheduler(clock))
	doc.Root.Bounds = image.Rect(0, 0, 1000, 1000)
	return &fixture{doc: doc, clock: clock}
}

func (f *fixture) region(parent *Element, bounds image.Rectangle) *Element {
	e := f.doc.NewElement("region")
	e.Bounds = bounds
	if parent == nil {
		parent = f.doc.Root
	}
	parent.AppendChild(e)
	return e
}

func (f *fixture) pointer(typ string, target *Element, mods Modifiers) *PointerEvent {
	evt := NewPointerEvent(typ, target, target.Bounds.Min, mods, nil)
	f.doc.DispatchPointer(evt)
	return evt
}

func (f *fixture) over(target *Element)  { f.pointer(PointerOver, target, 0) }
func (f *fixture) out(target *Element)   { f.pointer(PointerOut, target, 0) }
func (f *fixture) click(target *Element) { f.pointer(Click, target, 0) }
func (f *fixture) down(target *Element)  { f.pointer(PointerDown, target, 0) }

func (f *fixture) key(typ, name string) {
	f.doc.DispatchKey(NewKeyEvent(typ, name, 0, nil))
}

func (f *fixture) advance(d time.Duration) { f.clock.Advance(d) }

func rect(x0, y0, x1, y1 int) image.Rectangle { return image.Rect(x0, y0, x1, y1) }

func wantState(t *testing.T, c *TooltipDisclosureController, want DisclosureState) {
	t.Helper()
	if got := c.State(); got != want {
		t.Fatalf("disclosure state = %v, want %v", got, want)
	}
}

func wantHover(t *testing.T, d *HoverDetector, want HoverState) {
	t.Helper()
	if got := d.State(); got != want {
		t.Fatalf("hover state = %v, want %v", got, want)
	}
}
