package main

import (
	"fmt"
	"image"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/atdiar/tip"
)

// Duration parses yaml values like "500ms" or "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("wait: %w", err)
	}
	*d = Duration(parsed)
	return nil
}

// Scenario is a scripted interaction against a document of hoverable
// regions. The document is plain HTML: elements with a data-tip attribute
// own a tooltip, a bounds attribute ("x0,y0,x1,y1") places them, and a
// top-level element with tip-for="<id>" is the detached tooltip content
// template for that region (nested data-tip regions inside it chain).
type Scenario struct {
	Name     string `yaml:"name"`
	Document string `yaml:"document"`
	Steps    []Step `yaml:"steps"`
}

// Step is one scripted action. Exactly one field may be set.
type Step struct {
	Over  string `yaml:"over,omitempty"`
	Out   string `yaml:"out,omitempty"`
	Move  string `yaml:"move,omitempty"`
	Click string `yaml:"click,omitempty"`
	Down  string `yaml:"down,omitempty"`

	KeyDown string `yaml:"keydown,omitempty"`
	KeyUp   string `yaml:"keyup,omitempty"`

	// Mods applies to the pointer steps of this entry, e.g. [ctrl, shift].
	Mods []string `yaml:"mods,omitempty"`

	Wait Duration `yaml:"wait,omitempty"`

	// Expect maps region ids to disclosure states (hide, show, pin).
	Expect map[string]string `yaml:"expect,omitempty"`
}

func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if strings.TrimSpace(s.Document) == "" {
		return nil, fmt.Errorf("scenario %q: empty document", s.Name)
	}
	return &s, nil
}

// Runner instantiates a scenario document into a tip element tree and plays
// the steps against it on a manual clock.
type Runner struct {
	doc   *tip.Document
	clock *tip.ManualScheduler

	byID        map[string]*tip.Element
	controllers map[string]*tip.TooltipDisclosureController
	templates   map[string]*tip.Element
	tipText     map[string]string

	logger *zap.Logger
}

func NewRunner(s *Scenario, logger *zap.Logger) (*Runner, error) {
	r := &Runner{
		clock:       tip.NewManualScheduler(),
		byID:        make(map[string]*tip.Element),
		controllers: make(map[string]*tip.TooltipDisclosureController),
		templates:   make(map[string]*tip.Element),
		tipText:     make(map[string]string),
		logger:      logger,
	}
	r.doc = tip.NewDocument(tip.WithScheduler(r.clock), tip.WithLogger(logger))
	r.doc.Root.Bounds = image.Rect(0, 0, 1920, 1080)

	if err := r.buildTree(s.Document); err != nil {
		return nil, err
	}

	// controllers for the regions of the main tree; regions living inside
	// content templates are wired lazily when their template mounts.
	for id, el := range r.byID {
		if _, tipped := r.tipText[id]; !tipped {
			continue
		}
		if el.Detached() {
			continue
		}
		r.addController(id, el, nil)
	}
	return r, nil
}

func (r *Runner) addController(id string, el *tip.Element, view *tip.TooltipView) {
	opts := []tip.ControllerOption{}
	if view != nil {
		opts = append(opts, tip.WithChain(view.Chain()), tip.WithTrend(view.Trend()))
	}
	c := tip.NewController(el, r.contentFor(id), opts...)
	c.OnStateChange(tip.NewStateHandler(func(old, new tip.DisclosureState) bool {
		r.logger.Info("transition",
			zap.String("region", id),
			zap.Stringer("from", old),
			zap.Stringer("to", new),
			zap.Duration("at", r.clock.Now()))
		return false
	}))
	r.controllers[id] = c
}

func (r *Runner) contentFor(id string) tip.ContentFunc {
	return func(view *tip.TooltipView) *tip.Element {
		tmpl, ok := r.templates[id]
		if !ok {
			label := r.doc.NewElement("label")
			label.Attrs["text"] = r.tipText[id]
			return label
		}
		r.wireTemplateRegions(tmpl, view)
		return tmpl
	}
}

func (r *Runner) wireTemplateRegions(root *tip.Element, view *tip.TooltipView) {
	var walk func(el *tip.Element)
	walk = func(el *tip.Element) {
		id := el.Attrs["id"]
		if _, tipped := r.tipText[id]; tipped {
			if _, exists := r.controllers[id]; !exists {
				r.addController(id, el, view)
			}
		}
		for _, child := range el.Children.List {
			walk(child)
		}
	}
	for _, child := range root.Children.List {
		walk(child)
	}
	id := root.Attrs["id"]
	if _, tipped := r.tipText[id]; tipped {
		if _, exists := r.controllers[id]; !exists {
			r.addController(id, root, view)
		}
	}
}

func (r *Runner) buildTree(document string) error {
	node, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return fmt.Errorf("document: %w", err)
	}

	var convert func(n *html.Node, parent *tip.Element) error
	convert = func(n *html.Node, parent *tip.Element) error {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode {
				continue
			}
			switch child.Data {
			case "html", "head", "body":
				// wrapper nodes injected by the parser
				if err := convert(child, parent); err != nil {
					return err
				}
				continue
			}

			el := r.doc.NewElement(child.Data)
			var tipFor string
			for _, a := range child.Attr {
				el.Attrs[a.Key] = a.Val
				switch a.Key {
				case "id":
					if _, dup := r.byID[a.Val]; dup {
						return fmt.Errorf("document: duplicate id %q", a.Val)
					}
					r.byID[a.Val] = el
				case "bounds":
					el.Bounds = rectFromString(a.Val)
				case "tip-for":
					tipFor = a.Val
				}
			}
			if text, ok := el.Attrs["data-tip"]; ok {
				if id := el.Attrs["id"]; id != "" {
					r.tipText[id] = text
				} else {
					return fmt.Errorf("document: data-tip region without id")
				}
			}

			if tipFor != "" {
				// content template: kept detached until its region shows
				r.templates[tipFor] = el
			} else {
				parent.AppendChild(el)
			}
			if err := convert(child, el); err != nil {
				return err
			}
		}
		return nil
	}
	return convert(node, r.doc.Root)
}

// Play executes the steps, aggregating every expectation failure instead of
// stopping at the first one.
func (r *Runner) Play(s *Scenario) error {
	var errs error
	for i, step := range s.Steps {
		if err := r.playStep(step); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("step %d: %w", i+1, err))
		}
	}
	return errs
}

func (r *Runner) playStep(step Step) error {
	mods := parseMods(step.Mods)
	switch {
	case step.Over != "":
		return r.dispatch(tip.PointerOver, step.Over, mods)
	case step.Out != "":
		return r.dispatch(tip.PointerOut, step.Out, mods)
	case step.Move != "":
		return r.dispatch(tip.PointerMove, step.Move, mods)
	case step.Click != "":
		return r.dispatch(tip.Click, step.Click, mods)
	case step.Down != "":
		return r.dispatch(tip.PointerDown, step.Down, mods)
	case step.KeyDown != "":
		r.doc.DispatchKey(tip.NewKeyEvent(tip.KeyDown, canonicalKey(step.KeyDown), mods, nil))
		return nil
	case step.KeyUp != "":
		r.doc.DispatchKey(tip.NewKeyEvent(tip.KeyUp, canonicalKey(step.KeyUp), mods, nil))
		return nil
	case step.Wait != 0:
		r.clock.Advance(time.Duration(step.Wait))
		return nil
	case step.Expect != nil:
		return r.check(step.Expect)
	}
	return fmt.Errorf("empty step")
}

func (r *Runner) dispatch(typ, id string, mods tip.Modifiers) error {
	target, err := r.resolve(id)
	if err != nil {
		return err
	}
	evt := tip.NewPointerEvent(typ, target, target.Bounds.Min, mods, nil)
	r.doc.DispatchPointer(evt)
	return nil
}

// resolve finds an event target: a document element by id, the special name
// "root", or "tip:<id>" for the mounted tooltip view of a region.
func (r *Runner) resolve(id string) (*tip.Element, error) {
	if id == "root" {
		return r.doc.Root, nil
	}
	if tipID, ok := strings.CutPrefix(id, "tip:"); ok {
		c, exists := r.controllers[tipID]
		if !exists || c.View() == nil {
			return nil, fmt.Errorf("no mounted tooltip for region %q", tipID)
		}
		return c.View().Root, nil
	}
	el, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown element %q", id)
	}
	return el, nil
}

func (r *Runner) check(expect map[string]string) error {
	var errs error
	for id, want := range expect {
		c, ok := r.controllers[id]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("no controller for region %q", id))
			continue
		}
		if got := c.State().String(); got != want {
			errs = multierr.Append(errs,
				fmt.Errorf("region %q: state %s, want %s (t=%v)", id, got, want, r.clock.Now()))
		}
	}
	return errs
}

// States returns the final disclosure state per region, for reporting.
func (r *Runner) States() map[string]string {
	out := make(map[string]string, len(r.controllers))
	for id, c := range r.controllers {
		out[id] = c.State().String()
	}
	return out
}

func parseMods(names []string) tip.Modifiers {
	var m tip.Modifiers
	for _, name := range names {
		switch strings.ToLower(name) {
		case "ctrl", "control":
			m |= tip.ModCtrl
		case "meta", "cmd", "super":
			m |= tip.ModMeta
		case "alt":
			m |= tip.ModAlt
		case "shift":
			m |= tip.ModShift
		}
	}
	return m
}

func canonicalKey(name string) string {
	switch strings.ToLower(name) {
	case "ctrl", "control":
		return tip.KeyControl
	case "meta", "cmd", "super":
		return tip.KeyMeta
	case "alt":
		return tip.KeyAlt
	case "shift":
		return tip.KeyShift
	}
	return name
}

func rectFromString(s string) (r image.Rectangle) {
	fmt.Sscanf(s, "%d,%d,%d,%d", &r.Min.X, &r.Min.Y, &r.Max.X, &r.Max.Y)
	return r
}
