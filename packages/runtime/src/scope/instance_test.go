package scope_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"wick-go/packages/core"
	"wick-go/packages/runtime/src/dom"
	"wick-go/packages/runtime/src/model"
	"wick-go/packages/runtime/src/scope"
)

type update struct {
	Index int
	Value interface{}
	Flags core.UpdateFlag
}

type recordingBehavior struct {
	inits      int
	terminates int
	updates    []update
}

func (b *recordingBehavior) Init(inst *scope.Instance) {
	b.inits++
}

func (b *recordingBehavior) Update(inst *scope.Instance, index int, value interface{}, flags core.UpdateFlag) {
	b.updates = append(b.updates, update{index, value, flags})
}

func (b *recordingBehavior) Terminate(inst *scope.Instance) {
	b.terminates++
}

func newClasses(g *scope.Graph) (parent, card *recordingBehavior) {
	parent, card = &recordingBehavior{}, &recordingBehavior{}
	g.Define("card", &scope.Class{
		Name: "Card",
		Lookup: core.LookupTable{
			"total": core.Pack(core.VariableFlagWritten|core.VariableFlagAllowExportToParent, 0),
			"item":  core.Pack(core.VariableFlagFromModel, 1),
		},
		Template: core.Element("span", nil),
		Behavior: card,
	})
	g.Define("main", &scope.Class{
		Name: "Main",
		Lookup: core.LookupTable{
			"title": core.Pack(core.VariableFlagFromParent, 0),
			"item":  core.Pack(core.VariableFlagFromModel, 1),
			"local": core.Pack(core.VariableFlagWritten, 2),
		},
		Template: core.Element("div", nil,
			core.Element("p", nil, core.Text("hi")),
			&core.TemplateNode{Tag: "card", Component: "card"},
		),
		Behavior: parent,
	})
	return parent, card
}

func TestInstance(t *testing.T) {
	t.Run("should build nodes and child instances", func(t *testing.T) {
		g := scope.NewGraph(nil, nil)
		parent, card := newClasses(g)
		inst := scope.NewInstance(g, g.Class("main"), nil)

		expected := `<div><p>hi</p><span></span></div>`
		if got := dom.Render(inst.Root); got != expected {
			t.Errorf("Expected %q, got %q", expected, got)
		}
		if len(inst.Children) != 1 || inst.Elements[3] != inst.Children[0].Root {
			t.Fatal("Expected the child root in the element lookup")
		}
		if parent.inits != 1 || card.inits != 1 {
			t.Errorf("Expected one init each, got %d and %d", parent.inits, card.inits)
		}
		if inst.Children[0].Scope().Parent() != inst.Scope() {
			t.Error("Expected the child scope under the instance scope")
		}
		if inst.Children[0].Scope().State() != scope.Loaded {
			t.Errorf("Expected the child to be loaded, got %s", inst.Children[0].Scope().State())
		}
	})

	t.Run("should only accept updates the variables allow", func(t *testing.T) {
		g := scope.NewGraph(nil, nil)
		parent, _ := newClasses(g)
		inst := scope.NewInstance(g, g.Class("main"), nil)
		data := map[string]interface{}{"title": "t", "item": "i", "local": "l", "missing": 0}

		inst.Update(data, core.UpdateFlagFromParent, true)
		inst.Update(data, core.UpdateFlagFromModel, true)
		expected := []update{
			{0, "t", core.UpdateFlagFromParent},
			{1, "i", core.UpdateFlagFromModel},
		}
		if diff := cmp.Diff(expected, parent.updates); diff != "" {
			t.Errorf("Updates mismatch (-want +got):\n%s", diff)
		}
		if v, _ := inst.Value("local"); v != nil {
			t.Errorf("Expected no local value, got %v", v)
		}
	})

	t.Run("should batch deferred updates", func(t *testing.T) {
		g := scope.NewGraph(nil, nil)
		parent, _ := newClasses(g)
		inst := scope.NewInstance(g, g.Class("main"), nil)

		inst.Update(map[string]interface{}{"local": 1}, core.UpdateFlagNone, false)
		inst.Update(map[string]interface{}{"local": 2, "title": "x"}, core.UpdateFlagNone, false)
		if len(parent.updates) != 0 {
			t.Fatalf("Expected no updates before the flush, got %v", parent.updates)
		}
		g.Scheduler.RunAll()
		expected := []update{{2, 2, core.UpdateFlagNone}, {0, "x", core.UpdateFlagNone}}
		if diff := cmp.Diff(expected, parent.updates); diff != "" {
			t.Errorf("Updates mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should receive model values through taps", func(t *testing.T) {
		g := scope.NewGraph(nil, nil)
		newClasses(g)
		inst := scope.NewInstance(g, g.Class("main"), nil)
		m := model.New(map[string]interface{}{"item": 7, "title": "ignored"})
		inst.SetModel(m)
		if v, _ := inst.Value("item"); v != 7 {
			t.Errorf("Expected 7, got %v", v)
		}
		m.Set("item", 8)
		if v, _ := inst.Value("item"); v != 8 {
			t.Errorf("Expected 8, got %v", v)
		}
		if _, ok := inst.Value("title"); ok {
			t.Error("Expected title not to be bound to the model")
		}
	})

	t.Run("should route exports into imported slots", func(t *testing.T) {
		g := scope.NewGraph(nil, nil)
		parent, _ := newClasses(g)
		inst := scope.NewInstance(g, g.Class("main"), nil)
		inst.Import(0, "total", 2)
		inst.Children[0].Export("total", 9)
		if diff := cmp.Diff([]update{{2, 9, core.UpdateFlagFromChild}}, parent.updates); diff != "" {
			t.Errorf("Updates mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should not echo an export through its own tap", func(t *testing.T) {
		g := scope.NewGraph(nil, nil)
		parent, _ := newClasses(g)
		inst := scope.NewInstance(g, g.Class("main"), nil)
		m := model.New(nil)
		inst.SetModel(m)
		inst.Scope().Tap("item").Mode = core.TapModePut
		inst.Export("item", 4)
		if v, _ := m.Get("item"); v != 4 {
			t.Errorf("Expected 4, got %v", v)
		}
		if len(parent.updates) != 0 {
			t.Errorf("Expected no echo, got %v", parent.updates)
		}
	})

	t.Run("should attach and detach the root", func(t *testing.T) {
		g := scope.NewGraph(nil, nil)
		newClasses(g)
		inst := scope.NewInstance(g, g.Class("main"), nil)
		body := g.Document.CreateElement("body")
		inst.AppendToDOM(body, nil)
		if !inst.Scope().Connected() || !inst.Children[0].Scope().Connected() {
			t.Error("Expected the scopes to be connected")
		}
		inst.RemoveFromDOM()
		if inst.Scope().Connected() || inst.Root.Parent != nil {
			t.Error("Expected the root to be detached")
		}
	})

	t.Run("should destroy after the exit transition", func(t *testing.T) {
		g := scope.NewGraph(nil, nil)
		parent, card := newClasses(g)
		inst := scope.NewInstance(g, g.Class("main"), nil)
		body := g.Document.CreateElement("body")
		inst.AppendToDOM(body, nil)

		inst.TransitionOut(scope.NewTransition(20*time.Millisecond), true)
		g.Scheduler.Advance(10 * time.Millisecond)
		if inst.Destroyed() {
			t.Fatal("Expected the instance to survive until the transition ends")
		}
		g.Scheduler.Advance(10 * time.Millisecond)
		if !inst.Destroyed() || inst.Root.Parent != nil {
			t.Error("Expected the instance to be removed and destroyed")
		}
		inst.Destructor()
		if parent.terminates != 1 || card.terminates != 1 {
			t.Errorf("Expected one terminate each, got %d and %d", parent.terminates, card.terminates)
		}
	})

	t.Run("should ignore updates after destruction", func(t *testing.T) {
		g := scope.NewGraph(nil, nil)
		parent, _ := newClasses(g)
		inst := scope.NewInstance(g, g.Class("main"), nil)
		inst.Update(map[string]interface{}{"local": 1}, core.UpdateFlagNone, false)
		inst.Destructor()
		g.Scheduler.RunAll()
		inst.Set(2, 5)
		if len(parent.updates) != 0 {
			t.Errorf("Expected no updates, got %v", parent.updates)
		}
	})
}
