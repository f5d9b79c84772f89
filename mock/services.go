package mock

import (
	"fmt"

	"github.com/asartalo/dimple"
)

// Foo has no dependencies.
type Foo struct {
	Label string
}

// Bar depends on a Foo.
type Bar struct {
	foo *Foo
}

func NewBar(foo *Foo) *Bar {
	return &Bar{foo: foo}
}

func (b *Bar) GetFoo() *Foo {
	return b.foo
}

// Baz depends on a Bar.
type Baz struct {
	bar *Bar
}

func NewBaz(bar *Bar) *Baz {
	return &Baz{bar: bar}
}

func (b *Baz) GetBar() *Bar {
	return b.bar
}

// Injection holds whatever was injected into it.
type Injection struct {
	injected any
}

func (i *Injection) GetInjected() any {
	return i.injected
}

// Factories

func FooFactory(r *dimple.Registry) (any, error) {
	return &Foo{}, nil
}

func BarFactory(r *dimple.Registry) (any, error) {
	foo, err := dimple.Resolve[*Foo](r, "foo")
	if err != nil {
		return nil, err
	}
	return NewBar(foo), nil
}

func BazFactory(r *dimple.Registry) (any, error) {
	bar, err := dimple.Resolve[*Bar](r, "bar")
	if err != nil {
		return nil, err
	}
	return NewBaz(bar), nil
}

// Constructors for auto-wiring

func NewFooArgs(deps ...any) (any, error) {
	return &Foo{}, nil
}

func NewInjectionArgs(deps ...any) (any, error) {
	if len(deps) != 1 {
		return nil, fmt.Errorf("injection expects 1 dependency, got %d", len(deps))
	}
	return &Injection{injected: deps[0]}, nil
}

// Types is the resolver table used by auto-wiring tests.
var Types = dimple.Types{
	"sample.Foo":       {New: NewFooArgs},
	"sample.Injection": {Deps: []string{"bar"}, New: NewInjectionArgs},
}

// Setup builds the root/parent/child tree used across the suites:
// foo in the root, bar in parent, baz in child.
func Setup(r *dimple.Registry) error {
	r.CreateScope("parent", "")
	r.CreateScope("child", "parent")

	if err := r.SetFactory("foo", FooFactory); err != nil {
		return err
	}

	r.Scope("parent")
	if err := r.SetFactory("bar", BarFactory); err != nil {
		return err
	}

	r.Scope("child")
	return r.SetFactory("baz", BazFactory)
}

// Counter counts how many times its factory ran.
type Counter struct {
	Calls int
}

func (c *Counter) Factory(r *dimple.Registry) (any, error) {
	c.Calls++
	return &Foo{Label: fmt.Sprintf("instance-%d", c.Calls)}, nil
}

// FailingFactory always fails.
func FailingFactory(r *dimple.Registry) (any, error) {
	return nil, fmt.Errorf("simulated construction failure")
}
