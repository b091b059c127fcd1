package types

import (
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Env is one lexical scope. Bindings keep their insertion order, which is
// what env-str prints.
type Env struct {
	data  *linkedhashmap.Map
	outer *Env
}

func NewEnv(outer *Env) *Env {
	return &Env{linkedhashmap.New(), outer}
}

func (e *Env) Outer() *Env { return e.outer }

// Bind binds params to args in this scope. params is either a list of
// symbols, bound positionally, or a single symbol that receives every
// argument as a list.
func (e *Env) Bind(params *Value, args []*Value) error {
	switch params.Tag {
	case Symbol, String:
		rest := make([]*Value, len(args))
		copy(rest, args)
		e.Define(params.Text, NewList(rest...))
		return nil
	case List:
	default:
		return Errorf(RuntimeAssertionFailed, "parameter list expected, got %s", params.Render(true))
	}

	if len(params.Children) != len(args) {
		return Errorf(RuntimeAssertionFailed, "expected %d arguments for %s, got %d",
			len(params.Children), params.Render(true), len(args))
	}
	for i, p := range params.Children {
		if p.Tag != Symbol && p.Tag != String {
			return Errorf(RuntimeAssertionFailed, "parameter must be a symbol, got %s", p.Render(true))
		}
		e.Define(p.Text, args[i])
	}
	return nil
}

// Define creates or overwrites a binding in this scope only.
func (e *Env) Define(key string, value *Value) *Value {
	e.data.Put(key, value)
	return value
}

// Find returns the nearest scope that binds key, or nil.
func (e *Env) Find(key string) *Env {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.data.Get(key); ok {
			return env
		}
	}
	return nil
}

func (e *Env) Has(key string) bool {
	return e.Find(key) != nil
}

func (e *Env) Lookup(key string) (*Value, error) {
	env := e.Find(key)
	if env == nil {
		return nil, Errorf(SymbolNotFound, "%s", key)
	}
	value, _ := env.data.Get(key)
	return value.(*Value), nil
}

// Set updates the nearest existing binding of key.
func (e *Env) Set(key string, value *Value) (*Value, error) {
	env := e.Find(key)
	if env == nil {
		return nil, Errorf(SymbolNotFound, "%s", key)
	}
	env.data.Put(key, value)
	return value, nil
}

// Keys lists this scope's own bindings in insertion order.
func (e *Env) Keys() []string {
	keys := make([]string, 0, e.data.Size())
	for _, k := range e.data.Keys() {
		keys = append(keys, k.(string))
	}
	return keys
}

func (e *Env) Len() int { return e.data.Size() }

func (e *Env) String() string {
	parts := make([]string, 0, e.data.Size())
	it := e.data.Iterator()
	for it.Next() {
		parts = append(parts, it.Key().(string)+": "+it.Value().(*Value).Render(true))
	}
	return "#Env{ " + strings.Join(parts, ", ") + "}"
}
