package evaluator

import "sort"

// Env is a flat mapping from names to values. It is mutated only by Define
// and is not safe for concurrent use.
type Env struct {
	bindings map[string]Object
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]Object)}
}

// Get looks up a variable by name.
func (e *Env) Get(name string) (Object, bool) {
	val, ok := e.bindings[name]
	return val, ok
}

// Set binds a variable, overwriting any previous binding.
func (e *Env) Set(name string, val Object) {
	e.bindings[name] = val
}

// Has checks whether a variable is bound.
func (e *Env) Has(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Len returns the number of bindings.
func (e *Env) Len() int {
	return len(e.bindings)
}

// Names returns the bound names in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy. Defines applied to the copy never
// reach the receiver and vice versa.
func (e *Env) Clone() *Env {
	c := &Env{bindings: make(map[string]Object, len(e.bindings))}
	for k, v := range e.bindings {
		c.bindings[k] = v
	}
	return c
}

// callEnv builds the environment for a function body: parameters first,
// then every caller binding not shadowed by a parameter.
func callEnv(params []string, args []Object, caller *Env) *Env {
	env := &Env{bindings: make(map[string]Object, len(params)+len(caller.bindings))}
	for i, p := range params {
		env.bindings[p] = args[i]
	}
	for k, v := range caller.bindings {
		if _, shadowed := env.bindings[k]; !shadowed {
			env.bindings[k] = v
		}
	}
	return env
}
