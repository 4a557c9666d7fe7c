// Package env implements the resolver's lexical scope stack: a stack of
// identifier-to-External bindings, searched innermost-first. Grounded on
// OAL's rewrite::env::Env.
package env

import "github.com/oalang/apic/internal/syntax"

// Ident is a declared or referenced name.
type Ident string

// Scope is one level of bindings.
type Scope map[Ident]syntax.External

// Env is a stack of scopes, always non-empty.
type Env struct {
	scopes []Scope
}

// New creates an Env with a single, empty top-level scope.
func New() *Env {
	return &Env{scopes: []Scope{make(Scope)}}
}

// Declare binds an identifier in the innermost scope, shadowing any
// outer binding of the same name.
func (e *Env) Declare(n Ident, ext syntax.External) {
	e.scopes[len(e.scopes)-1][n] = ext
}

// Lookup searches the scope stack innermost-first.
func (e *Env) Lookup(n Ident) (syntax.External, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if ext, ok := e.scopes[i][n]; ok {
			return ext, true
		}
	}
	return syntax.External{}, false
}

// Open pushes a new, empty scope.
func (e *Env) Open() {
	e.scopes = append(e.scopes, make(Scope))
}

// Close pops the innermost scope. Panics if called on the last scope,
// mirroring the Vec::pop().unwrap() discipline of the Rust original: the
// resolver's Open/Close calls are always balanced by construction.
func (e *Env) Close() {
	if len(e.scopes) == 1 {
		panic("env: Close called on the top-level scope")
	}
	e.scopes = e.scopes[:len(e.scopes)-1]
}
