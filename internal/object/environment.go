package object

type binding struct {
	name  string
	value Object
}

// Environment is one frame's named slots, organised as a stack of block
// scopes. Lookup is linear by name, innermost scope outward. There is
// no mutation operator in the language: Bind either updates a slot the
// innermost scope already holds or introduces a new slot there,
// shadowing any outer slot of the same name.
type Environment struct {
	scopes [][]binding
}

func NewEnvironment() *Environment {
	return &Environment{scopes: [][]binding{{}}}
}

// Enter opens a new block scope.
func (e *Environment) Enter() {
	e.scopes = append(e.scopes, []binding{})
}

// Leave discards the innermost scope and every slot introduced in it.
// The frame's root scope is never discarded.
func (e *Environment) Leave() {
	if len(e.scopes) > 1 {
		e.scopes = e.scopes[:len(e.scopes)-1]
	}
}

// Get resolves name to the innermost slot holding it.
func (e *Environment) Get(name string) (Object, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		scope := e.scopes[i]
		for j := len(scope) - 1; j >= 0; j-- {
			if scope[j].name == name {
				return scope[j].value, true
			}
		}
	}
	return nil, false
}

// Bind stores value under name in the innermost scope, updating the
// existing slot when the scope already has one.
func (e *Environment) Bind(name string, value Object) {
	scope := e.scopes[len(e.scopes)-1]
	for j := len(scope) - 1; j >= 0; j-- {
		if scope[j].name == name {
			scope[j].value = value
			return
		}
	}
	e.scopes[len(e.scopes)-1] = append(scope, binding{name: name, value: value})
}

// Depth reports the number of open scopes. Used by traces and tests.
func (e *Environment) Depth() int {
	return len(e.scopes)
}
