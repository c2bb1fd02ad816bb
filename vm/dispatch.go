package vm

import "fmt"

// FindMethod resolves name on obj's type from its method cache.
//
// Methods added to a meta-object become visible only once the type is
// composed. A stub type (no meta-object) has nothing to consult and falls
// through to ErrMethodNotFound.
func (vm *VM) FindMethod(obj *Object, name string) (*Object, error) {
	if obj == nil || obj.st == nil {
		return nil, fmt.Errorf("%w: %q on detached object", ErrMethodNotFound, name)
	}
	st := obj.st
	if _, ok := st.HOW(); !ok {
		return nil, fmt.Errorf("%w: %q on stub %s", ErrMethodNotFound, name, st.repr.Name())
	}
	if cache, ok := st.MethodCache(); ok {
		m, found, err := vm.hashREPR().atString(cache, name)
		if err != nil {
			return nil, err
		}
		if found {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: %q on %s (%s)", ErrMethodNotFound, name, st.repr.Name(), st.State())
}

// Invoke calls a code object.
func (vm *VM) Invoke(code *Object, args *Args) (*Object, error) {
	body, err := instanceBody[*cfunctionBody](code, ReprNameCFunction)
	if err != nil {
		return nil, fmt.Errorf("invoke: %w", err)
	}
	if args == nil {
		args = &Args{}
	}
	return body.fn(vm, args)
}

// CallMethod finds name on invocant and invokes it with invocant as
// positional 0.
func (vm *VM) CallMethod(invocant *Object, name string, args *Args) (*Object, error) {
	m, err := vm.FindMethod(invocant, name)
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = &Args{}
	}
	return vm.Invoke(m, args.prepend(invocant))
}

// IsType reports whether obj is acceptable where typ is expected. A type
// check cache answers when present; otherwise only the type itself matches.
func (vm *VM) IsType(obj, typ *Object) bool {
	if obj == nil || obj.st == nil || typ == nil {
		return false
	}
	if cache := obj.st.typeCheckCache; cache != nil {
		for _, t := range cache {
			if t == typ {
				return true
			}
		}
		return false
	}
	return obj.st.WHAT == typ
}

// NewInstance allocates and initializes an instance of typ.
func (vm *VM) NewInstance(typ *Object) (*Object, error) {
	if typ == nil || typ.st == nil {
		return nil, fmt.Errorf("%w: type object", ErrMissingRequiredArgument)
	}
	repr := typ.st.repr
	obj, err := repr.Allocate(typ.st)
	if err != nil {
		return nil, err
	}
	if err := repr.Initialize(typ.st, obj); err != nil {
		return nil, err
	}
	return obj, nil
}
