package vm

import "fmt"

// Args carries the positional and named arguments of a method call.
// Named arguments are keyed by the string value of the name.
type Args struct {
	Pos   []*Object
	Named map[string]*Object
}

// NewArgs builds positional-only arguments.
func NewArgs(pos ...*Object) *Args {
	return &Args{Pos: pos}
}

// WithNamed returns a copy of a with name bound to value. A nil value
// leaves the argument absent.
func (a *Args) WithNamed(name string, value *Object) *Args {
	out := &Args{Pos: a.Pos, Named: make(map[string]*Object, len(a.Named)+1)}
	for k, v := range a.Named {
		out.Named[k] = v
	}
	if value != nil {
		out.Named[name] = value
	}
	return out
}

// prepend returns a copy of a with obj as the first positional.
func (a *Args) prepend(obj *Object) *Args {
	pos := make([]*Object, 0, len(a.Pos)+1)
	pos = append(pos, obj)
	pos = append(pos, a.Pos...)
	return &Args{Pos: pos, Named: a.Named}
}

// PosObj fetches positional i. A missing required argument is an error;
// a missing optional one yields nil.
func (a *Args) PosObj(i int, required bool) (*Object, error) {
	if i < len(a.Pos) && a.Pos[i] != nil {
		return a.Pos[i], nil
	}
	if required {
		return nil, fmt.Errorf("%w: positional %d", ErrMissingRequiredArgument, i)
	}
	return nil, nil
}

// PosStr fetches positional i, which must be a VMString when present.
func (a *Args) PosStr(i int, required bool) (*Object, error) {
	obj, err := a.PosObj(i, required)
	if err != nil || obj == nil {
		return obj, err
	}
	if !IsString(obj) {
		return nil, wrongRepr(fmt.Sprintf("positional %d", i), ReprNameString, obj)
	}
	return obj, nil
}

// NamedStr fetches the named argument whose name is the VMString name.
func (a *Args) NamedStr(name *Object, required bool) (*Object, error) {
	key, err := StringValue(name)
	if err != nil {
		return nil, fmt.Errorf("argument name: %w", err)
	}
	obj, ok := a.Named[key]
	if !ok || obj == nil {
		if required {
			return nil, fmt.Errorf("%w: named %q", ErrMissingRequiredArgument, key)
		}
		return nil, nil
	}
	if !IsString(obj) {
		return nil, wrongRepr(fmt.Sprintf("named %q", key), ReprNameString, obj)
	}
	return obj, nil
}
