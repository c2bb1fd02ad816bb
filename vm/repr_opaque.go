package vm

import "fmt"

// opaqueBody is the body of a P6opaque instance: named attribute storage.
type opaqueBody struct {
	attrs map[string]*Object
}

// opaqueREPR is P6opaque, the general-purpose default representation for
// types made by new_type. It only knows how to store attributes by name.
type opaqueREPR struct {
	reprBase
}

func newOpaqueREPR(vm *VM) *opaqueREPR {
	return &opaqueREPR{reprBase{vm: vm, id: ReprIDP6opaque, name: ReprNameP6opaque}}
}

func (r *opaqueREPR) TypeObjectFor(how *Object) (*Object, error) {
	return r.typeObjectFor(r, how)
}

func (r *opaqueREPR) Allocate(st *STable) (*Object, error) {
	return r.vm.heap.AllocateObject(st, &opaqueBody{})
}

func (r *opaqueREPR) Initialize(st *STable, obj *Object) error {
	body, err := instanceBody[*opaqueBody](obj, ReprNameP6opaque)
	if err != nil {
		return err
	}
	body.attrs = make(map[string]*Object)
	return nil
}

// BindAttribute stores value in the named attribute slot.
func (r *opaqueREPR) BindAttribute(obj *Object, name string, value *Object) error {
	body, err := instanceBody[*opaqueBody](obj, ReprNameP6opaque)
	if err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("%w: value for attribute %q", ErrMissingRequiredArgument, name)
	}
	if body.attrs == nil {
		body.attrs = make(map[string]*Object)
	}
	r.vm.writeBarrier(obj, value)
	body.attrs[name] = value
	return nil
}

// GetAttribute returns the named attribute, if bound.
func (r *opaqueREPR) GetAttribute(obj *Object, name string) (*Object, bool, error) {
	body, err := instanceBody[*opaqueBody](obj, ReprNameP6opaque)
	if err != nil {
		return nil, false, err
	}
	v, ok := body.attrs[name]
	return v, ok, nil
}
