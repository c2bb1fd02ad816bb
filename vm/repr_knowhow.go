package vm

import "fmt"

// knowhowBody is the body of a KnowHOWREPR instance: a meta-object's name
// and the method table it accumulates until composition.
type knowhowBody struct {
	name    *Object // VMString
	methods *Object // VMHash, name -> code
}

// knowhowREPR is KnowHOWREPR. Its instances are meta-objects; it stores
// reflective metadata only, never user attributes.
type knowhowREPR struct {
	reprBase
}

func newKnowHOWREPR(vm *VM) *knowhowREPR {
	return &knowhowREPR{reprBase{vm: vm, id: ReprIDKnowHOW, name: ReprNameKnowHOW}}
}

func (r *knowhowREPR) TypeObjectFor(how *Object) (*Object, error) {
	return r.typeObjectFor(r, how)
}

// Allocate accepts a nil STable: the KnowHOW root is allocated before the
// STable describing it exists.
func (r *knowhowREPR) Allocate(st *STable) (*Object, error) {
	return r.vm.heap.AllocateObject(st, &knowhowBody{})
}

// Initialize gives the meta-object an empty method table. BOOTHash must
// already exist.
func (r *knowhowREPR) Initialize(st *STable, obj *Object) error {
	body, err := instanceBody[*knowhowBody](obj, ReprNameKnowHOW)
	if err != nil {
		return err
	}
	methods, err := r.vm.newHash()
	if err != nil {
		return fmt.Errorf("knowhow method table: %w", err)
	}
	r.vm.writeBarrier(obj, methods)
	body.methods = methods
	return nil
}

// setName installs the meta-object's name.
func (r *knowhowREPR) setName(obj, name *Object) error {
	body, err := instanceBody[*knowhowBody](obj, ReprNameKnowHOW)
	if err != nil {
		return err
	}
	r.vm.writeBarrier(obj, name)
	body.name = name
	return nil
}

// MetaObjectName returns the name stored in a KnowHOW meta-object.
func MetaObjectName(how *Object) (string, error) {
	body, err := instanceBody[*knowhowBody](how, ReprNameKnowHOW)
	if err != nil {
		return "", err
	}
	if body.name == nil {
		return "", nil
	}
	return StringValue(body.name)
}

// MetaObjectMethods returns the method table hash of a KnowHOW meta-object.
func MetaObjectMethods(how *Object) (*Object, error) {
	body, err := instanceBody[*knowhowBody](how, ReprNameKnowHOW)
	if err != nil {
		return nil, err
	}
	if body.methods == nil {
		return nil, fmt.Errorf("meta-object %d is not initialized", how.serial)
	}
	return body.methods, nil
}
