package vm

import "fmt"

// cfunctionBody is the body of a VMCFunction instance.
type cfunctionBody struct {
	name string
	fn   CFunc
}

// cfunctionREPR is VMCFunction, the callable-reference representation
// behind BOOTCCode.
type cfunctionREPR struct {
	reprBase
}

func newCFunctionREPR(vm *VM) *cfunctionREPR {
	return &cfunctionREPR{reprBase{vm: vm, id: ReprIDCFunction, name: ReprNameCFunction}}
}

func (r *cfunctionREPR) TypeObjectFor(how *Object) (*Object, error) {
	return r.typeObjectFor(r, how)
}

func (r *cfunctionREPR) Allocate(st *STable) (*Object, error) {
	return r.vm.heap.AllocateObject(st, &cfunctionBody{})
}

func (r *cfunctionREPR) Initialize(st *STable, obj *Object) error {
	return nil
}

// NewCFunction wraps fn as a BOOTCCode instance.
func (vm *VM) NewCFunction(name string, fn CFunc) (*Object, error) {
	boot := vm.BootTypes.BOOTCCode
	if boot == nil {
		return nil, fmt.Errorf("%w: BOOTCCode does not exist yet", ErrUnknownRepresentation)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: function body for %q", ErrMissingRequiredArgument, name)
	}
	return vm.heap.AllocateObject(boot.st, &cfunctionBody{name: name, fn: fn})
}

// CFunctionName returns the name a code object was created with.
func CFunctionName(code *Object) (string, error) {
	body, err := instanceBody[*cfunctionBody](code, ReprNameCFunction)
	if err != nil {
		return "", err
	}
	return body.name, nil
}
