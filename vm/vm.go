package vm

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("knowhow.vm")

// ---------------------------------------------------------------------------
// VM: one bootstrapped object model
// ---------------------------------------------------------------------------

// BootTypes are the stub types created before any meta-object exists.
type BootTypes struct {
	BOOTStr   *Object
	BOOTArray *Object
	BOOTHash  *Object
	BOOTCCode *Object
}

// FixedStrings are the strings the runtime holds directly. All of them are
// interned and permanently rooted.
type FixedStrings struct {
	Repr        *Object // "repr"
	Name        *Object // "name"
	Anon        *Object // anonymous type marker
	DefaultRepr *Object // default representation for new_type
	RootName    *Object // name of the root meta-object
}

// Options tune the bootstrap. Zero values select the defaults.
type Options struct {
	DefaultRepr string
	AnonName    string
	RootName    string

	// MaxObjects bounds the default Heap. Ignored when Allocator is set.
	MaxObjects int

	// Allocator replaces the default Heap.
	Allocator Allocator
}

// Defaults.
const (
	DefaultReprName = ReprNameP6opaque
	DefaultAnonName = "<anon>"
	DefaultRootName = "KnowHOW"
)

func (o Options) withDefaults() Options {
	if o.DefaultRepr == "" {
		o.DefaultRepr = DefaultReprName
	}
	if o.AnonName == "" {
		o.AnonName = DefaultAnonName
	}
	if o.RootName == "" {
		o.RootName = DefaultRootName
	}
	return o
}

// VM holds all process-wide object model state.
type VM struct {
	// ID distinguishes VMs in logs.
	ID uuid.UUID

	BootTypes BootTypes
	Strings   FixedStrings

	// KnowHOW is the root meta-object's type object. Its HOW is the root
	// meta-object, whose own HOW is itself.
	KnowHOW *Object

	Registry *ReprRegistry
	Interned *InternTable

	opts Options
	heap Allocator

	reprString    *stringREPR
	reprArray     *arrayREPR
	reprHash      *hashREPR
	reprCFunction *cfunctionREPR
	reprKnowHOW   *knowhowREPR
	reprOpaque    *opaqueREPR

	tornDown bool
}

// NewVM creates and bootstraps a VM with default options.
func NewVM() (*VM, error) {
	return NewVMWithOptions(Options{})
}

// NewVMWithOptions creates and bootstraps a VM. A failure is a
// *BootstrapError naming the step; no partially bootstrapped VM is returned.
func NewVMWithOptions(opts Options) (*VM, error) {
	opts = opts.withDefaults()
	heap := opts.Allocator
	if heap == nil {
		heap = NewHeap(opts.MaxObjects)
	}
	vm := &VM{
		ID:   uuid.New(),
		opts: opts,
		heap: heap,
	}
	vm.Interned = newInternTable(vm)

	if err := vm.bootstrap(); err != nil {
		log.Error("bootstrap failed", "vm", vm.ID.String(), "error", err.Error())
		return nil, err
	}
	return vm, nil
}

// MustNewVM is NewVMWithOptions for process startup, where a bootstrap
// failure leaves nothing to recover.
func MustNewVM(opts Options) *VM {
	vm, err := NewVMWithOptions(opts)
	if err != nil {
		panic(err)
	}
	return vm
}

// Heap returns the allocator the VM runs on.
func (vm *VM) Heap() Allocator {
	return vm.heap
}

// Options returns the options the VM was bootstrapped with.
func (vm *VM) Options() Options {
	return vm.opts
}

// Teardown releases the permanent roots the VM registered. It is safe to
// call more than once.
func (vm *VM) Teardown() {
	if vm.tornDown {
		return
	}
	vm.tornDown = true
	vm.Interned.releaseRoots()
	if vm.Registry != nil {
		vm.Registry.releaseRoots()
	}
	for _, obj := range vm.permanentTypes() {
		vm.heap.RemovePermanentRoot(obj)
	}
	log.Debug("torn down", "vm", vm.ID.String())
}

// permanentTypes lists the type objects rooted for the VM's lifetime.
func (vm *VM) permanentTypes() []*Object {
	var out []*Object
	for _, obj := range []*Object{
		vm.BootTypes.BOOTStr,
		vm.BootTypes.BOOTArray,
		vm.BootTypes.BOOTHash,
		vm.BootTypes.BOOTCCode,
		vm.KnowHOW,
	} {
		if obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Internal helpers
// ---------------------------------------------------------------------------

// writeBarrier notifies the allocator before ref is stored into owner.
func (vm *VM) writeBarrier(owner Collectable, ref *Object) {
	if ref == nil {
		return
	}
	vm.heap.WriteBarrier(owner, ref)
}

// newHash allocates and initializes an empty BOOTHash instance.
func (vm *VM) newHash() (*Object, error) {
	boot := vm.BootTypes.BOOTHash
	if boot == nil {
		return nil, fmt.Errorf("%w: BOOTHash does not exist yet", ErrUnknownRepresentation)
	}
	h, err := vm.reprHash.Allocate(boot.st)
	if err != nil {
		return nil, err
	}
	if err := vm.reprHash.Initialize(boot.st, h); err != nil {
		return nil, err
	}
	return h, nil
}

// NewHash allocates an empty BOOTHash instance.
func (vm *VM) NewHash() (*Object, error) {
	return vm.newHash()
}

// NewArray allocates an empty BOOTArray instance.
func (vm *VM) NewArray() (*Object, error) {
	return vm.NewInstance(vm.BootTypes.BOOTArray)
}

func (vm *VM) hashREPR() *hashREPR       { return vm.reprHash }
func (vm *VM) knowhowREPR() *knowhowREPR { return vm.reprKnowHOW }
