package vm

// ReprID identifies a representation in the registry.
type ReprID int

// Bootstrap representation IDs. Registration order follows these values.
const (
	ReprIDString ReprID = iota
	ReprIDArray
	ReprIDHash
	ReprIDCFunction
	ReprIDKnowHOW
	ReprIDP6opaque
)

// Bootstrap representation names.
const (
	ReprNameString    = "VMString"
	ReprNameArray     = "VMArray"
	ReprNameHash      = "VMHash"
	ReprNameCFunction = "VMCFunction"
	ReprNameKnowHOW   = "KnowHOWREPR"
	ReprNameP6opaque  = "P6opaque"
)

// REPR is a representation: the storage strategy and primitive operations
// for a type's instances. REPR values are immutable once registered.
type REPR interface {
	ID() ReprID
	Name() string

	// TypeObjectFor creates a new type using this representation. how may
	// be nil, producing a stub type.
	TypeObjectFor(how *Object) (*Object, error)

	// Allocate creates a default instance. st may be nil only while
	// bootstrapping the KnowHOW root.
	Allocate(st *STable) (*Object, error)

	// Initialize performs second-phase setup Allocate cannot.
	Initialize(st *STable, obj *Object) error
}

// AssociativeREPR is implemented by key/value representations.
type AssociativeREPR interface {
	REPR
	BindKey(obj, key, value *Object) error
	AtKey(obj, key *Object) (value *Object, ok bool, err error)
	ExistsKey(obj, key *Object) (bool, error)
	Keys(obj *Object) ([]*Object, error)
	Elems(obj *Object) (int, error)
}

// PositionalREPR is implemented by index-addressed representations.
type PositionalREPR interface {
	REPR
	Push(obj, value *Object) error
	AtPos(obj *Object, index int) (*Object, error)
	Elems(obj *Object) (int, error)
}

// AttributeREPR is implemented by representations with named attributes.
type AttributeREPR interface {
	REPR
	BindAttribute(obj *Object, name string, value *Object) error
	GetAttribute(obj *Object, name string) (*Object, bool, error)
}

// reprBase carries what every bootstrap REPR shares: identity and the VM
// whose allocator it draws from.
type reprBase struct {
	vm   *VM
	id   ReprID
	name string
}

func (r *reprBase) ID() ReprID   { return r.id }
func (r *reprBase) Name() string { return r.name }

// typeObjectFor is the standard TypeObjectFor: a fresh STable with the
// given meta-object and a type object installed as its WHAT.
func (r *reprBase) typeObjectFor(self REPR, how *Object) (*Object, error) {
	st, err := r.vm.heap.AllocateSTable(self, how)
	if err != nil {
		return nil, err
	}
	obj, err := r.vm.heap.AllocateTypeObject(st)
	if err != nil {
		return nil, err
	}
	r.vm.writeBarrier(st, obj)
	st.WHAT = obj
	return obj, nil
}

// instanceBody fetches obj's body as T, rejecting type objects and objects
// of another representation.
func instanceBody[T any](obj *Object, reprName string) (T, error) {
	var zero T
	if obj == nil {
		return zero, wrongRepr("object", reprName, obj)
	}
	if obj.typeObject {
		return zero, ErrTypeObject
	}
	body, ok := obj.body.(T)
	if !ok {
		return zero, wrongRepr("object", reprName, obj)
	}
	return body, nil
}
