package vm

// Object is a heap object in the knowhow object model.
//
// Every object points at the STable of its type. Type objects carry no
// body; instances carry a REPR-owned body whose concrete type is chosen by
// the REPR that allocated it.
type Object struct {
	st         *STable
	body       any
	typeObject bool
	serial     uint64
}

// STable is the shared type descriptor: one per type, shared by the type
// object and every instance of that type.
// This is a forward declaration; the accessors live in stable.go.
type STable struct {
	repr REPR

	// WHAT is the canonical type object for this STable.
	WHAT *Object

	how *Object // absent while the type is a stub
	who *Object // namespace hash, attached lazily

	methodCache    *Object // VMHash of name -> code object
	modeFlags      ModeFlags
	typeCheckCache []*Object

	serial uint64
}

// Collectable is anything the allocator tracks: objects and STables.
type Collectable interface {
	Serial() uint64
}

// STable returns the object's shared type descriptor.
func (o *Object) STable() *STable {
	return o.st
}

// REPR returns the representation of the object's type, or nil if the
// object has not been attached to an STable yet.
func (o *Object) REPR() REPR {
	if o.st == nil {
		return nil
	}
	return o.st.repr
}

// ReprName returns the name of the object's representation, for diagnostics.
func (o *Object) ReprName() string {
	if o == nil {
		return "<nil>"
	}
	if r := o.REPR(); r != nil {
		return r.Name()
	}
	return "?"
}

// IsTypeObject reports whether o is a type object rather than an instance.
func (o *Object) IsTypeObject() bool {
	return o.typeObject
}

// Body returns the REPR-owned body, nil for type objects.
func (o *Object) Body() any {
	return o.body
}

// Serial returns the allocation serial number.
func (o *Object) Serial() uint64 {
	return o.serial
}

// WHAT returns the type object of o's type.
func (o *Object) WHAT() *Object {
	if o.st == nil {
		return nil
	}
	return o.st.WHAT
}

// HOW returns the meta-object of o's type. ok is false for stub types.
func (o *Object) HOW() (how *Object, ok bool) {
	if o.st == nil {
		return nil, false
	}
	return o.st.HOW()
}

// WHO returns the namespace object of o's type, if one is attached.
func (o *Object) WHO() (who *Object, ok bool) {
	if o.st == nil || o.st.who == nil {
		return nil, false
	}
	return o.st.who, true
}

// attachSTable binds a detached object to its STable. Only the KnowHOW
// bootstrap allocates objects before their STable exists.
func (o *Object) attachSTable(st *STable) {
	o.st = st
}
