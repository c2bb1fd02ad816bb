package vm

// ModeFlags hold STable dispatch flags.
type ModeFlags uint8

const (
	// MethodCacheAuthoritative means dispatch may answer from the method
	// cache alone and never consult the meta-object.
	MethodCacheAuthoritative ModeFlags = 1 << iota
)

// TypeState is the construction state of a type.
type TypeState int

const (
	StateStub      TypeState = iota // REPR only, no meta-object
	StateDescribed                  // meta-object assigned, methods accumulating
	StateComposed                   // caches frozen and authoritative
)

func (s TypeState) String() string {
	switch s {
	case StateStub:
		return "stub"
	case StateDescribed:
		return "described"
	case StateComposed:
		return "composed"
	}
	return "unknown"
}

// REPR returns the representation. It never changes after allocation.
func (st *STable) REPR() REPR {
	return st.repr
}

// HOW returns the meta-object. ok is false while the STable is a stub.
func (st *STable) HOW() (how *Object, ok bool) {
	return st.how, st.how != nil
}

// WHO returns the namespace object, if any.
func (st *STable) WHO() (who *Object, ok bool) {
	return st.who, st.who != nil
}

// MethodCache returns the method cache hash, if one is installed.
func (st *STable) MethodCache() (cache *Object, ok bool) {
	return st.methodCache, st.methodCache != nil
}

// ModeFlags returns the dispatch flags.
func (st *STable) ModeFlags() ModeFlags {
	return st.modeFlags
}

// Authoritative reports whether the method cache is authoritative.
func (st *STable) Authoritative() bool {
	return st.modeFlags&MethodCacheAuthoritative != 0
}

// TypeCheckCache returns a copy of the type check cache.
func (st *STable) TypeCheckCache() []*Object {
	if st.typeCheckCache == nil {
		return nil
	}
	out := make([]*Object, len(st.typeCheckCache))
	copy(out, st.typeCheckCache)
	return out
}

// State derives the construction state from the STable's fields.
func (st *STable) State() TypeState {
	switch {
	case st.how == nil:
		return StateStub
	case st.Authoritative():
		return StateComposed
	default:
		return StateDescribed
	}
}

// Serial returns the allocation serial number.
func (st *STable) Serial() uint64 {
	return st.serial
}
