package ground

import "strings"

// Generation is the monotone step counter a Domain advances once per
// grounding step.
type Generation int

// ExternalTruth records the truth value externally assigned to an atom via
// a `#external` directive, overriding its derivation status until released.
type ExternalTruth uint8

const (
	ExternalUnset ExternalTruth = iota
	ExternalTrueAssigned
	ExternalFalseAssigned
	ExternalFreeAssigned
)

// AtomOffset is a stable, append-only index into a Domain. Offsets never
// move once assigned; an incremental domain's Clear empties the table, so
// offsets assigned after it start again from 0.
type AtomOffset int

type atomEntry struct {
	sym        Symbol
	generation Generation
	fact       bool
	defined    bool
	external   ExternalTruth
}

// Domain is the indexed set of ground atoms for one predicate signature.
// Atoms are appended in first-definition order and never removed, except
// that a domain whose signature name carries the reserved `#inc_` prefix
// may be Cleared between incremental steps per the data model's one
// documented exception to "removal is forbidden".
type Domain struct {
	Sig     Signature
	atoms   []atomEntry
	byHash  map[uint64][]AtomOffset
	current Generation
}

// NewDomain returns an empty domain for sig.
func NewDomain(sig Signature) *Domain {
	return &Domain{Sig: sig, byHash: make(map[uint64][]AtomOffset)}
}

// IsIncremental reports whether this domain's predicate name carries the
// `#inc_` prefix reserved for incremental program parts, the only domains
// Clear is ever permitted to act on.
func (d *Domain) IsIncremental() bool {
	return strings.HasPrefix(d.Sig.Name, "#inc_")
}

// Advance moves the domain's current generation forward by one, the point
// at which every atom recorded since the last Advance becomes OLD rather
// than NEW for the next instantiation pass.
func (d *Domain) Advance() {
	d.current++
}

// Generation returns the domain's current generation counter.
func (d *Domain) Generation() Generation { return d.current }

// Lookup returns the offset of sym if already recorded, and whether it was
// found.
func (d *Domain) Lookup(sym Symbol) (AtomOffset, bool) {
	for _, off := range d.byHash[sym.Hash()] {
		if d.atoms[off].sym.Equal(sym) {
			return off, true
		}
	}
	return 0, false
}

// Insert records sym as defined in the current generation if not already
// present, and marks it a fact if asFact is true (once an atom is a fact it
// stays one: Insert never un-facts an atom). It returns the atom's stable
// offset and whether this call newly created the entry.
func (d *Domain) Insert(sym Symbol, asFact bool) (AtomOffset, bool) {
	if off, ok := d.Lookup(sym); ok {
		if asFact {
			d.atoms[off].fact = true
		}
		d.atoms[off].defined = true
		return off, false
	}
	off := AtomOffset(len(d.atoms))
	d.atoms = append(d.atoms, atomEntry{sym: sym, generation: d.current, fact: asFact, defined: true})
	h := sym.Hash()
	d.byHash[h] = append(d.byHash[h], off)
	return off, true
}

// Reserve returns sym's offset, creating an entry (undefined, non-fact) if
// not yet present, without marking it defined. Unlike Insert, it never flips
// an existing entry's defined flag: it is used when a caller only needs a
// stable reference to an atom (a negative body literal, a wire literal for
// an atom that may not have been derived this pass) rather than recording a
// derivation.
func (d *Domain) Reserve(sym Symbol) AtomOffset {
	if off, ok := d.Lookup(sym); ok {
		return off
	}
	off := AtomOffset(len(d.atoms))
	d.atoms = append(d.atoms, atomEntry{sym: sym, generation: d.current})
	h := sym.Hash()
	d.byHash[h] = append(d.byHash[h], off)
	return off
}

// SetExternal installs an externally-assigned truth value on sym, inserting
// it (undefined, non-fact) first if it is not yet present.
func (d *Domain) SetExternal(sym Symbol, v ExternalTruth) AtomOffset {
	off, _ := d.Insert(sym, false)
	d.atoms[off].defined = false
	d.atoms[off].external = v
	return off
}

// Symbol returns the ground symbol stored at off.
func (d *Domain) Symbol(off AtomOffset) Symbol { return d.atoms[off].sym }

// IsFact reports whether off is an unconditional fact.
func (d *Domain) IsFact(off AtomOffset) bool { return d.atoms[off].fact }

// IsDefined reports whether off has at least one supporting rule.
func (d *Domain) IsDefined(off AtomOffset) bool { return d.atoms[off].defined }

// External returns off's external-truth assignment, if any.
func (d *Domain) External(off AtomOffset) ExternalTruth { return d.atoms[off].external }

// Len returns the total number of atoms ever recorded (the stable upper
// bound on AtomOffset + 1).
func (d *Domain) Len() int { return len(d.atoms) }

// GenKind classifies an offset's generation relative to a probing
// generation: New (this step), Old (any earlier step), or both via All.
type GenKind uint8

const (
	GenOld GenKind = iota
	GenNew
	GenAll
)

// Iterate calls fn for every offset whose generation matches kind, relative
// to the domain's current generation: GenNew selects exactly the current
// generation, GenOld selects everything strictly earlier, GenAll selects
// both. Iteration is in ascending offset order, the order the instantiation
// engine's ordering guarantee (§5) relies on.
func (d *Domain) Iterate(kind GenKind, fn func(AtomOffset)) {
	for off, e := range d.atoms {
		switch kind {
		case GenNew:
			if e.generation != d.current {
				continue
			}
		case GenOld:
			if e.generation == d.current {
				continue
			}
		}
		fn(AtomOffset(off))
	}
}

// Clear discards every atom and resets the generation counter to zero. It
// is only valid to call on an incremental (`#inc_`-prefixed) domain between
// steps; callers must check IsIncremental themselves, since this method has
// no way to signal a misuse short of panicking mid-step.
func (d *Domain) Clear() {
	if !d.IsIncremental() {
		panic("ground: Clear called on a non-incremental domain " + d.Sig.String())
	}
	d.atoms = d.atoms[:0]
	d.byHash = make(map[uint64][]AtomOffset)
	d.current = 0
}

// DomainSet owns every predicate's Domain for one grounder instance, keyed
// by signature.
type DomainSet struct {
	domains map[Signature]*Domain
}

// NewDomainSet returns an empty set.
func NewDomainSet() *DomainSet {
	return &DomainSet{domains: make(map[Signature]*Domain)}
}

// Get returns the domain for sig, creating an empty one on first request.
func (ds *DomainSet) Get(sig Signature) *Domain {
	if d, ok := ds.domains[sig]; ok {
		return d
	}
	d := NewDomain(sig)
	ds.domains[sig] = d
	return d
}

// AdvanceAll advances every domain's generation by one, called once at the
// end of a semi-naive pass over a component.
func (ds *DomainSet) AdvanceAll() {
	for _, d := range ds.domains {
		d.Advance()
	}
}

// Size reports a signature's current atom count, used by the safety
// planner's cost estimator; unknown signatures report zero.
func (ds *DomainSet) Size(sig Signature) int {
	if d, ok := ds.domains[sig]; ok {
		return d.Len()
	}
	return 0
}

// ClearIncremental clears every domain whose predicate name carries the
// `#inc_` prefix, called once at the start of a step so an incremental part
// only ever sees this step's own derivations.
func (ds *DomainSet) ClearIncremental() {
	for _, d := range ds.domains {
		if d.IsIncremental() {
			d.Clear()
		}
	}
}
