package model

import "strings"

// PhaseSet is a set of conductor phases.
// S marks a single-phase center-tapped (split-phase) secondary.
type PhaseSet uint8

const (
	PhaseA PhaseSet = 1 << iota
	PhaseB
	PhaseC
	PhaseN
	PhaseS
)

var phaseOrder = []struct {
	bit PhaseSet
	ch  byte
}{
	{PhaseA, 'A'},
	{PhaseB, 'B'},
	{PhaseC, 'C'},
	{PhaseN, 'N'},
	{PhaseS, 'S'},
}

// ParsePhases reads a phases property such as "ABCN" or "BS".
// Characters outside A, B, C, N, S (for example D for delta) are ignored.
func ParsePhases(s string) PhaseSet {
	var p PhaseSet
	for _, r := range strings.ToUpper(s) {
		switch r {
		case 'A':
			p |= PhaseA
		case 'B':
			p |= PhaseB
		case 'C':
			p |= PhaseC
		case 'N':
			p |= PhaseN
		case 'S':
			p |= PhaseS
		}
	}
	return p
}

// String renders the set in canonical A, B, C, N, S order.
func (p PhaseSet) String() string {
	var b strings.Builder
	for _, o := range phaseOrder {
		if p&o.bit != 0 {
			b.WriteByte(o.ch)
		}
	}
	return b.String()
}

func (p PhaseSet) Has(q PhaseSet) bool { return p&q == q }

// Count returns the number of energized phases (A, B and C only).
func (p PhaseSet) Count() int {
	n := 0
	for _, bit := range []PhaseSet{PhaseA, PhaseB, PhaseC} {
		if p&bit != 0 {
			n++
		}
	}
	return n
}

// IsCenterTapped reports whether the set carries a split-phase secondary.
func (p PhaseSet) IsCenterTapped() bool { return p&PhaseS != 0 }

// Union merges two load phase sets. Only A, B, C and S take part, so the
// result is commutative and associative; call Normalize on the final value.
func (p PhaseSet) Union(q PhaseSet) PhaseSet {
	return (p | q) & (PhaseA | PhaseB | PhaseC | PhaseS)
}

// Normalize collapses a union spanning all three phases and a split-phase
// secondary to ABCN.
func (p PhaseSet) Normalize() PhaseSet {
	if p.Has(PhaseA | PhaseB | PhaseC | PhaseS) {
		return PhaseA | PhaseB | PhaseC | PhaseN
	}
	return p
}

func (p PhaseSet) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *PhaseSet) UnmarshalText(b []byte) error {
	*p = ParsePhases(string(b))
	return nil
}

// WithNeutral adds N unless the set is a split-phase secondary.
func (p PhaseSet) WithNeutral() PhaseSet {
	if p.IsCenterTapped() {
		return p
	}
	return p | PhaseN
}
