package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// LoadProperties lists the property names whose complex power contributes to
// a node's load.
var LoadProperties = []string{
	"constant_power_A",
	"constant_power_B",
	"constant_power_C",
	"constant_power_1",
	"constant_power_2",
	"constant_power_12",
	"power_1",
	"power_2",
	"power_12",
	"base_power_1",
	"base_power_2",
	"base_power_12",
}

// ParseKVA returns the apparent power magnitude, in kVA, of a complex power
// value given in VA. Accepted forms are rectangular ("1200+340j", "-5.2e3-1j"),
// polar in degrees ("1500+30d") or radians ("1500+0.5r"), and a bare real
// number. A trailing unit suffix such as " VA" or ";" is ignored.
func ParseKVA(s string) (float64, error) {
	v := strings.TrimSpace(s)
	v = strings.TrimRight(v, "; ")
	v = strings.TrimSuffix(v, "VA")
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("empty complex power")
	}

	form := byte(0)
	switch last := v[len(v)-1]; last {
	case 'j', 'i', 'd', 'r':
		form = last
		v = v[:len(v)-1]
	}
	if form == 0 {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("parse complex power %q: %w", s, err)
		}
		return 0.001 * math.Abs(p), nil
	}

	split := splitIndex(v)
	if split < 0 {
		// Pure imaginary (or pure magnitude) value such as "300j".
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("parse complex power %q: %w", s, err)
		}
		return 0.001 * math.Abs(x), nil
	}
	a, err := strconv.ParseFloat(v[:split], 64)
	if err != nil {
		return 0, fmt.Errorf("parse complex power %q: %w", s, err)
	}
	b, err := strconv.ParseFloat(v[split:], 64)
	if err != nil {
		return 0, fmt.Errorf("parse complex power %q: %w", s, err)
	}
	switch form {
	case 'd', 'r':
		// Polar: magnitude is the first term regardless of angle.
		return 0.001 * math.Abs(a), nil
	default:
		return 0.001 * math.Hypot(a, b), nil
	}
}

// splitIndex finds the sign that separates the real and imaginary terms,
// skipping a leading sign and exponent signs.
func splitIndex(v string) int {
	for i := 1; i < len(v); i++ {
		if v[i] != '+' && v[i] != '-' {
			continue
		}
		if prev := v[i-1]; prev == 'e' || prev == 'E' {
			continue
		}
		return i
	}
	return -1
}

// LoadKVA sums the apparent power of every load property present in props.
func LoadKVA(props Properties) (float64, error) {
	total := 0.0
	for _, key := range LoadProperties {
		raw, ok := props[key]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		kva, err := ParseKVA(raw)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		total += kva
	}
	return total, nil
}
