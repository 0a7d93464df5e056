// Package field defines the scalar field engine used by the constraint
// system and the folding driver. Concrete engines live in per-curve
// subpackages and register themselves by curve name.
package field

import (
	"fmt"
	"math/big"
)

// Element is a scalar field element on 4 uint64 limbs in Montgomery form.
// It fits the scalar fields of both curves of the bn254/grumpkin cycle.
// An Element is only meaningful together with the engine that produced it.
type Element [4]uint64

// IsZero returns true if the element is the field's zero.
func (e Element) IsZero() bool {
	return e[0]|e[1]|e[2]|e[3] == 0
}

// Field is the arithmetic engine over Element.
type Field interface {
	// FromInterface converts a big.Int, string, or integer into an Element.
	// It panics on values it cannot interpret.
	FromInterface(i interface{}) Element
	ToBigInt(Element) *big.Int
	Add(a, b Element) Element
	Sub(a, b Element) Element
	Mul(a, b Element) Element
	Neg(a Element) Element
	Inverse(a Element) (Element, bool)
	One() Element
	IsOne(Element) bool
	String(Element) string
	Uint64(Element) (uint64, bool)
	// Bytes returns the canonical big-endian regular-form encoding.
	Bytes(Element) []byte
	Field() *big.Int
	FieldBitLen() int
	SerializedLen() int
}

var registry = make(map[string]Field)

// Register makes an engine available under the given curve name.
// It is called from the init function of each engine subpackage.
func Register(curve string, f Field) {
	if _, ok := registry[curve]; ok {
		panic(fmt.Sprintf("field engine %q registered twice", curve))
	}
	registry[curve] = f
}

// GetFieldByCurve returns the engine for the scalar field of the named curve.
func GetFieldByCurve(curve string) Field {
	f, ok := registry[curve]
	if !ok {
		panic(fmt.Sprintf("unknown curve %q", curve))
	}
	return f
}

// GetFieldFromOrder returns the registered engine whose modulus equals x.
func GetFieldFromOrder(x *big.Int) Field {
	for _, f := range registry {
		if x.Cmp(f.Field()) == 0 {
			return f
		}
	}
	panic(fmt.Sprintf("unknown field %v", x))
}
