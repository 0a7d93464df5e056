// Copyright 2020 ConsenSys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bn254

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/PolyhedraZK/PlonkishIVC/field"
)

// CurveName is the registry key of this engine.
const CurveName = "bn254"

var ScalarField = fr.Modulus()

func init() {
	field.Register(CurveName, &Field{})
}

// Field is the engine for the bn254 scalar field.
type Field struct{}

func (engine *Field) FromInterface(i interface{}) field.Element {
	var e fr.Element
	if _, err := e.SetInterface(i); err != nil {
		panic(fmt.Sprintf("invalid field value %v", i))
	}
	return field.Element(e)
}

func (engine *Field) ToBigInt(a field.Element) *big.Int {
	e := fr.Element(a)
	r := new(big.Int)
	e.BigInt(r)
	return r
}

func (engine *Field) Add(a, b field.Element) field.Element {
	_a := fr.Element(a)
	_b := fr.Element(b)
	_a.Add(&_a, &_b)
	return field.Element(_a)
}

func (engine *Field) Sub(a, b field.Element) field.Element {
	_a := fr.Element(a)
	_b := fr.Element(b)
	_a.Sub(&_a, &_b)
	return field.Element(_a)
}

func (engine *Field) Mul(a, b field.Element) field.Element {
	_a := fr.Element(a)
	_b := fr.Element(b)
	_a.Mul(&_a, &_b)
	return field.Element(_a)
}

func (engine *Field) Neg(a field.Element) field.Element {
	e := fr.Element(a)
	e.Neg(&e)
	return field.Element(e)
}

func (engine *Field) Inverse(a field.Element) (field.Element, bool) {
	e := fr.Element(a)
	if e.IsZero() {
		return a, false
	}
	e.Inverse(&e)
	return field.Element(e), true
}

func (engine *Field) One() field.Element {
	return field.Element(fr.One())
}

func (engine *Field) IsOne(a field.Element) bool {
	e := fr.Element(a)
	return e.IsOne()
}

func (engine *Field) String(a field.Element) string {
	e := fr.Element(a)
	return e.String()
}

func (engine *Field) Uint64(a field.Element) (uint64, bool) {
	e := fr.Element(a)
	if !e.IsUint64() {
		return 0, false
	}
	return e.Uint64(), true
}

func (engine *Field) Bytes(a field.Element) []byte {
	e := fr.Element(a)
	b := e.Bytes()
	return b[:]
}

func (engine *Field) Field() *big.Int {
	return fr.Modulus()
}

func (engine *Field) FieldBitLen() int {
	return fr.Modulus().BitLen()
}

func (engine *Field) SerializedLen() int {
	return fr.Bytes
}
