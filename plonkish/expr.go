// Gate polynomials, supporting quadratic terms over queried cells.
package plonkish

import (
	"sort"

	"github.com/PolyhedraZK/PlonkishIVC/field"
)

// Term is a monomial of a gate polynomial. Variable ids index into the
// gate's query list, 1-based; id 0 means the slot is unused.
//
// If QID1 is 0, it is a linear term. If both ids are 0, it is a constant.
type Term struct {
	QID0  int
	QID1  int
	Coeff field.Element
}

// NewTerm returns coeff * q0 * q1 with ids in canonical (descending) order.
func NewTerm(qID0, qID1 int, coeff field.Element) Term {
	if qID0 < qID1 {
		qID0, qID1 = qID1, qID0
	}
	return Term{Coeff: coeff, QID0: qID0, QID1: qID1}
}

// Degree returns the degree of the monomial.
func (t Term) Degree() int {
	if t.QID0 == 0 {
		return 0
	}
	if t.QID1 == 0 {
		return 1
	}
	return 2
}

// Expression is a gate polynomial, a sorted sum of terms.
type Expression []Term

// NewConstantExpression returns c.
func NewConstantExpression(c field.Element) Expression {
	return Expression{NewTerm(0, 0, c)}
}

// NewLinearExpression returns c * q.
func NewLinearExpression(q int, c field.Element) Expression {
	return Expression{NewTerm(q, 0, c)}
}

// NewQuadraticExpression returns c * q0 * q1.
func NewQuadraticExpression(q0, q1 int, c field.Element) Expression {
	return Expression{NewTerm(q0, q1, c)}
}

func (e Expression) Clone() Expression {
	res := make(Expression, len(e))
	copy(res, e)
	return res
}

// Len implements sort.Interface.
func (e Expression) Len() int {
	return len(e)
}

// Swap implements sort.Interface.
func (e Expression) Swap(i, j int) {
	e[i], e[j] = e[j], e[i]
}

// Less implements sort.Interface, ordering terms by query ids.
func (e Expression) Less(i, j int) bool {
	if e[i].QID0 != e[j].QID0 {
		return e[i].QID0 < e[j].QID0
	}
	return e[i].QID1 < e[j].QID1
}

// Degree returns the degree of the polynomial.
func (e Expression) Degree() int {
	res := 0
	for _, t := range e {
		if d := t.Degree(); d > res {
			res = d
		}
	}
	return res
}

// IsConstant reports whether the polynomial has no variable terms.
func (e Expression) IsConstant() bool {
	for _, t := range e {
		if t.QID0 != 0 || t.QID1 != 0 {
			return false
		}
	}
	return true
}

// normalize sorts the terms and merges those with identical query ids,
// dropping zero coefficients. The zero polynomial normalizes to nil.
func normalize(engine field.Field, e Expression) Expression {
	sort.Sort(e)
	res := make(Expression, 0, len(e))
	for _, t := range e {
		if n := len(res); n > 0 && res[n-1].QID0 == t.QID0 && res[n-1].QID1 == t.QID1 {
			res[n-1].Coeff = engine.Add(res[n-1].Coeff, t.Coeff)
		} else {
			res = append(res, t)
		}
	}
	out := res[:0]
	for _, t := range res {
		if !t.Coeff.IsZero() {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// eval evaluates the polynomial given the resolved value of each query.
// values is indexed by query id minus one.
func (e Expression) eval(engine field.Field, values []field.Element) field.Element {
	var acc field.Element
	for _, t := range e {
		v := t.Coeff
		if t.QID0 != 0 {
			v = engine.Mul(v, values[t.QID0-1])
		}
		if t.QID1 != 0 {
			v = engine.Mul(v, values[t.QID1-1])
		}
		acc = engine.Add(acc, v)
	}
	return acc
}
