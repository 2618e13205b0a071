package lattice

import "fmt"

// Binary arithmetic over numbers and intervals. Every operation absorbs
// Contradiction inputs and turns invalid numeric combinations into
// Contradiction outputs; nothing here panics on expected edge cases.

func Add(a, b Value) Value { return numericOp("add", a, b, func(x, y float64) float64 { return x + y }) }
func Sub(a, b Value) Value { return numericOp("subtract", a, b, func(x, y float64) float64 { return x - y }) }
func Mul(a, b Value) Value { return numericOp("multiply", a, b, func(x, y float64) float64 { return x * y }) }

func Max(a, b Value) Value { return numericOp("max", a, b, func(x, y float64) float64 { return max(x, y) }) }
func Min(a, b Value) Value { return numericOp("min", a, b, func(x, y float64) float64 { return min(x, y) }) }

func numericOp(verb string, a, b Value, op func(x, y float64) float64) Value {
	if a.IsContradiction() {
		return a
	}
	if b.IsContradiction() {
		return b
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return Contradiction(
			fmt.Sprintf("cannot %s %s and %s", verb, a.String(), b.String()),
			a, b,
		)
	}
	la, ha := bounds(a)
	lb, hb := bounds(b)
	if a.Kind == KindNumber && b.Kind == KindNumber {
		return Number(op(la, lb))
	}
	return cornerInterval(la, ha, lb, hb, op)
}

// Div follows the corner-quotient rule: the result spans the min and max of
// the four endpoint quotients. A divisor that is zero or an interval spanning
// zero has no finite quotient and yields a Contradiction.
func Div(a, b Value) Value {
	if a.IsContradiction() {
		return a
	}
	if b.IsContradiction() {
		return b
	}
	if !a.IsNumeric() || !b.IsNumeric() {
		return Contradiction(
			fmt.Sprintf("cannot divide %s by %s", a.String(), b.String()),
			a, b,
		)
	}
	switch {
	case b.Kind == KindNumber && b.Number == 0:
		return Contradiction(fmt.Sprintf("division of %s by zero", a.String()), a, b)
	case b.Kind == KindInterval && b.Interval.SpansZero():
		return Contradiction(
			fmt.Sprintf("division of %s by %s, which spans zero", a.String(), b.String()),
			a, b,
		)
	}
	la, ha := bounds(a)
	lb, hb := bounds(b)
	if a.Kind == KindNumber && b.Kind == KindNumber {
		return Number(la / lb)
	}
	return cornerInterval(la, ha, lb, hb, func(x, y float64) float64 { return x / y })
}

func bounds(v Value) (lo, hi float64) {
	if v.Kind == KindInterval {
		return v.Interval.Lo, v.Interval.Hi
	}
	return v.Number, v.Number
}

func cornerInterval(la, ha, lb, hb float64, op func(x, y float64) float64) Value {
	corners := [4]float64{op(la, lb), op(la, hb), op(ha, lb), op(ha, hb)}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo = min(lo, c)
		hi = max(hi, c)
	}
	return NewInterval(lo, hi)
}
