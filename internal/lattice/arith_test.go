package lattice

import "testing"

func TestAddNumbers(t *testing.T) {
	got := Add(Number(3), Number(4))
	if !Equal(got, Number(7)) {
		t.Fatalf("3 + 4 = %s", got)
	}
}

func TestArithmeticOverIntervals(t *testing.T) {
	got := Add(NewInterval(1, 2), NewInterval(10, 20))
	if !Equal(got, NewInterval(11, 22)) {
		t.Fatalf("interval add produced %s", got)
	}
	got = Sub(NewInterval(1, 2), NewInterval(10, 20))
	if !Equal(got, NewInterval(-19, -8)) {
		t.Fatalf("interval sub produced %s", got)
	}
	got = Mul(NewInterval(-1, 2), NewInterval(3, 4))
	if !Equal(got, NewInterval(-4, 8)) {
		t.Fatalf("interval mul produced %s", got)
	}
	got = Mul(Number(2), NewInterval(3, 5))
	if !Equal(got, NewInterval(6, 10)) {
		t.Fatalf("scalar by interval mul produced %s", got)
	}
}

func TestMaxMin(t *testing.T) {
	if got := Max(Number(3), Number(9)); !Equal(got, Number(9)) {
		t.Fatalf("max(3, 9) = %s", got)
	}
	if got := Min(NewInterval(1, 5), NewInterval(2, 3)); !Equal(got, NewInterval(1, 3)) {
		t.Fatalf("interval min produced %s", got)
	}
}

func TestDivByZeroContradicts(t *testing.T) {
	got := Div(Number(10), Number(0))
	if !got.IsContradiction() {
		t.Fatalf("10 / 0 must contradict, got %s", got)
	}
}

func TestDivByZeroSpanningIntervalContradicts(t *testing.T) {
	got := Div(NewInterval(-1, 1), NewInterval(-1, 1))
	if !got.IsContradiction() {
		t.Fatalf("division by a zero-spanning interval must contradict, got %s", got)
	}
	got = Div(Number(4), NewInterval(0, 2))
	if !got.IsContradiction() {
		t.Fatalf("divisor touching zero must contradict, got %s", got)
	}
}

func TestDivCornerQuotients(t *testing.T) {
	got := Div(NewInterval(10, 20), NewInterval(2, 5))
	if !Equal(got, NewInterval(2, 10)) {
		t.Fatalf("corner-quotient division produced %s", got)
	}
	got = Div(NewInterval(10, 20), NewInterval(-5, -2))
	if !Equal(got, NewInterval(-10, -2)) {
		t.Fatalf("negative divisor division produced %s", got)
	}
	got = Div(Number(10), Number(4))
	if !Equal(got, Number(2.5)) {
		t.Fatalf("10 / 4 = %s", got)
	}
}

func TestArithmeticAbsorbsContradictions(t *testing.T) {
	poison := Contradiction("earlier failure")
	for _, op := range []func(a, b Value) Value{Add, Sub, Mul, Div, Max, Min} {
		got := op(poison, Number(1))
		if !Equal(got, poison) {
			t.Fatalf("left contradiction must pass through, got %s", got)
		}
		got = op(Number(1), poison)
		if !Equal(got, poison) {
			t.Fatalf("right contradiction must pass through, got %s", got)
		}
	}
}

func TestArithmeticRejectsNonNumeric(t *testing.T) {
	got := Add(Number(1), Text("x"))
	if !got.IsContradiction() {
		t.Fatalf("adding text must contradict, got %s", got)
	}
	got = Div(Bool(true), Number(2))
	if !got.IsContradiction() {
		t.Fatalf("dividing a bool must contradict, got %s", got)
	}
}
