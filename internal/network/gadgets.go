package network

import "propnet/go-core/internal/lattice"

// GadgetSpec defines a primitive propagator kind: its named ports, when it
// fires, and the pure body computing outputs from inputs.
type GadgetSpec struct {
	Kind    string
	Inputs  []string
	Outputs []string

	// Activation decides whether the body may run given which inputs
	// currently hold values. The zero value means "all inputs present".
	Activation func(present map[string]bool) bool

	// Body computes outputs from inputs. It must be pure, absorb
	// Contradiction inputs, and express invalid operations as
	// Contradiction outputs rather than panicking.
	Body func(inputs map[string]lattice.Value) map[string]lattice.Value
}

// Activated reports whether the body may run for the given input presence.
func (s GadgetSpec) Activated(present map[string]bool) bool {
	if s.Activation != nil {
		return s.Activation(present)
	}
	for _, name := range s.Inputs {
		if !present[name] {
			return false
		}
	}
	return true
}

func binaryGadget(kind, outName string, op func(a, b lattice.Value) lattice.Value) GadgetSpec {
	return GadgetSpec{
		Kind:    kind,
		Inputs:  []string{"x", "y"},
		Outputs: []string{outName},
		Body: func(inputs map[string]lattice.Value) map[string]lattice.Value {
			return map[string]lattice.Value{outName: op(inputs["x"], inputs["y"])}
		},
	}
}

var builtinGadgets = map[string]GadgetSpec{
	"add": binaryGadget("add", "sum", lattice.Add),
	"sub": binaryGadget("sub", "difference", lattice.Sub),
	"mul": binaryGadget("mul", "product", lattice.Mul),
	"div": binaryGadget("div", "quotient", lattice.Div),
	"max": binaryGadget("max", "max", lattice.Max),
	"min": binaryGadget("min", "min", lattice.Min),
}

// GadgetKinds lists the registered gadget kinds.
func GadgetKinds() []string {
	kinds := make([]string, 0, len(builtinGadgets))
	for kind := range builtinGadgets {
		kinds = append(kinds, kind)
	}
	return kinds
}

// LookupGadget resolves a registered gadget kind.
func LookupGadget(kind string) (GadgetSpec, bool) {
	spec, ok := builtinGadgets[kind]
	return spec, ok
}
