// Package registry is the Algorithm Registry (C1): a static, O(1)
// lookup catalog of algorithm descriptors. It answers "is this
// algorithm known? what does it require? which implementations exist?"
// and nothing else — it does not execute anything.
//
// A Registry is built once at Engine startup from the fixed native
// catalog plus whatever descriptors the Alternate-Language Bridge (C3)
// contributes after its startup probe, and is never mutated afterward:
// concurrent reads need no lock, matching spec §5's "registry snapshot"
// exception to the no-global-mutable-state rule.
package registry

import "github.com/hctx/analytics-platform/pkg/rpcwire"

// Descriptor is the Registry's internal, richer representation of one
// algorithm. ToWire narrows it to the wire-level rpcwire.AlgorithmDescriptor
// that GetSupportedAlgorithms actually transmits.
type Descriptor struct {
	Name           string
	Description    string
	RequiredParams []string
	OptionalParams []string
	// MinDataSize is the smallest len(data) a kernel accepts before
	// failing EmptyData/Validation. Generators ignore it.
	MinDataSize int
	Native      bool
	Alternate   bool
}

// Implementations reports which of {"native","alternate"} this build
// and runtime actually offer for the descriptor, in that fixed order.
func (d Descriptor) Implementations() []string {
	var impls []string
	if d.Native {
		impls = append(impls, "native")
	}
	if d.Alternate {
		impls = append(impls, "alternate")
	}
	return impls
}

// ToWire converts a Descriptor to the wire shape GetSupportedAlgorithms
// returns.
func (d Descriptor) ToWire() rpcwire.AlgorithmDescriptor {
	return rpcwire.AlgorithmDescriptor{
		Name:            d.Name,
		Description:     d.Description,
		Implementations: d.Implementations(),
		RequiredParams:  d.RequiredParams,
		OptionalParams:  d.OptionalParams,
	}
}

// baseDescriptors is the required-minimum native catalog (spec §4.1).
// Every entry here MUST have a corresponding kernel or generator
// implementation in internal/engine/kernel or internal/engine/generator
// — an orphaned registry entry is a bug (see REDESIGN FLAG 1/2).
var baseDescriptors = []Descriptor{
	{Name: "mean", Description: "Arithmetic mean of the data.", MinDataSize: 1, Native: true},
	{Name: "median", Description: "Middle value; mean of the two middle elements when n is even.", MinDataSize: 1, Native: true},
	{Name: "mode", Description: "Most frequent value(s), bucketed to six decimal places.", MinDataSize: 1, Native: true},
	{Name: "std", Description: "Sample standard deviation (denominator n-1).", MinDataSize: 2, Native: true},
	{Name: "variance", Description: "Sample variance (denominator n-1).", MinDataSize: 2, Native: true},
	{Name: "min", Description: "Minimum value.", MinDataSize: 1, Native: true},
	{Name: "max", Description: "Maximum value.", MinDataSize: 1, Native: true},
	{Name: "range", Description: "max - min.", MinDataSize: 1, Native: true},
	{
		Name: "percentile", Description: "Linear-interpolated percentile of the sorted data.",
		OptionalParams: []string{"percentile"}, MinDataSize: 1, Native: true,
	},
	{Name: "q1", Description: "25th percentile.", MinDataSize: 1, Native: true},
	{Name: "q3", Description: "75th percentile.", MinDataSize: 1, Native: true},
	{Name: "iqr", Description: "q3 - q1.", MinDataSize: 1, Native: true},
	{Name: "count", Description: "Number of elements; the only statistic defined on empty data.", MinDataSize: 0, Native: true},
	{Name: "skewness", Description: "Bias-corrected sample skewness.", MinDataSize: 3, Native: true},
	{Name: "kurtosis", Description: "Bias-corrected excess kurtosis.", MinDataSize: 4, Native: true},
	{Name: "correlation", Description: "Lag-1 autocorrelation.", MinDataSize: 2, Native: true},
	{Name: "summary", Description: "Aggregate of count,mean,median,std,variance,min,max,range,q25,q75,autocorr.", MinDataSize: 1, Native: true},
	{
		Name: "generate_uniform", Description: "Deterministic uniform sequence in [min,max).",
		RequiredParams: []string{"count", "seed", "min", "max"}, Native: true,
	},
	{
		Name: "generate_normal", Description: "Deterministic normal sequence via Box-Muller.",
		RequiredParams: []string{"count", "seed", "mean", "std_dev"}, Native: true,
	},
	{
		Name: "generate_exponential", Description: "Deterministic exponential sequence via inverse-CDF.",
		RequiredParams: []string{"count", "seed", "lambda"}, Native: true,
	},
}

// Registry is the immutable-after-construction algorithm catalog.
type Registry struct {
	descriptors map[string]Descriptor
	order       []string
}

// New builds a Registry from the fixed native catalog, merged with
// bridgeDescriptors (the Alternate-Language Bridge's own descriptor
// list, possibly empty if the bridge is disabled or its startup probe
// failed). A bridge descriptor matching an existing native name marks
// that entry Alternate=true; a bridge descriptor with no native match
// is appended as an alternate-only entry.
func New(bridgeDescriptors []Descriptor) *Registry {
	r := &Registry{
		descriptors: make(map[string]Descriptor, len(baseDescriptors)+len(bridgeDescriptors)),
	}
	for _, d := range baseDescriptors {
		r.descriptors[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	for _, bd := range bridgeDescriptors {
		existing, ok := r.descriptors[bd.Name]
		if !ok {
			bd.Native = false
			bd.Alternate = true
			r.descriptors[bd.Name] = bd
			r.order = append(r.order, bd.Name)
			continue
		}
		existing.Alternate = true
		r.descriptors[bd.Name] = existing
	}
	return r
}

// Lookup returns the descriptor for name and whether it was found.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.descriptors[name]
	return d, ok
}

// List returns every descriptor in a stable order (registration order:
// the fixed native catalog, then any bridge-only additions).
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.descriptors[name])
	}
	return out
}

// Implementations reports which of {"native","alternate"} exist for
// name. Returns nil if name is unknown.
func (r *Registry) Implementations(name string) []string {
	d, ok := r.descriptors[name]
	if !ok {
		return nil
	}
	return d.Implementations()
}

// ListWire returns List() narrowed to the wire-level AlgorithmList
// GetSupportedAlgorithms transmits.
func (r *Registry) ListWire() rpcwire.AlgorithmList {
	descs := r.List()
	wire := make([]rpcwire.AlgorithmDescriptor, len(descs))
	for i, d := range descs {
		wire[i] = d.ToWire()
	}
	return rpcwire.AlgorithmList{Algorithms: wire}
}
