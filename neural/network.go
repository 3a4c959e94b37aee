// Package neural provides the three-layer feedforward controllers trained by
// the evolutionary loop, together with their forward pass and the stochastic
// operators that reshape their parameters between generations.
package neural

import (
	"errors"
	"fmt"
	"image/color"
	"math/rand"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

var (
	// ErrShapeMismatch is returned when an operator combines networks of
	// different topology or receives a vector of the wrong length.
	ErrShapeMismatch = errors.New("neural: shape mismatch")

	// ErrUninitialized is returned when a network is used before Configure.
	ErrUninitialized = errors.New("neural: network not configured")
)

// Topology holds the three layer sizes of a network.
type Topology struct {
	L0 int `yaml:"inputs"`
	L1 int `yaml:"hidden"`
	L2 int `yaml:"outputs"`
}

// Valid reports whether every layer has at least one unit.
func (t Topology) Valid() bool {
	return t.L0 > 0 && t.L1 > 0 && t.L2 > 0
}

// NumParams returns the number of biases and weights for the topology.
func (t Topology) NumParams() int {
	return t.L0 + t.L1 + t.L2 + t.L1*t.L0 + t.L2*t.L1
}

func (t Topology) String() string {
	return fmt.Sprintf("%d-%d-%d", t.L0, t.L1, t.L2)
}

// Network is a dense input -> hidden -> output controller.
//
// Weights are stored row-major: row i of Weights10 holds the weights feeding
// hidden unit i from every input, row i of Weights21 those feeding output i.
type Network struct {
	topo Topology

	Bias0 []float32
	Bias1 []float32
	Bias2 []float32

	Weights10 []float32 // [L1 * L0]
	Weights21 []float32 // [L2 * L1]

	state0 []float32
	state1 []float32
	state2 []float32

	// shifted holds (state + bias) of the source layer during Step.
	shifted []float32

	act Activation
}

// New returns a zero-filled network with the given topology.
func New(topo Topology) (*Network, error) {
	nn := &Network{act: TanhApprox}
	if err := nn.Configure(topo.L0, topo.L1, topo.L2); err != nil {
		return nil, err
	}
	return nn, nil
}

// Configure sets the topology and reallocates every buffer zero-filled.
func (nn *Network) Configure(l0, l1, l2 int) error {
	topo := Topology{L0: l0, L1: l1, L2: l2}
	if !topo.Valid() {
		return fmt.Errorf("configure %s: %w", topo, ErrShapeMismatch)
	}
	nn.topo = topo
	nn.Reset()
	return nil
}

// Reset reallocates all buffers for the current topology, discarding
// parameters and state.
func (nn *Network) Reset() {
	t := nn.topo
	nn.Bias0 = make([]float32, t.L0)
	nn.Bias1 = make([]float32, t.L1)
	nn.Bias2 = make([]float32, t.L2)

	nn.state0 = make([]float32, t.L0)
	nn.state1 = make([]float32, t.L1)
	nn.state2 = make([]float32, t.L2)

	nn.Weights10 = make([]float32, t.L1*t.L0)
	nn.Weights21 = make([]float32, t.L2*t.L1)

	nn.shifted = make([]float32, max(t.L0, t.L1))

	if nn.act == nil {
		nn.act = TanhApprox
	}
}

// Topology returns the layer sizes.
func (nn *Network) Topology() Topology {
	return nn.topo
}

// Configured reports whether the buffers match a valid topology.
func (nn *Network) Configured() bool {
	return nn.topo.Valid() && len(nn.state0) == nn.topo.L0
}

// SetActivation replaces the activation used by Step. Nil restores TanhApprox.
func (nn *Network) SetActivation(act Activation) {
	if act == nil {
		act = TanhApprox
	}
	nn.act = act
}

// Inputs returns the input layer state. The environment writes it before Step.
func (nn *Network) Inputs() []float32 { return nn.state0 }

// Hidden returns the hidden layer activations of the last Step.
func (nn *Network) Hidden() []float32 { return nn.state1 }

// Outputs returns the output layer activations of the last Step.
func (nn *Network) Outputs() []float32 { return nn.state2 }

// SetInputs copies an observation into the input layer.
func (nn *Network) SetInputs(inputs []float32) error {
	if !nn.Configured() {
		return ErrUninitialized
	}
	if len(inputs) != nn.topo.L0 {
		return fmt.Errorf("set inputs: got %d, want %d: %w", len(inputs), nn.topo.L0, ErrShapeMismatch)
	}
	copy(nn.state0, inputs)
	return nil
}

// Step runs the forward pass: state0 -> state1 -> state2.
//
// Each connection carries the source unit's activation plus the source
// unit's own bias; the destination bias is added once to the weighted sum.
func (nn *Network) Step() error {
	if !nn.Configured() {
		return ErrUninitialized
	}
	t := nn.topo
	layer(nn.state1, nn.Bias1, nn.Weights10, nn.state0, nn.Bias0, nn.shifted[:t.L0], nn.act)
	layer(nn.state2, nn.Bias2, nn.Weights21, nn.state1, nn.Bias1, nn.shifted[:t.L1], nn.act)
	return nil
}

// layer computes dst = act(dstBias + W * (src + srcBias)).
func layer(dst, dstBias, w, src, srcBias, shifted []float32, act Activation) {
	for j := range shifted {
		shifted[j] = src[j] + srcBias[j]
	}
	copy(dst, dstBias)

	a := blas32.General{Rows: len(dst), Cols: len(src), Stride: len(src), Data: w}
	x := blas32.Vector{N: len(shifted), Inc: 1, Data: shifted}
	y := blas32.Vector{N: len(dst), Inc: 1, Data: dst}
	blas32.Gemv(blas.NoTrans, 1, a, x, 1, y)

	for i := range dst {
		dst[i] = act(dst[i])
	}
}

// params returns the five parameter buffers in a fixed order.
func (nn *Network) params() [5][]float32 {
	return [5][]float32{nn.Bias0, nn.Bias1, nn.Bias2, nn.Weights10, nn.Weights21}
}

func (nn *Network) checkShape(op string, src *Network) error {
	if !nn.Configured() || src == nil || !src.Configured() {
		return fmt.Errorf("%s: %w", op, ErrUninitialized)
	}
	if nn.topo != src.topo {
		return fmt.Errorf("%s %s from %s: %w", op, nn.topo, src.topo, ErrShapeMismatch)
	}
	return nil
}

// randh returns a uniform draw in [-0.5, 0.5].
func randh(rng *rand.Rand) float32 {
	return rng.Float32() - 0.5
}

// Randomize draws every bias and weight uniformly from [-0.5, 0.5].
func (nn *Network) Randomize(rng *rand.Rand) error {
	if !nn.Configured() {
		return fmt.Errorf("randomize: %w", ErrUninitialized)
	}
	for _, buf := range nn.params() {
		for i := range buf {
			buf[i] = randh(rng)
		}
	}
	return nil
}

// RandomizeInputs fills the input layer with uniform draws in [0, 1).
// Only meaningful when no environment supplies observations.
func (nn *Network) RandomizeInputs(rng *rand.Rand) error {
	if !nn.Configured() {
		return fmt.Errorf("randomize inputs: %w", ErrUninitialized)
	}
	for i := range nn.state0 {
		nn.state0[i] = rng.Float32()
	}
	return nil
}

// LerpTowards moves every parameter towards src: p = p*(1-t) + src.p*t.
func (nn *Network) LerpTowards(src *Network, t float32) error {
	if err := nn.checkShape("lerp", src); err != nil {
		return err
	}
	t = clamp01(t)
	dst := nn.params()
	from := src.params()
	for k := range dst {
		d := blas32.Vector{N: len(dst[k]), Inc: 1, Data: dst[k]}
		s := blas32.Vector{N: len(from[k]), Inc: 1, Data: from[k]}
		blas32.Scal(1-t, d)
		blas32.Axpy(t, s, d)
	}
	return nil
}

// Mutate replaces each parameter, with independent probability rate, by a
// fresh uniform draw in [-0.5, 0.5].
func (nn *Network) Mutate(rng *rand.Rand, rate float32) error {
	if !nn.Configured() {
		return fmt.Errorf("mutate: %w", ErrUninitialized)
	}
	for _, buf := range nn.params() {
		for i := range buf {
			// Both draws are always taken so the stream does not depend on rate.
			gate := rng.Float32()
			v := randh(rng)
			if gate < rate {
				buf[i] = v
			}
		}
	}
	return nil
}

// Blend interpolates every parameter towards a fresh uniform draw in
// [-0.5, 0.5] by factor rate.
func (nn *Network) Blend(rng *rand.Rand, rate float32) error {
	if !nn.Configured() {
		return fmt.Errorf("blend: %w", ErrUninitialized)
	}
	rate = clamp01(rate)
	for _, buf := range nn.params() {
		for i := range buf {
			buf[i] = buf[i]*(1-rate) + randh(rng)*rate
		}
	}
	return nil
}

// Evolve copies each parameter from src with independent probability rate.
func (nn *Network) Evolve(rng *rand.Rand, src *Network, rate float32) error {
	if err := nn.checkShape("evolve", src); err != nil {
		return err
	}
	dst := nn.params()
	from := src.params()
	for k := range dst {
		for i := range dst[k] {
			if rng.Float32() < rate {
				dst[k][i] = from[k][i]
			}
		}
	}
	return nil
}

// CopyFrom overwrites all parameters with those of src.
func (nn *Network) CopyFrom(src *Network) error {
	if err := nn.checkShape("copy", src); err != nil {
		return err
	}
	dst := nn.params()
	from := src.params()
	for k := range dst {
		copy(dst[k], from[k])
	}
	return nil
}

// Clone creates a deep copy of the network, including its state.
func (nn *Network) Clone() *Network {
	clone := &Network{topo: nn.topo, act: nn.act}
	clone.Reset()
	_ = clone.CopyFrom(nn)
	copy(clone.state0, nn.state0)
	copy(clone.state1, nn.state1)
	copy(clone.state2, nn.state2)
	return clone
}

// GenerateColor maps the mean bias of each layer to a color channel.
// Used for debug rendering only.
func (nn *Network) GenerateColor() color.RGBA {
	channel := func(bias []float32) uint8 {
		if len(bias) == 0 {
			return 0
		}
		var sum float32
		for _, b := range bias {
			sum += b + 0.5
		}
		return uint8(clamp01(sum/float32(len(bias))) * 255)
	}
	return color.RGBA{R: channel(nn.Bias0), G: channel(nn.Bias1), B: channel(nn.Bias2), A: 255}
}

func clamp01(x float32) float32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}
