// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package fuzzing provides a small framework for operation-sequence fuzzing
// of stateful data structures. A campaign seeds the fuzzer with serialized
// chains of operations; each fuzzing loop deserializes the (possibly
// mutated) chain and applies it step by step to a fresh instance of the
// system under test.
package fuzzing

import (
	"bytes"
	"testing"
)

//go:generate mockgen -source fuzzing.go -destination fuzzing_mocks.go -package fuzzing

// Operation represents one step applied to the system under a fuzzing
// campaign. Each operation must be serialisable to a byte array carrying the
// operation code and its payload. This serialised form is used for passing
// the operation into the fuzzer.
type Operation[C any] interface {
	// Apply is executed by the fuzzer for each operation to perform the
	// required action on the system under test. The context carries the
	// system under test and its state; it is state-full to move from one
	// step to another.
	Apply(t TestingT, context *C)

	// Serialize converts this operation to a byte array to be passed to the
	// fuzzer. The output format is not defined, but it must be readable by
	// the deserialisation in Campaign.Deserialize. Typically it contains the
	// code of this operation in the first byte, followed by the payload.
	Serialize() []byte
}

// OperationSequence is a chain of operations.
type OperationSequence[C any] []Operation[C]

// Campaign maintains one fuzzing campaign. It is passed to the fuzzer as a
// factory to create the operations seeding the fuzzer, to create the context
// passed through each step of a campaign loop, and to clean up at the end of
// each loop.
type Campaign[C any] interface {
	// Init returns the operation sequences seeding the fuzzer. One
	// OperationSequence is one seed. This method is called once before the
	// campaign starts.
	Init() []OperationSequence[C]

	// CreateContext creates a state-full object holding the system under
	// fuzzing plus whatever state must be carried between the steps of one
	// campaign loop. It is called once per loop.
	CreateContext(t *testing.T) *C

	// Deserialize interprets a byte array generated by the fuzzer out of the
	// initial seeds and converts it back into a chain of operations. It is
	// called once per loop.
	Deserialize(rawData []byte) []Operation[C]

	// Cleanup closes and cleans the context of one campaign loop.
	Cleanup(t *testing.T, context *C)
}

// TestingT is an interface covering some methods of the testing.T struct.
// It is provided for easy mocking.
type TestingT interface {
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	SkipNow()
}

// TestingF is an interface covering some methods of the testing.F struct.
// It is provided for easy mocking.
type TestingF interface {
	Add(args ...any)
	Fuzz(ff any)
}

// Fuzz performs a fuzzing campaign. The campaign is initialised by calling
// Campaign.Init to generate chains of operations, which are serialised and
// passed to the fuzzer as seeds. The fuzzer then executes many loops, each
// applying a chain of operations derived from the seeds to a fresh context
// from Campaign.CreateContext, and finalised by Campaign.Cleanup.
func Fuzz[C any](f TestingF, c Campaign[C]) {
	for _, opSet := range c.Init() {
		var raw []byte
		for _, op := range opSet {
			raw = append(raw, op.Serialize()...)
		}
		f.Add(raw)
	}

	f.Fuzz(func(t *testing.T, rawData []byte) {
		ctx := c.CreateContext(t)
		for _, op := range c.Deserialize(rawData) {
			op.Apply(t, ctx)
		}
		c.Cleanup(t, ctx)
	})
}

// OpsFactoryRegistry maintains factories of operations addressed by their
// operation code. It allows for creating operations programmatically and for
// reading them back from the serialised form produced by the fuzzer.
type OpsFactoryRegistry[T ~byte, C any] map[T]opFactory[T, C]

// NewRegistry creates an empty registry for the given opcode and context
// types.
func NewRegistry[T ~byte, C any]() OpsFactoryRegistry[T, C] {
	return OpsFactoryRegistry[T, C]{}
}

// RegisterDataOp adds a factory for an operation carrying a payload to the
// registry. The payload is converted to and from its serialised form by the
// given serialise and deserialise functions; apply performs the operation on
// the campaign context.
func RegisterDataOp[T ~byte, D any, C any](
	registry OpsFactoryRegistry[T, C],
	opType T,
	serialise func(data D) []byte,
	deserialise func(raw *[]byte) D,
	apply func(opType T, data D, t TestingT, context *C),
) {
	registry[opType] = opFactory[T, C]{
		create: func(data any) Operation[C] {
			return &dataOp[T, D, C]{opType, data.(D), serialise, apply}
		},
		read: func(raw *[]byte) Operation[C] {
			return &dataOp[T, D, C]{opType, deserialise(raw), serialise, apply}
		},
	}
}

// RegisterNoDataOp adds a factory for an operation without payload to the
// registry.
func RegisterNoDataOp[T ~byte, C any](
	registry OpsFactoryRegistry[T, C],
	opType T,
	apply func(opType T, t TestingT, context *C),
) {
	registry[opType] = opFactory[T, C]{
		create: func(any) Operation[C] {
			return &noDataOp[T, C]{opType, apply}
		},
		read: func(*[]byte) Operation[C] {
			return &noDataOp[T, C]{opType, apply}
		},
	}
}

// CreateDataOp instantiates a payload-carrying operation registered under
// the given opcode. The data must match the type the factory was registered
// with.
func (r OpsFactoryRegistry[T, C]) CreateDataOp(opType T, data any) Operation[C] {
	return r[opType].create(data)
}

// CreateNoDataOp instantiates a payload-free operation registered under the
// given opcode.
func (r OpsFactoryRegistry[T, C]) CreateNoDataOp(opType T) Operation[C] {
	return r[opType].create(nil)
}

// ReadNextOp consumes one operation from the head of the given raw data. If
// the opcode is not registered, a nil operation is returned; remaining
// payload bytes of unknown opcodes cannot be skipped, so callers should
// stop reading in that case.
func (r OpsFactoryRegistry[T, C]) ReadNextOp(raw *[]byte) (T, Operation[C]) {
	opType := T((*raw)[0])
	*raw = (*raw)[1:]
	factory, exists := r[opType]
	if !exists {
		return opType, nil
	}
	return opType, factory.read(raw)
}

// ReadAllOps converts the given raw data into the chain of operations it
// encodes. Reading stops at the first unknown opcode.
func (r OpsFactoryRegistry[T, C]) ReadAllOps(rawData []byte) []Operation[C] {
	ops := make([]Operation[C], 0, len(rawData))
	for len(rawData) > 0 {
		_, op := r.ReadNextOp(&rawData)
		if op == nil {
			break
		}
		ops = append(ops, op)
	}
	return ops
}

// ReadAllUniqueOps converts the given raw data into the chain of operations
// it encodes, collapsing adjacent repetitions of the same operation into a
// single occurrence. It is useful for campaigns where repeating an operation
// on the spot cannot exercise new behaviour.
func (r OpsFactoryRegistry[T, C]) ReadAllUniqueOps(rawData []byte) []Operation[C] {
	ops := make([]Operation[C], 0, len(rawData))
	var prev []byte
	for len(rawData) > 0 {
		_, op := r.ReadNextOp(&rawData)
		if op == nil {
			break
		}
		serialised := op.Serialize()
		if prev != nil && bytes.Equal(prev, serialised) {
			continue
		}
		prev = serialised
		ops = append(ops, op)
	}
	return ops
}

// opFactory bundles the programmatic and the deserialising constructor of
// one operation type.
type opFactory[T ~byte, C any] struct {
	create func(data any) Operation[C]
	read   func(raw *[]byte) Operation[C]
}

type dataOp[T ~byte, D any, C any] struct {
	opType    T
	data      D
	serialise func(D) []byte
	apply     func(T, D, TestingT, *C)
}

func (op *dataOp[T, D, C]) Apply(t TestingT, context *C) {
	op.apply(op.opType, op.data, t, context)
}

func (op *dataOp[T, D, C]) Serialize() []byte {
	return append([]byte{byte(op.opType)}, op.serialise(op.data)...)
}

type noDataOp[T ~byte, C any] struct {
	opType T
	apply  func(T, TestingT, *C)
}

func (op *noDataOp[T, C]) Apply(t TestingT, context *C) {
	op.apply(op.opType, t, context)
}

func (op *noDataOp[T, C]) Serialize() []byte {
	return []byte{byte(op.opType)}
}
