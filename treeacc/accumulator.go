// Package treeacc implements the tree-accumulator primitives of
// spec.md §4.7: reductions over a tree's parent/child structure, driven
// by a small closed set of pluggable accumulators (min, max, sum,
// product, mean, counter, first, last, argmin, argmax), each exposing
// an identity element, an accumulate step and a finalize step.
//
// Grounded on dijkstra's explicit relax-step shape (an accumulate
// function folding neighbour values one at a time) and on the
// teacher's general preference for small typed closures over a
// visitor interface hierarchy, adapted to spec.md §9's instruction
// that the accumulator tag itself is part of the public API.
package treeacc

import (
	"math"

	"github.com/higra-go/higra/herr"
)

// Kind tags a closed set of accumulator variants (spec.md §4.7). The
// tag is exported so callers can select an accumulator by name (e.g.
// from a config preset) without constructing one by hand.
type Kind int

const (
	Min Kind = iota
	Max
	Sum
	Product
	Mean
	Counter
	First
	Last
	ArgMin
	ArgMax
)

// state is the mutable per-reduction accumulator value. argIndex is
// only meaningful for ArgMin/ArgMax; count is only meaningful for Mean
// (Counter counts in value).
type state struct {
	value    float64
	argIndex int
	count    int
	started  bool
}

// Accumulator implements the identity/accumulate/finalize trio of
// spec.md §4.7 for one Kind.
type Accumulator struct {
	kind Kind
}

// New returns an Accumulator for the given Kind.
func New(kind Kind) Accumulator { return Accumulator{kind: kind} }

func (a Accumulator) identity() state {
	switch a.kind {
	case Min:
		return state{value: math.Inf(1)}
	case Max:
		return state{value: math.Inf(-1)}
	case Sum, Counter:
		return state{value: 0}
	case Product:
		return state{value: 1}
	case Mean:
		return state{value: 0, count: 0}
	case First, Last, ArgMin, ArgMax:
		return state{argIndex: -1}
	default:
		return state{}
	}
}

// accumulate folds one (index, value) pair into s.
func (a Accumulator) accumulate(s state, index int, value float64) state {
	switch a.kind {
	case Min:
		if value < s.value {
			s.value = value
		}
	case Max:
		if value > s.value {
			s.value = value
		}
	case Sum:
		s.value += value
	case Product:
		s.value *= value
	case Counter:
		s.value++
	case Mean:
		s.value += value
		s.count++
	case First:
		if !s.started {
			s.value, s.argIndex, s.started = value, index, true
		}
	case Last:
		s.value, s.argIndex, s.started = value, index, true
	case ArgMin:
		if !s.started || value < s.value {
			s.value, s.argIndex, s.started = value, index, true
		}
	case ArgMax:
		if !s.started || value > s.value {
			s.value, s.argIndex, s.started = value, index, true
		}
	}
	return s
}

// finalize converts accumulated state into the reported scalar: the
// reduced value for Min/Max/Sum/Product/Counter/First/Last, the mean
// for Mean, and the winning index (as a float64) for ArgMin/ArgMax.
func (a Accumulator) finalize(s state) float64 {
	switch a.kind {
	case Mean:
		if s.count == 0 {
			return 0
		}
		return s.value / float64(s.count)
	case ArgMin, ArgMax:
		return float64(s.argIndex)
	default:
		return s.value
	}
}

// reduce folds a list of (index, value) child contributions through
// identity → accumulate* → finalize.
func (a Accumulator) reduce(indices []int, values []float64) float64 {
	s := a.identity()
	for _, i := range indices {
		s = a.accumulate(s, i, values[i])
	}
	return a.finalize(s)
}

// Reduce folds an entire slice of values through identity →
// accumulate* → finalize, in index order. Used by callers (e.g.
// package rag's group-by accumulation) that already have a flat
// per-group value slice rather than a tree's child index list.
func (a Accumulator) Reduce(values []float64) float64 {
	s := a.identity()
	for i, v := range values {
		s = a.accumulate(s, i, v)
	}
	return a.finalize(s)
}

var errKind = herr.Wrap // alias to keep call sites short below

func checkLen(pkg string, got, want int, what string) error {
	if got != want {
		return errKind(herr.KindInvalidShape, pkg, "%s has %d entries, want %d", what, got, want)
	}
	return nil
}
