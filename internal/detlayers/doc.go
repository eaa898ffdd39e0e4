// Package detlayers implements the geometric search over forward detector
// layers: which sensor modules a predicted trajectory may cross.
//
// The central type is DoubleLayer, a logical layer made of a front and a
// back sub-layer. It decides whether a state is compatible with the pair and
// collects compatible modules grouped by sub-layer. Sub-layers, rings and
// modules are referenced read-only; they are owned by whoever assembled the
// geometry. Every type here is immutable after construction and may be
// shared between goroutines working on independent states.
package detlayers
