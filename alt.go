// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import "math/rand/v2"

// clauseOp distinguishes the two channel-operation clause forms Alt
// accepts; the third form (default) is carried out-of-band via the
// Default option rather than as a Clause, since it has no channel.
type clauseOp int

const (
	clauseTake clauseOp = iota
	clausePut
)

// Clause is one arm of an Alt call: either a take or a put on ch, tagged
// with a label that is returned alongside the delivered value when this
// clause wins.
type Clause struct {
	Label any
	op    clauseOp
	ch    *Chan
	value any
}

// TakeClause builds a take arm: label is the tag returned in Result.Label
// if this clause commits, ch is the channel to take from.
func TakeClause(label any, ch *Chan) Clause {
	return Clause{Label: label, op: clauseTake, ch: ch}
}

// PutClause builds a put arm: label is the tag returned in Result.Label if
// this clause commits, ch is the channel to put to, v is the (non-nil)
// value to put.
func PutClause(label any, ch *Chan, v any) Clause {
	return Clause{Label: label, op: clausePut, ch: ch, value: v}
}

// Result is the [label, value] pair Alt publishes: the label of whichever
// clause committed (or the default label), and the value it delivered.
type Result struct {
	Label any
	Value any
}

type altConfig struct {
	hasDefault   bool
	defaultCount int
	defaultLabel any
	defaultValue any
}

// AltOption configures an Alt call.
type AltOption func(*altConfig)

// Default supplies the default clause: if no other clause is ready
// synchronously, Alt commits immediately with (label, value) instead of
// blocking; the handlers the scan already enqueued on the clauses'
// channels are left inactive. Passing more than one Default to a single Alt call
// is malformed (spec.md §4.4 names a default clause as singular) and is
// rejected by validateAltConfig.
func Default(label, value any) AltOption {
	return func(c *altConfig) {
		c.hasDefault = true
		c.defaultCount++
		c.defaultLabel = label
		c.defaultValue = value
	}
}

func validateClauses(clauses []Clause) {
	if len(clauses) == 0 {
		panic(wrapf("%w: alt called with no clauses", ErrClauseMismatch))
	}
	for i, cl := range clauses {
		if cl.ch == nil {
			panic(wrapf("%w: clause %d has a nil channel", ErrClauseMismatch, i))
		}
		if cl.op == clausePut && cl.value == nil {
			panic(wrapf("%w: clause %d puts a nil value", ErrNilValue, i))
		}
	}
}

func validateAltConfig(cfg *altConfig) {
	if cfg.defaultCount > 1 {
		panic(wrapf("%w: alt called with %d default clauses", ErrClauseMismatch, cfg.defaultCount))
	}
}

// Alt commits exactly one of clauses (spec.md §4.4): it builds a uniformly
// random permutation of clause indices, attempts each clause's channel
// operation in that order, and runs the first one that completes
// synchronously. If none complete synchronously and a default is
// supplied, it commits the default immediately instead of parking. Each
// per-clause Handler shares a single alt-flag (flag.go), so whichever
// commits first — synchronously here, or asynchronously later via a
// pending callback matched by some other goroutine's take/put — disables
// every other clause.
//
// The permutation is drawn from math/rand/v2's package-level generator,
// which (unlike math/rand's global source) is ChaCha8-backed and requires
// no shared lock across concurrent callers — serializing Alt calls through
// a contended PRNG would defeat the fairness this function exists to
// provide (spec.md §9).
func Alt(clauses []Clause, opts ...AltOption) Result {
	validateClauses(clauses)

	cfg := &altConfig{}
	for _, o := range opts {
		o(cfg)
	}
	validateAltConfig(cfg)

	flag := newAltFlag()
	resultCh := make(chan Result, 1)
	order := rand.Perm(len(clauses))

	for _, idx := range order {
		cl := clauses[idx]
		label := cl.Label

		switch cl.op {
		case clauseTake:
			h := newAltHandler(flag, idx, func(v any) {
				resultCh <- Result{Label: label, Value: v}
			}, func(int) {})
			if run := cl.ch.take(h); run != nil {
				run()
				return <-resultCh
			}

		case clausePut:
			value := cl.value
			h := newAltHandler(flag, idx, func(any) {
				resultCh <- Result{Label: label, Value: value}
			}, func(int) {})
			run, err := cl.ch.put(value, h)
			if err != nil {
				// ErrPutOnClosed from a channel already closed at scan
				// time: this clause can never become ready, skip it
				// rather than surfacing the error through Alt's single
				// [label, value] return — a concurrently-closed channel
				// is indistinguishable from "not chosen" to an alt.
				continue
			}
			if run != nil {
				run()
				return <-resultCh
			}
		}
	}

	if cfg.hasDefault {
		flag.Lock()
		if flag.Active() {
			flag.commitFlag()
			flag.Unlock()
			return Result{Label: cfg.defaultLabel, Value: cfg.defaultValue}
		}
		flag.Unlock()
		// An async completion raced in between the scan above and here;
		// fall through and collect whichever clause actually won.
	}

	return <-resultCh
}
