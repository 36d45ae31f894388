// Package solver implements an incremental linear-arithmetic constraint
// solver based on the Cassowary simplex algorithm.
//
// # Overview
//
// A [Solver] holds a set of linear [Constraint] values over [Variable]
// values. Each constraint carries a [Strength]; [Required] constraints must
// hold exactly, weaker ones are satisfied as well as possible in strength
// order. Edit variables accept suggested values that the solver tries to
// honour at the strength they were registered with.
//
// # Transactions
//
// All mutations go through a [Transaction]:
//
//	tx := s.Begin()
//	tx.AddConstraint(c)
//	tx.AddEditVariable(width, solver.Strong)
//	tx.SuggestValue(width, 320)
//	if err := tx.Commit(); err != nil {
//	    // the solver is back in its pre-transaction state
//	}
//	s.UpdateVariables()
//
// Commit applies the queued operations in order. If any of them fails the
// operations applied so far are undone in reverse order, so a failed commit
// leaves the solver exactly as it was.
//
// # Determinism
//
// Pivot selection breaks ties by the lowest internal symbol id, so the same
// sequence of operations always yields the same solution, including for
// under-constrained systems.
package solver
