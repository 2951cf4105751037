// Package enflow turns a declarative energy-carrying network into a
// linear / mixed-integer optimization program — variables, constraints and
// one scalar objective — ready to be handed to a solver.
//
// 🚀 What is enflow?
//
//	A formulation engine for multi-period capacity-expansion and dispatch
//	studies, built from small composable pieces:
//		• timeline/ — ordered periods and timesteps with duration weights
//		• network/  — buses, sources, sinks, converters and costed flows
//		• model/    — symbolic variables, linear expressions, constraints
//		• blocks/   — the formulation blocks: plain flows, investment sizing
//		              with lifetime-based decommissioning, non-convex
//		              (on/off) operation, bus balances, conversion relations
//		• solve/    — dense standard form on gonum, a bundled simplex solve
//		              for pure-LP models and CPLEX-LP export for MILP models
//		• scenario/ — YAML scenario files mapped onto network + timeline
//
// ✨ Why choose enflow?
//
//   - Declarative first – describe WHAT the system looks like; the blocks
//     decide which algebra each flow needs by inspecting its shape
//   - Deterministic – formulating the same network twice yields structurally
//     identical variable and constraint collections
//   - Explicit errors – configuration mistakes abort formulation with
//     package-prefixed sentinels; infeasibility stays a solver outcome
//   - Pure Go core – the only heavy dependency is gonum, and only in solve/
//
// Quick ASCII example:
//
//	source ──▶ bus ──▶ sink
//	            │
//	converter ──┘
//
//	a source feeding a balanced bus, with a converter coupling a second
//	carrier through a linear efficiency relation.
//
// Dive into the package docs of blocks/ for the full algebra each block
// emits, and scenario/ for the on-disk format.
//
//	go get github.com/katalvlaran/enflow
package enflow
