// Package model holds the solver-facing artifacts the formulation blocks
// emit: decision variables, linear expressions, constraints, one scalar
// objective accumulator and the collected usage warnings.
//
// # Namespaces
//
// Every block claims its own namespace at construction time and creates all
// of its variables and constraints through it; a namespace can be claimed
// exactly once and every artifact name is globally unique. This partitioning
// is what lets independent blocks share one Model without ever writing the
// same named artifact.
//
// # Determinism
//
// Variables and constraints are stored in creation order and LinExpr
// iteration is sorted by variable ID, so formulating the same network twice
// produces structurally identical collections — same names, same bounds,
// same coefficients.
//
// # Warnings
//
// Suspicious-but-allowed usage is recorded as Warning values on the Model
// and mirrored to log/slog; warnings never interrupt formulation.
//
// Errors (sentinel):
//
//	– ErrNamespaceClaimed  a block name was claimed twice.
//	– ErrDuplicateArtifact a variable or constraint name already exists.
//	– ErrBadBounds         lower bound above upper bound.
//	– ErrNilExpr           a constraint without an expression.
package model
