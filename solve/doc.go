// Package solve turns a formulated model into numbers.
//
// Two backends are provided:
//
//   - 🧮 Simplex — solves pure linear programs in-process on gonum's
//     dense simplex method and writes the optimum back into the model's
//     variable values. Models carrying binary or integer variables are
//     rejected with ErrIntegerModel unless explicitly relaxed.
//   - 📄 WriteLP — exports any model, mixed-integer ones included, in the
//     CPLEX LP text format every external solver reads.
//
// The in-process path exists for dispatch-sized programs and tests; sizing
// studies with binaries go through the LP file.
//
// Complexity: assembling the standard form is O(V+C·T) in variables,
// constraints and constraint terms; the simplex iterations dominate after
// that.
package solve
