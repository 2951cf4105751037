package solve

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/katalvlaran/enflow/model"
)

// WriteLP exports the model in the CPLEX LP text format, the lingua franca
// of external MILP solvers. Artifact names are sanitized to the LP charset;
// the mapping is deterministic, so re-exporting the same model yields the
// same file.
func WriteLP(w io.Writer, m *model.Model) error {
	bw := bufio.NewWriter(w)
	names := lpNames(m)

	fmt.Fprintln(bw, "Minimize")
	fmt.Fprintf(bw, " obj:%s\n", lpExpr(m.Objective(), names))

	fmt.Fprintln(bw, "Subject To")
	for _, con := range m.Constraints() {
		rhs := con.RHS() - con.Expr().Offset()
		fmt.Fprintf(bw, " %s:%s %s %g\n",
			sanitize(con.Name()), lpExpr(con.Expr(), names), lpSense(con.Sense()), rhs)
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range m.Vars() {
		if v.Kind() == model.Binary {
			continue // the Binary section implies [0,1]
		}
		switch lo, hi := v.Lower(), v.Upper(); {
		case math.IsInf(lo, -1) && math.IsInf(hi, 1):
			fmt.Fprintf(bw, " %s free\n", names[v.ID()])
		case math.IsInf(hi, 1):
			fmt.Fprintf(bw, " %s >= %g\n", names[v.ID()], lo)
		default:
			fmt.Fprintf(bw, " %g <= %s <= %g\n", lo, names[v.ID()], hi)
		}
	}

	writeKindSection(bw, m, names, "General", model.Integer)
	writeKindSection(bw, m, names, "Binary", model.Binary)

	fmt.Fprintln(bw, "End")

	return bw.Flush()
}

func writeKindSection(bw *bufio.Writer, m *model.Model, names map[model.VarID]string, header string, kind model.VarKind) {
	var listed []string
	for _, v := range m.Vars() {
		if v.Kind() == kind {
			listed = append(listed, names[v.ID()])
		}
	}
	if len(listed) == 0 {
		return
	}
	fmt.Fprintln(bw, header)
	for _, name := range listed {
		fmt.Fprintf(bw, " %s\n", name)
	}
}

// lpNames sanitizes every variable name, deduplicating collisions with the
// variable ID.
func lpNames(m *model.Model) map[model.VarID]string {
	names := make(map[model.VarID]string, m.NumVars())
	seen := make(map[string]bool, m.NumVars())
	for _, v := range m.Vars() {
		name := sanitize(v.Name())
		if seen[name] {
			name = fmt.Sprintf("%s_%d", name, v.ID())
		}
		seen[name] = true
		names[v.ID()] = name
	}

	return names
}

// sanitize maps an artifact name onto the LP identifier charset.
func sanitize(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}

	return sb.String()
}

func lpExpr(e *model.LinExpr, names map[model.VarID]string) string {
	if e.Len() == 0 {
		return " 0"
	}
	var sb strings.Builder
	for _, term := range e.Terms() {
		if term.Coef >= 0 {
			fmt.Fprintf(&sb, " + %g %s", term.Coef, names[term.Var])
		} else {
			fmt.Fprintf(&sb, " - %g %s", -term.Coef, names[term.Var])
		}
	}

	return sb.String()
}

func lpSense(s model.Sense) string {
	switch s {
	case model.LessEqual:
		return "<="
	case model.GreaterEqual:
		return ">="
	default:
		return "="
	}
}
