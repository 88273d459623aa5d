package model

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// WriteLP writes p in CPLEX LP text format for consumption by external engines.
// Names are mapped to legal LP identifiers and repeated row names get a
// numeric suffix. Rows without terms are written as comments since the
// format cannot express them.
func WriteLP(w io.Writer, p *Program) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\\ %s\n", p.Name)

	fmt.Fprintln(bw, "Minimize")
	fmt.Fprintf(bw, " obj:%s\n", linearExpr(p, p.Objective))

	fmt.Fprintln(bw, "Subject To")
	taken := make(map[string]bool, len(p.Constraints))
	for _, c := range p.Constraints {
		base := lpName(c.Name)
		name := base
		for k := 1; taken[name]; k++ {
			name = fmt.Sprintf("%s_%d", base, k)
		}
		taken[name] = true
		if len(c.Terms) == 0 {
			fmt.Fprintf(bw, "\\ %s: 0 %s %s\n", name, c.Sense, formatCoef(c.RHS))
			continue
		}
		fmt.Fprintf(bw, " %s:%s %s %s\n", name, linearExpr(p, c.Terms), c.Sense, formatCoef(c.RHS))
	}

	fmt.Fprintln(bw, "Bounds")
	for _, v := range p.Variables {
		switch {
		case math.IsInf(v.Upper, 1):
			fmt.Fprintf(bw, " %s >= %s\n", lpName(v.Name), formatCoef(v.Lower))
		default:
			fmt.Fprintf(bw, " %s <= %s <= %s\n", formatCoef(v.Lower), lpName(v.Name), formatCoef(v.Upper))
		}
	}

	if ints := p.IntegerVars(); len(ints) > 0 {
		fmt.Fprintln(bw, "General")
		for _, j := range ints {
			fmt.Fprintf(bw, " %s\n", lpName(p.Variables[j].Name))
		}
	}
	fmt.Fprintln(bw, "End")
	return bw.Flush()
}

func linearExpr(p *Program, terms []Term) string {
	var s string
	for _, t := range terms {
		sign := "+"
		coef := t.Coef
		if coef < 0 {
			sign = "-"
			coef = -coef
		}
		if coef == 1 {
			s += fmt.Sprintf(" %s %s", sign, lpName(p.Variables[t.Var].Name))
		} else {
			s += fmt.Sprintf(" %s %s %s", sign, formatCoef(coef), lpName(p.Variables[t.Var].Name))
		}
	}
	return s
}

func formatCoef(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// lpName replaces every character outside [A-Za-z0-9_.] with an underscore
// and prefixes names that would start with a digit or a period.
func lpName(name string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			return r
		}
		return '_'
	}, name)
	if out == "" || out[0] == '.' || (out[0] >= '0' && out[0] <= '9') {
		out = "n_" + out
	}
	return out
}
