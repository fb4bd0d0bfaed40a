package constructs

import (
	"bytes"
	"fmt"
)

// DOT generates Graphviz DOT source for the table. The current state, if
// non-empty, is highlighted; guarded edges are labelled "event [guard]".
func (t *Table) DOT(current string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", t.config.Name)
	buf.WriteString(`  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	for _, s := range t.config.States {
		style := ""
		if s.Name == current {
			style = " style=filled fillcolor=lightgreen"
		}
		if s.Name == t.config.Initial {
			style += " peripheries=2"
		}
		fmt.Fprintf(&buf, "  %q [label=%q%s];\n", s.Name, s.Name, style)
	}

	for _, s := range t.config.States {
		for _, tr := range s.On {
			target := tr.Target
			if target == "" {
				target = s.Name
			}
			label := tr.Event
			if tr.Guard != "" {
				label = fmt.Sprintf("%s [%s]", tr.Event, tr.Guard)
			}
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", s.Name, target, label)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}
