// Package hierarchy draws a skeleton's bone tree as a Graphviz diagram.
package hierarchy

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"pmd-rigview/internal/skeleton"
)

// Options configures the diagram.
type Options struct {
	// Selected highlights one bone; 0 for none.
	Selected int
	// Detailed adds length and world end points to the labels.
	Detailed bool
}

// ToDOT converts the bone tree to DOT. The root joint is drawn as an
// ellipse; every bone is a box linked from its parent bone, or from the
// root when it is root-attached.
func ToDOT(sk *skeleton.Skeleton, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph skeleton {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	root := sk.Root()
	fmt.Fprintf(&buf, "  j0 [label=%q, shape=ellipse, fillcolor=lightgrey];\n", jointLabel(root))

	for id := 1; id <= sk.BoneCount(); id++ {
		b, _ := sk.Bone(id)
		attrs := []string{fmt.Sprintf("label=%q", boneLabel(sk, b, opts.Detailed))}
		if id == opts.Selected {
			attrs = append(attrs, "fillcolor=gold", "penwidth=2")
		}
		fmt.Fprintf(&buf, "  b%d [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for id := 1; id <= sk.BoneCount(); id++ {
		b, _ := sk.Bone(id)
		if b.IsRootAttached() {
			fmt.Fprintf(&buf, "  j0 -> b%d;\n", id)
		} else {
			fmt.Fprintf(&buf, "  b%d -> b%d;\n", b.Parent, id)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func jointLabel(j skeleton.Joint) string {
	if j.Name != "" {
		return j.Name
	}
	return "root"
}

func boneLabel(sk *skeleton.Skeleton, b *skeleton.Bone, detailed bool) string {
	label := fmt.Sprintf("%d", b.ID)
	if b.Name != "" {
		label += " " + b.Name
	}
	if !detailed {
		return label
	}
	end, _ := sk.WorldEndPoint(b.ID)
	return fmt.Sprintf("%s\nlength %.3f\nend (%.2f, %.2f, %.2f)", label, b.Length, end[0], end[1], end[2])
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("hierarchy: init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("hierarchy: parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("hierarchy: render: %w", err)
	}
	return buf.Bytes(), nil
}
