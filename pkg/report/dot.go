package report

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/depexplain/depexplain/pkg/rules"
)

// severityColors maps finding severities to edge colors in the conflict
// graph.
var severityColors = map[rules.Severity]string{
	rules.SeverityCritical: "#b91c1c",
	rules.SeverityHigh:     "#dc2626",
	rules.SeverityMedium:   "#d97706",
	rules.SeverityLow:      "#2563eb",
	rules.SeverityUnknown:  "#6b7280",
}

// ToDOT converts a report to Graphviz DOT format. Every requirement becomes
// a node; every finding becomes an edge between the two packages involved,
// colored by severity. The resulting DOT string can be rendered with
// [RenderSVG].
func ToDOT(r *Report) string {
	var buf bytes.Buffer
	buf.WriteString("graph conflicts {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.08\"];\n")
	buf.WriteString("\n")

	conflicted := make(map[string]bool)
	for _, f := range r.Findings {
		for _, p := range f.Packages {
			conflicted[p] = true
		}
	}

	for _, req := range r.Requirements {
		label := req.Name
		if v := req.Version(); v != "" {
			label += "\n" + v
		}
		attrs := fmt.Sprintf("label=%q", label)
		if conflicted[req.Name] {
			attrs += ", fillcolor=\"#fee2e2\""
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", req.Name, attrs)
	}

	buf.WriteString("\n")
	for _, f := range r.Findings {
		left, right := f.Packages[0], f.Packages[0]
		if len(f.Packages) > 1 {
			right = f.Packages[1]
		}
		color, ok := severityColors[f.Severity]
		if !ok {
			color = severityColors[rules.SeverityUnknown]
		}
		fmt.Fprintf(&buf, "  %q -- %q [label=%q, color=%q, fontcolor=%q, penwidth=2];\n",
			left, right, f.RuleID, color, color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the SVG root element so the image scales
// cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
