// Package report renders the markdown explanation that accompanies every
// converted file: what was measured, what was detected, what the strategy
// decided and which entities came out.
package report

import (
	"fmt"
	"strings"

	"github.com/chazu/meshstep/pkg/analysis"
	"github.com/chazu/meshstep/pkg/hints"
	"github.com/chazu/meshstep/pkg/step"
	"github.com/chazu/meshstep/pkg/strategy"
)

const (
	// maxListedPlanes caps the planar surfaces listed individually.
	maxListedPlanes   = 5
	maxListedWarnings = 5
	defaultShape      = "General 3D Object"
)

// Input is everything a report is built from. Strategy, Validation and
// MeshSolid are optional.
type Input struct {
	Stats    analysis.Stats
	Hints    hints.Report
	Strategy *strategy.Strategy
	// MeshSolid is set when the document carries the faceted mesh solid.
	MeshSolid  bool
	Validation *step.ValidationResult
}

// Build returns the report as markdown.
func Build(in Input) string {
	var b strings.Builder
	b.WriteString("# Conversion Explanation Report\n\n")
	writeInput(&b, in.Stats)
	writeFeatures(&b, in.Hints)
	writeStrategy(&b, in.Strategy)
	writeOutput(&b, in.Strategy, in.MeshSolid)
	if in.Validation != nil {
		writeValidation(&b, *in.Validation)
	}
	return b.String()
}

func writeInput(b *strings.Builder, st analysis.Stats) {
	d := st.BBoxDimensions
	b.WriteString("## 1. Input Analysis\n")
	fmt.Fprintf(b, "- **Vertices**: %d\n", st.NumVertices)
	fmt.Fprintf(b, "- **Faces**: %d\n", st.NumFaces)
	fmt.Fprintf(b, "- **Watertight**: %t\n", st.IsWatertight)
	fmt.Fprintf(b, "- **Dimensions**: [%.2f, %.2f, %.2f]\n", d.X, d.Y, d.Z)

	var vol float64
	if st.Volume != nil {
		vol = *st.Volume
	}
	c := st.CenterMass
	b.WriteString("\n### 1.1 Physical Properties\n")
	fmt.Fprintf(b, "- **Volume**: %.2f mm3\n", vol)
	fmt.Fprintf(b, "- **Surface Area**: %.2f mm2\n", st.SurfaceArea)
	fmt.Fprintf(b, "- **Center of Mass**: [%.2f, %.2f, %.2f] (mm)\n", c.X, c.Y, c.Z)
}

func writeFeatures(b *strings.Builder, r hints.Report) {
	b.WriteString("\n## 2. Detected Features\n")
	b.WriteString("We analyzed the input mesh and identified the following geometric features:\n")

	if n := len(r.Planar); n > 0 {
		fmt.Fprintf(b, "\n### Planar Surfaces (%d detected)\n", n)
		for i, p := range r.Planar[:min(n, maxListedPlanes)] {
			fmt.Fprintf(b, "- **Plane %d**: Area=%.1f mm², Normal=[%.2f, %.2f, %.2f]\n",
				i+1, p.Area, p.Normal.X, p.Normal.Y, p.Normal.Z)
		}
		if n > maxListedPlanes {
			fmt.Fprintf(b, "- ... and %d smaller surfaces.\n", n-maxListedPlanes)
		}
	}

	if n := len(r.Cylindrical); n > 0 {
		fmt.Fprintf(b, "\n### Cylindrical Features (%d detected)\n", n)
		for i, c := range r.Cylindrical {
			d := c.Direction
			fmt.Fprintf(b, "- **Cylinder %d**: Axis aligned with [%g, %g, %g]. %s\n", i+1, d.X, d.Y, d.Z, c.Reason)
		}
	}
}

func writeStrategy(b *strings.Builder, s *strategy.Strategy) {
	shape := defaultShape
	var assumptions []string
	if s != nil {
		if s.DetectedShape != "" {
			shape = s.DetectedShape
		}
		assumptions = s.Assumptions
	}

	b.WriteString("\n## 3. Generative Strategy\n")
	fmt.Fprintf(b, "**Detected Shape Class**: %s\n", shape)
	if len(assumptions) > 0 {
		b.WriteString("\n**Modeling Decisions**:\n")
		for _, a := range assumptions {
			fmt.Fprintf(b, "- %s\n", a)
		}
	}
}

func writeOutput(b *strings.Builder, s *strategy.Strategy, meshSolid bool) {
	var counts []strategy.TypeCount
	if s != nil {
		counts = s.Counts()
	}

	b.WriteString("\n## 4. Output Entities\n")
	if meshSolid || len(counts) == 0 {
		b.WriteString("- **FACETED_BREP**: 1 (Full Mesh Reconstruction)\n")
	}
	for _, c := range counts {
		fmt.Fprintf(b, "- %s: %d\n", c.Type, c.Count)
	}
}

func writeValidation(b *strings.Builder, r step.ValidationResult) {
	b.WriteString("\n## 5. Validation\n")
	fmt.Fprintf(b, "- **Errors**: %d\n", len(r.Errors))
	fmt.Fprintf(b, "- **Warnings**: %d\n", len(r.Warnings))
	for _, e := range r.Errors {
		fmt.Fprintf(b, "  - %s\n", e.Error())
	}
	if len(r.Warnings) <= maxListedWarnings {
		for _, w := range r.Warnings {
			fmt.Fprintf(b, "  - #%d: %s\n", w.EntityID, w.Message)
		}
	}
}
