package output

import (
	"github.com/sqlplan/sqlplan/internal/analyzer"
	"github.com/sqlplan/sqlplan/internal/showplan"
)

// Report is the flattened analysis of one plan, shaped for rendering and
// for structured consumers of the JSON output.
type Report struct {
	Version    string             `json:"version,omitempty"`
	Build      string             `json:"build,omitempty"`
	Statements []StatementReport  `json:"statements"`
	Findings   []analyzer.Finding `json:"findings"`
}

type StatementReport struct {
	Text                string                  `json:"text"`
	Type                string                  `json:"type"`
	SubTreeCost         float64                 `json:"subtree_cost"`
	EstRows             float64                 `json:"est_rows"`
	ElapsedMs           float64                 `json:"elapsed_ms,omitempty"`
	CompileTimeMs       float64                 `json:"compile_time_ms,omitempty"`
	DegreeOfParallelism int                     `json:"degree_of_parallelism,omitempty"`
	QueryHash           string                  `json:"query_hash,omitempty"`
	QueryPlanHash       string                  `json:"query_plan_hash,omitempty"`
	MissingIndexes      []showplan.MissingIndex `json:"missing_indexes,omitempty"`
}

// BuildReport assembles the report from an analyzed plan.
func BuildReport(p *showplan.ParsedPlan) Report {
	rep := Report{
		Version:  p.Version,
		Build:    p.Build,
		Findings: analyzer.Collect(p),
	}

	for _, st := range p.Statements() {
		sr := StatementReport{
			Text:                st.Text,
			Type:                st.Type,
			SubTreeCost:         st.SubTreeCost,
			EstRows:             st.EstRows,
			CompileTimeMs:       st.CompileTimeMs,
			DegreeOfParallelism: st.DegreeOfParallelism,
			QueryHash:           st.QueryHash,
			QueryPlanHash:       st.QueryPlanHash,
			MissingIndexes:      st.MissingIndexes,
		}
		if len(st.Root.Children) > 0 {
			if r := st.Root.Children[0].Runtime; r != nil {
				sr.ElapsedMs = r.ActualElapsedMs
			}
		}
		rep.Statements = append(rep.Statements, sr)
	}
	return rep
}
