// Package showplan parses SQL Server ShowPlan XML into a normalized
// operator tree with derived cost attribution.
package showplan

import (
	"strings"

	"github.com/beevik/etree"
)

// Parse converts raw ShowPlan XML into a ParsedPlan. It never fails:
// malformed input, a missing root element, or a document without
// statements all yield a result with zero batches. Callers that need to
// distinguish "unparsable" from "empty" must do so at their own layer.
func Parse(xmlText string) *ParsedPlan {
	p := &ParsedPlan{XML: xmlText}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(xmlText); err != nil {
		return p
	}
	root := doc.Root()
	if root == nil {
		return p
	}

	p.Version = attrStr(root, "Version")
	p.Build = attrStr(root, "Build")

	batchEls := findBatches(root)
	for _, be := range batchEls {
		if b := parseBatch(be); len(b.Statements) > 0 {
			p.Batches = append(p.Batches, b)
		}
	}
	if len(p.Batches) > 0 {
		return p
	}

	// Some producers omit the Batch wrapper entirely; gather whatever
	// statements exist into one synthetic batch.
	if stmts := findStatements(root); len(stmts) > 0 {
		batch := &Batch{}
		for _, se := range stmts {
			batch.Statements = append(batch.Statements, parseStatement(se))
		}
		p.Batches = append(p.Batches, batch)
	}
	return p
}

var statementTags = map[string]bool{
	"StmtSimple":  true,
	"StmtCond":    true,
	"StmtCursor":  true,
	"StmtReceive": true,
	"StmtUseDb":   true,
}

// findBatches locates Batch elements anywhere under root without
// descending into them.
func findBatches(el *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if c.Tag == "Batch" {
			out = append(out, c)
			continue
		}
		out = append(out, findBatches(c)...)
	}
	return out
}

// findStatements locates statement elements without descending into them,
// so the branches of a conditional statement are not double counted.
func findStatements(el *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, c := range el.ChildElements() {
		if statementTags[c.Tag] {
			out = append(out, c)
			continue
		}
		out = append(out, findStatements(c)...)
	}
	return out
}

func parseBatch(el *etree.Element) *Batch {
	b := &Batch{}
	for _, se := range findStatements(el) {
		b.Statements = append(b.Statements, parseStatement(se))
	}
	return b
}

func parseStatement(el *etree.Element) *Statement {
	st := &Statement{
		Text:              attrStr(el, "StatementText"),
		Type:              attrStr(el, "StatementType"),
		SubTreeCost:       attrFloat(el, "StatementSubTreeCost"),
		EstRows:           attrFloat(el, "StatementEstRows"),
		OptimizationLevel: attrStr(el, "StatementOptmLevel"),
		EarlyAbortReason:  attrStr(el, "StatementOptmEarlyAbortReason"),
		QueryHash:         attrStr(el, "QueryHash"),
		QueryPlanHash:     attrStr(el, "QueryPlanHash"),
	}
	if st.Type == "" {
		st.Type = strings.TrimPrefix(el.Tag, "Stmt")
	}

	qp := childElement(el, "QueryPlan")
	if qp != nil {
		st.DegreeOfParallelism = attrInt(qp, "DegreeOfParallelism")
		st.NonParallelReason = attrStr(qp, "NonParallelPlanReason")
		st.CachedPlanSizeKB = attrInt64(qp, "CachedPlanSize")
		st.CompileTimeMs = attrFloat(qp, "CompileTime")
		st.CompileCPUMs = attrFloat(qp, "CompileCPU")
		st.CompileMemoryKB = attrInt64(qp, "CompileMemory")

		if mg := childElement(qp, "MemoryGrantInfo"); mg != nil {
			st.MemoryGrant = parseMemoryGrant(mg)
		}
		if mi := childElement(qp, "MissingIndexes"); mi != nil {
			st.MissingIndexes = parseMissingIndexes(mi)
		}
		if w := childElement(qp, "Warnings"); w != nil {
			st.Warnings = parseWarningList(w)
		}
	}

	// The wrapper node lets cost attribution and rendering treat every
	// statement uniformly, plan or no plan.
	st.Root = &PlanNode{
		NodeID:                    StatementNodeID,
		PhysicalOp:                st.Type,
		LogicalOp:                 st.Type,
		EstimatedTotalSubtreeCost: st.SubTreeCost,
		EstimateRows:              st.EstRows,
	}
	if qp != nil {
		if rel := childElement(qp, "RelOp"); rel != nil {
			st.Root.Children = append(st.Root.Children, buildNode(rel))
		}
	}

	AttributeCosts(st)
	return st
}

func parseMemoryGrant(el *etree.Element) *MemoryGrant {
	return &MemoryGrant{
		SerialRequiredKB:  attrInt64(el, "SerialRequiredMemory"),
		SerialDesiredKB:   attrInt64(el, "SerialDesiredMemory"),
		RequiredKB:        attrInt64(el, "RequiredMemory"),
		DesiredKB:         attrInt64(el, "DesiredMemory"),
		RequestedKB:       attrInt64(el, "RequestedMemory"),
		GrantedKB:         attrInt64(el, "GrantedMemory"),
		MaxUsedKB:         attrInt64(el, "MaxUsedMemory"),
		MaxQueryMemoryKB:  attrInt64(el, "MaxQueryMemory"),
		GrantWaitTimeSecs: attrInt64(el, "GrantWaitTime"),
	}
}
