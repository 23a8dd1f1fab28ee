package showplan

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// maxIndexNameColumns bounds the generated index name length; the key
// list itself is never truncated.
const maxIndexNameColumns = 3

func parseMissingIndexes(el *etree.Element) []MissingIndex {
	var out []MissingIndex
	for _, grp := range el.ChildElements() {
		if grp.Tag != "MissingIndexGroup" {
			continue
		}
		impact := attrFloat(grp, "Impact")
		for _, mi := range grp.ChildElements() {
			if mi.Tag != "MissingIndex" {
				continue
			}
			rec := MissingIndex{
				Database: stripBrackets(attrStr(mi, "Database")),
				Schema:   stripBrackets(attrStr(mi, "Schema")),
				Table:    stripBrackets(attrStr(mi, "Table")),
				Impact:   impact,
			}
			for _, cg := range mi.ChildElements() {
				if cg.Tag != "ColumnGroup" {
					continue
				}
				var cols []string
				for _, col := range cg.ChildElements() {
					if col.Tag != "Column" {
						continue
					}
					if name := stripBrackets(attrStr(col, "Name")); name != "" {
						cols = append(cols, name)
					}
				}
				switch attrStr(cg, "Usage") {
				case "EQUALITY":
					rec.EqualityColumns = append(rec.EqualityColumns, cols...)
				case "INEQUALITY":
					rec.InequalityColumns = append(rec.InequalityColumns, cols...)
				case "INCLUDE":
					rec.IncludeColumns = append(rec.IncludeColumns, cols...)
				}
			}
			rec.CreateStatement = buildCreateIndex(rec)
			out = append(out, rec)
		}
	}
	return out
}

// buildCreateIndex synthesizes an advisory CREATE INDEX statement:
// equality then inequality columns as keys, include columns in the
// INCLUDE clause.
func buildCreateIndex(mi MissingIndex) string {
	keys := append(append([]string{}, mi.EqualityColumns...), mi.InequalityColumns...)
	if len(keys) == 0 && len(mi.IncludeColumns) == 0 {
		return ""
	}

	nameCols := keys
	if len(nameCols) == 0 {
		nameCols = mi.IncludeColumns
	}
	if len(nameCols) > maxIndexNameColumns {
		nameCols = nameCols[:maxIndexNameColumns]
	}
	name := "IX_" + mi.Table + "_" + strings.Join(nameCols, "_")

	var b strings.Builder
	fmt.Fprintf(&b, "CREATE NONCLUSTERED INDEX [%s] ON [%s].[%s] (%s)",
		name, mi.Schema, mi.Table, bracketList(keys))
	if len(mi.IncludeColumns) > 0 {
		fmt.Fprintf(&b, " INCLUDE (%s)", bracketList(mi.IncludeColumns))
	}
	return b.String()
}

func bracketList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "[" + c + "]"
	}
	return strings.Join(quoted, ", ")
}
