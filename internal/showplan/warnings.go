package showplan

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// parseWarningList maps the known structural warning sub-elements to
// PlanWarning values. Unknown sub-elements are ignored; unknown attribute
// codes pass through as literal text.
func parseWarningList(el *etree.Element) []PlanWarning {
	var out []PlanWarning

	if attrBool(el, "NoJoinPredicate") {
		out = append(out, PlanWarning{
			Kind:     KindNoJoinPredicate,
			Severity: Critical,
			Message:  "Join with no join predicate produces a cross product",
		})
	}

	for _, c := range el.ChildElements() {
		switch c.Tag {
		case "SpillToTempDb":
			msg := fmt.Sprintf("Operator spilled data to tempdb, spill level %d", attrInt(c, "SpillLevel"))
			if threads := attrInt(c, "SpilledThreadCount"); threads > 0 {
				msg += fmt.Sprintf(" (%d threads)", threads)
			}
			out = append(out, PlanWarning{Kind: KindSpillToTempDb, Severity: Warning, Message: msg})

		case "MemoryGrantWarning":
			msg := fmt.Sprintf("Memory grant warning: %s (requested %d KB, granted %d KB, used %d KB)",
				attrStr(c, "GrantWarningKind"),
				attrInt64(c, "RequestedMemory"),
				attrInt64(c, "GrantedMemory"),
				attrInt64(c, "MaxUsedMemory"))
			out = append(out, PlanWarning{Kind: KindMemoryGrant, Severity: Warning, Message: msg})

		case "PlanAffectingConvert":
			issue := attrStr(c, "ConvertIssue")
			// A conversion that only skews the cardinality estimate is less
			// severe than one that disables seeks outright.
			sev := Critical
			if strings.Contains(issue, "Cardinality Estimate") {
				sev = Warning
			}
			msg := fmt.Sprintf("Type conversion in expression %s may affect %q in query plan choice",
				attrStr(c, "Expression"), issue)
			out = append(out, PlanWarning{Kind: KindImplicitConversion, Severity: sev, Message: msg})

		case "ColumnsWithNoStatistics":
			cols := columnNames(c)
			msg := "Columns with no statistics"
			if len(cols) > 0 {
				msg = "No statistics available for column(s) " + strings.Join(cols, ", ")
			}
			out = append(out, PlanWarning{Kind: KindMissingStatistics, Severity: Warning, Message: msg})

		case "Wait":
			msg := fmt.Sprintf("Operator waited on %s for %d ms",
				attrStr(c, "WaitType"), attrInt64(c, "WaitTime"))
			out = append(out, PlanWarning{Kind: KindWait, Severity: Info, Message: msg})
		}
	}
	return out
}
