package analyzer

import (
	"testing"

	"github.com/sqlplan/sqlplan/internal/showplan"
)

const serialFilterPlanXML = `<ShowPlanXML xmlns="http://schemas.microsoft.com/sqlserver/2004/07/showplan" Version="1.539">
  <BatchSequence>
    <Batch>
      <Statements>
        <StmtSimple StatementText="SELECT * FROM dbo.T WHERE dbo.Slow(Col) &gt; 5" StatementType="SELECT" StatementSubTreeCost="2.0">
          <QueryPlan DegreeOfParallelism="1" NonParallelPlanReason="TSQLUserDefinedFunctionsNotParallelizable">
            <RelOp NodeId="0" PhysicalOp="Filter" LogicalOp="Filter" EstimateRows="10" EstimatedTotalSubtreeCost="2.0">
              <RunTimeInformation>
                <RunTimeCountersPerThread Thread="0" ActualRows="1500" ActualExecutions="1" ActualElapsedms="900" ActualCPUms="850"/>
              </RunTimeInformation>
              <Filter>
                <Predicate><ScalarOperator ScalarString="[dbo].[Slow]([db].[dbo].[T].[Col])&gt;(5)"/></Predicate>
                <RelOp NodeId="1" PhysicalOp="Clustered Index Scan" LogicalOp="Clustered Index Scan" EstimateRows="1500" EstimatedTotalSubtreeCost="1.8">
                  <IndexScan>
                    <Object Database="[db]" Schema="[dbo]" Table="[T]" Index="[PK_T]"/>
                  </IndexScan>
                </RelOp>
              </Filter>
            </RelOp>
          </QueryPlan>
        </StmtSimple>
      </Statements>
    </Batch>
  </BatchSequence>
</ShowPlanXML>`

func TestAnalyze(t *testing.T) {
	p := showplan.Parse(serialFilterPlanXML)
	if len(p.Statements()) != 1 {
		t.Fatalf("fixture parsed to %d statements", len(p.Statements()))
	}

	Analyze(p)
	st := p.Statements()[0]

	if len(st.Warnings) != 1 || st.Warnings[0].Kind != showplan.KindSerialPlan {
		t.Errorf("statement warnings = %+v, want one serial-plan warning", st.Warnings)
	}

	filter := st.Root.Children[0]
	kinds := map[string]bool{}
	for _, w := range filter.Warnings {
		kinds[w.Kind] = true
	}
	if !kinds[showplan.KindFilterOperator] {
		t.Error("expected filter-operator warning on the Filter node")
	}
	if !kinds[showplan.KindRowEstimateMismatch] {
		t.Error("expected row-estimate warning on the Filter node (est 10, actual 1500)")
	}

	scan := filter.Children[0]
	if len(scan.Warnings) != 0 {
		t.Errorf("scan warnings = %+v, want none", scan.Warnings)
	}
}

func TestCollect_OrdersBySeverity(t *testing.T) {
	p := showplan.Parse(serialFilterPlanXML)
	Analyze(p)

	findings := Collect(p)
	if len(findings) < 3 {
		t.Fatalf("expected at least 3 findings, got %d", len(findings))
	}
	for i := 1; i < len(findings); i++ {
		if findings[i].Severity > findings[i-1].Severity {
			t.Fatalf("findings not ordered by severity: %+v", findings)
		}
	}

	// est 10 vs actual 1500 is a 150x miss.
	if findings[0].Kind != showplan.KindRowEstimateMismatch || findings[0].Severity != showplan.Critical {
		t.Errorf("first finding = %s/%s, want critical row-estimate mismatch", findings[0].Kind, findings[0].Severity)
	}
	if findings[0].Operator != "Filter" || findings[0].NodeID != 0 {
		t.Errorf("first finding located at %s node %d", findings[0].Operator, findings[0].NodeID)
	}
}

func TestCollect_StatementLevelFinding(t *testing.T) {
	p := showplan.Parse(serialFilterPlanXML)
	Analyze(p)

	var found bool
	for _, f := range Collect(p) {
		if f.Kind == showplan.KindSerialPlan {
			found = true
			if f.NodeID != showplan.StatementNodeID {
				t.Errorf("serial-plan finding NodeID = %d, want %d", f.NodeID, showplan.StatementNodeID)
			}
		}
	}
	if !found {
		t.Error("serial-plan warning missing from collected findings")
	}
}
