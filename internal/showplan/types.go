package showplan

type Severity int

const (
	Info     Severity = 0
	Warning  Severity = 1
	Critical Severity = 2
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Warning kinds. Structural kinds are attached by the tree builder,
// the rest by the analyzer.
const (
	KindNoJoinPredicate     = "No Join Predicate"
	KindSpillToTempDb       = "Spill to TempDb"
	KindMemoryGrant         = "Memory Grant"
	KindImplicitConversion  = "Implicit Conversion"
	KindMissingStatistics   = "Missing Statistics"
	KindWait                = "Wait"
	KindRowEstimateMismatch = "Row Estimate Mismatch"
	KindFilterOperator      = "Filter Operator"
	KindEagerIndexSpool     = "Eager Index Spool"
	KindUDFExecution        = "UDF Execution"
	KindSerialPlan          = "Serial Plan"
)

type PlanWarning struct {
	Kind     string   `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// StatementNodeID is the reserved node id of the synthetic per-statement
// wrapper node. Real operator ids are non-negative.
const StatementNodeID = -1

// RuntimeStats holds actual-execution counters aggregated across parallel
// worker threads. Count-like counters and CPU are summed; elapsed time is
// the per-thread maximum, since workers run concurrently.
type RuntimeStats struct {
	ActualRows          int64   `json:"actual_rows"`
	ActualRowsRead      int64   `json:"actual_rows_read,omitempty"`
	ActualExecutions    int64   `json:"actual_executions"`
	ActualCPUMs         float64 `json:"actual_cpu_ms"`
	ActualElapsedMs     float64 `json:"actual_elapsed_ms"`
	ActualLogicalReads  int64   `json:"actual_logical_reads"`
	ActualPhysicalReads int64   `json:"actual_physical_reads"`
	ActualRebinds       int64   `json:"actual_rebinds,omitempty"`
	ActualRewinds       int64   `json:"actual_rewinds,omitempty"`
	UdfCPUMs            float64 `json:"udf_cpu_ms,omitempty"`
	UdfElapsedMs        float64 `json:"udf_elapsed_ms,omitempty"`
	ExecutionMode       string  `json:"execution_mode,omitempty"`
	Threads             int     `json:"threads"`
}

// PlanNode is one operator in a statement's plan tree. Optional descriptive
// fields are populated only when the corresponding ShowPlan sub-element or
// attribute is present; consumers query them positionally regardless of
// operator type.
type PlanNode struct {
	NodeID     int    `json:"node_id"`
	PhysicalOp string `json:"physical_op"`
	LogicalOp  string `json:"logical_op"`

	EstimatedTotalSubtreeCost float64 `json:"estimated_total_subtree_cost"`
	EstimatedOperatorCost     float64 `json:"estimated_operator_cost"`
	CostPercent               int     `json:"cost_percent"`
	EstimateRows              float64 `json:"estimate_rows"`
	EstimateIO                float64 `json:"estimate_io"`
	EstimateCPU               float64 `json:"estimate_cpu"`
	EstimateRebinds           float64 `json:"estimate_rebinds,omitempty"`
	EstimateRewinds           float64 `json:"estimate_rewinds,omitempty"`
	AvgRowSize                float64 `json:"avg_row_size,omitempty"`
	Parallel                  bool    `json:"parallel,omitempty"`
	EstimatedExecutionMode    string  `json:"estimated_execution_mode,omitempty"`
	Partitioned               bool    `json:"partitioned,omitempty"`

	// Object reference (scan/seek/modify operators)
	Database      string `json:"database,omitempty"`
	Schema        string `json:"schema,omitempty"`
	Table         string `json:"table,omitempty"`
	Index         string `json:"index,omitempty"`
	Alias         string `json:"alias,omitempty"`
	IndexKind     string `json:"index_kind,omitempty"`
	Storage       string `json:"storage,omitempty"`
	ObjectName    string `json:"object_name,omitempty"`    // Schema.Table
	QualifiedName string `json:"qualified_name,omitempty"` // Database.Schema.Table.Index

	// Predicates and keys
	Predicate            string   `json:"predicate,omitempty"`
	SeekPredicate        string   `json:"seek_predicate,omitempty"`
	SetPredicate         string   `json:"set_predicate,omitempty"`
	HashKeysBuild        []string `json:"hash_keys_build,omitempty"`
	HashKeysProbe        []string `json:"hash_keys_probe,omitempty"`
	BuildResidual        string   `json:"build_residual,omitempty"`
	ProbeResidual        string   `json:"probe_residual,omitempty"`
	OuterReferences      []string `json:"outer_references,omitempty"`
	InnerSideJoinColumns []string `json:"inner_side_join_columns,omitempty"`
	OuterSideJoinColumns []string `json:"outer_side_join_columns,omitempty"`
	Residual             string   `json:"residual,omitempty"`
	OrderBy              []string `json:"order_by,omitempty"`
	GroupBy              []string `json:"group_by,omitempty"`
	OutputColumns        []string `json:"output_columns,omitempty"`
	TopExpression        string   `json:"top_expression,omitempty"`

	// Access hints and flags
	ScanDirection string `json:"scan_direction,omitempty"`
	Ordered       bool   `json:"ordered,omitempty"`
	ForcedIndex   bool   `json:"forced_index,omitempty"`
	ForceSeek     bool   `json:"force_seek,omitempty"`
	ForceScan     bool   `json:"force_scan,omitempty"`
	NoExpandHint  bool   `json:"no_expand_hint,omitempty"`

	// Adaptive join
	IsAdaptive            bool    `json:"is_adaptive,omitempty"`
	AdaptiveThresholdRows float64 `json:"adaptive_threshold_rows,omitempty"`
	EstimatedJoinType     string  `json:"estimated_join_type,omitempty"`

	Runtime  *RuntimeStats `json:"runtime,omitempty"`
	Warnings []PlanWarning `json:"warnings,omitempty"`
	Children []*PlanNode   `json:"children,omitempty"`
}

// MemoryGrant is the statement's memory-grant snapshot, in kilobytes.
type MemoryGrant struct {
	SerialRequiredKB  int64 `json:"serial_required_kb"`
	SerialDesiredKB   int64 `json:"serial_desired_kb"`
	RequiredKB        int64 `json:"required_kb,omitempty"`
	DesiredKB         int64 `json:"desired_kb,omitempty"`
	RequestedKB       int64 `json:"requested_kb,omitempty"`
	GrantedKB         int64 `json:"granted_kb,omitempty"`
	MaxUsedKB         int64 `json:"max_used_kb,omitempty"`
	MaxQueryMemoryKB  int64 `json:"max_query_memory_kb,omitempty"`
	GrantWaitTimeSecs int64 `json:"grant_wait_time_secs,omitempty"`
}

type MissingIndex struct {
	Database          string   `json:"database"`
	Schema            string   `json:"schema"`
	Table             string   `json:"table"`
	Impact            float64  `json:"impact"`
	EqualityColumns   []string `json:"equality_columns,omitempty"`
	InequalityColumns []string `json:"inequality_columns,omitempty"`
	IncludeColumns    []string `json:"include_columns,omitempty"`

	// Advisory only; synthesized from the column lists.
	CreateStatement string `json:"create_statement"`
}

// Statement is one SQL statement's plan. Root is the synthetic wrapper node
// whose single child, when present, is the optimizer's root operator.
type Statement struct {
	Text                string  `json:"text"`
	Type                string  `json:"type"`
	SubTreeCost         float64 `json:"subtree_cost"`
	EstRows             float64 `json:"est_rows"`
	OptimizationLevel   string  `json:"optimization_level,omitempty"`
	EarlyAbortReason    string  `json:"early_abort_reason,omitempty"`
	QueryHash           string  `json:"query_hash,omitempty"`
	QueryPlanHash       string  `json:"query_plan_hash,omitempty"`
	DegreeOfParallelism int     `json:"degree_of_parallelism,omitempty"`
	NonParallelReason   string  `json:"non_parallel_reason,omitempty"`
	CachedPlanSizeKB    int64   `json:"cached_plan_size_kb,omitempty"`
	CompileTimeMs       float64 `json:"compile_time_ms,omitempty"`
	CompileCPUMs        float64 `json:"compile_cpu_ms,omitempty"`
	CompileMemoryKB     int64   `json:"compile_memory_kb,omitempty"`

	MemoryGrant    *MemoryGrant   `json:"memory_grant,omitempty"`
	MissingIndexes []MissingIndex `json:"missing_indexes,omitempty"`
	Warnings       []PlanWarning  `json:"warnings,omitempty"`
	Root           *PlanNode      `json:"root"`
}

type Batch struct {
	Statements []*Statement `json:"statements"`
}

// ParsedPlan is the root result of parsing one ShowPlan document. Zero
// batches means the document could not be parsed or contained no
// statements; Parse never reports which.
type ParsedPlan struct {
	XML     string   `json:"-"`
	Version string   `json:"version,omitempty"`
	Build   string   `json:"build,omitempty"`
	Batches []*Batch `json:"batches"`
}

// Statements flattens all batches in document order.
func (p *ParsedPlan) Statements() []*Statement {
	var out []*Statement
	for _, b := range p.Batches {
		out = append(out, b.Statements...)
	}
	return out
}

// WalkNodes visits every node of the statement's tree in depth-first
// pre-order, passing the parent node (nil for the wrapper root).
func (s *Statement) WalkNodes(fn func(node, parent *PlanNode)) {
	if s.Root == nil {
		return
	}
	walk(s.Root, nil, fn)
}

func walk(node, parent *PlanNode, fn func(node, parent *PlanNode)) {
	fn(node, parent)
	for _, child := range node.Children {
		walk(child, node, fn)
	}
}
