package showplan

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Resolve reads ShowPlan XML from a file, stdin ("-"), or an interactive
// paste, and parses it. Parse itself never fails, so this layer is where
// a human-facing error surfaces: readable input that yields no statements
// is reported as "no query plan found".
func Resolve(input string, label string) (*ParsedPlan, error) {
	data, err := readInput(input, label)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty %sinput", label)
	}
	if !strings.HasPrefix(trimmed, "<") {
		return nil, fmt.Errorf(`unable to detect %sinput type: expected ShowPlan XML or a .sqlplan/.xml file

Save the plan from SSMS ("Save Execution Plan As...") or query
sys.dm_exec_query_plan and provide the complete XML.`, label)
	}

	p := Parse(string(data))
	if len(p.Batches) == 0 {
		return nil, fmt.Errorf("no query plan found in %sinput", label)
	}
	return p, nil
}

func readInput(input string, label string) ([]byte, error) {
	switch input {
	case "":
		return readInteractive(label)
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(input)
	}
}

func readInteractive(label string) ([]byte, error) {
	fmt.Printf("Paste %sShowPlan XML", label)
	if runtime.GOOS == "windows" {
		fmt.Print(" (Ctrl+Z, Enter to submit)\n")
	} else {
		fmt.Print(" (Ctrl+D to submit)\n")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "<") && !strings.HasSuffix(trimmed, ">") {
		return nil, fmt.Errorf("input appears truncated; for large plans use: sqlplan analyze <file>")
	}

	return data, nil
}
