package showplan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempPlan(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.sqlplan")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestResolve_File(t *testing.T) {
	p, err := Resolve(writeTempPlan(t, simplePlanXML), "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(p.Statements()) != 1 {
		t.Errorf("expected 1 statement, got %d", len(p.Statements()))
	}
}

func TestResolve_MissingFile(t *testing.T) {
	if _, err := Resolve(filepath.Join(t.TempDir(), "nope.sqlplan"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolve_NotXML(t *testing.T) {
	_, err := Resolve(writeTempPlan(t, "SELECT 1"), "")
	if err == nil {
		t.Fatal("expected error for non-XML input")
	}
	if !strings.Contains(err.Error(), "unable to detect") {
		t.Errorf("error = %v", err)
	}
}

func TestResolve_XMLWithoutPlan(t *testing.T) {
	_, err := Resolve(writeTempPlan(t, "<Root><Child/></Root>"), "second ")
	if err == nil {
		t.Fatal("expected error for XML without a plan")
	}
	if !strings.Contains(err.Error(), "no query plan found in second input") {
		t.Errorf("error = %v", err)
	}
}

func TestResolve_EmptyFile(t *testing.T) {
	_, err := Resolve(writeTempPlan(t, "   \n"), "")
	if err == nil {
		t.Fatal("expected error for empty input")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("error = %v", err)
	}
}
