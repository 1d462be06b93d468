package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/etnz/tradestats"
	"github.com/google/go-cmp/cmp"
	"github.com/google/subcommands"
)

const testLedger = `{"command":"capital","date":"2025-06-01","amount":1500000,"currency":"INR"}
{"command":"close","date":"2025-06-03","symbol":"NIFTY25JUN24500CE","pnl":1200.5,"currency":"INR"}
{"command":"close","date":"2025-06-03","symbol":"BANKNIFTY25JUN52000PE","pnl":-300,"currency":"INR"}
{"command":"close","date":"2025-07-01","symbol":"RELIANCE","pnl":0,"currency":"INR"}
{"command":"open","date":"2026-02-05","symbol":"NIFTY26FEB25000CE","pnl":450,"currency":"INR"}
{"command":"charge","date":"2026-02-05","amount":120.4,"currency":"INR","memo":"brokerage"}
{"command":"adjust","date":"2026-02-05","amount":-11.8,"currency":"INR","memo":"DP charges"}
{"command":"valuation","date":"2026-02-05","amount":1501218.3,"currency":"INR"}
`

// useLedger runs the test in an empty directory with a ledger file of the
// given content, and returns its path.
func useLedger(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "trades.jsonl")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write ledger: %v", err)
		}
	}
	oldLedger, oldConfig := ledgerFile, configFile
	ledgerFile, configFile = &path, new(string)
	t.Cleanup(func() { ledgerFile, configFile = oldLedger, oldConfig })
	return path
}

// run executes c with args and returns its status and standard output.
func run(t *testing.T, c subcommands.Command, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Failed to parse %v: %v", args, err)
	}
	var out bytes.Buffer
	old := stdout
	stdout = &out
	defer func() { stdout = old }()
	status := c.Execute(context.Background(), f)
	return status, out.String()
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(content)
}

func TestFmt(t *testing.T) {
	path := useLedger(t, `{"command":"close","date":"2025-06-05","symbol":"B","pnl":2, "currency":"INR"}
{"command":"close","date":"2025-06-01","symbol":"A","pnl":1.0,"currency":"INR"}
`)
	status, out := run(t, &fmtCmd{})
	if status != subcommands.ExitSuccess {
		t.Fatalf("fmt returned %v, want ExitSuccess", status)
	}
	if !strings.Contains(out, "has been formatted") {
		t.Errorf("fmt output = %q", out)
	}
	want := `{"command":"close","date":"2025-06-01","symbol":"A","pnl":1,"currency":"INR"}
{"command":"close","date":"2025-06-05","symbol":"B","pnl":2,"currency":"INR"}
`
	if diff := cmp.Diff(want, readFile(t, path)); diff != "" {
		t.Errorf("formatted ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestFmt_KeepsFileMode(t *testing.T) {
	path := useLedger(t, `{"command":"close","date":"2025-06-05","symbol":"B","pnl":2,"currency":"INR"}
{"command":"close","date":"2025-06-01","symbol":"A","pnl":1,"currency":"INR"}
`)
	if err := os.Chmod(path, 0o640); err != nil {
		t.Fatalf("Failed to chmod ledger: %v", err)
	}
	if status, _ := run(t, &fmtCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("fmt returned %v, want ExitSuccess", status)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat ledger: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o640 {
		t.Errorf("formatted ledger mode = %v, want %v", got, os.FileMode(0o640))
	}
}

func TestEncodeLedger_NewFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.jsonl")
	if err := EncodeLedger(path, tradestats.NewLedger()); err != nil {
		t.Fatalf("EncodeLedger() failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat ledger: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o644 {
		t.Errorf("new ledger mode = %v, want %v", got, os.FileMode(0o644))
	}
}

func TestFmt_MissingLedger(t *testing.T) {
	useLedger(t, "")
	if status, _ := run(t, &fmtCmd{}); status != subcommands.ExitFailure {
		t.Errorf("fmt on a missing ledger returned %v, want ExitFailure", status)
	}
}

func TestFmt_InvalidLedger(t *testing.T) {
	path := useLedger(t, `{"command":"close","date":"2025-06-01","pnl":10}`+"\n")
	if status, _ := run(t, &fmtCmd{}); status != subcommands.ExitFailure {
		t.Errorf("fmt on an invalid ledger returned %v, want ExitFailure", status)
	}
	if got := readFile(t, path); !strings.Contains(got, `"pnl":10`) {
		t.Errorf("invalid ledger was rewritten: %q", got)
	}
}

func writeJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fills.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func TestImport_DryRun(t *testing.T) {
	path := useLedger(t, "")
	doc := writeJSON(t, `{"data":[{"sym":"NIFTY25JUN24500CE","realised":"1,200.50"},{"sym":"RELIANCE","on":"2025-07-01","realised":-300}]}`)

	status, out := run(t, &importCmd{}, "-json", doc, "-trades", "$.data[*]", "-symbol", "$.sym", "-date", "$.on", "-pnl", "$.realised", "-n")
	if status != subcommands.ExitSuccess {
		t.Fatalf("import returned %v, want ExitSuccess", status)
	}
	want := `{"command":"close","date":"2024-06-25","symbol":"NIFTY25JUN24500CE","pnl":1200.5,"currency":"INR"}
{"command":"close","date":"2025-07-01","symbol":"RELIANCE","pnl":-300,"currency":"INR"}
`
	if diff := cmp.Diff(want, out); diff != "" {
		t.Errorf("import -n mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("import -n created the ledger file")
	}
}

func TestImport_AppendsToLedger(t *testing.T) {
	path := useLedger(t, `{"command":"capital","date":"2025-06-01","amount":100000,"currency":"INR"}`+"\n")
	doc := writeJSON(t, `{"trades":[{"symbol":"TCS","date":"2025-06-03","pnl":250}]}`)

	status, out := run(t, &importCmd{}, "-json", doc)
	if status != subcommands.ExitSuccess {
		t.Fatalf("import returned %v, want ExitSuccess", status)
	}
	if !strings.Contains(out, "Imported 1 entries") {
		t.Errorf("import output = %q", out)
	}
	want := `{"command":"capital","date":"2025-06-01","amount":100000,"currency":"INR"}
{"command":"close","date":"2025-06-03","symbol":"TCS","pnl":250,"currency":"INR"}
`
	if diff := cmp.Diff(want, readFile(t, path)); diff != "" {
		t.Errorf("ledger mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_RejectsCurrencyMismatch(t *testing.T) {
	path := useLedger(t, `{"command":"capital","date":"2025-06-01","amount":100000,"currency":"INR"}`+"\n")
	doc := writeJSON(t, `{"trades":[{"symbol":"AAPL","date":"2025-06-03","pnl":25}]}`)

	if status, _ := run(t, &importCmd{}, "-json", doc, "-currency", "USD"); status != subcommands.ExitFailure {
		t.Errorf("import returned %v, want ExitFailure", status)
	}
	if got := readFile(t, path); strings.Contains(got, "AAPL") {
		t.Errorf("rejected entries were written: %q", got)
	}
}

func TestImport_Usage(t *testing.T) {
	useLedger(t, "")
	if status, _ := run(t, &importCmd{}); status != subcommands.ExitUsageError {
		t.Errorf("import without input returned %v, want ExitUsageError", status)
	}
	if status, _ := run(t, &importCmd{}, "-csv", "a.csv", "-json", "b.json"); status != subcommands.ExitUsageError {
		t.Errorf("import with two inputs returned %v, want ExitUsageError", status)
	}
}

func TestCheck(t *testing.T) {
	useLedger(t, testLedger)
	status, out := run(t, &checkCmd{})
	if status != subcommands.ExitSuccess {
		t.Fatalf("check returned %v, want ExitSuccess", status)
	}
	if !strings.HasPrefix(out, "Ledger is valid: 3 trades") {
		t.Errorf("check output = %q", out)
	}
}

func TestCheck_InconsistentValue(t *testing.T) {
	inconsistent := strings.Replace(testLedger, "1501218.3", "1502000", 1)

	useLedger(t, inconsistent)
	status, out := run(t, &checkCmd{})
	if status != subcommands.ExitSuccess {
		t.Fatalf("check returned %v, want ExitSuccess", status)
	}
	if !strings.Contains(out, "Warning:") {
		t.Errorf("check output = %q, want a warning", out)
	}

	useLedger(t, inconsistent)
	if status, _ := run(t, &checkCmd{}, "-strict"); status != subcommands.ExitFailure {
		t.Errorf("check -strict returned %v, want ExitFailure", status)
	}
}

func TestReport_Markdown(t *testing.T) {
	useLedger(t, testLedger)
	status, out := run(t, &reportCmd{}, "-f", "markdown", "-title", "F&O")
	if status != subcommands.ExitSuccess {
		t.Fatalf("report returned %v, want ExitSuccess", status)
	}
	for _, want := range []string{"F&O", "Win Rate", "Cumulative"} {
		if !strings.Contains(out, want) {
			t.Errorf("report output does not contain %q:\n%s", want, out)
		}
	}
}

func TestReport_JSONFile(t *testing.T) {
	useLedger(t, testLedger)
	output := filepath.Join(t.TempDir(), "dashboard.json")
	status, _ := run(t, &reportCmd{}, "-f", "json", "-o", output, "-from", "2025-06-01", "-to", "2025-06-30")
	if status != subcommands.ExitSuccess {
		t.Fatalf("report returned %v, want ExitSuccess", status)
	}

	var got struct {
		Cumulative []struct {
			Trade int `json:"trade"`
		} `json:"cumulativeSeries"`
		Values struct {
			TotalTrades int `json:"totalTrades"`
		} `json:"values"`
	}
	if err := json.Unmarshal([]byte(readFile(t, output)), &got); err != nil {
		t.Fatalf("report wrote invalid JSON: %v", err)
	}
	if len(got.Cumulative) != 3 {
		t.Errorf("cumulative series has %d points, want 3 for the two June trades", len(got.Cumulative))
	}
	if got.Values.TotalTrades != 2 {
		t.Errorf("values.totalTrades = %d, want 2", got.Values.TotalTrades)
	}
}

func TestReport_Usage(t *testing.T) {
	useLedger(t, testLedger)
	if status, _ := run(t, &reportCmd{}, "-f", "pdf"); status != subcommands.ExitUsageError {
		t.Errorf("report -f pdf returned %v, want ExitUsageError", status)
	}
	if status, _ := run(t, &reportCmd{}, "-from", "2025-07-01", "-to", "2025-06-01"); status != subcommands.ExitUsageError {
		t.Errorf("report with a reversed window returned %v, want ExitUsageError", status)
	}
}

func TestCompletion(t *testing.T) {
	root := Completion()
	for _, c := range Commands {
		if _, ok := root.Sub[c.Command.Name()]; !ok {
			t.Errorf("Completion() has no %q subcommand", c.Command.Name())
		}
	}
	report := root.Sub["report"]
	got := report.Flags["f"].Predict("")
	if diff := cmp.Diff([]string{"markdown", "terminal", "slate", "card", "html-slate", "html-card", "json"}, got); diff != "" {
		t.Errorf("report -f prediction mismatch (-want +got):\n%s", diff)
	}
	if _, ok := root.Sub["import"].Flags["n"]; !ok {
		t.Error("Completion() import has no -n flag")
	}
}

func TestPublish(t *testing.T) {
	useLedger(t, testLedger)
	dir := filepath.Join(t.TempDir(), "reports")
	tpl := filepath.Join(t.TempDir(), "front.tpl")
	if err := os.WriteFile(tpl, []byte("---\ntitle: {{.Identifier}}\ntrades: {{.Trades}}\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	status, out := run(t, &publishCmd{}, "-o", dir, "-periods", "monthly,yearly", "-frontmatter", tpl)
	if status != subcommands.ExitSuccess {
		t.Fatalf("publish returned %v, want ExitSuccess", status)
	}
	// June and July 2025 have trades, then the year 2025.
	if !strings.Contains(out, "Published 3 dashboards") {
		t.Errorf("publish output = %q", out)
	}
	june := readFile(t, filepath.Join(dir, "monthly", "2025-06.md"))
	if !strings.HasPrefix(june, "---\ntitle: 2025-06\ntrades: 2\n---\n") {
		t.Errorf("june dashboard has no front matter:\n%s", june)
	}
	if !strings.Contains(june, "Trading Performance Dashboard 2025-06") {
		t.Errorf("june dashboard has no title:\n%s", june)
	}
	for _, name := range []string{"monthly/2025-07.md", "yearly/2025.md"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing dashboard: %v", err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "monthly", "2025-08.md")); err == nil {
		t.Error("published a month without trades")
	}
}

func TestPublish_Usage(t *testing.T) {
	useLedger(t, testLedger)
	if status, _ := run(t, &publishCmd{}, "-periods", "daily"); status != subcommands.ExitUsageError {
		t.Errorf("publish -periods daily returned %v, want ExitUsageError", status)
	}
}

func TestTopic(t *testing.T) {
	status, out := run(t, &topicCmd{}, "ledger")
	if status != subcommands.ExitSuccess {
		t.Fatalf("topic returned %v, want ExitSuccess", status)
	}
	if !strings.Contains(out, "valuation") {
		t.Errorf("topic ledger output does not mention valuation:\n%s", out)
	}
	if status, _ := run(t, &topicCmd{}, "holdings"); status != subcommands.ExitFailure {
		t.Errorf("topic holdings returned %v, want ExitFailure", status)
	}
}
