package assist

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/etnz/tradestats"
	"github.com/etnz/tradestats/date"
	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"
)

func dashboard(pnls ...float64) *tradestats.Dashboard {
	day := date.MustParse("2025-06-02")
	trades := make([]tradestats.Trade, len(pnls))
	for i, v := range pnls {
		trades[i] = tradestats.NewTrade(day.Add(i), "T", tradestats.M(v, "INR"))
	}
	state := tradestats.PortfolioState{StartingCapital: tradestats.M(100000, "INR")}
	return tradestats.DeriveDashboard(trades, state, tradestats.DefaultOptions())
}

func TestPrompt(t *testing.T) {
	got := Prompt("\n# Report\n\n| a | b |\n", "  Is my win rate sustainable?  ")
	want := "Here is my trading dashboard.\n\n<dashboard>\n# Report\n\n| a | b |\n</dashboard>\n\nIs my win rate sustainable?"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Prompt() mismatch (-want +got):\n%s", diff)
	}

	if got := Prompt("# Report", ""); !strings.HasSuffix(got, DefaultQuestion) {
		t.Errorf("Prompt() without question = %q, want the default question", got)
	}
}

func TestOutline(t *testing.T) {
	if got := Outline(dashboard()); got != "No closed trade to comment on." {
		t.Errorf("Outline() on no trade = %q", got)
	}

	got := Outline(dashboard(1000, -400, 250))
	for _, want := range []string{
		"Closed trades: 3.",
		"Net P&L after charges: ₹850.00.",
		"Strengths: Total Realized P&L 850.00",
		"Weaknesses: Losing Trades 1",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Outline() = %q, want it to contain %q", got, want)
		}
	}
}

func TestMetricLookup(t *testing.T) {
	lib := NewLibrary([]Function{metricLookup{d: dashboard(1000, -400, 250)}})

	tests := []struct {
		name string
		call *genai.FunctionCall
		want map[string]any
	}{
		{
			name: "metric",
			call: &genai.FunctionCall{ID: "1", Name: "lookup_metric", Args: map[string]any{"metric": "win rate %"}},
			want: map[string]any{"metric": "Win Rate %", "value": "66.67%", "sign": "positive", "explanation": "Winning trades / total trades"},
		},
		{
			name: "summary",
			call: &genai.FunctionCall{ID: "2", Name: "lookup_metric", Args: map[string]any{"metric": "Total Charges"}},
			want: map[string]any{"metric": "Total Charges", "value": "0.00", "sign": "neutral"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := lib(context.Background(), tt.call)
			if resp.ID != tt.call.ID || resp.Name != "lookup_metric" {
				t.Errorf("response is %s/%s, want %s/lookup_metric", resp.ID, resp.Name, tt.call.ID)
			}
			if diff := cmp.Diff(tt.want, resp.Response); diff != "" {
				t.Errorf("lookup_metric mismatch (-want +got):\n%s", diff)
			}
		})
	}

	for _, call := range []*genai.FunctionCall{
		{Name: "lookup_metric", Args: map[string]any{"metric": "Alpha"}},
		{Name: "lookup_metric", Args: map[string]any{"metric": 3}},
		{Name: "delete_ledger"},
	} {
		if resp := lib(context.Background(), call); resp.Response["error"] == nil {
			t.Errorf("call %s(%v) returned no error: %v", call.Name, call.Args, resp.Response)
		}
	}
}

func TestNewCommentator(t *testing.T) {
	c := NewCommentator("gemini-2.5-flash", dashboard(10), "# Report")
	decls := c.Config.Tools[0].FunctionDeclarations
	if len(decls) != 1 || decls[0].Name != "lookup_metric" {
		t.Errorf("declarations = %v, want lookup_metric", decls)
	}
	if _, err := c.Comment(context.Background(), "hi"); err == nil {
		t.Error("Comment() before Start() returned no error")
	}
}

func TestContentText(t *testing.T) {
	content := &genai.Content{Parts: []*genai.Part{
		{Text: "thinking...", Thought: true},
		{Text: "Solid "},
		{Text: "month."},
	}}
	if got := contentText(content); got != "Solid month." {
		t.Errorf("contentText() = %q, want %q", got, "Solid month.")
	}
}

// echo answers with the question in capitals.
type echo struct{ questions []string }

func (e *echo) Comment(_ context.Context, q string) (string, error) {
	e.questions = append(e.questions, q)
	if q == "fail" {
		return "", errors.New("quota exceeded")
	}
	return strings.ToUpper(q), nil
}

func TestSession(t *testing.T) {
	var out bytes.Buffer
	c := &echo{}
	s := NewSession(&out, strings.NewReader("why?\n\nbye\nnever asked\n"), c, nil)
	if err := s.Run(context.Background(), "overview", " "); err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"overview", "why?"}, c.questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
	if got := out.String(); !strings.Contains(got, "assist> overview\nOVERVIEW\n") || !strings.Contains(got, "WHY?") {
		t.Errorf("session output:\n%s", got)
	}

	// end of input without newline
	c = &echo{}
	if err := NewSession(&out, strings.NewReader("last"), c, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run() returned an unexpected error: %v", err)
	}
	if diff := cmp.Diff([]string{"last"}, c.questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}

	if err := NewSession(&out, strings.NewReader(""), &echo{}, nil).Run(context.Background(), "fail"); err == nil {
		t.Error("Run() did not return the commenter error")
	}
}
