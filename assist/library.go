package assist

import (
	"context"
	"fmt"
	"strings"

	"github.com/etnz/tradestats"
	"google.golang.org/genai"
)

// Library answers the function calls of a model.
type Library func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// Function is a tool offered to the model.
type Function interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// NewLibrary dispatches function calls to functions by name.
func NewLibrary[T Function](functions []T) Library {
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		for _, f := range functions {
			if f.Declaration().Name == call.Name {
				return f.Call(ctx, call.ID, call.Args)
			}
		}
		return errorResponse(call.ID, call.Name, fmt.Errorf("unknown function %s", call.Name))
	}
}

// NewDeclarations returns the declarations of functions.
func NewDeclarations[T Function](functions []T) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(functions))
	for _, f := range functions {
		result = append(result, f.Declaration())
	}
	return result
}

func errorResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": err.Error()}}
}

// metricLookup looks up a row of the dashboard by metric name.
type metricLookup struct {
	d *tradestats.Dashboard
}

func (metricLookup) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "lookup_metric",
		Description: "Returns the displayed value, explanation and sign of a dashboard metric, e.g. \"Sharpe Ratio\" or \"Net P&L (after charges)\".",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"metric": {
					Type:        genai.TypeString,
					Description: "The metric name, case insensitive.",
				},
			},
			Required: []string{"metric"},
		},
	}
}

func (l metricLookup) Call(_ context.Context, id string, args map[string]any) *genai.FunctionResponse {
	const name = "lookup_metric"
	metric, ok := args["metric"].(string)
	if !ok {
		return errorResponse(id, name, fmt.Errorf("invalid metric argument %T, expected a string", args["metric"]))
	}
	for _, r := range l.d.Summary {
		if strings.EqualFold(r.Metric, metric) {
			return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{
				"metric": r.Metric, "value": r.Value, "sign": string(r.Sign),
			}}
		}
	}
	for _, r := range l.d.Metrics {
		if strings.EqualFold(r.Metric, metric) {
			return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{
				"metric": r.Metric, "value": r.Value, "sign": string(r.Sign), "explanation": r.Explanation,
			}}
		}
	}
	return errorResponse(id, name, fmt.Errorf("unknown metric %q, valid metrics are %s", metric,
		strings.Join(append(tradestats.SummaryLabels(), tradestats.MetricLabels()...), ", ")))
}
