//go:build lambda

package main

import (
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"gearsearch/gear"
	"gearsearch/loader"
)

//go:embed gamedata.min.json
var embeddedGameData []byte

var jsonHeader = map[string]string{
	"Content-Type": "application/json",
}

type optimizeResult struct {
	Results         []resultView `json:"results"`
	CalculationRuns uint64       `json:"calculationRuns"`
}

type resultView struct {
	ID                          string            `json:"id"`
	Value                       float64           `json:"value"`
	Indicators                  map[string]string `json:"indicators"`
	EffectivePositiveValues     map[string]string `json:"effectivePositiveValues"`
	EffectiveNegativeValues     map[string]string `json:"effectiveNegativeValues"`
	EffectiveDamageDistribution map[string]string `json:"effectiveDamageDistribution"`
	DamageBreakdown             map[string]string `json:"damageBreakdown"`
}

func toView(c *gear.Character) resultView {
	v := resultView{ID: c.ID, Value: c.RankValue()}
	if c.Results != nil {
		v.Indicators = c.Results.Indicators
		v.EffectivePositiveValues = c.Results.EffectivePositiveValues
		v.EffectiveNegativeValues = c.Results.EffectiveNegativeValues
		v.EffectiveDamageDistribution = c.Results.EffectiveDamageDistribution
		v.DamageBreakdown = c.Results.DamageBreakdown
	}
	return v
}

func handler(_ context.Context, event events.LambdaFunctionURLRequest) (events.LambdaFunctionURLResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errResp(400, "invalid base64 body")
		}
		body = string(decoded)
	}
	if len(body) == 0 {
		return errResp(400, "missing request body")
	}

	tables, err := loader.ParseGameTables(embeddedGameData)
	if err != nil {
		return errResp(500, "embedded game data: "+err.Error())
	}

	settings, _, err := loader.BuildSettings(tables, []byte(body))
	if err != nil {
		return errResp(400, err.Error())
	}

	engine, err := gear.NewEngine(settings, nil)
	if err != nil {
		return errResp(400, err.Error())
	}

	// A Lambda invocation runs the search to completion in one shot; there
	// is no connection to stream intermediate Progress snapshots over.
	for {
		if _, result := engine.Step(); result == gear.StepDone {
			break
		}
	}

	views := make([]resultView, 0, len(engine.List()))
	for _, c := range engine.List() {
		views = append(views, toView(c))
	}
	resp := optimizeResult{Results: views, CalculationRuns: engine.CalculationRuns()}

	respJSON, err := json.Marshal(resp)
	if err != nil {
		return errResp(500, fmt.Sprintf("marshal response: %v", err))
	}
	return events.LambdaFunctionURLResponse{StatusCode: 200, Headers: jsonHeader, Body: string(respJSON)}, nil
}

func errResp(code int, msg string) (events.LambdaFunctionURLResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	return events.LambdaFunctionURLResponse{StatusCode: code, Headers: jsonHeader, Body: string(body)}, nil
}

func main() {
	lambda.Start(handler)
}
