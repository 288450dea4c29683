// Package api serves the conversions behind API Gateway via AWS Lambda.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/graph-to-compose/composer/internal/assembler"
	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/idgen"
	"github.com/graph-to-compose/composer/internal/logger"
	"github.com/graph-to-compose/composer/internal/metrics"
	"github.com/graph-to-compose/composer/internal/result"
	"github.com/graph-to-compose/composer/internal/synth"
	"github.com/graph-to-compose/composer/internal/terraform"
)

// Actions accepted in Event.Action.
const (
	ActionAssemble   = "assemble"
	ActionSynthesize = "synthesize"
	ActionTerraform  = "terraform"
)

// Event is the invocation payload (e.g. from API Gateway).
type Event struct {
	Action        string `json:"action"`
	Body          string `json:"body"` // graph JSON for assemble, compose YAML otherwise (raw or base64 if isBase64)
	IsBase64      bool   `json:"isBase64,omitempty"`
	Name          string `json:"name,omitempty"`
	MountPath     string `json:"mountPath,omitempty"`
	SequentialIDs bool   `json:"sequentialIds,omitempty"`
	EmitTfvars    *bool  `json:"emitTfvars,omitempty"`
}

// Response is returned to the client as the API Gateway body.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Success    bool              `json:"success"`
	Errors     []result.Error    `json:"errors,omitempty"`
	Warnings   []result.Warning  `json:"warnings,omitempty"`
	Document   string            `json:"document,omitempty"` // compose YAML
	Graph      *diagram.Graph    `json:"graph,omitempty"`
	Files      map[string]string `json:"files,omitempty"` // filename -> content (base64)
}

// Handler converts graphs and documents per request.
type Handler struct {
	Metrics *metrics.Recorder
	Log     *slog.Logger
}

// New returns a Handler. A nil recorder disables metrics.
func New(rec *metrics.Recorder, log *slog.Logger) *Handler {
	if log == nil {
		log = logger.Default
	}
	return &Handler{Metrics: rec, Log: log}
}

// Handle is the Lambda entrypoint.
func (h *Handler) Handle(ctx context.Context, event Event) (events.APIGatewayProxyResponse, error) {
	started := time.Now()

	body := event.Body
	if event.IsBase64 {
		dec, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return wrap(failure(http.StatusBadRequest, "invalid_input", "invalid base64 body: "+err.Error())), nil
		}
		body = string(dec)
	}

	var (
		out    Response
		counts map[string]int
		err    error
	)
	switch event.Action {
	case ActionAssemble:
		out, counts, err = h.assemble(event, body)
	case ActionSynthesize:
		out, counts, err = h.synthesize(event, body)
	case ActionTerraform:
		out, counts, err = h.terraform(event, body)
	default:
		return wrap(failure(http.StatusBadRequest, "invalid_action",
			"unknown action "+event.Action+"; use assemble, synthesize or terraform")), nil
	}

	if h.Metrics != nil {
		h.Metrics.Observe(event.Action, started, counts, out.Warnings, err)
	}
	h.Log.InfoContext(ctx, "conversion finished", "action", event.Action, "status", out.StatusCode,
		"warnings", len(out.Warnings), "duration", time.Since(started))
	return wrap(out), nil
}

func (h *Handler) assemble(event Event, body string) (Response, map[string]int, error) {
	var g diagram.Graph
	if err := json.Unmarshal([]byte(body), &g); err != nil {
		return failure(http.StatusBadRequest, "invalid_json", "invalid graph JSON: "+err.Error()), nil, err
	}
	opts := assembler.DefaultOptions()
	opts.Name = event.Name
	if event.MountPath != "" {
		opts.DefaultMountPath = event.MountPath
	}
	opts.Logger = h.Log
	a := assembler.New(opts)
	text, res, err := a.AssembleYAML(g)
	if err != nil {
		out := failure(http.StatusInternalServerError, "serialization_error", err.Error())
		out.Warnings = res.Warnings
		return out, nil, err
	}
	return Response{StatusCode: http.StatusOK, Success: true, Warnings: res.Warnings, Document: string(text)},
		res.Document.Counts(), nil
}

func (h *Handler) synthesize(event Event, body string) (Response, map[string]int, error) {
	doc, warns, err := compose.Unmarshal([]byte(body))
	if err != nil {
		return failure(http.StatusBadRequest, "invalid_yaml", err.Error()), nil, err
	}
	opts := synth.DefaultOptions()
	if event.SequentialIDs {
		opts.IDs = idgen.NewSequence("node")
	}
	opts.Logger = h.Log
	res := synth.New(opts).Synthesize(doc)
	return Response{
		StatusCode: http.StatusOK,
		Success:    true,
		Warnings:   append(warns, res.Warnings...),
		Graph:      &res.Graph,
	}, doc.Counts(), nil
}

func (h *Handler) terraform(event Event, body string) (Response, map[string]int, error) {
	doc, warns, err := compose.Unmarshal([]byte(body))
	if err != nil {
		return failure(http.StatusBadRequest, "invalid_yaml", err.Error()), nil, err
	}
	opts := terraform.DefaultOptions()
	if event.EmitTfvars != nil {
		opts.EmitTfvars = *event.EmitTfvars
	}
	files, twarns := terraform.Export(doc, opts)
	out := Response{StatusCode: http.StatusOK, Success: true, Warnings: append(warns, twarns...)}
	out.Files = make(map[string]string, len(files))
	for name, content := range files {
		out.Files[name] = base64.StdEncoding.EncodeToString(content)
	}
	return out, doc.Counts(), nil
}

func failure(status int, typ, message string) Response {
	return Response{
		StatusCode: status,
		Success:    false,
		Errors:     []result.Error{{Type: typ, Severity: "error", Message: message}},
	}
}

func wrap(out Response) events.APIGatewayProxyResponse {
	bodyBytes, _ := json.Marshal(out)
	return events.APIGatewayProxyResponse{
		StatusCode: out.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bodyBytes),
	}
}
