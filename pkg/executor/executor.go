package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/casali/flowpilot/pkg/catalog"
	"github.com/casali/flowpilot/pkg/models"
	"github.com/casali/flowpilot/pkg/n8n"
	"github.com/casali/flowpilot/pkg/otelhelper"
)

// Node placement defaults when the LLM gives no position.
const (
	defaultPositionX = 250
	defaultPositionY = 250
	positionXOffset  = 200
)

// WorkflowAPI is the slice of the n8n client the executor mutates through.
type WorkflowAPI interface {
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)
	CreateWorkflow(ctx context.Context, payload *n8n.UpdatePayload) (*models.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, payload *n8n.UpdatePayload) (*models.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) error
	ActivateWorkflow(ctx context.Context, id string) (*models.Workflow, error)
	DeactivateWorkflow(ctx context.Context, id string) (*models.Workflow, error)
}

// ConfirmCallback asks the human to approve one previewed action. Returning
// false or an error counts as a decline.
type ConfirmCallback func(ctx context.Context, preview models.ActionPreview) (bool, error)

// Executor runs confirmed tool calls against the workflow API. It never
// panics or returns a Go error to its caller: every path resolves to an
// ExecutionResult.
type Executor struct {
	api    WorkflowAPI
	parser *Parser
	logger *slog.Logger
	tracer trace.Tracer
}

// NewExecutor creates a tool executor.
func NewExecutor(api WorkflowAPI, logger *slog.Logger, tracer trace.Tracer) *Executor {
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &Executor{
		api:    api,
		parser: NewParser(logger),
		logger: logger.With("module", "executor"),
		tracer: tracer,
	}
}

// Execute runs one tool call: preview, confirmation, validation, dispatch.
// A nil confirm callback skips the confirmation step (the caller has already
// collected approval some other way).
func (e *Executor) Execute(ctx context.Context, call models.ToolCall, confirm ConfirmCallback) models.ExecutionResult {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "executor.execute",
		attribute.String(otelhelper.ToolNameKey, call.Function.Name),
		attribute.String(otelhelper.ToolCallIDKey, call.ID),
	)
	defer span.End()

	preview := e.parser.Parse(call)

	if preview.RequiresConfirmation && confirm != nil {
		approved, err := confirm(ctx, preview)
		if err != nil || !approved {
			span.SetAttributes(attribute.Bool(otelhelper.CancelledKey, true))
			e.logger.Info("action cancelled by user", "tool", call.Function.Name)

			return models.ExecutionResult{
				ToolCallID:    call.ID,
				ToolName:      call.Function.Name,
				Success:       false,
				UserCancelled: true,
			}
		}
	}

	result := e.dispatch(ctx, call, preview.Args)
	if !result.Success {
		e.logger.Warn("action failed",
			"tool", call.Function.Name,
			"error", result.Error)
		otelhelper.SetError(span, errors.New(result.Error))
	}

	return result
}

// ExecuteBatch runs calls strictly in order. A user cancellation stops the
// batch: remaining calls are not attempted, so one declined action never
// implicitly approves the next.
func (e *Executor) ExecuteBatch(ctx context.Context, calls []models.ToolCall, confirm ConfirmCallback) []models.ExecutionResult {
	results := make([]models.ExecutionResult, 0, len(calls))

	for _, call := range calls {
		result := e.Execute(ctx, call, confirm)
		results = append(results, result)

		if result.UserCancelled {
			e.logger.Info("batch stopped on cancellation",
				"completed", len(results),
				"skipped", len(calls)-len(results))

			break
		}
	}

	return results
}

func (e *Executor) dispatch(ctx context.Context, call models.ToolCall, args map[string]any) models.ExecutionResult {
	name := call.Function.Name

	action, ok := catalog.Lookup(name)
	if !ok {
		return e.failure(call, fmt.Sprintf("unknown tool %q", name))
	}

	if err := validateArgs(action.Schema, args); err != nil {
		return e.failure(call, err.Error())
	}

	var (
		data any
		err  error
	)

	switch name {
	case catalog.ActionDuplicateWorkflow:
		data, err = e.duplicateWorkflow(ctx, argString(args, "workflow_id"), argString(args, "new_name"))
	case catalog.ActionCreateWorkflow:
		data, err = e.createWorkflow(ctx, argString(args, "name"))
	case catalog.ActionActivateWorkflow:
		data, err = e.setActive(ctx, argString(args, "workflow_id"), true)
	case catalog.ActionDeactivateWorkflow:
		data, err = e.setActive(ctx, argString(args, "workflow_id"), false)
	case catalog.ActionUpdateNode:
		data, err = e.updateNode(ctx, argString(args, "workflow_id"), argString(args, "node_name"), argMap(args, "parameters"))
	case catalog.ActionAddNode:
		data, err = e.addNode(ctx, args)
	case catalog.ActionDeleteNode:
		data, err = e.deleteNode(ctx, argString(args, "workflow_id"), argString(args, "node_name"))
	case catalog.ActionDeleteWorkflow:
		data, err = e.deleteWorkflow(ctx, argString(args, "workflow_id"))
	default:
		return e.failure(call, fmt.Sprintf("tool %q is declared but not dispatchable", name))
	}

	if err != nil {
		return e.failure(call, err.Error())
	}

	return models.ExecutionResult{
		ToolCallID: call.ID,
		ToolName:   name,
		Success:    true,
		Data:       data,
	}
}

func (e *Executor) failure(call models.ToolCall, message string) models.ExecutionResult {
	return models.ExecutionResult{
		ToolCallID: call.ID,
		ToolName:   call.Function.Name,
		Success:    false,
		Error:      message,
	}
}

func (e *Executor) duplicateWorkflow(ctx context.Context, sourceID, newName string) (*models.Workflow, error) {
	if err := checkWorkflowID(sourceID); err != nil {
		return nil, err
	}

	source, err := e.api.GetWorkflow(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	payload := n8n.SanitizeForUpdate(source)
	payload.Name = newName

	return e.api.CreateWorkflow(ctx, payload)
}

func (e *Executor) createWorkflow(ctx context.Context, name string) (*models.Workflow, error) {
	return e.api.CreateWorkflow(ctx, &n8n.UpdatePayload{
		Name:        name,
		Nodes:       []*n8n.SanitizedNode{},
		Connections: map[string]models.NodeConnections{},
	})
}

func (e *Executor) setActive(ctx context.Context, id string, active bool) (*models.Workflow, error) {
	if err := checkWorkflowID(id); err != nil {
		return nil, err
	}

	if active {
		return e.api.ActivateWorkflow(ctx, id)
	}

	return e.api.DeactivateWorkflow(ctx, id)
}

func (e *Executor) updateNode(ctx context.Context, workflowID, nodeName string, patch map[string]any) (*models.Workflow, error) {
	if err := checkWorkflowID(workflowID); err != nil {
		return nil, err
	}

	workflow, err := e.api.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	node := workflow.NodeByName(nodeName)
	if node == nil {
		return nil, fmt.Errorf("node %q not found in workflow %q", nodeName, workflow.Name)
	}

	applyNodePatch(node, patch)

	return e.api.UpdateWorkflow(ctx, workflowID, n8n.SanitizeForUpdate(workflow))
}

// applyNodePatch shallow-merges a patch at the node level, the way n8n
// spreads partial node updates. The node's id and name are never patchable,
// a "parameters" entry merges into the existing parameter map, and keys
// that are not node fields land in Parameters so a bare parameter patch
// keeps working.
func applyNodePatch(node *models.WorkflowNode, patch map[string]any) {
	if node.Parameters == nil {
		node.Parameters = map[string]any{}
	}

	for key, value := range patch {
		switch key {
		case "id", "name":
			// identity survives every update
		case "parameters":
			if params, ok := value.(map[string]any); ok {
				for k, v := range params {
					node.Parameters[k] = v
				}
			}
		case "type":
			if s, ok := value.(string); ok {
				node.Type = s
			}
		case "typeVersion":
			if v, ok := toFloat(value); ok {
				node.TypeVersion = v
			}
		case "position":
			if raw, ok := value.([]any); ok && len(raw) == 2 {
				x, xOK := toFloat(raw[0])
				y, yOK := toFloat(raw[1])

				if xOK && yOK {
					node.Position = [2]float64{x, y}
				}
			}
		case "credentials":
			if creds, ok := value.(map[string]any); ok {
				node.Credentials = creds
			}
		case "disabled":
			if b, ok := value.(bool); ok {
				node.Disabled = &b
			}
		case "notes":
			if s, ok := value.(string); ok {
				node.Notes = s
			}
		case "notesInFlow":
			if b, ok := value.(bool); ok {
				node.NotesInFlow = &b
			}
		case "webhookId":
			if s, ok := value.(string); ok {
				node.WebhookID = s
			}
		default:
			node.Parameters[key] = value
		}
	}
}

func (e *Executor) addNode(ctx context.Context, args map[string]any) (*models.Workflow, error) {
	workflowID := argString(args, "workflow_id")
	nodeName := argString(args, "node_name")
	nodeType := argString(args, "node_type")
	connectFrom := argString(args, "connect_from")

	if err := checkWorkflowID(workflowID); err != nil {
		return nil, err
	}

	workflow, err := e.api.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.NodeByName(nodeName) != nil {
		return nil, fmt.Errorf("a node named %q already exists in workflow %q", nodeName, workflow.Name)
	}

	node := &models.WorkflowNode{
		ID:          uuid.NewString(),
		Name:        nodeName,
		Type:        nodeType,
		TypeVersion: 1,
		Parameters:  argMap(args, "parameters"),
		Position:    nodePosition(args, workflow),
	}
	if node.Parameters == nil {
		node.Parameters = map[string]any{}
	}

	workflow.Nodes = append(workflow.Nodes, node)

	if connectFrom != "" {
		if workflow.NodeByName(connectFrom) == nil {
			return nil, fmt.Errorf("connect_from node %q not found in workflow %q", connectFrom, workflow.Name)
		}

		connectNodes(workflow, connectFrom, nodeName)
	}

	return e.api.UpdateWorkflow(ctx, workflowID, n8n.SanitizeForUpdate(workflow))
}

func (e *Executor) deleteNode(ctx context.Context, workflowID, nodeName string) (*models.Workflow, error) {
	if err := checkWorkflowID(workflowID); err != nil {
		return nil, err
	}

	workflow, err := e.api.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.NodeByName(nodeName) == nil {
		return nil, fmt.Errorf("node %q not found in workflow %q", nodeName, workflow.Name)
	}

	kept := workflow.Nodes[:0]

	for _, node := range workflow.Nodes {
		if node.Name != nodeName {
			kept = append(kept, node)
		}
	}

	workflow.Nodes = kept

	removeNodeConnections(workflow, nodeName)

	return e.api.UpdateWorkflow(ctx, workflowID, n8n.SanitizeForUpdate(workflow))
}

func (e *Executor) deleteWorkflow(ctx context.Context, id string) (any, error) {
	if err := checkWorkflowID(id); err != nil {
		return nil, err
	}

	if err := e.api.DeleteWorkflow(ctx, id); err != nil {
		return nil, err
	}

	return map[string]any{"deleted": true}, nil
}

// connectNodes appends a main-typed edge from source to target, creating the
// connection structure when the source had no outgoing edges yet.
func connectNodes(workflow *models.Workflow, source, target string) {
	if workflow.Connections == nil {
		workflow.Connections = map[string]models.NodeConnections{}
	}

	entry := workflow.Connections[source]
	edge := models.Connection{Node: target, Type: "main", Index: 0}

	if len(entry.Main) == 0 {
		entry.Main = [][]models.Connection{{edge}}
	} else {
		entry.Main[0] = append(entry.Main[0], edge)
	}

	workflow.Connections[source] = entry
}

// removeNodeConnections drops the deleted node's own outgoing entry and
// filters it out of every other node's edge lists, so no dangling reference
// survives the delete.
func removeNodeConnections(workflow *models.Workflow, nodeName string) {
	delete(workflow.Connections, nodeName)

	for source, entry := range workflow.Connections {
		for i, edges := range entry.Main {
			kept := edges[:0]

			for _, edge := range edges {
				if edge.Node != nodeName {
					kept = append(kept, edge)
				}
			}

			entry.Main[i] = kept
		}

		workflow.Connections[source] = entry
	}
}

// nodePosition picks the new node's canvas position: the LLM's explicit
// [x,y] when given, otherwise to the right of the last node, otherwise a
// fixed origin for an empty canvas.
func nodePosition(args map[string]any, workflow *models.Workflow) [2]float64 {
	if raw, ok := args["position"].([]any); ok && len(raw) == 2 {
		x, xOK := toFloat(raw[0])
		y, yOK := toFloat(raw[1])

		if xOK && yOK {
			return [2]float64{x, y}
		}
	}

	if len(workflow.Nodes) > 0 {
		last := workflow.Nodes[len(workflow.Nodes)-1]

		return [2]float64{last.Position[0] + positionXOffset, last.Position[1]}
	}

	return [2]float64{defaultPositionX, defaultPositionY}
}

// checkWorkflowID rejects missing ids and the placeholder strings the LLM
// falls back to when it never learned the real id from context.
func checkWorkflowID(id string) error {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "":
		return fmt.Errorf("no workflow id provided; open a workflow first")
	case "current", "workflow_id", "your_workflow_id", "current_workflow_id", "unknown", "not_available":
		return fmt.Errorf("workflow id %q is a placeholder, not a real id; open a workflow first", id)
	}

	return nil
}

// toFloat widens the numeric shapes a decoded argument map can carry.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()

		return f, err == nil
	}

	return 0, false
}

func argString(args map[string]any, key string) string {
	value, _ := args[key].(string)

	return value
}

func argMap(args map[string]any, key string) map[string]any {
	value, _ := args[key].(map[string]any)

	return value
}
