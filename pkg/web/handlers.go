// Package web exposes the assistant core over HTTP for hosts that are not a
// browser extension. The confirmation step spans two requests: POST /chat
// returns previews for any tool calls, POST /actions/execute runs them once
// the client has collected the user's approval.
package web

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/casali/flowpilot/pkg/catalog"
	"github.com/casali/flowpilot/pkg/chat"
	"github.com/casali/flowpilot/pkg/executor"
	"github.com/casali/flowpilot/pkg/llm"
	"github.com/casali/flowpilot/pkg/models"
	"github.com/casali/flowpilot/pkg/usage"
	"github.com/casali/flowpilot/pkg/websearch"
)

// Handlers wires the assistant components behind HTTP endpoints.
type Handlers struct {
	orchestrator *chat.Orchestrator
	executor     *executor.Executor
	parser       *executor.Parser
	aux          *websearch.AuxExecutor
	gate         *usage.Gate
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewHandlers creates the HTTP handler set. The aux executor may be nil when
// no search key is configured.
func NewHandlers(
	orchestrator *chat.Orchestrator,
	exec *executor.Executor,
	aux *websearch.AuxExecutor,
	gate *usage.Gate,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		orchestrator: orchestrator,
		executor:     exec,
		parser:       executor.NewParser(logger),
		aux:          aux,
		gate:         gate,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
		logger:       logger.With("module", "web"),
	}
}

// Chat runs one conversation turn. Tool-call replies come back as previews;
// nothing executes until the client confirms through Execute.
func (h *Handlers) Chat(c fiber.Ctx) error {
	var req ChatRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	status, err := h.gate.CheckAndIncrement(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	if !status.Allowed {
		return quotaExceeded(c)
	}

	reply, err := h.orchestrator.Send(c.Context(), chat.SendRequest{
		History:     req.History,
		UserMessage: req.Message,
	})
	if err != nil {
		return handleUpstreamError(c, err)
	}

	if reply.Kind == llm.ReplyToolCalls {
		previews := make([]models.ActionPreview, 0, len(reply.ToolCalls))
		for _, call := range reply.ToolCalls {
			previews = append(previews, h.parser.Parse(call))
		}

		return c.JSON(ChatResponse{
			Type:      "tool_calls",
			ToolCalls: reply.ToolCalls,
			Previews:  previews,
		})
	}

	return c.JSON(ChatResponse{Type: "text", Content: reply.Content})
}

// Execute runs a confirmed batch of tool calls. Auxiliary read-only tools
// dispatch without confirmation; everything else requires Confirmed=true.
func (h *Handlers) Execute(c fiber.Ctx) error {
	var req ExecuteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	results := make([]models.ExecutionResult, 0, len(req.ToolCalls))

	for _, call := range req.ToolCalls {
		if catalog.IsAuxTool(call.Function.Name) {
			if h.aux == nil {
				results = append(results, models.ExecutionResult{
					ToolCallID: call.ID,
					ToolName:   call.Function.Name,
					Error:      "web search is not configured",
				})

				continue
			}

			results = append(results, h.aux.Execute(c.Context(), call))

			continue
		}

		if !req.Confirmed {
			return confirmationRequired(c)
		}

		result := h.executor.Execute(c.Context(), call, nil)
		results = append(results, result)

		if result.UserCancelled {
			break
		}
	}

	return c.JSON(ExecuteResponse{
		Results: results,
		Report:  executor.FormatResultsForLLM(results),
	})
}

// Actions lists the catalog for clients building their own preview UI.
func (h *Handlers) Actions(c fiber.Ctx) error {
	definitions := catalog.Definitions()

	infos := make([]ActionInfo, 0, len(definitions))
	for _, action := range definitions {
		infos = append(infos, ActionInfo{
			Name:                 action.Name,
			Label:                action.Label,
			Icon:                 action.Icon,
			Description:          action.Description,
			RequiresConfirmation: action.RequiresConfirmation,
		})
	}

	return c.JSON(fiber.Map{"actions": infos})
}

// Usage reports the remaining daily quota without consuming a request.
func (h *Handlers) Usage(c fiber.Ctx) error {
	remaining, err := h.gate.Remaining(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(UsageResponse{
		Remaining: remaining,
		Limit:     h.gate.Limit(),
	})
}
