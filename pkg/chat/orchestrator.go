package chat

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/casali/flowpilot/pkg/catalog"
	"github.com/casali/flowpilot/pkg/config"
	"github.com/casali/flowpilot/pkg/llm"
	"github.com/casali/flowpilot/pkg/models"
	"github.com/casali/flowpilot/pkg/otelhelper"
)

const (
	historyWindow   = 20
	turnMaxTokens   = 4096
	turnTemperature = 0.4
	toolChoiceAuto  = "auto"
)

// Gateway is the slice of the LLM client the orchestrator speaks through.
type Gateway interface {
	Complete(ctx context.Context, request llm.Request) (*llm.Reply, error)
	Stream(ctx context.Context, request llm.Request, onToken func(token string)) (string, error)
}

// SendRequest is one conversation turn.
type SendRequest struct {
	History     []llm.Message
	UserMessage string
	Context     *TurnContext

	// OnToken enables streaming. Streaming and tools are mutually
	// exclusive; when the turn qualifies for tools, tokens are not fed.
	OnToken func(token string)
}

// Orchestrator runs conversation turns against the gateway. Settings are
// injected at construction, never read from ambient state.
type Orchestrator struct {
	gateway  Gateway
	settings config.Settings
	logger   *slog.Logger
	tracer   trace.Tracer
}

// NewOrchestrator creates a conversation orchestrator.
func NewOrchestrator(gateway Gateway, settings config.Settings, logger *slog.Logger, tracer trace.Tracer) *Orchestrator {
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &Orchestrator{
		gateway:  gateway,
		settings: settings,
		logger:   logger.With("module", "orchestrator"),
		tracer:   tracer,
	}
}

// Send runs one turn: prompt and history assembly, the tool-attachment
// decision, the gateway call, and reply classification. Text replies come
// back normalized to plain text.
func (o *Orchestrator) Send(ctx context.Context, req SendRequest) (*llm.Reply, error) {
	withTools := o.shouldAttachTools(req.UserMessage)

	ctx, span := otelhelper.StartSpan(ctx, o.tracer, "chat.send",
		attribute.String(otelhelper.ModelKey, o.settings.Model),
		attribute.String(otelhelper.ModeKey, string(o.settings.AssistantMode)),
		attribute.Bool(otelhelper.StreamingKey, req.OnToken != nil && !withTools),
	)
	defer span.End()

	request := llm.Request{
		Model:       o.settings.Model,
		Messages:    o.assembleMessages(req),
		MaxTokens:   turnMaxTokens,
		Temperature: turnTemperature,
	}

	if withTools {
		request.Tools = catalog.GatewayTools()
		if o.settings.SearchAPIKey != "" {
			request.Tools = append(request.Tools, catalog.AuxGatewayTools()...)
		}

		request.ToolChoice = toolChoiceAuto
	}

	o.logger.Debug("sending turn",
		"messages", len(request.Messages),
		"tools", len(request.Tools),
		"streaming", req.OnToken != nil && !withTools)

	if req.OnToken != nil && !withTools {
		content, err := o.gateway.Stream(ctx, request, req.OnToken)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}

		return &llm.Reply{Kind: llm.ReplyText, Content: Plaintext(content)}, nil
	}

	reply, err := o.gateway.Complete(ctx, request)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	if reply.Kind == llm.ReplyText {
		reply.Content = Plaintext(reply.Content)
	}

	return reply, nil
}

// shouldAttachTools gates the mutating tool list behind three conditions:
// a working n8n connection, builder mode, and the message not reading as a
// question. Helper mode answers and suggests but never acts.
func (o *Orchestrator) shouldAttachTools(userMessage string) bool {
	return o.settings.N8NConnected &&
		o.settings.AssistantMode == models.AssistantModeBuilder &&
		!IsLikelyQuestion(userMessage)
}

func (o *Orchestrator) assembleMessages(req SendRequest) []llm.Message {
	messages := make([]llm.Message, 0, historyWindow+2)
	messages = append(messages, llm.TextMessage(llm.RoleSystem, systemPrompt))

	history := req.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	for _, message := range history {
		if message.Role == llm.RoleUser || message.Role == llm.RoleAssistant {
			messages = append(messages, message)
		}
	}

	text := annotate(req.UserMessage, req.Context)

	if req.Context != nil && req.Context.Screenshot != "" {
		messages = append(messages, llm.VisionMessage(text, req.Context.Screenshot))
	} else {
		messages = append(messages, llm.TextMessage(llm.RoleUser, text))
	}

	return messages
}
