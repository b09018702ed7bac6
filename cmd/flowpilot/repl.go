// Package main provides the interactive terminal chat.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/casali/flowpilot/pkg/catalog"
	"github.com/casali/flowpilot/pkg/chat"
	"github.com/casali/flowpilot/pkg/cmd"
	"github.com/casali/flowpilot/pkg/executor"
	"github.com/casali/flowpilot/pkg/llm"
	"github.com/casali/flowpilot/pkg/models"
)

// REPL is the interactive chat loop: read a message, run a turn, render
// previews, collect y/N confirmations, execute, and narrate the outcome.
type REPL struct {
	assistant *cmd.Assistant
	in        *bufio.Reader
	out       io.Writer
	logger    *slog.Logger
	history   []llm.Message
}

func NewREPL(assistant *cmd.Assistant, in io.Reader, out io.Writer, logger *slog.Logger) *REPL {
	return &REPL{
		assistant: assistant,
		in:        bufio.NewReader(in),
		out:       out,
		logger:    logger,
	}
}

func (r *REPL) Run(ctx context.Context) error {
	fmt.Fprintln(r.out, "FlowPilot - n8n assistant. Type a message, or /quit to exit.")

	for {
		fmt.Fprint(r.out, "\n> ")

		line, err := r.in.ReadString('\n')
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return err
		}

		message := strings.TrimSpace(line)

		switch message {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		}

		if err := r.turn(ctx, message); err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
	}
}

func (r *REPL) turn(ctx context.Context, message string) error {
	status, err := r.assistant.Gate.CheckAndIncrement(ctx)
	if err != nil {
		return err
	}

	if !status.Allowed {
		fmt.Fprintln(r.out, "Daily request limit reached. The counter resets at midnight UTC.")

		return nil
	}

	reply, err := r.assistant.Orchestrator.Send(ctx, chat.SendRequest{
		History:     r.history,
		UserMessage: message,
		OnToken: func(token string) {
			fmt.Fprint(r.out, token)
		},
	})
	if err != nil {
		return err
	}

	r.history = append(r.history, llm.TextMessage(llm.RoleUser, message))

	if reply.Kind == llm.ReplyText {
		// Streaming already printed the tokens; add the line break.
		fmt.Fprintln(r.out)
		r.history = append(r.history, llm.TextMessage(llm.RoleAssistant, reply.Content))

		return nil
	}

	results := r.executeCalls(ctx, reply.ToolCalls)

	return r.narrate(ctx, results)
}

func (r *REPL) executeCalls(ctx context.Context, calls []models.ToolCall) []models.ExecutionResult {
	results := make([]models.ExecutionResult, 0, len(calls))

	for _, call := range calls {
		if catalog.IsAuxTool(call.Function.Name) {
			if r.assistant.Aux == nil {
				results = append(results, models.ExecutionResult{
					ToolCallID: call.ID,
					ToolName:   call.Function.Name,
					Error:      "web search is not configured",
				})

				continue
			}

			results = append(results, r.assistant.Aux.Execute(ctx, call))

			continue
		}

		result := r.assistant.Executor.Execute(ctx, call, r.confirm)
		results = append(results, result)

		if result.UserCancelled {
			break
		}
	}

	return results
}

// confirm renders one preview and reads a y/N answer. Anything but an
// explicit yes declines.
func (r *REPL) confirm(_ context.Context, preview models.ActionPreview) (bool, error) {
	fmt.Fprintf(r.out, "\n%s %s\n", preview.Icon, preview.ConfirmMessage)
	fmt.Fprint(r.out, "Proceed? [y/N] ")

	line, err := r.in.ReadString('\n')
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))

	return answer == "y" || answer == "yes", nil
}

// narrate feeds the execution results back into the conversation so the
// model can summarize the outcome for the user.
func (r *REPL) narrate(ctx context.Context, results []models.ExecutionResult) error {
	report := executor.FormatResultsForLLM(results)

	reply, err := r.assistant.Orchestrator.Send(ctx, chat.SendRequest{
		History:     r.history,
		UserMessage: report,
		OnToken: func(token string) {
			fmt.Fprint(r.out, token)
		},
	})
	if err != nil {
		// The actions already ran; a narration failure should not look
		// like an action failure.
		fmt.Fprintln(r.out, report)

		return nil
	}

	fmt.Fprintln(r.out)
	r.history = append(r.history, llm.TextMessage(llm.RoleAssistant, reply.Content))

	return nil
}
