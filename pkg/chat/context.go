package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/casali/flowpilot/pkg/models"
)

// ScreenshotTimeout bounds how long a turn waits for a screenshot before
// proceeding without one. A slow capture must never block the conversation.
const ScreenshotTimeout = 2 * time.Second

// PageContext is what the host extracted from the page the user is looking
// at. All fields are best-effort.
type PageContext struct {
	CurrentURL   string
	WorkflowID   string
	WorkflowName string
}

// PageContextProvider extracts context from the active page.
type PageContextProvider interface {
	CapturePageContext(ctx context.Context) (*PageContext, error)
}

// ScreenshotProvider captures the visible page as a PNG data URL.
type ScreenshotProvider interface {
	CaptureScreenshot(ctx context.Context) (string, error)
}

// WorkflowReader fetches the full workflow document for context annotation.
type WorkflowReader interface {
	GetWorkflow(ctx context.Context, id string) (*models.Workflow, error)
}

// TurnContext is everything gathered for one conversation turn.
type TurnContext struct {
	CurrentURL string
	Workflow   *models.Workflow
	Screenshot string
}

// ContextCapturer gathers page context and a screenshot concurrently, then
// enriches with the full workflow document when one is open and the n8n
// connection is configured.
type ContextCapturer struct {
	pages       PageContextProvider
	screenshots ScreenshotProvider
	workflows   WorkflowReader
	logger      *slog.Logger
	timeout     time.Duration
}

// NewContextCapturer wires the capture collaborators. Any provider may be
// nil; the corresponding context piece is simply absent.
func NewContextCapturer(pages PageContextProvider, screenshots ScreenshotProvider, workflows WorkflowReader, logger *slog.Logger) *ContextCapturer {
	return &ContextCapturer{
		pages:       pages,
		screenshots: screenshots,
		workflows:   workflows,
		logger:      logger.With("module", "context_capture"),
		timeout:     ScreenshotTimeout,
	}
}

// Capture runs page-context extraction and the screenshot in parallel and
// waits for both. The screenshot is raced against a hard timeout: when it
// loses, the turn proceeds without visual context instead of failing.
func (c *ContextCapturer) Capture(ctx context.Context) *TurnContext {
	pageCh := make(chan *PageContext, 1)
	shotCh := make(chan string, 1)

	go func() {
		if c.pages == nil {
			pageCh <- nil

			return
		}

		page, err := c.pages.CapturePageContext(ctx)
		if err != nil {
			c.logger.Warn("page context extraction failed", "error", err)
			pageCh <- nil

			return
		}

		pageCh <- page
	}()

	go func() {
		if c.screenshots == nil {
			shotCh <- ""

			return
		}

		shotCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		shot, err := c.screenshots.CaptureScreenshot(shotCtx)
		if err != nil {
			c.logger.Warn("screenshot unavailable", "error", err)
			shotCh <- ""

			return
		}

		shotCh <- shot
	}()

	turn := &TurnContext{}

	page := <-pageCh

	select {
	case turn.Screenshot = <-shotCh:
	case <-time.After(c.timeout + 100*time.Millisecond):
		c.logger.Warn("screenshot capture timed out")
	}

	if turn.Screenshot != "" && !strings.HasPrefix(turn.Screenshot, "data:") {
		turn.Screenshot = "data:image/png;base64," + turn.Screenshot
	}

	if page == nil {
		return turn
	}

	turn.CurrentURL = page.CurrentURL

	if page.WorkflowID != "" && c.workflows != nil {
		workflow, err := c.workflows.GetWorkflow(ctx, page.WorkflowID)
		if err != nil {
			c.logger.Warn("workflow fetch for context failed",
				"workflow_id", page.WorkflowID,
				"error", err)
		} else {
			turn.Workflow = workflow
		}
	}

	return turn
}

// annotate prefixes the user's message with a context header and appends the
// minified workflow JSON so the model can extract real ids and node names.
func annotate(userMessage string, turn *TurnContext) string {
	if turn == nil {
		return userMessage
	}

	text := userMessage

	if turn.Workflow != nil {
		idPart := " | ID: NOT_AVAILABLE (cannot use tools)"
		if turn.Workflow.ID != "" {
			idPart = " | ID: " + turn.Workflow.ID
		}

		name := turn.Workflow.Name
		if name == "" {
			name = "Untitled"
		}

		text = fmt.Sprintf("[Workflow: %q%s | Nodes: %d]\n\n%s", name, idPart, len(turn.Workflow.Nodes), userMessage)

		if encoded, err := json.Marshal(turn.Workflow); err == nil {
			text += "\n\nWorkflow JSON:\n" + string(encoded)
		}
	}

	if turn.CurrentURL != "" {
		text += "\n\nCurrent URL: " + turn.CurrentURL
	}

	return text
}
