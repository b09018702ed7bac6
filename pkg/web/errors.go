package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/casali/flowpilot/pkg/llm"
	"github.com/casali/flowpilot/pkg/n8n"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func confirmationRequired(c fiber.Ctx) error {
	problem := problems.NewStatusProblem(422).
		WithInstance(c.Path()).
		WithType("confirmation_required").
		WithDetail("tool calls must be confirmed by the user before execution")

	return c.Status(fiber.StatusUnprocessableEntity).JSON(problem)
}

func quotaExceeded(c fiber.Ctx) error {
	problem := problems.NewStatusProblem(429).
		WithInstance(c.Path()).
		WithType("quota_exceeded").
		WithDetail("daily request limit reached; resets at midnight UTC")

	return c.Status(fiber.StatusTooManyRequests).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleUpstreamError maps gateway and n8n client failures onto the error
// classes a client can act on: missing settings are the caller's problem,
// unreachable hosts and protocol-shape mismatches are bad gateways.
func handleUpstreamError(c fiber.Ctx, err error) error {
	switch {
	case llm.IsNotConfigured(err), n8n.IsNotConfigured(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("not_configured").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case llm.IsUnreachable(err), n8n.IsUnreachable(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("upstream_unreachable").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	case n8n.IsNonJSONResponse(err):
		problem := problems.NewStatusProblem(502).
			WithInstance(c.Path()).
			WithType("wrong_base_url").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadGateway).JSON(problem)

	default:
		return internalError(c, err)
	}
}
