package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casali/flowpilot/pkg/cmd"
	"github.com/casali/flowpilot/pkg/config"
	"github.com/casali/flowpilot/pkg/log"
	"github.com/casali/flowpilot/pkg/otelhelper"
	"github.com/casali/flowpilot/pkg/storage"
)

func setupTestApp() *fiber.App {
	settings := config.Default()
	assistant := cmd.BuildAssistant(settings, storage.NewMemoryStorage(), log.Discard(), otelhelper.NoopTracer())

	return NewAPI(log.Discard(), assistant).App()
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "FlowPilot API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ActionsEndpointWired(t *testing.T) {
	app := setupTestApp()

	req := httptest.NewRequest(http.MethodGet, "/actions", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
