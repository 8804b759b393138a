package http

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/require"
)

type probeFunc func(context.Context) error

func (f probeFunc) Ready(ctx context.Context) error { return f(ctx) }

func TestHealth(t *testing.T) {
	app := fiber.New()
	app.Get("/health", Health)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, `"UP!"`, string(body))
}

func TestReadiness(t *testing.T) {
	cases := []struct {
		name       string
		probe      probeFunc
		wantStatus int
		wantBody   string
	}{
		{
			name:       "ready",
			probe:      func(context.Context) error { return nil },
			wantStatus: fiber.StatusOK,
			wantBody:   `{"status":"READY"}`,
		},
		{
			name:       "backend_down",
			probe:      func(context.Context) error { return errors.New("light client syncing") },
			wantStatus: fiber.StatusServiceUnavailable,
			wantBody:   `{"status":"NOT_READY","error":"light client syncing"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/ready", Readiness(tc.probe))

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ready", nil))
			require.NoError(t, err)
			require.Equal(t, tc.wantStatus, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			require.JSONEq(t, tc.wantBody, string(body))
		})
	}
}
