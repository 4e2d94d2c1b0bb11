package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/subledger/subledger/internal/logging"
)

func setupIdempotentApp(t *testing.T) (*fiber.App, *int) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	handled := 0
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/withdrawals", func(c *fiber.Ctx) error {
		handled++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"balance": "0.0000 SYS"})
	})

	return app, &handled
}

func postWithdrawal(t *testing.T, app *fiber.App, key string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/withdrawals", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	return resp.StatusCode, string(body)
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, _ := setupIdempotentApp(t)

	status, _ := postWithdrawal(t, app, "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d, got %d", fiber.StatusBadRequest, status)
	}
}

func TestDuplicateSubmissionReplaysResponse(t *testing.T) {
	app, handled := setupIdempotentApp(t)

	status, body := postWithdrawal(t, app, "wd-1")
	if status != fiber.StatusCreated {
		t.Fatalf("expected %d, got %d", fiber.StatusCreated, status)
	}

	// The duplicate must not reach the handler: a replayed withdrawal would
	// debit the subaccount twice.
	status2, body2 := postWithdrawal(t, app, "wd-1")
	if status2 != fiber.StatusCreated {
		t.Fatalf("expected replayed %d, got %d", fiber.StatusCreated, status2)
	}
	if body2 != body {
		t.Fatalf("expected replayed body %q, got %q", body, body2)
	}
	if *handled != 1 {
		t.Fatalf("handler ran %d times, expected once", *handled)
	}
}

func TestDistinctKeysAreIndependent(t *testing.T) {
	app, handled := setupIdempotentApp(t)

	postWithdrawal(t, app, "wd-1")
	postWithdrawal(t, app, "wd-2")

	if *handled != 2 {
		t.Fatalf("handler ran %d times, expected twice", *handled)
	}
}
