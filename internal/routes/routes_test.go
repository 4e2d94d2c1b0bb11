package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/subledger/subledger/internal/config"
	"github.com/subledger/subledger/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := config.Config{
		AppName:         "subledger-test",
		AppEnv:          "development",
		Port:            "0",
		TokenAccount:    "eosio.token",
		ContractAccount: "subledger",
		TokenIssuer:     "eosio",
		TokenSymbol:     "4,SYS",
		TokenMaxSupply:  "1000000000.0000 SYS",
		IdempotencyTTL:  time.Minute,
	}

	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

type testClient struct {
	t   *testing.T
	app *fiber.App
}

func (c *testClient) do(method, path, body string, headers map[string]string) (int, map[string]any) {
	c.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("read body: %v", err)
	}

	decoded := map[string]any{}
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &decoded)
	}
	return resp.StatusCode, decoded
}

func (c *testClient) register(account, secret string) {
	c.t.Helper()
	status, body := c.do(fiber.MethodPost, "/api/v1/signers",
		`{"account":"`+account+`","secret":"`+secret+`"}`, nil)
	if status != fiber.StatusCreated {
		c.t.Fatalf("register %s: status %d, body %v", account, status, body)
	}
}

func signedAs(account, secret string) map[string]string {
	return map[string]string{
		"X-Signer-Account": account,
		"X-Signer-Secret":  secret,
	}
}

func TestLedgerFlowOverHTTP(t *testing.T) {
	app := newTestApp(t)
	c := &testClient{t: t, app: app}

	c.register("eosio", "issuer-secret")
	c.register("alice", "alice-secret")

	// Issue working capital to alice.
	status, body := c.do(fiber.MethodPost, "/api/v1/token/issue",
		`{"to":"alice","quantity":"100.0000 SYS"}`, signedAs("eosio", "issuer-secret"))
	if status != fiber.StatusCreated {
		t.Fatalf("issue: status %d, body %v", status, body)
	}

	// No subaccount yet: balance query returns no rows.
	status, _ = c.do(fiber.MethodGet, "/api/v1/balances/alice", "", nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 before open, got %d", status)
	}

	// Open, deposit, check the credited row.
	status, body = c.do(fiber.MethodPost, "/api/v1/accounts", `{}`, signedAs("alice", "alice-secret"))
	if status != fiber.StatusCreated {
		t.Fatalf("open: status %d, body %v", status, body)
	}
	status, body = c.do(fiber.MethodPost, "/api/v1/token/transfers",
		`{"to":"subledger","quantity":"1.0000 SYS","memo":"deposit"}`, signedAs("alice", "alice-secret"))
	if status != fiber.StatusOK {
		t.Fatalf("deposit: status %d, body %v", status, body)
	}

	status, body = c.do(fiber.MethodGet, "/api/v1/balances/alice", "", nil)
	if status != fiber.StatusOK || body["funds"] != "1.0000 SYS" {
		t.Fatalf("expected funds 1.0000 SYS, got %d %v", status, body)
	}

	// Over-withdraw fails and changes nothing.
	status, _ = c.do(fiber.MethodPost, "/api/v1/withdrawals",
		`{"quantity":"2.0000 SYS"}`, signedAs("alice", "alice-secret"))
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for over-withdraw, got %d", status)
	}

	// Close fails while funded, succeeds after withdrawing to zero.
	status, _ = c.do(fiber.MethodDelete, "/api/v1/accounts/alice", "", signedAs("alice", "alice-secret"))
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422 closing funded account, got %d", status)
	}
	status, body = c.do(fiber.MethodPost, "/api/v1/withdrawals",
		`{"quantity":"1.0000 SYS","memo":"payout"}`, signedAs("alice", "alice-secret"))
	if status != fiber.StatusOK || body["funds"] != "0.0000 SYS" {
		t.Fatalf("withdraw: status %d, body %v", status, body)
	}
	status, _ = c.do(fiber.MethodDelete, "/api/v1/accounts/alice", "", signedAs("alice", "alice-secret"))
	if status != fiber.StatusNoContent {
		t.Fatalf("close: expected 204, got %d", status)
	}
	status, _ = c.do(fiber.MethodGet, "/api/v1/balances/alice", "", nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 after close, got %d", status)
	}

	// Alice's tokens came back in full.
	status, body = c.do(fiber.MethodGet, "/api/v1/token/balances/alice", "", nil)
	if status != fiber.StatusOK || body["balance"] != "100.0000 SYS" {
		t.Fatalf("expected token balance 100.0000 SYS, got %d %v", status, body)
	}
}

func TestActionsRequireSigner(t *testing.T) {
	app := newTestApp(t)
	c := &testClient{t: t, app: app}

	status, _ := c.do(fiber.MethodPost, "/api/v1/withdrawals", `{"quantity":"1.0000 SYS"}`, nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", status)
	}

	c.register("alice", "alice-secret")
	status, _ = c.do(fiber.MethodPost, "/api/v1/withdrawals",
		`{"quantity":"1.0000 SYS"}`, signedAs("alice", "wrong-secret"))
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 with bad secret, got %d", status)
	}
}

func TestDepositWithoutAccountRejectedOverHTTP(t *testing.T) {
	app := newTestApp(t)
	c := &testClient{t: t, app: app}

	c.register("eosio", "issuer-secret")
	c.register("bob", "bob-secret-1")

	status, body := c.do(fiber.MethodPost, "/api/v1/token/issue",
		`{"to":"bob","quantity":"5.0000 SYS"}`, signedAs("eosio", "issuer-secret"))
	if status != fiber.StatusCreated {
		t.Fatalf("issue: status %d, body %v", status, body)
	}

	status, _ = c.do(fiber.MethodPost, "/api/v1/token/transfers",
		`{"to":"subledger","quantity":"1.0000 SYS"}`, signedAs("bob", "bob-secret-1"))
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for uncredited deposit, got %d", status)
	}

	// Rolled back: bob keeps his tokens.
	status, body = c.do(fiber.MethodGet, "/api/v1/token/balances/bob", "", nil)
	if status != fiber.StatusOK || body["balance"] != "5.0000 SYS" {
		t.Fatalf("expected bob's tokens untouched, got %d %v", status, body)
	}
}
