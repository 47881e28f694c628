package users

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/userdir/userdir/internal/logging"
	"github.com/userdir/userdir/internal/middleware"
)

func setupHandlerApp(repo Repository) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.JSONErrorHandler})
	h := NewHandler(NewService(repo, logging.Discard()))
	app.Post("/api/users", h.Create)
	app.Get("/api/users", h.List)
	return app
}

func postUser(t *testing.T, app *fiber.App, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/api/users", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		t.Fatalf("decode %s: %v", payload, err)
	}
}

func TestHandlerCreateReturnsStoredRecord(t *testing.T) {
	app := setupHandlerApp(NewMemoryRepository())

	resp := postUser(t, app, `{"name":"Ann","phone":"555","email":"a@x.com"}`)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected %d got %d", fiber.StatusCreated, resp.StatusCode)
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if id, _ := body["_id"].(string); id == "" {
		t.Fatalf("expected _id in response, got %v", body)
	}
	if body["name"] != "Ann" || body["phone"] != "555" || body["email"] != "a@x.com" {
		t.Fatalf("unexpected body %v", body)
	}
	if v, ok := body["__v"].(float64); !ok || v != 0 {
		t.Fatalf("expected __v 0, got %v", body["__v"])
	}
}

func TestHandlerCreateMalformedBody(t *testing.T) {
	app := setupHandlerApp(NewMemoryRepository())

	resp := postUser(t, app, `{"name":["not","a","string"]}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, resp.StatusCode)
	}

	var body map[string]string
	decodeBody(t, resp, &body)
	if body["message"] == "" {
		t.Fatalf("expected message in error body, got %v", body)
	}
}

func TestHandlerCreateStoreFailure(t *testing.T) {
	app := setupHandlerApp(failingRepository{err: errors.New("write rejected")})

	resp := postUser(t, app, `{"name":"Ann","phone":"555","email":"a@x.com"}`)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected %d got %d", fiber.StatusBadRequest, resp.StatusCode)
	}

	var body map[string]string
	decodeBody(t, resp, &body)
	if body["message"] != "write rejected" {
		t.Fatalf("expected store message, got %v", body)
	}
}

func TestHandlerListReturnsArray(t *testing.T) {
	app := setupHandlerApp(NewMemoryRepository())

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/users", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected %d got %d", fiber.StatusOK, resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	if strings.TrimSpace(string(payload)) != "[]" {
		t.Fatalf("expected empty array, got %s", payload)
	}

	postUser(t, app, `{"name":"Ann","phone":"555","email":"a@x.com"}`).Body.Close()
	postUser(t, app, `{"name":"Ann","phone":"555","email":"a@x.com"}`).Body.Close()

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/users", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	var list []User
	decodeBody(t, resp, &list)
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].ID == list[1].ID {
		t.Fatalf("expected distinct ids for identical records")
	}
}

func TestHandlerListStoreFailure(t *testing.T) {
	app := setupHandlerApp(failingRepository{err: errors.New("server selection timeout")})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/users", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Fatalf("expected %d got %d", fiber.StatusInternalServerError, resp.StatusCode)
	}

	var body map[string]string
	decodeBody(t, resp, &body)
	if body["message"] != "server selection timeout" {
		t.Fatalf("unexpected error body %v", body)
	}
}
