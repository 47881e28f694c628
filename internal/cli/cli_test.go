package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdir/userdir/internal/client"
	"github.com/userdir/userdir/internal/config"
	"github.com/userdir/userdir/internal/logging"
	"github.com/userdir/userdir/internal/middleware"
	"github.com/userdir/userdir/internal/routes"
	"github.com/userdir/userdir/internal/users"
)

func startAPI(t *testing.T) config.ClientConfig {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.JSONErrorHandler})
	require.NoError(t, routes.Setup(app, routes.Deps{
		Cfg:    config.Config{AppEnv: "test", CORSOrigins: "*"},
		Logger: logging.Discard(),
	}))
	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)

	return config.ClientConfig{
		APIURL:       srv.URL + "/api",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
}

func execute(t *testing.T, cfg config.ClientConfig, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(cfg)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeEntries(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "entries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func storedUsers(t *testing.T, cfg config.ClientConfig) []users.User {
	t.Helper()
	c, err := client.New(cfg.APIURL)
	require.NoError(t, err)
	list, err := c.List(context.Background())
	require.NoError(t, err)
	return list
}

func TestRootCommandFlags(t *testing.T) {
	cmd := NewRootCommand(config.ClientConfig{APIURL: "http://api.local/api"})

	apiURL := cmd.PersistentFlags().Lookup("api-url")
	require.NotNil(t, apiURL)
	assert.Equal(t, "http://api.local/api", apiURL.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("timeout"))

	for _, name := range []string{"list", "submit", "form"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, config.ClientConfig{APIURL: "http://localhost:4000/api"}, "", "list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestListText(t *testing.T) {
	cfg := startAPI(t)
	path := writeEntries(t, "- name: Ann\n  phone: \"555\"\n  email: a@x.com\n")
	_, err := execute(t, cfg, "", "submit", "--file", path)
	require.NoError(t, err)

	out, err := execute(t, cfg, "", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Ann - 555 - a@x.com")
}

func TestListJSON(t *testing.T) {
	cfg := startAPI(t)

	out, err := execute(t, cfg, "", "list", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []users.User `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Empty(t, resp.Data)
}

func TestListUnreachableAPI(t *testing.T) {
	cfg := config.ClientConfig{APIURL: "http://127.0.0.1:1/api"}

	out, err := execute(t, cfg, "", "list", "--timeout", "500ms")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
}

func TestSubmitBatch(t *testing.T) {
	cfg := startAPI(t)
	path := writeEntries(t, `
- name: Ann
  phone: "555"
  email: a@x.com
- name: Bob
  phone: "556"
  email: b@x.com
`)

	out, err := execute(t, cfg, "", "submit", "--file", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   SubmitResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data.Created, 2)
	assert.Len(t, resp.Data.Users, 2)
	assert.Len(t, storedUsers(t, cfg), 2)
}

func TestSubmitHaltsOnIncompleteEntry(t *testing.T) {
	cfg := startAPI(t)
	path := writeEntries(t, `
- name: Ann
  phone: "555"
  email: a@x.com
- name: ""
  phone: "556"
  email: b@x.com
`)

	out, err := execute(t, cfg, "", "submit", "--file", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error: all fields must be filled")
	assert.Contains(t, out, "Error [E001]: all fields must be filled")

	stored := storedUsers(t, cfg)
	require.Len(t, stored, 1)
	assert.Equal(t, "Ann", stored[0].Name)
}

func TestSubmitBadFile(t *testing.T) {
	cfg := startAPI(t)

	_, err := execute(t, cfg, "", "submit", "--file", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	path := writeEntries(t, "- name: Ann\n  age: 3\n")
	_, err = execute(t, cfg, "", "submit", "--file", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Empty(t, storedUsers(t, cfg))
}

func TestLoadEntries(t *testing.T) {
	path := writeEntries(t, "- name: Ann\n  phone: \"555\"\n  email: a@x.com\n- name: Bob\n")

	entries, err := LoadEntries(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ann", entries[0].Name)
	assert.Equal(t, "Bob", entries[1].Name)
	assert.Empty(t, entries[1].Email)

	_, err = LoadEntries(writeEntries(t, ""))
	assert.Error(t, err)
}

func TestFormInteractive(t *testing.T) {
	cfg := startAPI(t)

	out, err := execute(t, cfg, "Ann\n555\na@x.com\nn\n", "form")
	require.NoError(t, err)
	assert.Contains(t, out, "User Information #1")
	assert.Contains(t, out, "Submission successful!")
	assert.Contains(t, out, "Ann - 555 - a@x.com")
	assert.Len(t, storedUsers(t, cfg), 1)
}
