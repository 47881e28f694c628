package form

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdir/userdir/internal/submission"
	"github.com/userdir/userdir/internal/users"
)

type nopAPI struct{}

func (nopAPI) Create(ctx context.Context, c users.Candidate) (users.User, error) {
	return users.User{ID: "1", Name: c.Name, Phone: c.Phone, Email: c.Email}, nil
}

func (nopAPI) List(ctx context.Context) ([]users.User, error) {
	return []users.User{}, nil
}

func TestRenderShowsEntriesStatusAndList(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, View{
		Entries: []submission.Entry{
			{LocalID: 1, Name: "Ann", Phone: "555", Email: "a@x.com"},
			{LocalID: 2},
		},
		Users:  []users.User{{ID: "x", Name: "Bob", Phone: "556", Email: "b@x.com"}},
		Status: "error: all fields must be filled",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "User Information #1")
	assert.Contains(t, out, "User Information #2")
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "Error: all fields must be filled")
	assert.Contains(t, out, "Bob - 556 - b@x.com")
}

func TestRenderEmptyList(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderUsers(&buf, nil))
	assert.Equal(t, "Users\n  (none)\n", buf.String())
}

func TestStatusLine(t *testing.T) {
	cases := []struct {
		status string
		want   string
	}{
		{submission.StatusIdle, ""},
		{submission.StatusSubmitting, "Submitting..."},
		{submission.StatusSuccess, "Submission successful!"},
		{"error: HTTP error! status: 400", "Error: HTTP error! status: 400"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusLine(tc.status), tc.status)
	}
}

func TestPrompterFillsEntries(t *testing.T) {
	flow := submission.New(nopAPI{})
	in := strings.NewReader("Ann\n555\na@x.com\ny\nBob\n556\nb@x.com\nn\n")
	var out bytes.Buffer

	require.NoError(t, NewPrompter(in, &out, flow).Run(context.Background()))

	assert.Equal(t, []submission.Entry{
		{LocalID: 1, Name: "Ann", Phone: "555", Email: "a@x.com"},
		{LocalID: 2, Name: "Bob", Phone: "556", Email: "b@x.com"},
	}, flow.Entries())
	assert.Contains(t, out.String(), "Phone Number: ")
	assert.Contains(t, out.String(), "Add another user?")
}

func TestPrompterStopsAtEndOfInput(t *testing.T) {
	flow := submission.New(nopAPI{})
	in := strings.NewReader("Ann\n555\n")

	require.NoError(t, NewPrompter(in, &bytes.Buffer{}, flow).Run(context.Background()))

	assert.Equal(t, []submission.Entry{{LocalID: 1, Name: "Ann", Phone: "555"}}, flow.Entries())
}

func TestPrompterHonoursCancel(t *testing.T) {
	flow := submission.New(nopAPI{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPrompter(strings.NewReader("Ann\n"), &bytes.Buffer{}, flow).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
