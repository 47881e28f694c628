// Package form renders the user entry form and directory list for a terminal
// and reads field values interactively.
package form

import (
	"fmt"
	"io"
	"strings"

	"github.com/userdir/userdir/internal/submission"
	"github.com/userdir/userdir/internal/users"
)

// View is a snapshot of the flow state to render.
type View struct {
	Entries    []submission.Entry
	Users      []users.User
	Status     string
	Submitting bool
}

// ViewOf snapshots f.
func ViewOf(f *submission.Flow) View {
	return View{
		Entries:    f.Entries(),
		Users:      f.Users(),
		Status:     f.Status(),
		Submitting: f.Submitting(),
	}
}

var fieldLabels = map[submission.Field]string{
	submission.FieldName:  "Name",
	submission.FieldPhone: "Phone Number",
	submission.FieldEmail: "Email",
}

// Label returns the prompt label for field.
func Label(field submission.Field) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return string(field)
}

// Render writes the form groups, the status line and the directory list.
func Render(w io.Writer, v View) error {
	var b strings.Builder

	b.WriteString("User Directory\n\n")
	for _, e := range v.Entries {
		fmt.Fprintf(&b, "User Information #%d\n", e.LocalID)
		for _, field := range submission.Fields {
			fmt.Fprintf(&b, "  %-13s %s\n", Label(field)+":", e.Get(field))
		}
		b.WriteString("\n")
	}

	if line := StatusLine(v.Status); line != "" {
		b.WriteString(line)
		b.WriteString("\n\n")
	}

	writeUsers(&b, v.Users)

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderUsers writes only the directory list.
func RenderUsers(w io.Writer, list []users.User) error {
	var b strings.Builder
	writeUsers(&b, list)
	_, err := io.WriteString(w, b.String())
	return err
}

func writeUsers(b *strings.Builder, list []users.User) {
	b.WriteString("Users\n")
	if len(list) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, u := range list {
		fmt.Fprintf(b, "  %s - %s - %s\n", u.Name, u.Phone, u.Email)
	}
}

// StatusLine maps a flow status to the text shown under the form. Idle
// renders nothing.
func StatusLine(status string) string {
	switch {
	case status == submission.StatusIdle || status == "":
		return ""
	case status == submission.StatusSubmitting:
		return "Submitting..."
	case status == submission.StatusSuccess:
		return "Submission successful!"
	case strings.HasPrefix(status, submission.StatusErrorPrefix):
		return "Error: " + strings.TrimPrefix(status, submission.StatusErrorPrefix)
	}
	return status
}
