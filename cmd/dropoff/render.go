package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/99minutos/dropoff-location/internal/core/domain"
	"github.com/99minutos/dropoff-location/internal/core/service"
)

const timestampLayout = "1/2/2006, 3:04:05 PM"

// console serialises writes from the reporter loop and the input loop.
type console struct {
	mu  sync.Mutex
	out io.Writer
	loc *time.Location
}

func newConsole(out io.Writer) *console {
	return &console{out: out, loc: time.Local}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Render is installed as the reporter's OnChange callback.
func (c *console) Render(s service.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, render(s, c.loc))
}

func render(s service.Snapshot, loc *time.Location) string {
	var b strings.Builder

	b.WriteString("\n== Student Drop-off ==\n")
	fmt.Fprintf(&b, "[ %s ]", s.ActionLabel())
	if s.Busy() {
		b.WriteString(" (busy)")
	}
	b.WriteByte('\n')

	if s.Acquisition.Status == domain.AcquisitionFailed {
		fmt.Fprintf(&b, "Error: %s\n", s.Acquisition.Reason())
	}

	if fb := s.Feedback; fb != nil {
		marker := "+"
		if fb.Kind == domain.FeedbackError {
			marker = "!"
		}
		fmt.Fprintf(&b, "%s %s\n", marker, fb.Text)
	}

	if p := s.Position; p != nil {
		b.WriteString("Location Recorded!\n")
		fmt.Fprintf(&b, "  Latitude: %v, Longitude: %v\n", p.Latitude, p.Longitude)
		fmt.Fprintf(&b, "  Accuracy: %v meters, Timestamp: %s\n", p.Accuracy, p.Time().In(loc).Format(timestampLayout))
	}

	return b.String()
}

const helpText = `Commands:
  <enter>  get location and send it
  r        get location only
  a        arm: send the next location
  d        dismiss message
  q        quit
`
