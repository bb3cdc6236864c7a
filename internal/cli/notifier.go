package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// consoleNotifier prints status messages on their own line.
type consoleNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func newConsoleNotifier(w io.Writer) *consoleNotifier {
	return &consoleNotifier{w: w}
}

func (n *consoleNotifier) Success(_ context.Context, msg string) { n.print("✓", msg) }
func (n *consoleNotifier) Error(_ context.Context, msg string)   { n.print("✗", msg) }

func (n *consoleNotifier) print(mark, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", mark, msg)
}
