package engine

import (
	"fmt"
	"sync"
)

const defaultConsoleLines = 200

// Console is a bounded line buffer systems print to. Frontends show the tail
// or drain it to stdout.
type Console struct {
	mu    sync.Mutex
	lines []string
	max   int
	drain int // index of the first line not yet drained
}

// NewConsole creates a console keeping at most max lines.
func NewConsole(max int) *Console {
	if max <= 0 {
		max = defaultConsoleLines
	}
	return &Console{max: max}
}

// Println appends one line.
func (c *Console) Println(a ...any) {
	c.append(fmt.Sprint(a...))
}

// Printf appends one formatted line.
func (c *Console) Printf(format string, a ...any) {
	c.append(fmt.Sprintf(format, a...))
}

func (c *Console) append(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = append(c.lines, line)
	if over := len(c.lines) - c.max; over > 0 {
		c.lines = c.lines[over:]
		c.drain -= over
		if c.drain < 0 {
			c.drain = 0
		}
	}
}

// Lines returns a copy of the retained lines.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// Tail returns up to n of the most recent lines.
func (c *Console) Tail(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > len(c.lines) {
		n = len(c.lines)
	}
	return append([]string(nil), c.lines[len(c.lines)-n:]...)
}

// Drain returns the lines added since the previous Drain.
func (c *Console) Drain() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.lines[c.drain:]...)
	c.drain = len(c.lines)
	return out
}
