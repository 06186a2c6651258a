package command

import (
	"bytes"
	"strings"
	"sync"
)

// Sender is whoever typed a command: a player or the console.
type Sender interface {
	Name() string
	SendMessage(text string)
	HasPermission(node string) bool
}

// Red is the chat color code for red text.
const Red = "§c"

// Console is a Sender with every permission that collects its output.
type Console struct {
	mu    sync.Mutex
	lines []string
}

func (*Console) Name() string              { return "CONSOLE" }
func (*Console) HasPermission(string) bool { return true }

func (c *Console) SendMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, text)
}

// Lines returns everything sent so far.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// senderWriter turns cobra output into one chat message per line.
type senderWriter struct {
	sender Sender
	buf    bytes.Buffer
}

func (w *senderWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// incomplete line, keep it for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			return len(p), nil
		}
		w.send(line)
	}
}

func (w *senderWriter) Flush() {
	if w.buf.Len() > 0 {
		w.send(w.buf.String())
		w.buf.Reset()
	}
}

func (w *senderWriter) send(line string) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}
	w.sender.SendMessage(line)
}
