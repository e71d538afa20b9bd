package session

import (
	"fmt"
	"io"
	"sync"
)

// Notifier surfaces a user-facing message in whatever front end hosts the session
type Notifier interface {
	Alert(message string)
}

// WriterNotifier prints alerts to a terminal or any other writer
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier writing to w
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Alert implements Notifier
func (n *WriterNotifier) Alert(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "! %s\n", message)
}

// Inbox collects alerts until a front end drains them, e.g. on the next page render
type Inbox struct {
	mu       sync.Mutex
	messages []string
}

// Alert implements Notifier
func (i *Inbox) Alert(message string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.messages = append(i.messages, message)
}

// Drain returns the pending alerts and clears them
func (i *Inbox) Drain() []string {
	i.mu.Lock()
	defer i.mu.Unlock()
	messages := i.messages
	i.messages = nil
	return messages
}
