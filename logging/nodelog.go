package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sarchlab/netsim/sim"
)

// LogHookBase provides the common logic for hooks that write text lines.
type LogHookBase struct {
	*log.Logger
}

type nodeLog struct {
	LogHookBase
	file *os.File
}

// A NodeLogHook writes the activity of each node into its own file
// <dir>/<name>.log, one line per event, in the form
//
//	[15:04:05] R1: HELLO from R2
//
// Events without text are ignored. If an echo writer is given, every line is
// also written there.
type NodeLogHook struct {
	dir  string
	echo io.Writer
	now  func() time.Time

	lock   sync.Mutex
	logs   map[string]*nodeLog
	closed bool
}

// NewNodeLogHook creates a hook that writes into dir, creating the directory
// if needed. Echo may be nil.
func NewNodeLogHook(dir string, echo io.Writer) (*NodeLogHook, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir %s: %w", dir, err)
	}

	h := &NodeLogHook{
		dir:  dir,
		now:  time.Now,
		logs: make(map[string]*nodeLog),
	}

	if echo != nil {
		h.echo = &lockedWriter{w: echo}
	}

	return h, nil
}

// Dir returns the directory the logs are written into.
func (h *NodeLogHook) Dir() string {
	return h.dir
}

// Func writes the text of the event into the log of the node that raised it.
func (h *NodeLogHook) Func(ctx sim.HookCtx) {
	text, ok := ctx.Detail.(string)
	if !ok || text == "" {
		return
	}

	name := ctx.Domain.Name()

	l, err := h.logOf(name)
	if err != nil {
		SimLog.WithError(err).Errorf("cannot write log of node %s", name)
		return
	}

	if l == nil {
		SimLog.Debugf("Dropping log line of node %s after close: %s",
			name, text)
		return
	}

	l.Printf("[%s] %s: %s", h.now().Format("15:04:05"), name, text)
}

func (h *NodeLogHook) logOf(name string) (*nodeLog, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.closed {
		return nil, nil
	}

	if l, found := h.logs[name]; found {
		return l, nil
	}

	f, err := os.OpenFile(
		filepath.Join(h.dir, name+".log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY,
		0o644,
	)
	if err != nil {
		return nil, err
	}

	var w io.Writer = f
	if h.echo != nil {
		w = io.MultiWriter(f, h.echo)
	}

	l := &nodeLog{file: f}
	l.Logger = log.New(w, "", 0)
	h.logs[name] = l

	return l, nil
}

// Close closes all the log files. Lines arriving afterwards are dropped.
func (h *NodeLogHook) Close() error {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.closed = true

	var firstErr error
	for name, l := range h.logs {
		if err := l.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}

		delete(h.logs, name)
	}

	return firstErr
}

// All nodes share the echo writer.
type lockedWriter struct {
	lock sync.Mutex
	w    io.Writer
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.w.Write(p)
}
