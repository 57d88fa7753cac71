package repl

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/evaluator"
	"github.com/rill-lang/rill/internal/registry"
)

// request is one evaluation dispatched to a worker.
type request struct {
	program  *ast.Program
	env      evaluator.Environment
	defs     registry.Store
	ctx      context.Context
	out      io.Writer
	module   string
	maxDepth int
	reply    chan response
}

type response struct {
	value    evaluator.Value
	panicked bool
	panicMsg string
}

// worker is an isolated execution context: a goroutine that evaluates one
// request at a time and communicates only through channels. The controller
// never evaluates inline, so a fault here cannot corrupt session state. A
// worker that panics answers once and exits; the controller respawns.
type worker struct {
	id       string
	requests chan *request
}

func newWorker() *worker {
	w := &worker{
		id:       uuid.NewString(),
		requests: make(chan *request),
	}
	go w.loop()
	return w
}

func (w *worker) loop() {
	for req := range w.requests {
		resp, fatal := w.evaluate(req)
		req.reply <- resp
		if fatal {
			return
		}
	}
}

func (w *worker) evaluate(req *request) (resp response, fatal bool) {
	defer func() {
		if r := recover(); r != nil {
			resp = response{panicked: true, panicMsg: fmt.Sprint(r)}
			fatal = true
		}
	}()

	ev := evaluator.New(req.defs)
	ev.Out = req.out
	ev.Module = req.module
	ev.Context = req.ctx
	ev.MaxCallDepth = req.maxDepth

	return response{value: ev.EvalProgram(req.program, req.env)}, false
}

// submit blocks until the worker answers.
func (w *worker) submit(req *request) response {
	req.reply = make(chan response, 1)
	w.requests <- req
	return <-req.reply
}

func (w *worker) close() { close(w.requests) }
