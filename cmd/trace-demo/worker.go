package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/ADT-Software/openssl/pkg/trace"
)

// worker emits bracketed trace blocks, rotating through the categories.
type worker struct {
	id       int
	tracer   *trace.Tracer
	clock    clockz.Clock
	interval time.Duration
	count    int
}

// demoCategories are the categories workers rotate through. ANY is left
// out so it only ever serves as the fallback.
func demoCategories() []trace.Category {
	return trace.Categories()[1:]
}

// run emits blocks until ctx is done or count blocks were emitted. A count
// of zero or less means no limit.
func (w *worker) run(ctx context.Context) error {
	cats := demoCategories()
	for n := 0; w.count <= 0 || n < w.count; n++ {
		w.emit(cats[(w.id+n)%len(cats)], n)

		if w.count > 0 && n+1 == w.count {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-w.clock.After(w.interval):
		}
	}
	return nil
}

func (w *worker) emit(c trace.Category, seq int) {
	w.tracer.Trace(c, func(out io.Writer) {
		fmt.Fprintf(out, "worker=%d seq=%d category=%s\n", w.id, seq, c)
		fmt.Fprintf(out, "worker=%d seq=%d step=done\n", w.id, seq)
	})
}
