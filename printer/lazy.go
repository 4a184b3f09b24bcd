package printer

import (
	"context"
	"errors"
	"sync"
)

// lazyPrinter connects on first print and reconnects once after a write
// that reached nothing, so a printer switched on after startup is still
// picked up. A partial write is returned as is.
type lazyPrinter struct {
	mu        sync.Mutex
	sel       Selection
	prn       Printer
	connected bool
}

func NewLazy(sel Selection) Printer {
	return &lazyPrinter{
		sel: sel,
	}
}

// Connect implements Printer.
func (l *lazyPrinter) Connect(ctx context.Context, sel Selection) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sel = sel
	return l.connect(ctx)
}

func (l *lazyPrinter) connect(ctx context.Context) error {
	if l.prn != nil {
		l.prn.Close()
	}
	l.connected = false

	prn, err := Open(ctx, l.sel)
	if err != nil {
		return err
	}

	l.prn = prn
	l.connected = true
	return nil
}

// Print implements Printer.
func (l *lazyPrinter) Print(ctx context.Context, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.connected {
		err := l.connect(ctx)
		if err != nil {
			return err
		}
	}

	err := l.prn.Print(ctx, text)
	if err == nil || errors.Is(err, ErrPartialWrite) {
		return err
	}

	err = l.connect(ctx)
	if err != nil {
		return err
	}
	return l.prn.Print(ctx, text)
}

// Close implements Printer.
func (l *lazyPrinter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.prn == nil {
		return nil
	}

	err := l.prn.Close()
	l.prn = nil
	l.connected = false
	return err
}
