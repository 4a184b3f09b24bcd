package printer

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
)

const (
	TagNet = "net"
	TagUsb = "usb"
	TagBle = "ble"

	DefaultNetPort = 9100
)

// streamPrinter writes tickets to any byte stream the transport opened.
type streamPrinter struct {
	mu   sync.Mutex
	conn io.WriteCloser
	open func(ctx context.Context, sel Selection) (io.WriteCloser, error)
}

// Connect implements Printer.
func (s *streamPrinter) Connect(ctx context.Context, sel Selection) error {
	conn, err := s.open(ctx, sel)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
	}
	s.conn = conn
	return nil
}

// Print implements Printer.
func (s *streamPrinter) Print(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrNotConnected
	}

	conn, isNet := s.conn.(net.Conn)
	deadline, hasDeadline := ctx.Deadline()
	if isNet && hasDeadline {
		conn.SetWriteDeadline(deadline)
	}

	n, err := io.WriteString(s.conn, text)
	if err != nil && n > 0 {
		return fmt.Errorf("%w: %d of %d bytes: %w", ErrPartialWrite, n, len(text), err)
	}
	return err
}

// Close implements Printer.
func (s *streamPrinter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	err := s.conn.Close()
	s.conn = nil
	return err
}

func NewNetPrinter() Printer {
	return &streamPrinter{
		open: func(ctx context.Context, sel Selection) (io.WriteCloser, error) {
			port := sel.Port
			if port == 0 {
				port = DefaultNetPort
			}

			var dialer net.Dialer
			conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(sel.Address, strconv.Itoa(port)))
			if err != nil {
				return nil, fmt.Errorf("net printer %s: %w", sel.Address, err)
			}
			return conn, nil
		},
	}
}

func NewUsbPrinter() Printer {
	return &streamPrinter{
		open: func(ctx context.Context, sel Selection) (io.WriteCloser, error) {
			dev, err := os.OpenFile(sel.Address, os.O_WRONLY|os.O_APPEND, 0)
			if err != nil {
				return nil, fmt.Errorf("usb printer %s: %w", sel.Address, err)
			}
			return dev, nil
		},
	}
}

// BleDialer opens a serial stream to a paired device. The host platform
// supplies it, there is no portable bluetooth stack.
type BleDialer func(ctx context.Context, address string) (io.WriteCloser, error)

// RegisterBle installs the ble transport backed by dial.
func RegisterBle(dial BleDialer) func() {
	return Register(TagBle, func() Printer {
		return &streamPrinter{
			open: func(ctx context.Context, sel Selection) (io.WriteCloser, error) {
				conn, err := dial(ctx, sel.Address)
				if err != nil {
					return nil, fmt.Errorf("ble printer %s: %w", sel.Address, err)
				}
				return conn, nil
			},
		}
	})
}
