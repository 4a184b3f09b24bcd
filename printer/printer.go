package printer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownTransport = errors.New("unknown printer transport")
	ErrNotConnected     = errors.New("printer not connected")
	// ErrPartialWrite means part of a ticket reached the device. Resending
	// would print a duplicate, so it is never retried.
	ErrPartialWrite = errors.New("ticket partially printed")
)

// Selection picks one device of a transport. Address is a host for net, a
// device path for usb and a hardware address for ble.
type Selection struct {
	Tag     string `json:"tag" yaml:"tag"`
	Address string `json:"address" yaml:"address"`
	Port    int    `json:"port" yaml:"port"`
}

type Printer interface {
	Connect(ctx context.Context, sel Selection) error
	Print(ctx context.Context, text string) error
	Close() error
}

type Factory func() Printer

var (
	registryLock sync.Mutex
	registry     = map[string]Factory{}
)

// Register adds a transport under tag and returns its unregister func.
func Register(tag string, factory Factory) func() {
	registryLock.Lock()
	defer registryLock.Unlock()

	registry[tag] = factory
	return func() {
		registryLock.Lock()
		defer registryLock.Unlock()
		delete(registry, tag)
	}
}

func New(tag string) (Printer, error) {
	registryLock.Lock()
	factory, ok := registry[tag]
	registryLock.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, tag)
	}

	return factory(), nil
}

func Tags() []string {
	registryLock.Lock()
	defer registryLock.Unlock()

	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Open builds the printer for sel.Tag and connects it.
func Open(ctx context.Context, sel Selection) (Printer, error) {
	prn, err := New(sel.Tag)
	if err != nil {
		return nil, err
	}

	err = prn.Connect(ctx, sel)
	if err != nil {
		return nil, err
	}

	return prn, nil
}

func init() {
	Register(TagNet, NewNetPrinter)
	Register(TagUsb, NewUsbPrinter)
}
