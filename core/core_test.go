package core

import (
	"sync"
)

type testLogger struct{}

func (l testLogger) Debug(string, ...any) {}
func (l testLogger) Info(string, ...any)  {}
func (l testLogger) Warn(string, ...any)  {}
func (l testLogger) Error(string, ...any) {}

type fakeTransport struct {
	mu   sync.Mutex
	sent []Message
}

func (f *fakeTransport) Send(msg Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
}

type fakeDirectory struct {
	descs []ServiceDescriptor
}

func (d *fakeDirectory) Register(desc ServiceDescriptor) error {
	d.descs = append(d.descs, desc)
	return nil
}

func (d *fakeDirectory) Deregister(owner Address) int {
	kept := d.descs[:0]
	removed := 0
	for _, desc := range d.descs {
		if desc.Owner == owner {
			removed++
			continue
		}
		kept = append(kept, desc)
	}
	d.descs = kept
	return removed
}

func (d *fakeDirectory) Lookup(serviceType string) []ServiceDescriptor {
	var out []ServiceDescriptor
	for _, desc := range d.descs {
		if desc.Type == serviceType {
			out = append(out, desc)
		}
	}
	return out
}

func (d *fakeDirectory) Services(owner Address) []ServiceDescriptor {
	var out []ServiceDescriptor
	for _, desc := range d.descs {
		if desc.Owner == owner {
			out = append(out, desc)
		}
	}
	return out
}
