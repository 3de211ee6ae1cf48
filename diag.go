package formschema

import (
	"fmt"
	"sync"
)

// Diag carries non-fatal warnings produced while resolving a schema tree:
// unresolved references, reference cycles, depth limits and duplicate keys in
// loaded documents. Resolution itself never fails on schema data.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

// maxWarnings bounds the collector so a hot re-derivation loop cannot grow it
// without limit.
const maxWarnings = 256

type simpleDiag struct {
	mu   sync.Mutex
	ws   []string
	seen map[string]struct{}
}

func (d *simpleDiag) HasWarnings() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ws) > 0
}

func (d *simpleDiag) Warnings() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ws...)
}

// warnf records a warning once; repeated derivations of the same schema
// produce the same messages.
func (d *simpleDiag) warnf(f string, a ...any) {
	if d == nil {
		return
	}
	msg := fmt.Sprintf(f, a...)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.seen == nil {
		d.seen = map[string]struct{}{}
	}
	if _, ok := d.seen[msg]; ok || len(d.ws) >= maxWarnings {
		return
	}
	d.seen[msg] = struct{}{}
	d.ws = append(d.ws, msg)
}
