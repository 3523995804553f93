package supplier

import (
	"fmt"
	"sort"

	"github.com/verastro/roombroker/internal/domain"
)

// Manager is the startup-built registry of supplier connectors. The supplier
// set is fixed at deploy time, so asking for an unregistered supplier is a
// programming error and panics rather than returning an error to retry.
type Manager struct {
	connectors map[domain.Supplier]Connector
}

func NewManager(connectors map[domain.Supplier]Connector) *Manager {
	return &Manager{connectors: connectors}
}

func (m *Manager) Get(s domain.Supplier) Connector {
	conn, ok := m.connectors[s]
	if !ok {
		panic(fmt.Sprintf("supplier: no connector registered for %q", s))
	}
	return conn
}

// Suppliers returns the registered suppliers in a stable order for
// deterministic fan-out.
func (m *Manager) Suppliers() []domain.Supplier {
	out := make([]domain.Supplier, 0, len(m.connectors))
	for s := range m.connectors {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
