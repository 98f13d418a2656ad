package chathub

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Registration is the handle for one live connection. A registration starts
// unbound; its role is fixed by the first successful bind and never changes. It
// is either visitor-bound (carries a conversation id) or admin, never both.
type Registration struct {
	id       string
	client   Client
	registry *Registry

	// Role fields, guarded by registry.mu.
	bound          bool
	isAdmin        bool
	conversationID uint
}

// GetID returns the connection identity.
func (reg *Registration) GetID() string { return reg.id }

// Bound reports whether the connection has declared a role.
func (reg *Registration) Bound() bool {
	reg.registry.mu.RLock()
	defer reg.registry.mu.RUnlock()
	return reg.bound
}

// IsAdmin reports whether the connection is bound as admin.
func (reg *Registration) IsAdmin() bool {
	reg.registry.mu.RLock()
	defer reg.registry.mu.RUnlock()
	return reg.bound && reg.isAdmin
}

// Conversation returns the bound conversation id. ok is false for admin and
// unbound connections.
func (reg *Registration) Conversation() (id uint, ok bool) {
	reg.registry.mu.RLock()
	defer reg.registry.mu.RUnlock()
	if !reg.bound || reg.isAdmin {
		return 0, false
	}
	return reg.conversationID, true
}

// Release removes the registration from its registry. Idempotent; the usual
// caller is the read pump's deferred cleanup.
func (reg *Registration) Release() {
	reg.registry.Unregister(reg)
}

// Registry tracks live connections and their roles. It is an owned instance
// passed to the hub and bridge at construction time, so tests can run several
// isolated registries side by side. Registry state is process-local and empty at
// process start; nothing here survives a restart.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Registration
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Registration)}
}

// Register adds a connection with no role yet bound and returns its handle.
func (r *Registry) Register(c Client) *Registration {
	reg := &Registration{
		id:       uuid.NewString(),
		client:   c,
		registry: r,
	}
	r.mu.Lock()
	r.conns[reg.id] = reg
	r.mu.Unlock()
	return reg
}

// BindVisitor binds the connection to a conversation. Rebinding an already
// bound connection is not permitted: the attempt is logged and ignored.
func (r *Registry) BindVisitor(reg *Registration, conversationID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.bound {
		log.Printf("WARNING: connection %s already bound, ignoring visitor bind to conversation %d", reg.id, conversationID)
		return
	}
	reg.bound = true
	reg.conversationID = conversationID
}

// BindAdmin marks the connection as admin. Same non-rebinding rule as BindVisitor.
func (r *Registry) BindAdmin(reg *Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if reg.bound {
		log.Printf("WARNING: connection %s already bound, ignoring admin bind", reg.id)
		return
	}
	reg.bound = true
	reg.isAdmin = true
}

// Unregister removes the connection. Idempotent: unregistering an already
// removed handle is a no-op.
func (r *Registry) Unregister(reg *Registration) {
	r.mu.Lock()
	delete(r.conns, reg.id)
	r.mu.Unlock()
}

// Matching returns the clients entitled to messages of the given conversation:
// every connection bound to it plus every admin connection. Each live connection
// appears at most once regardless of how many sub-conditions it satisfies.
func (r *Registry) Matching(conversationID uint) []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	targets := make([]Client, 0, len(r.conns))
	for _, reg := range r.conns {
		if !reg.bound {
			continue
		}
		if reg.isAdmin || reg.conversationID == conversationID {
			targets = append(targets, reg.client)
		}
	}
	return targets
}

// AdminCount returns the number of live admin connections.
func (r *Registry) AdminCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, reg := range r.conns {
		if reg.bound && reg.isAdmin {
			n++
		}
	}
	return n
}

// Len returns the number of live connections, bound or not.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
