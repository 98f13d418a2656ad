package chathub

import (
	"log"
)

// Bridge maps WebSocket declarations onto conversation state. A connection is
// unbound until its first join declaration; the bridge classifies it as visitor
// (resolving the session token to a conversation) or admin (capability verified
// upstream by the transport layer) and routes subsequent message events.
type Bridge struct {
	Service  *Service
	Registry *Registry
}

// NewBridge constructs a bridge over the shared service and registry.
func NewBridge(service *Service, registry *Registry) *Bridge {
	return &Bridge{Service: service, Registry: registry}
}

// OnJoin handles a connection's join declaration. A connection may declare at
// most once; later declarations are ignored. isAdmin must already reflect the
// transport layer's capability check — the bridge trusts it as given.
func (b *Bridge) OnJoin(reg *Registration, sessionToken string, isAdmin bool) {
	if reg.Bound() {
		log.Printf("WARNING: connection %s sent a second join, ignoring", reg.GetID())
		return
	}

	if isAdmin {
		b.Registry.BindAdmin(reg)
		return
	}

	if sessionToken == "" {
		log.Printf("WARNING: connection %s joined without a session token, staying unbound", reg.GetID())
		return
	}

	conv, err := b.Service.ResolveOrCreate(sessionToken)
	if err != nil {
		log.Printf("ERROR: Failed to resolve conversation for connection %s: %v", reg.GetID(), err)
		return
	}
	b.Registry.BindVisitor(reg, conv.ID)
}

// OnMessage handles a message event. Events from unbound connections are
// dropped. A visitor connection appends to its bound conversation; an admin
// connection must name a target conversation explicitly.
func (b *Bridge) OnMessage(reg *Registration, content string, targetConversationID uint) {
	if !reg.Bound() {
		log.Printf("WARNING: dropping message from unbound connection %s: %v", reg.GetID(), ErrNotBound)
		return
	}

	if reg.IsAdmin() {
		if targetConversationID == 0 {
			log.Printf("WARNING: dropping admin message from connection %s: %v", reg.GetID(), ErrMissingTarget)
			return
		}
		if _, err := b.Service.SendAdminReply(targetConversationID, content); err != nil {
			log.Printf("ERROR: Failed to append admin message from connection %s: %v", reg.GetID(), err)
		}
		return
	}

	conversationID, _ := reg.Conversation()
	if _, err := b.Service.Append(conversationID, content, false); err != nil {
		log.Printf("ERROR: Failed to append message from connection %s: %v", reg.GetID(), err)
	}
}
