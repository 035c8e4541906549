package realtime

import "context"

// Identity is the public identity embedded in a signed channel authorization.
type Identity struct {
	UserID   string
	Username string
}

// Notifier delivers an event to a named channel. Delivery is best effort; the
// message store, not the transport, is the durability boundary.
type Notifier interface {
	Trigger(ctx context.Context, channel, event string, payload any) error
}

// ChannelAuthorizer signs a private-channel subscription handshake. params is
// the raw urlencoded handshake body (socket_id and channel_name) and the
// returned blob goes back to the client verbatim.
type ChannelAuthorizer interface {
	AuthorizeChannel(params []byte, identity Identity) ([]byte, error)
}
