package realtime

import (
	"context"

	pusher "github.com/pusher/pusher-http-go/v5"
)

// PusherNotifier fans events out through the hosted Pusher Channels API and
// signs subscription handshakes for private channels.
type PusherNotifier struct {
	client pusher.Client
}

// NewPusherNotifier builds a PusherNotifier from app credentials.
func NewPusherNotifier(appID, key, secret, cluster string) *PusherNotifier {
	return &PusherNotifier{
		client: pusher.Client{
			AppID:   appID,
			Key:     key,
			Secret:  secret,
			Cluster: cluster,
			Secure:  true,
		},
	}
}

// Trigger publishes an event to a channel.
func (n *PusherNotifier) Trigger(ctx context.Context, channel, event string, payload any) error {
	return n.client.Trigger(channel, event, payload)
}

// AuthorizeChannel signs the handshake with the subscriber's public identity
// embedded, so peers on the channel can resolve who joined.
func (n *PusherNotifier) AuthorizeChannel(params []byte, identity Identity) ([]byte, error) {
	member := pusher.MemberData{
		UserID:   identity.UserID,
		UserInfo: map[string]string{"username": identity.Username},
	}
	return n.client.AuthorizePresenceChannel(params, member)
}

var (
	_ Notifier          = (*PusherNotifier)(nil)
	_ ChannelAuthorizer = (*PusherNotifier)(nil)
)
