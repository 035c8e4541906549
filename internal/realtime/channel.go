package realtime

import (
	"fmt"
	"strconv"
	"strings"
)

// Wire contract shared with clients. Channel and event names must match the
// subscriber side byte for byte.
const (
	// PublicChannel carries all non-private traffic.
	PublicChannel = "chat-channel"

	// EventNewMessage is emitted for every stored message.
	EventNewMessage = "new-message"

	privateChannelPrefix = "private-chat-"
)

// PrivateChannelName returns the channel for a private conversation. The pair
// is sorted ascending so both participants derive the identical name no
// matter who initiates.
func PrivateChannelName(a, b int) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%s%d-%d", privateChannelPrefix, a, b)
}

// ParsePrivateChannel extracts the two participant ids from a private channel
// name. ok is false for anything that is not a well-formed private channel.
func ParsePrivateChannel(name string) (user1, user2 int, ok bool) {
	rest, found := strings.CutPrefix(name, privateChannelPrefix)
	if !found {
		return 0, 0, false
	}
	parts := strings.Split(rest, "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	user1, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	user2, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return user1, user2, true
}

// MessageChannel returns the delivery channel for a message: the canonical
// private channel when a receiver is set, otherwise the public broadcast.
func MessageChannel(senderID int, receiverID *int) string {
	if receiverID == nil {
		return PublicChannel
	}
	return PrivateChannelName(senderID, *receiverID)
}
