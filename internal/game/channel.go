package game

import (
	"encoding/json"
	"strings"
)

// Channel identifies one of the available communication mediums.
type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelSay   Channel = "say"
	ChannelEmote Channel = "emote"
	ChannelTell  Channel = "tell"
)

var allChannels = []Channel{ChannelChat, ChannelSay, ChannelEmote, ChannelTell}

var channelLookup = map[string]Channel{
	"chat":  ChannelChat,
	"say":   ChannelSay,
	"emote": ChannelEmote,
	"tell":  ChannelTell,
}

var baseChannelSettings = map[Channel]bool{
	ChannelChat:  true,
	ChannelSay:   true,
	ChannelEmote: true,
	ChannelTell:  true,
}

// AllChannels returns the set of available chat channels.
func AllChannels() []Channel {
	out := make([]Channel, len(allChannels))
	copy(out, allChannels)
	return out
}

// ChannelFromString resolves a textual channel name into the canonical identifier.
func ChannelFromString(name string) (Channel, bool) {
	channel, ok := channelLookup[strings.ToLower(strings.TrimSpace(name))]
	return channel, ok
}

// DefaultChannelSettings exposes the default channel configuration.
// Every channel starts enabled.
func DefaultChannelSettings() map[Channel]bool {
	return cloneChannelSettings(baseChannelSettings)
}

func cloneChannelSettings(settings map[Channel]bool) map[Channel]bool {
	if settings == nil {
		return nil
	}
	clone := make(map[Channel]bool, len(settings))
	for channel, enabled := range settings {
		clone[channel] = enabled
	}
	return clone
}

// EncodeChannelSettings renders channel toggles as JSON for persistence.
func EncodeChannelSettings(settings map[Channel]bool) string {
	if len(settings) == 0 {
		return "{}"
	}
	encoded := make(map[string]bool, len(settings))
	for channel, enabled := range settings {
		encoded[string(channel)] = enabled
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// DecodeChannelSettings parses stored channel toggles. Unknown channel
// names are dropped; absent channels fall back to their defaults.
func DecodeChannelSettings(raw string) map[Channel]bool {
	settings := DefaultChannelSettings()
	if strings.TrimSpace(raw) == "" {
		return settings
	}
	decoded := make(map[string]bool)
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return settings
	}
	for name, enabled := range decoded {
		if channel, ok := channelLookup[name]; ok {
			settings[channel] = enabled
		}
	}
	return settings
}
