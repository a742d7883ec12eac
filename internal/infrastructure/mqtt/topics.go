package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the dacbroker MQTT namespace.
//
// Feature topics use the flat scheme: dacbroker/{category}/dac/{feature}
const (
	// TopicPrefix is the base for all dacbroker topics.
	TopicPrefix = "dacbroker"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "dacbroker/system"
)

// Topics provides builders for dacbroker MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
type Topics struct{}

// FeatureState returns the retained-state topic for a feature.
//
// Example: dacbroker/state/dac/avc_volume
func (Topics) FeatureState(feature string) string {
	return fmt.Sprintf("%s/state/dac/%s", TopicPrefix, feature)
}

// FeatureCommand returns the command topic for a feature.
//
// Example: dacbroker/command/dac/hifi_mode
func (Topics) FeatureCommand(feature string) string {
	return fmt.Sprintf("%s/command/dac/%s", TopicPrefix, feature)
}

// AllFeatureCommands returns the wildcard pattern matching every feature
// command topic.
func (Topics) AllFeatureCommands() string {
	return TopicPrefix + "/command/dac/+"
}

// SystemStatus returns the topic for broker online/offline status.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// FeatureFromTopic extracts the feature segment from a state or command
// topic. Returns ("", false) when the topic does not match the scheme.
func FeatureFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicPrefix || parts[2] != "dac" {
		return "", false
	}
	if parts[1] != "state" && parts[1] != "command" {
		return "", false
	}
	if parts[3] == "" {
		return "", false
	}
	return parts[3], true
}
