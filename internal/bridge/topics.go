package bridge

import "strings"

// Payloads published by the bridge
const (
	PayloadOn  = "ON"
	PayloadOff = "OFF"

	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Topic suffixes under <prefix>/<device>/
const (
	suffixSet   = "set"
	suffixState = "state"
	suffixError = "error"
)

// CommandFilter is the subscription filter matching every device's set topic
func CommandFilter(prefix string) string {
	return prefix + "/+/" + suffixSet
}

// StateTopic is where the last delivered state of a device is retained
func StateTopic(prefix, device string) string {
	return prefix + "/" + device + "/" + suffixState
}

// ErrorTopic receives a message for every failed command
func ErrorTopic(prefix, device string) string {
	return prefix + "/" + device + "/" + suffixError
}

// StatusTopic carries the bridge's online/offline status
func StatusTopic(prefix string) string {
	return prefix + "/status"
}

// parseCommandTopic extracts the device name from <prefix>/<device>/set
func parseCommandTopic(prefix, topic string) (string, bool) {
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return "", false
	}
	name, ok := strings.CutSuffix(rest, "/"+suffixSet)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
