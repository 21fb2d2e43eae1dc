package urls

// Documentation URLs shown in CLI output and error hints.
// All URLs point to the project repository at https://github.com/muurk/wemo

// Repository is the project home page.
const Repository = "https://github.com/muurk/wemo"

// DiscoveryTroubleshooting covers multicast, firewall and VLAN issues
// that stop SSDP or mDNS discovery from finding devices.
const DiscoveryTroubleshooting = Repository + "/blob/main/docs/troubleshooting.md#discovery"

// ControlTroubleshooting covers devices that are found but do not
// respond to on/off commands.
const ControlTroubleshooting = Repository + "/blob/main/docs/troubleshooting.md#control"

// MQTTBridge documents the topic layout used by "wemo bridge".
const MQTTBridge = Repository + "/blob/main/docs/mqtt.md"

// HTTPAPI documents the REST and websocket endpoints of "wemo serve".
const HTTPAPI = Repository + "/blob/main/docs/api.md"
