package entities

// Capability is a named switch gating a class of assistant actions.
type Capability string

const (
	CapabilityFS             Capability = "fs"
	CapabilityProcessControl Capability = "process_control"
	CapabilityWindowControl  Capability = "window_control"
	CapabilityBrowserControl Capability = "browser_control"
	CapabilityRunShell       Capability = "run_shell"
	CapabilityNetwork        Capability = "network"
	CapabilityClipboard      Capability = "clipboard"
	CapabilityScreenshot     Capability = "screenshot"
	CapabilityMicrophone     Capability = "microphone"
	CapabilitySystemInfo     Capability = "system_info"
)

// AllCapabilities enumerates every known capability name.
// The registry rejects anything outside this set.
var AllCapabilities = []Capability{
	CapabilityFS,
	CapabilityProcessControl,
	CapabilityWindowControl,
	CapabilityBrowserControl,
	CapabilityRunShell,
	CapabilityNetwork,
	CapabilityClipboard,
	CapabilityScreenshot,
	CapabilityMicrophone,
	CapabilitySystemInfo,
}

// DefaultCapabilities returns the startup capability map: everything
// disabled except the minimal safe set.
func DefaultCapabilities() map[Capability]bool {
	m := make(map[Capability]bool, len(AllCapabilities))
	for _, c := range AllCapabilities {
		m[c] = false
	}
	m[CapabilityWindowControl] = true
	m[CapabilityBrowserControl] = true
	m[CapabilityScreenshot] = true
	return m
}

// IsKnown reports whether c is a member of the enumerated capability set.
func (c Capability) IsKnown() bool {
	for _, known := range AllCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

var capabilityDescriptions = map[Capability]string{
	CapabilityFS:             "File system access - read, write, and modify files",
	CapabilityProcessControl: "Process management - view and control running processes",
	CapabilityWindowControl:  "Window and GUI control - focus windows, click, type",
	CapabilityBrowserControl: "Browser automation - open URLs, control web pages",
	CapabilityRunShell:       "Shell command execution - run system commands",
	CapabilityNetwork:        "Network access - make web requests",
	CapabilityClipboard:      "Clipboard access - read and write clipboard content",
	CapabilityScreenshot:     "Screen capture - take screenshots",
	CapabilityMicrophone:     "Voice input - record and process audio",
	CapabilitySystemInfo:     "System information - CPU, memory, disk usage",
}

// Description returns a human-readable explanation of what the capability
// allows, for display in consent prompts and settings UIs.
func (c Capability) Description() string {
	if d, ok := capabilityDescriptions[c]; ok {
		return d
	}
	return "Unknown capability"
}
