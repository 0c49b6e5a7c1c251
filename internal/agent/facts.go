package agent

import (
	"net"
	"runtime"
)

func osType() string {
	return runtime.GOOS
}

// CollectFacts gathers the host variables reported at enrollment. Everything
// here is best-effort: a machine with no routable address still enrolls.
func CollectFacts() map[string]any {
	facts := map[string]any{
		"os":   runtime.GOOS,
		"arch": runtime.GOARCH,
	}
	if ip := primaryIPv4(); ip != "" {
		facts["ansible_host"] = ip
	}
	return facts
}

// primaryIPv4 returns the first global unicast IPv4 address, or "".
func primaryIPv4() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ""
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		return ip.String()
	}
	return ""
}
