// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"net"
	"os"
	"strings"
	"sync"
)

// UnknownDevice is the DeviceName fallback.
const UnknownDevice = "Unknown Device"

// HostNamer reports the name of the machine the server runs on. Viewers on the
// operator's own Mac are labelled with it.
type HostNamer interface {
	DeviceName() string
}

// HostNamerFunc adapts a function to HostNamer.
type HostNamerFunc func() string

// DeviceName implements HostNamer.
func (f HostNamerFunc) DeviceName() string {
	return f()
}

// OSHostNamer asks the operating system for the host name once and caches it.
type OSHostNamer struct {
	once sync.Once
	name string
}

// DeviceName implements HostNamer.
func (h *OSHostNamer) DeviceName() string {
	h.once.Do(func() {
		name, err := os.Hostname()
		if err != nil {
			return
		}
		h.name = strings.TrimSuffix(name, ".local")
	})
	return h.name
}

// DeviceName derives a human-readable device name from a user agent.
// hosts may be nil, in which case Macs are labelled "Mac".
func DeviceName(userAgent string, hosts HostNamer) string {
	ua := strings.ToLower(userAgent)

	switch {
	// iPod touch agents also carry "iPhone OS".
	case strings.Contains(ua, "ipod"):
		return "iPod"
	case strings.Contains(ua, "ipad"):
		return "iPad"
	case strings.Contains(ua, "iphone"):
		return "iPhone"
	case strings.Contains(ua, "android"):
		return androidModel(userAgent)
	case strings.Contains(ua, "macintosh"), strings.Contains(ua, "mac os"):
		if hosts != nil {
			if name := hosts.DeviceName(); name != "" {
				return name
			}
		}
		return "Mac"
	case strings.Contains(ua, "windows"):
		return "Windows PC"
	case strings.Contains(ua, "linux"):
		return "Linux PC"
	default:
		return UnknownDevice
	}
}

// androidModel extracts the model from "...; Pixel 7 Build/TQ3A...)".
func androidModel(userAgent string) string {
	const fallback = "Android Device"

	end := strings.Index(userAgent, "Build/")
	if end < 0 {
		return fallback
	}

	head := userAgent[:end]
	if i := strings.LastIndexAny(head, ";("); i >= 0 {
		head = head[i+1:]
	}

	model := strings.TrimSpace(head)
	for _, suffix := range []string{"Mobile", "Tablet"} {
		model = strings.TrimSpace(strings.TrimSuffix(model, suffix))
	}
	if model == "" {
		return fallback
	}
	return model
}

// InterfaceResolver maps the server-side IP a client connected to onto the
// name of the local network interface carrying it.
type InterfaceResolver interface {
	InterfaceName(localIP string) string
}

// SystemInterfaces resolves interface names with net.Interfaces and caches the
// result per address.
type SystemInterfaces struct {
	cache sync.Map
}

// InterfaceName implements InterfaceResolver. It returns "" when no interface
// carries the address.
func (s *SystemInterfaces) InterfaceName(localIP string) string {
	if v, ok := s.cache.Load(localIP); ok {
		return v.(string)
	}

	name := lookupInterface(net.ParseIP(localIP))
	s.cache.Store(localIP, name)
	return name
}

func lookupInterface(ip net.IP) string {
	if ip == nil {
		return ""
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && ipnet.IP.Equal(ip) {
				return iface.Name
			}
		}
	}
	return ""
}
