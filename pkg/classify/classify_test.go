// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaEdge          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0"
	uaChromeMac     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaChromium      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chromium/119.0 Chrome/119.0 Safari/537.36"
	uaOperaDesktop  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 OPR/106.0.0.0"
	uaOperaMini     = "Opera/9.80 (J2ME/MIDP; Opera Mini/9.80; U; en) Presto/2.5.25 Version/10.54"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaFirefoxBSD    = "Mozilla/5.0 (X11; FreeBSD amd64; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaSafariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaSafariIPad    = "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	uaIPod          = "Mozilla/5.0 (iPod touch; CPU iPhone OS 12_5 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/12.1.2 Mobile/15E148 Safari/604.1"
	uaIE11          = "Mozilla/5.0 (Windows NT 10.0; Trident/7.0; rv:11.0) like Gecko"
	uaUCBrowser     = "UCWEB/2.0 (Java; U; MIDP-2.0; en-US; Nokia) U2/1.0.0 UCBrowser/9.4.1.377 U2/1.0.0 Mobile"
	uaAndroidPhone  = "Mozilla/5.0 (Linux; Android 9; SM-G960F Build/PPR1.180610.011; wv) AppleWebKit/537.36 (KHTML, like Gecko) Version/4.0 Chrome/74.0.3729.157 Mobile Safari/537.36"
	uaAndroidTablet = "Mozilla/5.0 (Linux; Android 13; SM-X700 Build/TP1A.220624.014) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaAndroidBare   = "Mozilla/5.0 (Linux; Android 10; K) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaRoku          = "Roku/DVP-9.10 (519.10E04111A)"
	uaPlayStation   = "Mozilla/5.0 (PlayStation; PlayStation 5/2.26) AppleWebKit/605.1.15 (KHTML, like Gecko)"
	uaCurl          = "curl/8.4.0"
)

func TestBrowser(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"edge beats chrome and safari", uaEdge, "Edge"},
		{"chrome beats safari", uaChromeMac, "Chrome"},
		{"chromium", uaChromium, "Chromium"},
		{"chromium without chrome token", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chromium/119.0 Safari/537.36", "Chromium"},
		{"chromium-based opera is chrome family", uaOperaDesktop, "Chrome"},
		{"firefox", uaFirefoxLinux, "Firefox"},
		{"safari", uaSafariIPhone, "Safari"},
		{"opera mini", uaOperaMini, "Opera"},
		{"internet explorer", uaIE11, "Internet Explorer"},
		{"uc browser", uaUCBrowser, "UC Browser"},
		{"samsung without chrome token", "SamsungBrowser/23.0", "Samsung Browser"},
		{"vivaldi without chrome token", "Vivaldi/6.5", "Vivaldi"},
		{"brave", "Mozilla/5.0 Chrome/120.0 Brave/120", "Brave"},
		{"case insensitive", "EDG/1 CHROME/2", "Edge"},
		{"cli tool", uaCurl, Unknown},
		{"empty", "", Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Browser(tt.ua))
		})
	}
}

func TestDeviceType(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"ipad", uaSafariIPad, "iPad"},
		{"android phone", uaAndroidPhone, "Android Phone"},
		{"iphone", uaSafariIPhone, "iPhone"},
		{"generic mobile", uaUCBrowser, "Mobile"},
		{"android tablet", uaAndroidTablet, "Tablet"},
		{"windows", uaEdge, "Windows PC"},
		{"mac", uaChromeMac, "Mac"},
		{"linux", uaFirefoxLinux, "Linux PC"},
		{"bsd", uaFirefoxBSD, "Unix PC"},
		{"tv", uaRoku, "TV"},
		{"console", uaPlayStation, "Game Console"},
		{"unknown", uaCurl, Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeviceType(tt.ua))
		})
	}
}

func TestDeviceName(t *testing.T) {
	host := HostNamerFunc(func() string { return "Stage Left MacBook" })

	tests := []struct {
		name  string
		ua    string
		hosts HostNamer
		want  string
	}{
		{"iphone", uaSafariIPhone, nil, "iPhone"},
		{"ipad", uaSafariIPad, nil, "iPad"},
		{"ipod", uaIPod, nil, "iPod"},
		{"android build model", uaAndroidPhone, nil, "SM-G960F"},
		{"android tablet model", uaAndroidTablet, nil, "SM-X700"},
		{"android trims mobile", "Mozilla/5.0 (Linux; U; Android 4.0.3; ko-kr; LG-L160L Mobile Build/IML74K)", nil, "LG-L160L"},
		{"android trims tablet", "Mozilla/5.0 (Linux; Android 4.4; Nexus 7 Tablet Build/KOT49H)", nil, "Nexus 7"},
		{"android without build", uaAndroidBare, nil, "Android Device"},
		{"android empty model", "Mozilla/5.0 (Linux; Android 4.4; Build/KOT49H)", nil, "Android Device"},
		{"mac uses host name", uaChromeMac, host, "Stage Left MacBook"},
		{"mac without host namer", uaChromeMac, nil, "Mac"},
		{"mac with empty host name", uaChromeMac, HostNamerFunc(func() string { return "" }), "Mac"},
		{"windows", uaEdge, host, "Windows PC"},
		{"linux", uaFirefoxLinux, host, "Linux PC"},
		{"unknown", uaCurl, host, UnknownDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeviceName(tt.ua, tt.hosts))
		})
	}
}

func TestConnectionType(t *testing.T) {
	tests := map[string]string{
		"ready":                       "Active",
		"waiting":                     "Establishing",
		"waiting(POSIXErrorCode: 61)": "Establishing",
		"failed":                      "Dead",
		"cancelled":                   "Dead",
		"preparing":                   Unknown,
		"":                            Unknown,
	}

	for state, want := range tests {
		assert.Equal(t, want, ConnectionType(state), "state %q", state)
	}
}

func TestIPFromEndpoint(t *testing.T) {
	tests := map[string]string{
		"192.168.1.20:52344":    "192.168.1.20",
		"tcp 10.0.0.5:8080":     "10.0.0.5",
		"en0 tcp 10.0.0.5:8080": "10.0.0.5",
		"  172.16.0.9:1  ":      "172.16.0.9",
		"[::1]:8080":            "::1",
		"tcp [fe80::1]:80":      "fe80::1",
		"booth-monitor":         "booth-monitor",
		"":                      Unknown,
		":8080":                 Unknown,
	}

	for endpoint, want := range tests {
		assert.Equal(t, want, IPFromEndpoint(endpoint), "endpoint %q", endpoint)
	}
}

func TestInterfaceLabel(t *testing.T) {
	tests := map[string]string{
		"lo":        "Loopback",
		"lo0":       "Loopback",
		"en0":       "Wi-Fi",
		"wlan0":     "Wi-Fi",
		"wlp2s0":    "Wi-Fi",
		"en1":       "Ethernet",
		"eth0":      "Ethernet",
		"enp3s0":    "Ethernet",
		"utun3":     "VPN",
		"wg0":       "VPN",
		"awdl0":     "AirDrop",
		"bridge100": "Bridge",
		"docker0":   "Bridge",
		"xyz":       Unknown,
		"":          Unknown,
	}

	for name, want := range tests {
		assert.Equal(t, want, InterfaceLabel(name), "interface %q", name)
	}
}

func TestSessionKey(t *testing.T) {
	// Two polls from one tablet arrive on different ephemeral ports.
	first := SessionKey(IPFromEndpoint("192.168.1.20:52344"), uaSafariIPad)
	second := SessionKey(IPFromEndpoint("192.168.1.20:52990"), uaSafariIPad)
	assert.Equal(t, first, second)

	other := SessionKey(IPFromEndpoint("192.168.1.21:52344"), uaSafariIPad)
	assert.NotEqual(t, first, other)

	assert.NotEqual(t, first, SessionKey("192.168.1.20", uaSafariIPhone))
}

func TestSystemInterfaces(t *testing.T) {
	var s SystemInterfaces

	assert.Equal(t, "", s.InterfaceName("not-an-ip"))
	assert.Equal(t, "", s.InterfaceName("not-an-ip"), "cached lookups must be stable")

	name := s.InterfaceName("127.0.0.1")
	if name == "" {
		t.Skip("no interface carries 127.0.0.1 in this environment")
	}
	assert.Equal(t, "Loopback", InterfaceLabel(name))
}

func TestOSHostNamer(t *testing.T) {
	var h OSHostNamer
	first := h.DeviceName()
	assert.Equal(t, first, h.DeviceName())
	assert.False(t, strings.HasSuffix(first, ".local"))
}
