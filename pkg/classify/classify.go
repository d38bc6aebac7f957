// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"strings"
)

// Unknown is the fallback label of every classifier.
const Unknown = "Unknown"

// rule is one entry of an ordered classification table. Tables are evaluated
// top to bottom and the first matching rule wins.
type rule struct {
	match func(ua string) bool
	label string
}

// has returns a predicate that matches when any token occurs in the lower-cased input.
func has(tokens ...string) func(string) bool {
	return func(s string) bool {
		for _, t := range tokens {
			if strings.Contains(s, t) {
				return true
			}
		}
		return false
	}
}

// prefix returns a predicate that matches when the lower-cased input starts with any prefix.
func prefix(prefixes ...string) func(string) bool {
	return func(s string) bool {
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}

func equals(values ...string) func(string) bool {
	return func(s string) bool {
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}

func all(preds ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, p := range preds {
			if !p(s) {
				return false
			}
		}
		return true
	}
}

func either(preds ...func(string) bool) func(string) bool {
	return func(s string) bool {
		for _, p := range preds {
			if p(s) {
				return true
			}
		}
		return false
	}
}

func not(pred func(string) bool) func(string) bool {
	return func(s string) bool { return !pred(s) }
}

func evaluate(table []rule, input string) string {
	s := strings.ToLower(input)
	for _, r := range table {
		if r.match(s) {
			return r.label
		}
	}
	return Unknown
}

// Browsers embed competitor tokens in their user agents ("Edg" agents also say
// "Chrome" and "Safari", Chrome says "Safari"), so this order is significant.
var browserRules = []rule{
	{has("edg"), "Edge"},
	{has("chromium"), "Chromium"},
	{all(has("chrome"), has("brave")), "Brave"},
	{has("chrome"), "Chrome"},
	{has("firefox"), "Firefox"},
	{all(has("safari"), not(has("chrome"))), "Safari"},
	{has("opera", "opr"), "Opera"},
	{has("msie", "trident"), "Internet Explorer"},
	{has("vivaldi"), "Vivaldi"},
	{has("ucbrowser"), "UC Browser"},
	{has("samsungbrowser"), "Samsung Browser"},
}

// Browser classifies the browser family of a user agent.
func Browser(userAgent string) string {
	return evaluate(browserRules, userAgent)
}

var deviceTypeRules = []rule{
	{has("ipad"), "iPad"},
	{all(has("android"), has("mobile")), "Android Phone"},
	{has("iphone"), "iPhone"},
	{has("mobile"), "Mobile"},
	{has("android", "tablet"), "Tablet"},
	{has("windows"), "Windows PC"},
	{has("macintosh", "mac os"), "Mac"},
	{has("linux"), "Linux PC"},
	{has("x11", "unix", "bsd"), "Unix PC"},
	{has("smart-tv", "smarttv", "appletv", "googletv", "hbbtv", "tizen", "webos", "roku"), "TV"},
	{has("playstation", "xbox", "nintendo"), "Game Console"},
}

// DeviceType classifies the kind of device a user agent runs on.
func DeviceType(userAgent string) string {
	return evaluate(deviceTypeRules, userAgent)
}

var connectionTypeRules = []rule{
	{has("ready"), "Active"},
	{has("waiting"), "Establishing"},
	{has("failed", "cancelled"), "Dead"},
}

// ConnectionType maps a connection protocol state to a display label.
func ConnectionType(state string) string {
	return evaluate(connectionTypeRules, state)
}

// On macOS en0 is the built-in Wi-Fi; other enN are wired adapters.
var interfaceRules = []rule{
	{prefix("lo"), "Loopback"},
	{prefix("awdl", "llw"), "AirDrop"},
	{prefix("utun", "tun", "tap", "wg", "ppp", "ipsec"), "VPN"},
	{prefix("bridge", "br-", "virbr", "docker", "veth"), "Bridge"},
	{either(equals("en0"), prefix("wl", "wifi")), "Wi-Fi"},
	{prefix("en", "eth"), "Ethernet"},
}

// InterfaceLabel maps an OS network interface name (en0, eth1, lo0...) to a label.
func InterfaceLabel(name string) string {
	if name == "" {
		return Unknown
	}
	return evaluate(interfaceRules, name)
}

// IPFromEndpoint extracts the client address from an endpoint description such
// as "203.0.113.7:51234" or "tcp 203.0.113.7:51234". The address is the text
// before the first colon; a leading label separated by spaces is dropped.
//
// A bracketed IPv6 endpoint ("[::1]:8080") yields the bracketed host.
func IPFromEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if i := strings.LastIndex(endpoint, " "); i >= 0 && strings.HasPrefix(endpoint[i+1:], "[") {
		endpoint = endpoint[i+1:]
	}
	if strings.HasPrefix(endpoint, "[") {
		if end := strings.Index(endpoint, "]"); end > 0 {
			return endpoint[1:end]
		}
	}

	head, _, _ := strings.Cut(endpoint, ":")
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return Unknown
	}
	return fields[len(fields)-1]
}

// SessionKey identifies one physical viewing device across many short-lived
// polling connections.
func SessionKey(ip, userAgent string) string {
	return ip + userAgent
}
