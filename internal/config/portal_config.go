package config

import (
	"strings"
)

const defaultPortalHost = "127.0.0.1"

type PortalConfig interface {
	GetPortalAddr() string
	GetMetricsEnabled() bool
}

type Portal struct{}

var _ PortalConfig = Portal{}

// GetPortalAddr is the listen address. The portal acts with the stored session for
// every visitor, so a bare port binds loopback only; ":port" listens on all interfaces.
func (Portal) GetPortalAddr() string {
	addr := GetEnv("PORTAL_ADDR", "8080")
	if !strings.Contains(addr, ":") {
		addr = defaultPortalHost + ":" + addr
	}
	return addr
}

func (Portal) GetMetricsEnabled() bool {
	return GetBoolEnv("METRICS_ENABLED", true)
}
