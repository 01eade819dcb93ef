package config

import (
	"os"
	"strings"
)

const (
	ClusterSPS   = "sps"
	ClusterSPTS  = "spts"
	ClusterOther = "other"
)

// HostCluster splits a fully qualified hostname into the short host name
// and its cluster: sps, spts (sptsn counts as spts) or other.
func HostCluster(hostname string) (host, cluster string) {
	parts := strings.Split(hostname, ".")
	host = strings.TrimRight(parts[0], " \t\r\n")

	if len(parts) < 2 {
		return host, ClusterOther
	}

	switch parts[1] {
	case ClusterSPS, ClusterSPTS:
		return host, parts[1]
	case "sptsn":
		return host, ClusterSPTS
	default:
		return host, ClusterOther
	}
}

// LocalHostCluster applies HostCluster to this machine's hostname.
func LocalHostCluster() (host, cluster string, err error) {
	name, err := os.Hostname()
	if err != nil {
		return "", "", err
	}

	host, cluster = HostCluster(name)

	return host, cluster, nil
}
