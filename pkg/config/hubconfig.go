package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// HubExpect is what one hub is expected to have installed.
type HubExpect struct {
	DOR     int      `json:"dor" yaml:"dor"`
	Quad    int      `json:"quad" yaml:"quad"`
	Comm    int      `json:"comm" yaml:"comm"`
	Iceboot int      `json:"iceboot" yaml:"iceboot"`
	Waive   []string `json:"waive" yaml:"waive"`
}

// HubConfig maps cluster to hub name to expectations.
type HubConfig map[string]map[string]HubExpect

// LoadHubConfig reads a hub configuration file (JSON or YAML).
func LoadHubConfig(path string) (HubConfig, error) {
	hc := HubConfig{}
	if err := LoadFile(path, &hc); err != nil {
		return nil, err
	}

	return hc, nil
}

// Hub returns the expectations for hub in cluster.
func (hc HubConfig) Hub(hub, cluster string) (HubExpect, error) {
	h, ok := hc[cluster][hub]
	if !ok {
		return HubExpect{}, fmt.Errorf("%w: %s-%s", ErrUnknownHub, cluster, hub)
	}

	return h, nil
}

// IsWaived reports whether power check failures on the pair are waived.
func (hc HubConfig) IsWaived(hub, cluster string, card, pair int) bool {
	h, ok := hc[cluster][hub]
	if !ok {
		return false
	}

	return slices.Contains(h.Waive, fmt.Sprintf("c%dp%d", card, pair))
}

// Hubs lists the hubs of a cluster, sorted.
func (hc HubConfig) Hubs(cluster string) []string {
	hubs := make([]string, 0, len(hc[cluster]))
	for h := range hc[cluster] {
		hubs = append(hubs, h)
	}

	sort.Strings(hubs)

	return hubs
}

// ParseLegacyHubConfig converts the old testdaq hubConfig.dat table,
// "host nDOR nQuad nComm nIceboot [waivers]", into a HubConfig. Hosts are
// named "<cluster>-<hub>" for the sps and spts clusters; waivers are a ';'
// separated list of "c<card>p<pair>-<comment>" entries.
func ParseLegacyHubConfig(r io.Reader) (HubConfig, error) {
	hc := HubConfig{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		vals := strings.Fields(scanner.Text())
		if len(vals) != 5 && len(vals) != 6 {
			continue
		}

		if strings.HasPrefix(vals[0], "#") {
			continue
		}

		nums := make([]int, 4)

		for i := range nums {
			n, err := strconv.Atoi(vals[i+1])
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, vals[0], err)
			}

			nums[i] = n
		}

		cluster, hub, ok := strings.Cut(vals[0], "-")
		if !ok || (cluster != "sps" && cluster != "spts") {
			cluster, hub = "other", vals[0]
		}

		waive := []string{}

		if len(vals) == 6 {
			for _, w := range strings.Split(vals[5], ";") {
				if w == "" {
					continue
				}

				id, _, _ := strings.Cut(w, "-")
				waive = append(waive, id)
			}
		}

		if hc[cluster] == nil {
			hc[cluster] = map[string]HubExpect{}
		}

		hc[cluster][hub] = HubExpect{DOR: nums[0], Quad: nums[1], Comm: nums[2], Iceboot: nums[3], Waive: waive}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return hc, nil
}

// LoadLegacyHubConfig reads a hubConfig.dat file.
func LoadLegacyHubConfig(path string) (HubConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file '%s': %w", path, err)
	}
	defer f.Close()

	return ParseLegacyHubConfig(f)
}
