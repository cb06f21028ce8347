// Package validation reports likely configuration problems and improvement
// opportunities found in a topology and its device configurations.
package validation

// Issue types.
const (
	TypeDuplicateIP            = "duplicate_ip"
	TypeVLANMismatch           = "vlan_mismatch"
	TypeMTUMismatchWarning     = "mtu_mismatch_warning"
	TypeLoopDetected           = "loop_detected"
	TypeMissingNeighborConfig  = "missing_neighbor_config"
	TypeProtocolRecommendation = "protocol_recommendation"
	TypeAggregationOpportunity = "aggregation_opportunity"
)

// A Location is an interface of a device.
type Location struct {
	Device string `json:"device"`
	Iface  string `json:"iface"`
}

// An Issue is one finding. Only the fields that apply to the type are set.
type Issue struct {
	Type string `json:"type"`

	IP        string     `json:"ip,omitempty"`
	Locations []Location `json:"locations,omitempty"`

	Link   []string `json:"link,omitempty"`
	UVLANs []int    `json:"u_vlans,omitempty"`
	VVLANs []int    `json:"v_vlans,omitempty"`

	EdgeMTU int `json:"edge_mtu,omitempty"`

	Cycle []string `json:"cycle,omitempty"`

	Device   string `json:"device,omitempty"`
	Iface    string `json:"iface,omitempty"`
	Neighbor string `json:"neighbor,omitempty"`

	Node   string `json:"node,omitempty"`
	Advice string `json:"advice,omitempty"`
	Reason string `json:"reason,omitempty"`
}
