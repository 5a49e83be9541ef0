// Package inventory loads and validates the host inventory file.
package inventory

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the SSH port assumed when a host omits one.
const DefaultPort = 22

// ConnectionSpec holds the remote-shell endpoint parameters for a host.
type ConnectionSpec struct {
	Hostname   string `yaml:"hostname" validate:"required"`    // address or DNS name
	Port       int    `yaml:"port" validate:"gte=1,lte=65535"` // SSH port
	Username   string `yaml:"username" validate:"required"`    // login user
	Password   string `yaml:"password"`                        // optional, enables password auth
	SSHKeyPath string `yaml:"ssh_key_path"`                    // optional, enables key auth
}

// Address returns the dialable address in host:port form.
func (c ConnectionSpec) Address() string {
	return net.JoinHostPort(c.Hostname, strconv.Itoa(c.Port))
}

// ServicesSpec describes the expected service workload on a host.
type ServicesSpec struct {
	ComposeDir      string   `yaml:"compose_dir"`      // root for compose service discovery
	SystemdServices []string `yaml:"systemd_services"` // units expected to be active
}

// DeviceSpec describes one expected USB device.
type DeviceSpec struct {
	Name      string `yaml:"-" validate:"required"`                           // inventory key
	VendorID  string `yaml:"vendor_id" validate:"required,hexadecimal,len=4"` // e.g. "1d6b"
	ProductID string `yaml:"product_id" validate:"required,hexadecimal,len=4"`
	Required  bool   `yaml:"required"` // absent required device is a failure
}

// ID returns the vendor:product pair in lsusb notation.
func (d DeviceSpec) ID() string {
	return d.VendorID + ":" + d.ProductID
}

// DeviceList preserves the declaration order of the devices mapping.
type DeviceList []DeviceSpec

// UnmarshalYAML decodes a name-keyed mapping into an ordered list.
// A device is required unless the descriptor says otherwise.
func (l *DeviceList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("devices must be a mapping of name to descriptor")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		var spec struct {
			VendorID  string `yaml:"vendor_id"`
			ProductID string `yaml:"product_id"`
			Required  *bool  `yaml:"required"`
		}
		if err := valNode.Decode(&spec); err != nil {
			return fmt.Errorf("device %q: %w", keyNode.Value, err)
		}

		required := true
		if spec.Required != nil {
			required = *spec.Required
		}
		*l = append(*l, DeviceSpec{
			Name:      keyNode.Value,
			VendorID:  strings.ToLower(spec.VendorID),
			ProductID: strings.ToLower(spec.ProductID),
			Required:  required,
		})
	}
	return nil
}

// HostProfile describes one target host and its expected healthy state.
// Profiles are read-only to the diagnostic core for the duration of a run.
type HostProfile struct {
	Name       string         `yaml:"-" validate:"required"`
	Connection ConnectionSpec `yaml:"connection"`
	VPN        string         `yaml:"vpn" validate:"omitempty,alphanum"` // overlay network CLI, e.g. "tailscale"
	Services   ServicesSpec   `yaml:"services"`
	Devices    DeviceList     `yaml:"devices" validate:"dive"`
}

// IsLocal reports whether the profile targets the operator machine itself.
// Local hosts get their devices enumerated locally instead of over SSH.
func (p *HostProfile) IsLocal() bool {
	host := p.Connection.Hostname
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Inventory is the ordered collection of host profiles.
type Inventory struct {
	Hosts []*HostProfile
}

// UnmarshalYAML decodes the top-level host mapping, preserving the order
// hosts are declared in the file.
func (inv *Inventory) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("inventory must be a mapping of host name to profile")
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valNode := node.Content[i+1]

		profile := &HostProfile{Name: keyNode.Value}
		if err := valNode.Decode(profile); err != nil {
			return fmt.Errorf("host %q: %w", keyNode.Value, err)
		}
		if profile.Connection.Port == 0 {
			profile.Connection.Port = DefaultPort
		}
		inv.Hosts = append(inv.Hosts, profile)
	}
	return nil
}

// Names returns all host names in declaration order.
func (inv *Inventory) Names() []string {
	names := make([]string, 0, len(inv.Hosts))
	for _, p := range inv.Hosts {
		names = append(names, p.Name)
	}
	return names
}

// Get returns the profile for the given host name, nil if unknown.
func (inv *Inventory) Get(name string) *HostProfile {
	for _, p := range inv.Hosts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Select resolves the requested host names against the inventory. An empty
// request selects every host in declaration order.
func (inv *Inventory) Select(names []string) ([]*HostProfile, error) {
	if len(names) == 0 {
		return inv.Hosts, nil
	}
	selected := make([]*HostProfile, 0, len(names))
	for _, name := range names {
		p := inv.Get(name)
		if p == nil {
			return nil, fmt.Errorf("unknown host %q (available: %s)", name, strings.Join(inv.Names(), ", "))
		}
		selected = append(selected, p)
	}
	return selected, nil
}
