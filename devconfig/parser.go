package devconfig

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// ConfigFileName is the name of the dump file inside each device directory.
const ConfigFileName = "config.dump"

var (
	ifaceRE    = regexp.MustCompile(`(?i)^\s*interface\s+([\w/.]+)`)
	ipRE       = regexp.MustCompile(`(?i)^\s*ip\s+address\s+(\d+\.\d+\.\d+\.\d+)\s+(\d+\.\d+\.\d+\.\d+)`)
	descRE     = regexp.MustCompile(`(?i)^\s*description\s+(.+)$`)
	bwRE       = regexp.MustCompile(`(?i)^\s*bandwidth\s+(\d+)`)
	mtuRE      = regexp.MustCompile(`(?i)^\s*mtu\s+(\d+)`)
	hostnameRE = regexp.MustCompile(`(?i)^\s*hostname\s+(\S+)`)
	ospfRE     = regexp.MustCompile(`(?i)^\s*router\s+ospf\s+(\d+)`)
	bgpRE      = regexp.MustCompile(`(?i)^\s*router\s+bgp\s+(\d+)`)
	vlanRE     = regexp.MustCompile(`(?i)vlan\s+(\d+)|encapsulation\s+dot1q\s+(\d+)|access\s+vlan\s+(\d+)`)
	sectionRE  = regexp.MustCompile(`(?i)^(!|\s*router\s)`)
)

// ParseDeviceConfig parses one configuration dump. A missing file yields a
// device without interfaces. If the dump does not set a hostname, the name
// of the directory holding the file is used.
func ParseDeviceConfig(path string) (*Device, error) {
	device := newDevice()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		device.Hostname = fallbackHostname(path)
		return device, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	p := &parser{device: device}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.parseLine(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	p.closeInterface()

	if device.Hostname == "" {
		device.Hostname = fallbackHostname(path)
	}

	return device, nil
}

// ParseConfDir parses every <root>/<dir>/config.dump and returns the devices
// keyed by hostname. Directories without a dump are skipped.
func ParseConfDir(root string) (map[string]*Device, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	devices := make(map[string]*Device)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		cfg := filepath.Join(root, e.Name(), ConfigFileName)
		if _, err := os.Stat(cfg); err != nil {
			continue
		}

		device, err := ParseDeviceConfig(cfg)
		if err != nil {
			return nil, err
		}

		devices[device.Hostname] = device
	}

	return devices, nil
}

func fallbackHostname(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "" || dir == "." || dir == string(filepath.Separator) {
		return "UNKNOWN"
	}

	return dir
}

type parser struct {
	device *Device
	cur    *Interface
}

func (p *parser) parseLine(line string) {
	if m := hostnameRE.FindStringSubmatch(line); m != nil {
		p.device.Hostname = m[1]
	}

	if m := ifaceRE.FindStringSubmatch(line); m != nil {
		p.closeInterface()
		p.cur = &Interface{
			Name: m[1],
			MTU:  DefaultMTU,
		}
		return
	}

	if sectionRE.MatchString(line) {
		p.closeInterface()
	}

	if p.cur != nil {
		p.parseInterfaceLine(line)
	}

	if m := ospfRE.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		p.device.Routing.OSPF = append(p.device.Routing.OSPF,
			OSPFProcess{Process: n})
	}

	if m := bgpRE.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[1])
		p.device.Routing.BGP = append(p.device.Routing.BGP,
			BGPProcess{ASN: n})
	}
}

func (p *parser) parseInterfaceLine(line string) {
	if m := ipRE.FindStringSubmatch(line); m != nil {
		p.cur.IP, p.cur.Mask = m[1], m[2]
		p.cur.Network = NetworkOf(p.cur.IP, p.cur.Mask)
		return
	}

	if m := descRE.FindStringSubmatch(line); m != nil {
		p.cur.Description = strings.TrimSpace(m[1])
		return
	}

	if m := bwRE.FindStringSubmatch(line); m != nil {
		p.cur.Bandwidth, _ = strconv.Atoi(m[1])
		return
	}

	if m := mtuRE.FindStringSubmatch(line); m != nil {
		p.cur.MTU, _ = strconv.Atoi(m[1])
		return
	}

	if m := vlanRE.FindStringSubmatch(line); m != nil {
		for _, g := range m[1:] {
			if g == "" {
				continue
			}

			if vlan, err := strconv.Atoi(g); err == nil {
				p.cur.VLAN = vlan
			}
		}
	}
}

func (p *parser) closeInterface() {
	if p.cur == nil {
		return
	}

	p.device.Interfaces = append(p.device.Interfaces, *p.cur)
	p.cur = nil
}

// NetworkOf returns the network of an IPv4 address and dotted netmask in
// CIDR notation, such as 10.0.0.0/30. It returns an empty string if either
// value is not valid.
func NetworkOf(ip, mask string) string {
	addr := net.ParseIP(ip).To4()
	if addr == nil {
		return ""
	}

	maskIP := net.ParseIP(mask).To4()
	if maskIP == nil {
		return ""
	}

	ipMask := net.IPMask(maskIP)

	ones, bits := ipMask.Size()
	if bits == 0 {
		return ""
	}

	return fmt.Sprintf("%s/%d", addr.Mask(ipMask), ones)
}
