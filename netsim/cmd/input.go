package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/devconfig"
	"github.com/sarchlab/netsim/topology"
)

// graphSource tells where a command reads its topology from.
type graphSource struct {
	conf     string
	topology string
}

func (s *graphSource) addFlags(cmd *cobra.Command, allowTopology bool) {
	cmd.Flags().StringVar(&s.conf, "conf", "",
		"The directory that holds one <device>/config.dump per device.")

	if !allowTopology {
		_ = cmd.MarkFlagRequired("conf")
		return
	}

	cmd.Flags().StringVar(&s.topology, "topology", "",
		"A YAML or JSON topology file, as written by the export command.")
	cmd.MarkFlagsMutuallyExclusive("conf", "topology")
	cmd.MarkFlagsOneRequired("conf", "topology")
}

// name returns the name of the topology, which is the base name of the
// configuration directory or of the topology file.
func (s *graphSource) name() string {
	if s.topology != "" {
		base := filepath.Base(s.topology)
		return base[:len(base)-len(filepath.Ext(base))]
	}

	return filepath.Base(filepath.Clean(s.conf))
}

func (s *graphSource) graph() (*topology.Graph, error) {
	if s.topology != "" {
		desc, err := topology.ReadDesc(s.topology)
		if err != nil {
			return nil, err
		}

		return desc.Graph()
	}

	_, g, err := loadConfDir(s.conf)

	return g, err
}

func loadConfDir(
	conf string,
) (map[string]*devconfig.Device, *topology.Graph, error) {
	if conf == "" {
		return nil, nil, errors.New("no configuration directory given")
	}

	devices, err := devconfig.ParseConfDir(conf)
	if err != nil {
		return nil, nil, err
	}

	return devices, topology.BuildFromDevices(devices), nil
}

func writeJSONFile(path string, v any) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return writeFile(path, bytes)
}

func writeFile(path string, bytes []byte) error {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return err
	}

	return os.WriteFile(path, bytes, 0o644)
}
