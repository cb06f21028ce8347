package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/xid"
	"github.com/spf13/pflag"

	"github.com/sarchlab/netsim/datarecording"
	"github.com/sarchlab/netsim/devconfig"
	"github.com/sarchlab/netsim/simulation"
	"github.com/sarchlab/netsim/topology"
)

var lineConfigs = map[string]string{
	"r1": `hostname R1
interface Gi0/0
 description to R2
 ip address 10.0.12.1 255.255.255.252
 bandwidth 1000000
!
router ospf 1
`,
	"r2": `hostname R2
interface Gi0/0
 ip address 10.0.12.2 255.255.255.252
 bandwidth 1000000
!
interface Gi0/1
 ip address 10.0.23.1 255.255.255.252
 bandwidth 100000
!
router ospf 1
`,
	"r3": `hostname R3
interface Gi0/0
 ip address 10.0.23.2 255.255.255.252
 bandwidth 100000
!
router ospf 1
`,
}

func writeConfDir(root string) string {
	conf := filepath.Join(root, "lab")

	for dir, content := range lineConfigs {
		d := filepath.Join(conf, dir)
		Expect(os.MkdirAll(d, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(d, devconfig.ConfigFileName),
			[]byte(content), 0o644)).To(Succeed())
	}

	return conf
}

func readJSON(path string, v any) {
	content, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(content, v)).To(Succeed())
}

var _ = Describe("Commands", func() {
	var (
		tmp  string
		conf string
		out  *bytes.Buffer
	)

	BeforeEach(func() {
		tmp = GinkgoT().TempDir()
		conf = writeConfDir(tmp)
		out = new(bytes.Buffer)
	})

	It("should parse the devices", func() {
		file := filepath.Join(tmp, "outputs", "parsed.json")

		Expect(runParse(out, conf, file)).To(Succeed())

		var devices map[string]*devconfig.Device
		readJSON(file, &devices)
		Expect(devices).To(HaveLen(3))
		Expect(devices["R2"].Interfaces).To(HaveLen(2))
		Expect(out.String()).To(ContainSubstring("Parsed 3 devices"))
	})

	It("should fail to parse a missing directory", func() {
		err := runParse(out, filepath.Join(tmp, "none"),
			filepath.Join(tmp, "parsed.json"))

		Expect(err).To(HaveOccurred())
	})

	It("should validate", func() {
		file := filepath.Join(tmp, "outputs", "issues.json")

		Expect(runValidate(out, conf, file)).To(Succeed())

		var report map[string][]map[string]any
		readJSON(file, &report)
		Expect(report).To(HaveKey("issues"))
		Expect(out.String()).To(ContainSubstring("findings written to"))
	})

	It("should plan the load", func() {
		traffic := filepath.Join(tmp, "traffic.yaml")
		Expect(os.WriteFile(traffic, []byte(`endpoints:
  - device: R1
    peak_mbps: 500
  - device: R3
`), 0o644)).To(Succeed())
		file := filepath.Join(tmp, "outputs", "plan.json")

		Expect(runPlanLoad(out, conf, traffic, file)).To(Succeed())

		var report struct {
			LinkLoads       map[string]int   `json:"link_loads_mbps"`
			Recommendations []map[string]any `json:"recommendations"`
		}
		readJSON(file, &report)
		Expect(report.LinkLoads).To(Equal(map[string]int{
			"R1-R2": 500,
			"R2-R3": 500,
		}))
		Expect(report.Recommendations).To(HaveLen(1))
		Expect(report.Recommendations[0]["link"]).
			To(Equal([]any{"R2", "R3"}))
	})

	It("should plot the topology", func() {
		file := filepath.Join(tmp, "outputs", "lab.dot")

		Expect(runPlot(out, &graphSource{conf: conf}, file)).To(Succeed())

		content, err := os.ReadFile(file)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(HavePrefix("graph lab {"))
		Expect(out.String()).To(ContainSubstring("3 devices and 2 links"))
	})

	It("should export and reload the topology", func() {
		file := filepath.Join(tmp, "lab.yaml")

		Expect(runExport(out, &graphSource{conf: conf}, file)).To(Succeed())

		source := &graphSource{topology: file}
		Expect(source.name()).To(Equal("lab"))

		g, err := source.graph()
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Devices()).To(Equal([]string{"R1", "R2", "R3"}))

		l, found := g.Link("R2", "R3")
		Expect(found).To(BeTrue())
		Expect(l.LinkAttrs).To(Equal(topology.LinkAttrs{
			Capacity: 100000,
			MTU:      1500,
			Network:  "10.0.23.0/30",
		}))
	})

	It("should simulate", func() {
		logDir := filepath.Join(tmp, "logs")
		record := filepath.Join(tmp, "rec", "run")

		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{
			"simulate",
			"--env-file", "",
			"--conf", conf,
			"--seconds", "2",
			"--log-dir", logDir,
			"--record", record,
			"--quiet",
		})

		Expect(rootCmd.Execute()).To(Succeed())

		for _, name := range []string{"R1", "R2", "R3"} {
			Expect(filepath.Join(logDir, name+".log")).To(BeAnExistingFile())
		}

		Expect(record + ".sqlite3").To(BeAnExistingFile())
		Expect(out.String()).To(ContainSubstring("Simulation stopped"))

		content, err := os.ReadFile(filepath.Join(logDir, "R2.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring("R2: Node started"))

		out.Reset()
		err = runEvents(context.Background(), out, record+".sqlite3",
			datarecording.NodeEventFilter{Node: "R2", Event: "Node Start"})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring("Node started"))
		Expect(out.String()).To(ContainSubstring("1 of 1 events"))

		reader := datarecording.NewReader(record + ".sqlite3")
		defer reader.Close()

		hellos, _, err := datarecording.ReadNodeEvents(context.Background(),
			reader, datarecording.NodeEventFilter{
				Node:  "R2",
				Event: "Node Msg Recvd",
				Kind:  "HELLO",
			})
		Expect(err).NotTo(HaveOccurred())
		Expect(hellos).NotTo(BeEmpty())

		_, err = xid.FromString(hellos[0].MsgID)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should fail a link", func() {
		logDir := filepath.Join(tmp, "logs")

		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{
			"fail-link",
			"--env-file", "",
			"--conf", conf,
			"--a", "R1",
			"--b", "R2",
			"--seconds", "2",
			"--log-dir", logDir,
			"--quiet=false",
		})

		Expect(rootCmd.Execute()).To(Succeed())

		printed := out.String()
		down := strings.Index(printed, "Link R1<->R2 DOWN")
		Expect(down).To(BeNumerically(">=", 0))
		Expect(printed).To(HaveSuffix(
			"Simulation stopped. Node logs are in " + logDir + "\n"))

		afterDown := printed[down:]
		Expect(strings.Count(afterDown, "R2: HELLO from R1")).
			To(BeNumerically("<=", 1))
		Expect(afterDown).To(ContainSubstring("R2: HELLO from R3"))
	})

	It("should stop cleanly when failing an unknown link", func() {
		logDir := filepath.Join(tmp, "logs")

		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{
			"fail-link",
			"--env-file", "",
			"--conf", conf,
			"--a", "R1",
			"--b", "R3",
			"--seconds", "1",
			"--log-dir", logDir,
			"--quiet",
		})

		err := rootCmd.Execute()

		Expect(errors.Is(err, simulation.ErrNoSuchLink)).To(BeTrue())
		Expect(out.String()).NotTo(ContainSubstring("DOWN"))
		Expect(out.String()).To(ContainSubstring("Simulation stopped"))

		content, err := os.ReadFile(filepath.Join(logDir, "R1.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring("R1: Node stopped"))
	})

	It("should pause and resume", func() {
		logDir := filepath.Join(tmp, "logs")

		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{
			"pause-resume",
			"--env-file", "",
			"--conf", conf,
			"--seconds", "2",
			"--log-dir", logDir,
			"--quiet",
		})

		Expect(rootCmd.Execute()).To(Succeed())

		Expect(out.String()).To(MatchRegexp(
			`(?s)PAUSED\n.*RESUMED\n.*Simulation stopped`))

		content, err := os.ReadFile(filepath.Join(logDir, "R2.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring("R2: Received PAUSE"))
		Expect(string(content)).To(ContainSubstring("R2: Received RESUME"))
	})

	It("should discard the recording of a session that cannot start", func() {
		busy, err := net.Listen("tcp", ":0")
		Expect(err).NotTo(HaveOccurred())
		defer busy.Close()

		record := filepath.Join(tmp, "rec", "unused")
		opts := &runOptions{
			source:  graphSource{conf: conf},
			logDir:  filepath.Join(tmp, "logs"),
			quiet:   true,
			monitor: true,
			port:    busy.Addr().(*net.TCPAddr).Port,
			record:  record,
		}

		_, err = startSession(out, opts, 1)

		Expect(err).To(HaveOccurred())
		Expect(record + ".sqlite3").NotTo(BeAnExistingFile())
	})
})

var _ = Describe("Environment", func() {
	It("should fill flags that are not given", func() {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		dir := flags.String("log-dir", DefaultLogDir, "")
		port := flags.Int("port", 0, "")
		Expect(flags.Parse([]string{"--port", "9000"})).To(Succeed())

		GinkgoT().Setenv(EnvLogDir, "/tmp/netsim-logs")
		GinkgoT().Setenv(EnvMonitorPort, "8000")

		applyEnv(flags, "log-dir", EnvLogDir)
		applyEnv(flags, "port", EnvMonitorPort)

		Expect(*dir).To(Equal("/tmp/netsim-logs"))
		Expect(*port).To(Equal(9000))
	})

	It("should load an env file", func() {
		file := filepath.Join(GinkgoT().TempDir(), "test.env")
		Expect(os.WriteFile(file,
			[]byte("NETSIM_TEST_VALUE=loaded\n"), 0o644)).To(Succeed())
		DeferCleanup(os.Unsetenv, "NETSIM_TEST_VALUE")

		Expect(loadEnvFile(file)).To(Succeed())
		Expect(os.Getenv("NETSIM_TEST_VALUE")).To(Equal("loaded"))
	})

	It("should ignore a missing env file", func() {
		Expect(loadEnvFile(filepath.Join(GinkgoT().TempDir(), ".env"))).
			To(Succeed())
	})
})
