// Package monitoring serves an HTTP API that inspects and controls a running
// simulation.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/netsim/logging"
	"github.com/sarchlab/netsim/node"
	"github.com/sarchlab/netsim/sim"
	"github.com/sarchlab/netsim/simulation"
)

//go:generate mockgen -destination "mock_controller_test.go" -package $GOPACKAGE -write_package_comment=false github.com/sarchlab/netsim/monitoring Controller

// Controller is the part of a simulation that the monitor inspects and
// controls. *simulation.Simulation implements it.
type Controller interface {
	Nodes() []*node.Node
	Node(name string) (*node.Node, bool)
	Links() []simulation.LinkState
	IsPaused() bool
	Pause()
	Resume()
	FailLink(a, b string, down bool) error
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	controller Controller
	portNumber int

	routerOnce sync.Once
	router     *mux.Router

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// not allowed; a random port is used instead.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		logging.MonitorLog.Warnf(
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterSimulation registers the simulation to monitor.
func (m *Monitor) RegisterSimulation(c Controller) {
	m.controller = c
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		id:    sim.GetIDGenerator().Generate(),
		name:  name,
		start: time.Now(),
		total: total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Handler returns the router that serves the API.
func (m *Monitor) Handler() http.Handler {
	m.routerOnce.Do(func() {
		r := mux.NewRouter()

		r.HandleFunc("/api/nodes", m.listNodes).Methods(http.MethodGet)
		r.HandleFunc("/api/node/{name}", m.nodeDetails).
			Methods(http.MethodGet)
		r.HandleFunc("/api/links", m.listLinks).Methods(http.MethodGet)
		r.HandleFunc("/api/mailboxes", m.listMailboxes).
			Methods(http.MethodGet)
		r.HandleFunc("/api/status", m.status).Methods(http.MethodGet)
		r.HandleFunc("/api/pause", m.pause).Methods(http.MethodPost)
		r.HandleFunc("/api/resume", m.resume).Methods(http.MethodPost)
		r.HandleFunc("/api/link/{a}/{b}/{state:up|down}", m.setLink).
			Methods(http.MethodPost)
		r.HandleFunc("/api/progress", m.listProgressBars).
			Methods(http.MethodGet)
		r.HandleFunc("/api/resource", m.listResources).
			Methods(http.MethodGet)
		r.HandleFunc("/api/profile", m.collectProfile).
			Methods(http.MethodGet)

		m.router = r
	})

	return m.router
}

// StartServer starts serving the API in the background and returns the
// address it listens on.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", err
	}

	addr := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	logging.MonitorLog.Infof("Monitoring simulation with %s", addr)

	handler := m.Handler()
	go func() {
		err := http.Serve(listener, handler)
		if err != nil && !errors.Is(err, net.ErrClosed) {
			logging.MonitorLog.WithError(err).Error("Monitor stopped")
		}
	}()

	return addr, nil
}

func (m *Monitor) listNodes(w http.ResponseWriter, _ *http.Request) {
	nodes := m.controller.Nodes()

	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name())
	}

	writeJSON(w, names)
}

func (m *Monitor) nodeDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	n, found := m.controller.Node(name)
	if !found {
		http.Error(w, "Node not found", http.StatusNotFound)
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(n)
	serializer.SetMaxDepth(1)

	err := serializer.Serialize(w)
	if err != nil {
		logging.MonitorLog.WithError(err).
			Errorf("Cannot serialize node %s", name)
	}
}

func (m *Monitor) listLinks(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, m.controller.Links())
}

type mailboxRsp struct {
	Mailbox string `json:"mailbox"`
	Level   int    `json:"level"`
	Cap     int    `json:"cap"`
}

func (m *Monitor) listMailboxes(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := mailboxesParseParams(r)
	if err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
		return
	}

	mailboxes := make([]*sim.Mailbox, 0)
	for _, n := range m.controller.Nodes() {
		mailboxes = append(mailboxes, n.Mailbox())
	}

	selected := sortAndSelectMailboxes(mailboxes, sortMethod, limit, offset)

	rsp := make([]mailboxRsp, 0, len(selected))
	for _, mb := range selected {
		rsp = append(rsp, mailboxRsp{
			Mailbox: mb.Name(),
			Level:   mb.Size(),
			Cap:     mb.Capacity(),
		})
	}

	writeJSON(w, rsp)
}

func mailboxesParseParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	sortMethod = r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		return "", 0, 0, fmt.Errorf(
			"invalid sort method: %s. Allowed values are `level` and `percent`",
			sortMethod)
	}

	limit, err = intParam(r, "limit")
	if err != nil {
		return "", 0, 0, err
	}

	offset, err = intParam(r, "offset")
	if err != nil {
		return "", 0, 0, err
	}

	return sortMethod, limit, offset, nil
}

func intParam(r *http.Request, name string) (int, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return 0, nil
	}

	v, err := strconv.Atoi(str)
	if err != nil {
		return 0, err
	}

	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", name)
	}

	return v, nil
}

func mailboxPercent(mb *sim.Mailbox) float64 {
	return float64(mb.Size()) / float64(mb.Capacity())
}

// sortAndSelectMailboxes sorts the fullest mailboxes first and returns the
// page that starts at offset. A zero limit selects all the rest.
func sortAndSelectMailboxes(
	mailboxes []*sim.Mailbox,
	sortMethod string,
	limit, offset int,
) []*sim.Mailbox {
	type entry struct {
		mb      *sim.Mailbox
		size    int
		percent float64
	}

	entries := make([]entry, 0, len(mailboxes))
	for _, mb := range mailboxes {
		entries = append(entries,
			entry{mb: mb, size: mb.Size(), percent: mailboxPercent(mb)})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		if sortMethod == "level" {
			if a.size != b.size {
				return a.size > b.size
			}

			return a.percent > b.percent
		}

		if a.percent != b.percent {
			return a.percent > b.percent
		}

		return a.size > b.size
	})

	if offset > len(entries) {
		offset = len(entries)
	}

	end := len(entries)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	selected := make([]*sim.Mailbox, 0, end-offset)
	for _, e := range entries[offset:end] {
		selected = append(selected, e.mb)
	}

	return selected
}

type statusRsp struct {
	Paused bool `json:"paused"`
}

func (m *Monitor) status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, statusRsp{Paused: m.controller.IsPaused()})
}

func (m *Monitor) pause(w http.ResponseWriter, _ *http.Request) {
	m.controller.Pause()
	writeJSON(w, statusRsp{Paused: true})
}

func (m *Monitor) resume(w http.ResponseWriter, _ *http.Request) {
	m.controller.Resume()
	writeJSON(w, statusRsp{Paused: false})
}

func (m *Monitor) setLink(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	a, b, down := vars["a"], vars["b"], vars["state"] == "down"

	err := m.controller.FailLink(a, b, down)
	if errors.Is(err, simulation.ErrNoSuchLink) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, simulation.LinkState{A: a, B: b, Up: !down})
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	bars := make([]progressRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}
	m.progressBarsLock.Unlock()

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	rsp, err := currentResources()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, rsp)
}

func currentResources() (resourceRsp, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return resourceRsp{}, err
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		return resourceRsp{}, err
	}

	memory, err := proc.MemoryInfo()
	if err != nil {
		return resourceRsp{}, err
	}

	return resourceRsp{CPUPercent: cpuPercent, MemorySize: memory.RSS}, nil
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(bytes)
	if err != nil {
		logging.MonitorLog.WithError(err).Warn("Cannot write response")
	}
}
