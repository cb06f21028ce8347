package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/netsim/datarecording"
	"github.com/sarchlab/netsim/logging"
	"github.com/sarchlab/netsim/monitoring"
	"github.com/sarchlab/netsim/sim"
	"github.com/sarchlab/netsim/simulation"
)

// runOptions are the flags shared by the commands that run a simulation.
type runOptions struct {
	source  graphSource
	logDir  string
	quiet   bool
	monitor bool
	port    int
	open    bool
	record  string
}

func (o *runOptions) addFlags(cmd *cobra.Command, allowTopology bool) {
	o.source.addFlags(cmd, allowTopology)

	cmd.Flags().StringVar(&o.logDir, "log-dir", DefaultLogDir,
		"The directory of the per-node logs. Defaults to $"+EnvLogDir+".")
	cmd.Flags().BoolVar(&o.quiet, "quiet", false,
		"Do not print the node logs.")
	cmd.Flags().BoolVar(&o.monitor, "monitor", false,
		"Serve the monitoring API while the simulation runs.")
	cmd.Flags().IntVar(&o.port, "port", 0,
		"The port of the monitoring API. A random port is used if 0. "+
			"Defaults to $"+EnvMonitorPort+".")
	cmd.Flags().BoolVar(&o.open, "open", false,
		"Open the monitoring API in a browser. Implies --monitor.")
	cmd.Flags().StringVar(&o.record, "record", "",
		"Record every node event into <record>.sqlite3.")
}

func (o *runOptions) applyEnv(cmd *cobra.Command) {
	applyEnv(cmd.Flags(), "log-dir", EnvLogDir)
	applyEnv(cmd.Flags(), "port", EnvMonitorPort)
}

// A session is a running simulation together with its monitor and its
// recorder.
type session struct {
	out      io.Writer
	sim      *simulation.Simulation
	monitor  *monitoring.Monitor
	bar      *monitoring.ProgressBar
	recorder datarecording.DataRecorder
}

// startSession builds the simulation and starts it. The progress bar of the
// monitor counts totalSeconds.
func startSession(
	w io.Writer,
	opts *runOptions,
	totalSeconds int,
) (*session, error) {
	g, err := opts.source.graph()
	if err != nil {
		return nil, err
	}

	s := &session{out: &syncWriter{w: w}}

	builder := simulation.MakeBuilder().WithLogDir(opts.logDir)
	if !opts.quiet {
		builder = builder.WithEcho(s.out)
	}

	if opts.record != "" {
		err = os.MkdirAll(filepath.Dir(opts.record), 0o755)
		if err != nil {
			return nil, err
		}

		sim.UseParallelIDGenerator()

		s.recorder = datarecording.New(opts.record)
		builder = builder.WithDataRecorder(s.recorder)
	}

	s.sim, err = builder.Build(g)
	if err != nil {
		s.discardRecording(opts.record)
		return nil, err
	}

	if opts.monitor || opts.open {
		err = s.startMonitor(opts, totalSeconds)
		if err != nil {
			s.sim.Stop()
			s.discardRecording(opts.record)

			return nil, err
		}
	}

	logging.CLILog.
		WithField("sim", s.sim.ID()).
		Infof("Simulating %s: %d devices, %d links",
			opts.source.name(), g.NumDevices(), g.NumLinks())

	s.sim.Start()

	return s, nil
}

func (s *session) startMonitor(opts *runOptions, totalSeconds int) error {
	s.monitor = monitoring.NewMonitor().WithPortNumber(opts.port)
	s.monitor.RegisterSimulation(s.sim)

	addr, err := s.monitor.StartServer()
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Monitoring API at %s\n", addr)

	s.bar = s.monitor.CreateProgressBar(
		"Simulation "+s.sim.ID(), uint64(max(totalSeconds, 0)))

	if opts.open {
		err = browser.OpenURL(addr + "/api/status")
		if err != nil {
			logging.CLILog.WithError(err).Warn("Cannot open a browser")
		}
	}

	return nil
}

// wait lets the simulation run for the given number of seconds. It returns
// false if the context is cancelled first.
func (s *session) wait(ctx context.Context, seconds int) bool {
	for i := 0; i < seconds; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(time.Second):
		}

		if s.bar != nil {
			s.bar.Advance(1)
		}
	}

	return true
}

// discardRecording closes the recorder of a session that never started and
// removes its database.
func (s *session) discardRecording(record string) {
	if s.recorder == nil {
		return
	}

	if err := s.recorder.Close(); err != nil {
		logging.CLILog.WithError(err).Warn("Cannot close the recording")
	}

	err := os.Remove(record + ".sqlite3")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.CLILog.WithError(err).Warn("Cannot remove the recording")
	}
}

// pause waits without advancing the progress bar.
func (s *session) pause(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (s *session) stop() error {
	leaked := s.sim.Stop()
	if len(leaked) > 0 {
		logging.CLILog.Warnf("Nodes %v did not stop in time", leaked)
	}

	if s.bar != nil {
		s.monitor.CompleteProgressBar(s.bar)
	}

	if s.recorder != nil {
		err := s.recorder.Close()
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(s.out, "Simulation stopped. Node logs are in %s\n",
		s.sim.LogDir())

	return nil
}

// syncWriter lets the nodes echo their logs while the commands report
// progress on the same writer.
type syncWriter struct {
	lock sync.Mutex
	w    io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.lock.Lock()
	defer w.lock.Unlock()

	return w.w.Write(p)
}
