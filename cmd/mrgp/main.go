// Command mrgp is the GuineaPig-style map-reduce engine's entry point:
// it either runs a job directly, serves the HTTP control surface of
// spec.4.H, or acts as a thin client against a running server.
package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gimlids/mrgp/internal/gpfs"
	"github.com/gimlids/mrgp/internal/httpserver"
	"github.com/gimlids/mrgp/internal/job"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	serve          bool
	send           string
	task           bool
	input          string
	output         string
	mapper         string
	reducer        string
	numReduceTasks int
	joinInputs     string
	verbose        bool
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "mrgp",
		Short: "A single-node streaming map-reduce engine",
		Long: "mrgp runs mapper and reducer shell commands over filesystem or\n" +
			"in-memory GPFS inputs, either directly or via its HTTP control surface.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(f)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&f.serve, "serve", false, "run the HTTP control surface on "+httpserver.Addr)
	flags.StringVar(&f.send, "send", "", "send a raw command path to a running server and print the response")
	flags.BoolVar(&f.task, "task", false, "send --input/--output/--mapper/--reducer/--numReduceTasks as a task request")
	flags.StringVar(&f.input, "input", "", "input directory, or gpfs:dir for an in-memory directory")
	flags.StringVar(&f.output, "output", "", "output directory, or gpfs:dir for an in-memory directory")
	flags.StringVar(&f.mapper, "mapper", "", "mapper shell command")
	flags.StringVar(&f.reducer, "reducer", "", "reducer shell command; map-only when empty")
	flags.IntVar(&f.numReduceTasks, "numReduceTasks", 1, "number of reduce partitions")
	flags.StringVar(&f.joinInputs, "joinInputs", "", "reserved, unused")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func run(f rootFlags) error {
	log := newLogger(f.verbose)

	switch {
	case f.serve:
		return runServe(log)
	case f.send != "":
		return sendRequest(f.send)
	case f.task:
		return sendTask(f)
	case f.input == "" || f.output == "" || f.mapper == "":
		return errors.New("usage: --input DIR --output DIR --mapper CMD [--reducer CMD --numReduceTasks K]")
	default:
		return runLocalTask(log, f)
	}
}

func runServe(log *logrus.Logger) error {
	fs := gpfs.New()
	srv := &httpserver.Server{
		FS:          fs,
		Coordinator: &job.Coordinator{FS: fs, Log: log},
		Log:         log,
	}
	log.WithField("addr", httpserver.Addr).Info("http server is running")
	return http.ListenAndServe(httpserver.Addr, srv.Handler())
}

func runLocalTask(log *logrus.Logger, f rootFlags) error {
	fs := gpfs.New()
	c := &job.Coordinator{FS: fs, Log: log}
	return c.Run(job.Options{
		Input:          f.input,
		Output:         f.output,
		Mapper:         f.mapper,
		Reducer:        f.reducer,
		NumReduceTasks: f.numReduceTasks,
	})
}

// sendRequest mirrors mrs_gp.py's sendRequest: issue a GET against the
// local server and print the status and body.
func sendRequest(command string) error {
	resp, err := http.Get("http://" + httpserver.Addr + "/" + command)
	if err != nil {
		return errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "reading response")
	}

	fmt.Println(resp.StatusCode, resp.Status)
	fmt.Println(string(body))
	return nil
}

// sendTask builds a task? request from the job flags, the way
// mrs_gp.py's --task branch URL-encodes optdict.
func sendTask(f rootFlags) error {
	q := url.Values{}
	q.Set("input", f.input)
	q.Set("output", f.output)
	q.Set("mapper", f.mapper)
	if f.reducer != "" {
		q.Set("reducer", f.reducer)
		q.Set("numReduceTasks", fmt.Sprintf("%d", f.numReduceTasks))
	}
	return sendRequest("task?" + q.Encode())
}
