package httpserver

import (
	"net/url"
	"strconv"

	"github.com/pkg/errors"

	"github.com/gimlids/mrgp/internal/job"
)

// parseJobOptions decodes a `task` request's query string into a job
// descriptor. input, output and mapper are mandatory, matching
// mrs_gp.py's performTask; reducer and numReduceTasks are optional.
func parseJobOptions(q url.Values) (job.Options, error) {
	opts := job.Options{
		Input:   q.Get("input"),
		Output:  q.Get("output"),
		Mapper:  q.Get("mapper"),
		Reducer: q.Get("reducer"),
	}
	if opts.Input == "" || opts.Output == "" || opts.Mapper == "" {
		return job.Options{}, errors.New("task requires input, output and mapper")
	}

	if n := q.Get("numReduceTasks"); n != "" {
		v, err := strconv.Atoi(n)
		if err != nil {
			return job.Options{}, errors.Wrap(err, "numReduceTasks must be an integer")
		}
		opts.NumReduceTasks = v
	}

	return opts, nil
}
