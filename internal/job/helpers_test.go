package job

import (
	"io"

	"github.com/sirupsen/logrus"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// closeIntake closes every partition channel so a test's worker
// goroutines exit instead of leaking past the test. Production code
// never does this -- intake workers are daemons for the life of the
// coordinator -- but tests have a narrower lifetime.
func closeIntake(in *intake) {
	for _, ch := range in.channels {
		close(ch)
	}
}
