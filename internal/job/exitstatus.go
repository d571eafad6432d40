package job

import "os/exec"

// nonExitError returns nil when err is nil or is the subprocess merely
// exiting with a non-zero status (*exec.ExitError), and returns err
// unchanged otherwise. Spec.7 is explicit
// that exit codes are not inspected: process termination, success or
// not, is completion.
func nonExitError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*exec.ExitError); ok {
		return nil
	}
	return err
}
