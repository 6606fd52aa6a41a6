// Copyright (c) PocketSignal authors.
// Licensed under the MIT License.

// Package shell wraps execution of external programs.
package shell

import (
	"bytes"
	"os"
	"os/exec"
)

// Execute runs the given program and returns its captured stdout and stderr.
func Execute(program string, args ...string) (stdout, stderr string, err error) {
	cmd := exec.Command(program, args...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()

	stdout = outBuf.String()
	stderr = errBuf.String()

	return
}

// ExecuteLive runs the given program with its output streamed to the
// current process's stdout and stderr. If squashOutput is set, the child's
// output is discarded instead.
func ExecuteLive(squashOutput bool, program string, args ...string) error {
	cmd := exec.Command(program, args...)

	if !squashOutput {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	return cmd.Run()
}

// ProgramExists reports whether the given program can be found on the PATH.
func ProgramExists(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}
