package executil

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/pkg/errors"

	"github.com/pedeps/dllgather/pkg/log"
)

// Cmd provides the same functionality as exec.Cmd plus some utility
// methods. All tools this module spawns are short-lived batch
// invocations, so there is no cancellation or process group handling.
type Cmd struct {
	*exec.Cmd
}

func Command(name string, arg ...string) *Cmd {
	return &Cmd{Cmd: exec.Command(name, arg...)}
}

// Output runs the command and returns its standard output. In contrast
// to exec.Cmd.Output, the command's stderr output is included in the
// error message on failure, because the tools we invoke report the
// interesting part of their errors there.
func (c *Cmd) Output() ([]byte, error) {
	var stderr bytes.Buffer
	if c.Stderr == nil {
		c.Stderr = &stderr
	}

	log.Debugf("Running: %s", shellescape.QuoteCommand(c.Args))

	out, err := c.Cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return out, errors.Wrapf(err, "%s: %s", c.Args[0], msg)
		}
		return out, errors.WithStack(err)
	}
	return out, nil
}

// Run does the same as exec.Cmd.Run() but logs the executed command
// line in verbose mode and annotates errors with a stack trace.
func (c *Cmd) Run() error {
	log.Debugf("Running: %s", shellescape.QuoteCommand(c.Args))

	err := c.Cmd.Run()
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
