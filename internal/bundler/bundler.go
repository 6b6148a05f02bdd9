// Package bundler reports the resolved closure and optionally collects
// the libraries next to the root binary.
package bundler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hokaccha/go-prettyjson"
	"github.com/otiai10/copy"
	"github.com/pkg/errors"

	"github.com/pedeps/dllgather/pkg/log"
	"github.com/pedeps/dllgather/util/executil"
	"github.com/pedeps/dllgather/util/fileutil"
)

type Opts struct {
	Copy      bool `mapstructure:"copy"`
	UPX       bool `mapstructure:"upx"`
	PrintJSON bool `mapstructure:"print-json"`

	// Path of the root binary the libraries are collected next to.
	RootBinary string

	// Stdout is the destination of the closure listing. Log output
	// goes to stderr, the listing has to stay parseable.
	Stdout io.Writer
}

type Bundler struct {
	opts *Opts
}

func New(opts *Opts) *Bundler {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	return &Bundler{opts: opts}
}

// Bundle prints each resolved path and, when enabled, copies the
// libraries into the root binary's directory and compresses them.
// Copy and compression failures are reported per file and don't stop
// the batch, but any failure makes Bundle return an error so the run
// is not reported as a success.
func (b *Bundler) Bundle(closure []string) error {
	err := b.printClosure(closure)
	if err != nil {
		return err
	}

	if !b.opts.Copy {
		return nil
	}

	targetDir := filepath.Dir(b.opts.RootBinary)
	var failed int
	for _, path := range closure {
		dest := filepath.Join(targetDir, filepath.Base(path))
		if filepath.Clean(path) == filepath.Clean(dest) {
			log.Debugf("Skipping %s, already next to %s", filepath.Base(path), filepath.Base(b.opts.RootBinary))
		} else {
			log.Infof("Copying %s", fileutil.PrettifyPath(path))
			err = copy.Copy(path, dest)
			if err != nil {
				log.Errorf(errors.WithStack(err), "Failed to copy %s: %v", path, err)
				failed++
				continue
			}
		}

		if b.opts.UPX {
			err = compress(dest)
			if err != nil {
				log.Errorf(err, "Failed to compress %s: %v", dest, err)
				failed++
			}
		}
	}

	if b.opts.UPX {
		err = compress(b.opts.RootBinary)
		if err != nil {
			log.Errorf(err, "Failed to compress %s: %v", b.opts.RootBinary, err)
			failed++
		}
	}

	if failed > 0 {
		return errors.Errorf("failed to bundle %d file(s)", failed)
	}
	return nil
}

func (b *Bundler) printClosure(closure []string) error {
	if b.opts.PrintJSON {
		bytes, err := prettyjson.Marshal(closure)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = fmt.Fprintln(b.opts.Stdout, string(bytes))
		return errors.WithStack(err)
	}

	for _, path := range closure {
		_, err := fmt.Fprintln(b.opts.Stdout, path)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

func compress(path string) error {
	log.Infof("Compressing %s", fileutil.PrettifyPath(path))
	return executil.Command("upx", "--best", path).Run()
}
