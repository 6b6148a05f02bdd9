package root

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-zglob"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/exp/slices"

	"github.com/pedeps/dllgather/internal/bundler"
	"github.com/pedeps/dllgather/internal/cmdutils"
	"github.com/pedeps/dllgather/internal/config"
	"github.com/pedeps/dllgather/internal/extractor"
	"github.com/pedeps/dllgather/internal/resolver"
	"github.com/pedeps/dllgather/internal/winloader"
	"github.com/pedeps/dllgather/pkg/dependencies"
	"github.com/pedeps/dllgather/pkg/log"
	"github.com/pedeps/dllgather/util/fileutil"
)

type options struct {
	bundler.Opts `mapstructure:",squash"`
}

func (opts *options) Validate() error {
	if opts.UPX && !opts.Copy {
		return cmdutils.NewIncorrectUsageError("--upx is only valid together with --copy")
	}
	return nil
}

func New() *cobra.Command {
	return newWithOptions(&options{})
}

func newWithOptions(opts *options) *cobra.Command {
	var bindFlags func()
	cmd := &cobra.Command{
		Use:   "dllgather [flags] <binary>",
		Short: "List and collect the DLLs a Windows binary needs to run",
		Long: `dllgather resolves the transitive closure of non-system DLLs an
executable or library depends on, emulating the search order of the
Windows loader, and prints one resolved path per line.

<binary> is either the path of the executable or library to inspect or
its file name, which is then searched for recursively in the current
working directory.

With --copy, the resolved DLLs are copied next to the binary so the
directory can be shipped as-is. With --upx, the binary and the copied
DLLs are additionally compressed.

Libraries the OS always provides are never resolved or copied. Names
missing from the built-in list can be added through the known-dlls
setting in a dllgather.yaml placed next to the binary or in the
working directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind viper keys to flags. We can't do this in the New
			// function, because that would re-bind viper keys which
			// were bound to the flags of other commands before.
			bindFlags()

			err := viper.Unmarshal(opts)
			if err != nil {
				return errors.WithStack(err)
			}
			return opts.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			rootBinary, err := findRootBinary(args[0])
			if err != nil {
				log.Error(err)
				return cmdutils.WrapSilentError(err)
			}
			opts.RootBinary = rootBinary
			return run(opts)
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Show verbose output")
	cmdutils.ViperMustBindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))

	bindFlags = cmdutils.AddFlags(cmd,
		cmdutils.AddCopyFlag,
		cmdutils.AddUPXFlag,
		cmdutils.AddPrintJSONFlag,
	)

	return cmd
}

// findRootBinary turns the positional argument into an absolute path.
// An argument which is a bare file name and doesn't exist in the
// working directory is searched for recursively, like a build output
// in a nested target directory.
func findRootBinary(arg string) (string, error) {
	exists, err := fileutil.Exists(arg)
	if err != nil {
		return "", err
	}
	if exists {
		path, err := filepath.Abs(arg)
		return path, errors.WithStack(err)
	}

	if filepath.Base(arg) != arg {
		return "", errors.Errorf("binary %s does not exist", arg)
	}

	matches, err := zglob.Glob("**/" + arg)
	if err != nil {
		return "", errors.WithStack(err)
	}
	if len(matches) == 0 {
		return "", errors.Errorf("failed to find %s in the current working directory", arg)
	}
	slices.Sort(matches)
	if len(matches) > 1 {
		log.Warnf("Found %s more than once, using %s", arg, matches[0])
	}

	path, err := filepath.Abs(matches[0])
	return path, errors.WithStack(err)
}

func run(opts *options) error {
	cwd, err := os.Getwd()
	if err != nil {
		return errors.WithStack(err)
	}

	cfg, err := config.Find(filepath.Dir(opts.RootBinary), cwd)
	if err != nil {
		log.Errorf(err, "Failed to parse dllgather.yaml: %v", err)
		return cmdutils.WrapSilentError(err)
	}

	keys := []dependencies.Key{dependencies.Objdump}
	if opts.UPX {
		keys = append(keys, dependencies.UPX)
	}
	deps, err := dependencies.Define(keys)
	if err != nil {
		return err
	}
	if cfg.Objdump != "" {
		deps[dependencies.Objdump].Path = cfg.Objdump
	}
	err = dependencies.Check(keys, deps)
	if err != nil {
		log.Error(err)
		return cmdutils.WrapSilentError(err)
	}

	env := os.Environ()
	loaderConfig := winloader.NewLoaderConfig(env)
	loaderConfig.ExtraDirs = cfg.SearchDirs
	known := winloader.KnownDLLs(env)
	winloader.AddKnown(known, cfg.KnownDLLs)

	res := resolver.New(loaderConfig.SearchPath(), known, extractor.NewObjdump(cfg.Objdump))
	closure, err := res.Resolve(opts.RootBinary)
	if err != nil {
		log.Error(err)
		return cmdutils.WrapSilentError(err)
	}
	log.Debugf("Resolved %d dependencies for %s", len(closure), fileutil.PrettifyPath(opts.RootBinary))

	return bundler.New(&opts.Opts).Bundle(closure)
}
