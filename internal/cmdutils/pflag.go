package cmdutils

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func ViperMustBindPFlag(key string, flag *pflag.Flag) {
	err := viper.BindPFlag(key, flag)
	if err != nil {
		panic(err)
	}
}

// AddFlags executes the specified Add*Flag functions and returns a
// function which binds all those flags to viper
func AddFlags(cmd *cobra.Command, funcs ...func(cmd *cobra.Command) func()) (bindFlags func()) { // nolint:nonamedreturns
	var bindFlagFuncs []func()
	for _, f := range funcs {
		bindFlagFunc := f(cmd)
		bindFlagFuncs = append(bindFlagFuncs, bindFlagFunc)
	}
	return func() {
		for _, f := range bindFlagFuncs {
			f()
		}
	}
}

func AddCopyFlag(cmd *cobra.Command) func() {
	cmd.Flags().BoolP("copy", "c", false,
		"Copy the resolved libraries into the directory of the binary.")
	return func() {
		ViperMustBindPFlag("copy", cmd.Flags().Lookup("copy"))
	}
}

func AddUPXFlag(cmd *cobra.Command) func() {
	cmd.Flags().Bool("upx", false,
		"Compress the binary and the copied libraries with upx.\n"+
			"Only valid together with --copy.")
	return func() {
		ViperMustBindPFlag("upx", cmd.Flags().Lookup("upx"))
	}
}

func AddPrintJSONFlag(cmd *cobra.Command) func() {
	cmd.Flags().Bool("json", false, "Print the resolved paths as JSON")
	return func() {
		ViperMustBindPFlag("print-json", cmd.Flags().Lookup("json"))
	}
}
