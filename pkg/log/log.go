package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// Output is the default destination of all log messages. Log output is
// kept separate from the result output on stdout so that the resolved
// paths stay machine-readable.
var Output io.Writer = os.Stderr

func init() {
	// Disable styling when the output doesn't support it or the user
	// opted out, see https://no-color.org/
	if _, present := os.LookupEnv("NO_COLOR"); present {
		pterm.DisableStyling()
		return
	}
	if f, ok := Output.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		pterm.DisableStyling()
	}
}

func log(style pterm.Style, icon string, a ...any) {
	s := icon + fmt.Sprint(a...)

	if !pterm.RawOutput && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}

	fmt.Fprint(Output, style.Sprint(s))
}

// Debugf prints a message which is only relevant for debugging. Debug
// messages are only shown when the verbose flag is set.
func Debugf(format string, a ...any) {
	Debug(fmt.Sprintf(format, a...))
}

func Debug(a ...any) {
	if !viper.GetBool("verbose") {
		return
	}
	log(pterm.Style{pterm.FgGray}, "🔍 ", a...)
}

// Successf prints a confirmation that an operation went well.
func Successf(format string, a ...any) {
	Success(fmt.Sprintf(format, a...))
}

func Success(a ...any) {
	log(pterm.Style{pterm.FgGreen}, "✅ ", a...)
}

// Warnf prints a message about a condition which doesn't prevent the
// run from continuing but which the user should know about.
func Warnf(format string, a ...any) {
	Warn(fmt.Sprintf(format, a...))
}

func Warn(a ...any) {
	log(pterm.Style{pterm.FgYellow, pterm.Bold}, "⚠️ ", a...)
}

// Errorf prints an error message. When the verbose flag is set and the
// error carries a stack trace, the stack trace is printed as well.
func Errorf(err error, format string, a ...any) {
	Error(err, fmt.Sprintf(format, a...))
}

func Error(err error, msgs ...string) {
	var msg string
	if len(msgs) > 0 {
		msg = strings.Join(msgs, " ")
	} else {
		msg = fmt.Sprintf("%v", err)
	}
	if viper.GetBool("verbose") {
		// %+v renders the stack trace recorded by pkg/errors
		msg = fmt.Sprintf("%+v", err)
	}
	log(pterm.Style{pterm.FgRed, pterm.Bold}, "❌ ", msg)
}

// Infof prints a progress or status message.
func Infof(format string, a ...any) {
	Info(fmt.Sprintf(format, a...))
}

func Info(a ...any) {
	log(pterm.Style{pterm.FgDefault}, "", a...)
}

// Printf writes to the log output without any styling or level icon.
func Printf(format string, a ...any) {
	Print(fmt.Sprintf(format, a...))
}

func Print(a ...any) {
	log(pterm.Style{pterm.FgDefault}, "", a...)
}
