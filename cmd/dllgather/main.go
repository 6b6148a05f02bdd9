package main

import (
	"os"

	"github.com/pedeps/dllgather/internal/cmd/root"
	"github.com/pedeps/dllgather/internal/cmdutils"
	"github.com/pedeps/dllgather/pkg/log"
)

func main() {
	cmd := root.New()
	err := cmd.Execute()
	if err == nil {
		return
	}

	if cmdutils.IsIncorrectUsageError(err) {
		log.Error(err)
		log.Print(cmd.UsageString())
	} else if !cmdutils.IsSilentError(err) {
		// silent errors were already reported where they occurred
		log.Error(err)
	}
	os.Exit(1)
}
