// Command heron replays test lifecycle event streams into report documents
// and provides tooling around the resulting results directory.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/Heron/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
