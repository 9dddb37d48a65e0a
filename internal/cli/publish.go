package cli

import (
	"fmt"
	"io"

	"github.com/miseqtools/miseqinterop/internal/release"
)

// cmdPublish builds the Python package and uploads it to PyPI. The procedure
// takes no flags; it operates on the working directory.
func cmdPublish(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintln(stderr, "Usage: miseq-interop publish")
		return 2
	}
	p := release.Publisher{Out: stdout, Err: stderr}
	return p.Publish()
}
