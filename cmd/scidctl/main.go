// Command scidctl administers SCID-PD assessments offline and manages the profile store.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
