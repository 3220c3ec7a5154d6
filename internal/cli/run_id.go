package cli

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const runIDAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// newRunID returns a short identifier used in log file names and reports.
func newRunID() string {
	id, err := gonanoid.Generate(runIDAlphabet, 8)
	if err != nil {
		// nanoid only fails when the system random source does
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return id
}
