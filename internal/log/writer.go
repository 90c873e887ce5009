package log

import (
	"bufio"
	"bytes"

	"github.com/charmbracelet/log"
)

// Writer forwards each non-empty line written to it to Log at Level.
type Writer struct {
	Log   *log.Logger
	Level log.Level
}

func (l *Writer) Write(p []byte) (n int, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(p))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		l.Log.Log(l.Level, line)
	}

	return len(p), nil
}
