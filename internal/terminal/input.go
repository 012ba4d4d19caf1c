package terminal

import (
	"bufio"
	"io"
)

// lineReader delivers input lines on a channel so the menu can wait on input and interrupts together.
// The channel is closed on EOF.
type lineReader struct {
	lines chan string
	quit  chan struct{}
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{lines: make(chan string), quit: make(chan struct{})}
	go lr.run(r)
	return lr
}

func (lr *lineReader) run(r io.Reader) {
	defer close(lr.lines)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case lr.lines <- sc.Text():
		case <-lr.quit:
			return
		}
	}
}

func (lr *lineReader) close() { close(lr.quit) }
