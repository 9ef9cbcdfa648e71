package process

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	apperrors "tfevents/internal/errors"
)

// lineQueueSize bounds how far a streamer can run ahead of the wait loop.
const lineQueueSize = 1024

// Line is one line read from a child's output, or the read failure that
// took its place.
type Line struct {
	Text string
	Err  error
}

// streamer reads one pipe line by line and queues each line for the wait loop.
// It is the only writer of lines and closes it once the source is exhausted.
type streamer struct {
	source io.Reader
	lines  chan Line
}

func newStreamer(source io.Reader) *streamer {
	return &streamer{
		source: source,
		lines:  make(chan Line, lineQueueSize),
	}
}

// stream forwards lines in source order until end of stream or a read
// failure. Lines that are not valid UTF-8 are reported as unreadable and
// reading continues with the next line. A source closed underneath the
// reader counts as end of stream.
func (s *streamer) stream() {
	defer close(s.lines)

	reader := bufio.NewReader(s.source)
	for {
		text, err := reader.ReadString('\n')
		if len(text) > 0 {
			s.lines <- toLine(text)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				s.lines <- Line{Err: apperrors.NewIOError("read", err)}
			}
			return
		}
	}
}

func toLine(text string) Line {
	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")
	if !utf8.ValidString(text) {
		return Line{Err: apperrors.ErrUnreadableLine}
	}
	return Line{Text: text}
}
