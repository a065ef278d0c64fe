package relay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pierrec/lz4/v4"
)

var ErrBadCapture = errors.New("relay: malformed capture record")

// Record is one intercepted plaintext.
type Record struct {
	Direction Direction
	Text      string
}

// Capture appends intercepted plaintext to an lz4 stream, one
// "direction<TAB>quoted text" line per record. It is safe for concurrent use.
type Capture struct {
	mu sync.Mutex
	zw *lz4.Writer
}

type CaptureLevel int

const (
	CaptureFast CaptureLevel = iota
	CaptureDefault
	CaptureBest
)

func NewCapture(w io.Writer, level CaptureLevel) (*Capture, error) {
	zw := lz4.NewWriter(w)
	var err error
	switch level {
	case CaptureFast:
		err = zw.Apply(lz4.CompressionLevelOption(lz4.Fast))
	case CaptureBest:
		err = zw.Apply(lz4.CompressionLevelOption(lz4.Level9))
	default:
		err = zw.Apply(lz4.CompressionLevelOption(lz4.Level4))
	}
	if err != nil {
		return nil, fmt.Errorf("relay: capture: %w", err)
	}
	return &Capture{zw: zw}, nil
}

// Record writes one line and flushes the current lz4 block so a crash loses
// at most the record being written.
func (c *Capture) Record(d Direction, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.zw, "%s\t%s\n", d, strconv.Quote(text)); err != nil {
		return fmt.Errorf("relay: capture: %w", err)
	}
	return c.zw.Flush()
}

// Close writes the lz4 end mark. It does not close the underlying writer.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zw.Close()
}

// ReadCapture decodes every record of a capture stream.
func ReadCapture(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(lz4.NewReader(r))
	sc.Buffer(make([]byte, 64*1024), 8<<20)

	var out []Record
	for line := 1; sc.Scan(); line++ {
		dir, quoted, ok := strings.Cut(sc.Text(), "\t")
		if !ok {
			return out, fmt.Errorf("%w: line %d: no tab", ErrBadCapture, line)
		}
		d, err := ParseDirection(dir)
		if err != nil {
			return out, fmt.Errorf("%w: line %d: %v", ErrBadCapture, line, err)
		}
		text, err := strconv.Unquote(quoted)
		if err != nil {
			return out, fmt.Errorf("%w: line %d: %v", ErrBadCapture, line, err)
		}
		out = append(out, Record{Direction: d, Text: text})
	}
	return out, sc.Err()
}
