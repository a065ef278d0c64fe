package relay

import (
	"bytes"
	"errors"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureRoundTrip(t *testing.T) {
	for _, level := range []CaptureLevel{CaptureFast, CaptureDefault, CaptureBest} {
		var buf bytes.Buffer
		c, err := NewCapture(&buf, level)
		require.NoError(t, err)

		in := []Record{
			{DownstreamToUpstream, "hello"},
			{UpstreamToDownstream, "line one\nline two\twith tab"},
			{DownstreamToUpstream, ""},
			{UpstreamToDownstream, "ünïcode ✓"},
		}
		for _, r := range in {
			require.NoError(t, c.Record(r.Direction, r.Text))
		}
		require.NoError(t, c.Close())

		out, err := ReadCapture(&buf)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestReadCaptureRejectsGarbage(t *testing.T) {
	var buf bytes.Buffer
	zw := lz4.NewWriter(&buf)
	_, _ = zw.Write([]byte("sideways\t\"x\"\n"))
	require.NoError(t, zw.Close())

	_, err := ReadCapture(&buf)
	assert.True(t, errors.Is(err, ErrBadCapture), "got %v", err)
}

func TestDirectionString(t *testing.T) {
	for _, d := range []Direction{DownstreamToUpstream, UpstreamToDownstream} {
		back, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, back)
	}
	_, err := ParseDirection("left")
	assert.Error(t, err)
}
