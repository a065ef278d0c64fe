package relay

import "go.uber.org/atomic"

type counters struct {
	messages atomic.Uint64
	bytes    atomic.Uint64
}

type stats struct {
	dirs [2]counters
}

func (s *stats) record(d Direction, n int) {
	s.dirs[d].messages.Inc()
	s.dirs[d].bytes.Add(uint64(n))
}

// DirectionStats counts plaintext forwarded in one direction.
type DirectionStats struct {
	Messages uint64
	Bytes    uint64
}

type Stats struct {
	DownstreamToUpstream DirectionStats
	UpstreamToDownstream DirectionStats
}

func (s *stats) snapshot() Stats {
	load := func(d Direction) DirectionStats {
		return DirectionStats{
			Messages: s.dirs[d].messages.Load(),
			Bytes:    s.dirs[d].bytes.Load(),
		}
	}
	return Stats{
		DownstreamToUpstream: load(DownstreamToUpstream),
		UpstreamToDownstream: load(UpstreamToDownstream),
	}
}
