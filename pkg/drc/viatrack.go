package drc

import (
	"fmt"
	"math"

	"github.com/OpenTraceLab/padcheck/pkg/geom"
)

// ViaTrackClearance returns the gap between a via's drill and a track
// segment's copper, and the raw centre-to-centreline distance.
func ViaTrackClearance(via geom.Point, drill float64, seg geom.Segment, width float64) (reduced, raw float64) {
	raw = geom.MinDistancePointSegment(via, seg.A, seg.B)
	return raw - (width+drill)/2, raw
}

type viaTrackFailure struct {
	via     int
	message string
}

// checkViaTracks compares every via with every track on another net. tick
// is called once per via.
func checkViaTracks(env Env, tick func()) []viaTrackFailure {
	b := env.Board
	limit := env.Rules.ViaToTrack
	tolerance := env.Rules.ViaTrackTolerance

	var failures []viaTrackFailure
	for vi := range b.Vias {
		tick()
		v := &b.Vias[vi]
		for ti := range b.Tracks {
			t := &b.Tracks[ti]
			if t.Net == v.Net {
				continue
			}

			worst, hit := math.Inf(1), geom.Segment{}
			for _, seg := range t.Segments() {
				reduced, raw := ViaTrackClearance(v.Position, v.Drill, seg, t.Width)
				// Zero raw distance is the via sitting on the track's own
				// endpoint.
				if raw == 0 {
					continue
				}
				if math.Abs(reduced) > tolerance && reduced < limit && reduced < worst {
					worst, hit = reduced, seg
				}
			}
			if math.IsInf(worst, 1) {
				continue
			}

			env.Sink.Flag(v.ID)
			env.Sink.Flag(t.ID)
			failures = append(failures, viaTrackFailure{
				via: vi,
				message: fmt.Sprintf("Via (%s) at %s is %d away from track (%s) (%s ; %s). Should be %d",
					b.NetName(v.Net), pos(v.Position), int64(worst),
					b.NetName(t.Net), pos(hit.A), pos(hit.B), int64(limit)),
			})
		}
	}
	return failures
}
