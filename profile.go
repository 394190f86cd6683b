/*
Copyright © 2019 the InMAP authors.
This file is part of the InMAP transect tool.

The InMAP transect tool is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

The InMAP transect tool is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with the InMAP transect tool.  If not, see <http://www.gnu.org/licenses/>.
*/

package transect

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// ElevationSource provides surface elevations. ok is false when p is
// outside of the source coverage. Implementations must be safe for
// concurrent use and must not block past the deadline of ctx.
type ElevationSource interface {
	ValueAt(ctx context.Context, p geom.Point) (v float64, ok bool, err error)
}

// BatchElevationSource is an ElevationSource that can look up
// many locations in one call.
type BatchElevationSource interface {
	ElevationSource
	ValuesAt(ctx context.Context, p []geom.Point) (v []float64, ok []bool, err error)
}

// Profiles holds the elevation profile of each transect, keyed by
// transect ID. Each profile is sorted by position.
type Profiles map[int][]SamplePoint

// IDs returns the transect IDs in ascending order.
func (p Profiles) IDs() []int {
	ids := make([]int, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Profile returns the position-sorted samples of transect id.
func (p Profiles) Profile(id int) []SamplePoint { return p[id] }

// Samples returns all sample points ordered by transect ID and position.
func (p Profiles) Samples() []SamplePoint {
	var o []SamplePoint
	for _, id := range p.IDs() {
		o = append(o, p[id]...)
	}
	return o
}

// Assembler samples transects and looks up the elevation of every sample.
type Assembler struct {
	Source ElevationSource

	// SampleCount is the number of samples per transect.
	SampleCount int

	// Workers is the number of concurrent lookups. If <= 0,
	// runtime.GOMAXPROCS(0) is used.
	Workers int

	// QueryTimeout is how long to wait for a single lookup (or a single batch
	// lookup) before treating the result as missing. Zero means no limit.
	QueryTimeout time.Duration

	// Log receives progress messages. If nil, logrus.StandardLogger()
	// is used.
	Log logrus.FieldLogger
}

func (a *Assembler) log() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

// Assemble samples each transect and fills in the sample elevations.
// Lookup errors and timeouts result in missing elevations rather than
// failures. If every elevation is missing, the profiles are returned
// along with ErrNoElevationData so that they can still be saved.
func (a *Assembler) Assemble(ctx context.Context, transects []Transect) (Profiles, error) {
	if len(transects) == 0 {
		return nil, ErrEmptyTransectSet
	}
	samples := make([][]SamplePoint, len(transects))
	for i, t := range transects {
		s, err := Sample(t, a.SampleCount)
		if err != nil {
			return nil, err
		}
		samples[i] = s
	}

	nprocs := a.Workers
	if nprocs <= 0 {
		nprocs = runtime.GOMAXPROCS(0)
	}
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for i := pp; i < len(samples); i += nprocs {
				if ctx.Err() != nil {
					return
				}
				a.fill(ctx, samples[i])
			}
		}(pp)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := make(Profiles, len(transects))
	var n, valid int
	for _, s := range samples {
		for _, sp := range s {
			o[sp.TransectID] = append(o[sp.TransectID], sp)
			n++
			if sp.Valid {
				valid++
			}
		}
	}
	for _, p := range o {
		sort.SliceStable(p, func(i, j int) bool { return p[i].Position < p[j].Position })
	}
	a.log().WithFields(logrus.Fields{
		"transects": len(transects),
		"samples":   n,
		"missing":   n - valid,
	}).Info("assembled elevation profiles")
	if valid == 0 {
		return o, ErrNoElevationData
	}
	return o, nil
}

// fill sets the elevations of the samples of a single transect. Sources
// that support batch lookups are queried once per transect.
func (a *Assembler) fill(ctx context.Context, samples []SamplePoint) {
	locs := make([]geom.Point, len(samples))
	for i, s := range samples {
		locs[i] = s.Location
	}
	if _, ok := a.Source.(BatchElevationSource); ok {
		v, valid, err := a.lookup(ctx, locs)
		if err != nil || len(v) != len(samples) || len(valid) != len(samples) {
			a.log().WithFields(logrus.Fields{
				"transect": samples[0].TransectID,
				"error":    err,
			}).Debug("batch elevation lookup failed")
			return
		}
		for i := range samples {
			samples[i].Elevation, samples[i].Valid = v[i], valid[i]
		}
		return
	}
	for i := range samples {
		v, valid, err := a.lookup(ctx, locs[i:i+1])
		if err != nil {
			a.log().WithFields(logrus.Fields{
				"transect": samples[i].TransectID,
				"position": samples[i].Position,
				"error":    err,
			}).Debug("elevation lookup failed")
			continue
		}
		samples[i].Elevation, samples[i].Valid = v[0], valid[0]
	}
}

type lookupResult struct {
	v   []float64
	ok  []bool
	err error
}

// lookup queries the source, giving up once QueryTimeout has passed.
func (a *Assembler) lookup(ctx context.Context, locs []geom.Point) ([]float64, []bool, error) {
	if a.QueryTimeout <= 0 {
		return a.query(ctx, locs)
	}
	ctx, cancel := context.WithTimeout(ctx, a.QueryTimeout)
	defer cancel()
	c := make(chan lookupResult, 1)
	go func() {
		v, ok, err := a.query(ctx, locs)
		c <- lookupResult{v: v, ok: ok, err: err}
	}()
	select {
	case r := <-c:
		return r.v, r.ok, r.err
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

func (a *Assembler) query(ctx context.Context, locs []geom.Point) ([]float64, []bool, error) {
	if b, ok := a.Source.(BatchElevationSource); ok {
		return b.ValuesAt(ctx, locs)
	}
	v := make([]float64, len(locs))
	valid := make([]bool, len(locs))
	for i, p := range locs {
		var err error
		v[i], valid[i], err = a.Source.ValueAt(ctx, p)
		if err != nil {
			return nil, nil, err
		}
	}
	return v, valid, nil
}
