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
	"errors"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
)

// UnmatchedAnchorPolicy specifies what happens to an anchor that does
// not lie on any centerline segment.
type UnmatchedAnchorPolicy int

const (
	// SkipUnmatchedAnchors drops the anchor without creating a transect.
	SkipUnmatchedAnchors UnmatchedAnchorPolicy = iota

	// FailUnmatchedAnchors stops the run with an UnmatchedAnchorError.
	FailUnmatchedAnchors
)

// RunConfig holds the inputs to Run.
type RunConfig struct {
	Params

	// Centerline is the stream centerline.
	Centerline geom.LineString

	// Source provides the elevation of each sample point.
	Source ElevationSource

	// NewLocator creates the segment locator. If nil, NewLinearLocator
	// is used.
	NewLocator LocatorFunc

	// Unmatched specifies how anchors that don't lie on a segment are
	// handled.
	Unmatched UnmatchedAnchorPolicy

	// Workers and QueryTimeout are passed to the Assembler.
	Workers      int
	QueryTimeout time.Duration

	// Log receives progress messages. If nil, logrus.StandardLogger()
	// is used.
	Log logrus.FieldLogger
}

// Result holds the output of Run.
type Result struct {
	Transects []Transect
	Profiles  Profiles

	// Anchors is the number of anchors walked, and Skipped is the number
	// of those that did not produce a transect.
	Anchors, Skipped int
}

// Samples returns all sample points ordered by transect ID and position.
func (r *Result) Samples() []SamplePoint { return r.Profiles.Samples() }

// Run creates transects along the centerline, samples them, and looks up
// the sample elevations. If the elevation source has no data for any
// sample, the result is returned along with ErrNoElevationData.
func Run(ctx context.Context, cfg *RunConfig) (*Result, error) {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	segments, err := Decompose(cfg.Centerline)
	if err != nil {
		return nil, err
	}
	newLocator := cfg.NewLocator
	if newLocator == nil {
		newLocator = NewLinearLocator
	}
	loc := newLocator(segments)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	anchors, err := Walk(ctx, cfg.Centerline, cfg.Spacing)
	if err != nil {
		return nil, err
	}

	r := new(Result)
	for a := range anchors {
		r.Anchors++
		s, ok := loc.Locate(a.Point)
		if !ok {
			if cfg.Unmatched == FailUnmatchedAnchors {
				return nil, &UnmatchedAnchorError{Anchor: a}
			}
			r.Skipped++
			continue
		}
		r.Transects = append(r.Transects, Build(a.Point, s, cfg.TransectLength, len(r.Transects)))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"length":    cfg.Centerline.Length(),
		"segments":  len(segments),
		"anchors":   r.Anchors,
		"transects": len(r.Transects),
		"skipped":   r.Skipped,
	}).Info("created transects")
	if len(r.Transects) == 0 {
		return nil, ErrEmptyTransectSet
	}

	asm := &Assembler{
		Source:       cfg.Source,
		SampleCount:  cfg.SampleCount,
		Workers:      cfg.Workers,
		QueryTimeout: cfg.QueryTimeout,
		Log:          log,
	}
	r.Profiles, err = asm.Assemble(ctx, r.Transects)
	if errors.Is(err, ErrNoElevationData) {
		return r, err
	} else if err != nil {
		return nil, err
	}
	return r, nil
}
