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

package elevation

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/transect"
)

// Func is an adapter to allow the use of ordinary functions as elevation
// sources.
type Func func(ctx context.Context, p geom.Point) (float64, bool, error)

// ValueAt implements transect.ElevationSource.
func (f Func) ValueAt(ctx context.Context, p geom.Point) (float64, bool, error) {
	return f(ctx, p)
}

// Retry wraps an elevation source, retrying lookups that return errors
// with exponential backoff. Retrying stops after MaxRetries failed
// attempts or when the context of the lookup is done.
type Retry struct {
	Source     transect.ElevationSource
	MaxRetries uint64

	// InitialInterval is the first wait between attempts. If zero, the
	// backoff package default is used.
	InitialInterval time.Duration

	Log logrus.FieldLogger
}

func (r *Retry) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if r.InitialInterval > 0 {
		b.InitialInterval = r.InitialInterval
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, r.MaxRetries), ctx)
}

func (r *Retry) notify(err error, d time.Duration) {
	if r.Log == nil {
		return
	}
	r.Log.WithFields(logrus.Fields{
		"error": err,
		"wait":  d,
	}).Warn("elevation lookup failed; retrying")
}

// ValueAt implements transect.ElevationSource.
func (r *Retry) ValueAt(ctx context.Context, p geom.Point) (float64, bool, error) {
	var (
		v  float64
		ok bool
	)
	err := backoff.RetryNotify(
		func() error {
			var err error
			v, ok, err = r.Source.ValueAt(ctx, p)
			return err
		},
		r.backOff(ctx),
		r.notify,
	)
	if err != nil {
		return 0, false, err
	}
	return v, ok, nil
}

// ValuesAt implements transect.BatchElevationSource. Sources without
// batch support are queried one point at a time.
func (r *Retry) ValuesAt(ctx context.Context, p []geom.Point) ([]float64, []bool, error) {
	b, isBatch := r.Source.(transect.BatchElevationSource)
	if !isBatch {
		v := make([]float64, len(p))
		ok := make([]bool, len(p))
		for i, pp := range p {
			var err error
			if v[i], ok[i], err = r.ValueAt(ctx, pp); err != nil {
				return nil, nil, err
			}
		}
		return v, ok, nil
	}
	var (
		v  []float64
		ok []bool
	)
	err := backoff.RetryNotify(
		func() error {
			var err error
			v, ok, err = b.ValuesAt(ctx, p)
			return err
		},
		r.backOff(ctx),
		r.notify,
	)
	if err != nil {
		return nil, nil, err
	}
	return v, ok, nil
}
