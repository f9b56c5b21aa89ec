// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package overlap

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/repdist/downsample"
	"github.com/grailbio/repdist/repertoire"
)

// Request asks for one metric column: a metric computed on clonotypes keyed
// by Intersection after the table has been downsampled.
type Request struct {
	Intersection repertoire.Intersection `json:"intersection"`
	Type         Metric                  `json:"type"`
	Downsampling downsample.Config       `json:"downsampling"`
}

// DefaultRequests is used when no request is given.
func DefaultRequests() []Request {
	return []Request{{
		Intersection: repertoire.CDR3ntVJ,
		Type:         F1,
		Downsampling: downsample.Config{Strategy: downsample.Hypergeometric, Chooser: downsample.Auto},
	}}
}

// UnmarshalJSON decodes a request, requiring both intersection and type.
func (r *Request) UnmarshalJSON(data []byte) error {
	var j struct {
		Intersection *repertoire.Intersection `json:"intersection"`
		Type         *Metric                  `json:"type"`
		Downsampling *downsample.Config       `json:"downsampling"`
	}
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	if j.Intersection == nil {
		return errors.E(errors.Invalid, "metric request has no intersection")
	}
	if j.Type == nil {
		return errors.E(errors.Invalid, "metric request has no type")
	}
	*r = Request{Intersection: *j.Intersection, Type: *j.Type}
	if j.Downsampling != nil {
		r.Downsampling = *j.Downsampling
	}
	return nil
}

// Label is the column name of the request, "<type>_<intersection>".
func (r Request) Label() string {
	return fmt.Sprintf("%v_%v", r.Type, r.Intersection)
}

// Validate checks that every field of r holds a supported value.
func (r Request) Validate() error {
	if _, err := r.Type.MarshalText(); err != nil {
		return err
	}
	if _, err := r.Intersection.MarshalText(); err != nil {
		return err
	}
	_, err := downsample.NewConfig(r.Downsampling.Strategy, r.Downsampling.Chooser, r.Downsampling.N)
	return err
}

// ParseRequests decodes a JSON array of requests.  An empty array yields
// DefaultRequests.  Any unsupported value fails the whole list.
func ParseRequests(in io.Reader) ([]Request, error) {
	var reqs []Request
	if err := json.NewDecoder(in).Decode(&reqs); err != nil {
		if errors.Is(errors.NotSupported, err) || errors.Is(errors.Invalid, err) {
			return nil, err
		}
		return nil, errors.E(errors.Invalid, "parse metric requests", err)
	}
	if len(reqs) == 0 {
		return DefaultRequests(), nil
	}
	return reqs, nil
}

// Labels returns one distinct column label per request.  Requests that
// share a label are told apart by their downsampling, and exact duplicates
// by a running number.
func Labels(reqs []Request) []string {
	count := map[string]int{}
	for _, r := range reqs {
		count[r.Label()]++
	}
	labels := make([]string, len(reqs))
	seen := map[string]int{}
	for i, r := range reqs {
		l := r.Label()
		if count[l] > 1 {
			l = fmt.Sprintf("%s_%v", l, r.Downsampling)
		}
		seen[l]++
		if seen[l] > 1 {
			l = fmt.Sprintf("%s_%d", l, seen[l])
		}
		labels[i] = l
	}
	return labels
}

// Group is a set of requests that share intersection and downsampling, and
// therefore share one downsampled table and one set of profiles.
type Group struct {
	Intersection repertoire.Intersection
	Downsampling downsample.Config
	// Columns are indices into the request list, in request order.
	Columns []int
}

type groupKey struct {
	intersection repertoire.Intersection
	downsampling downsample.Config
}

// GroupRequests partitions reqs by (intersection, downsampling).  Groups are
// ordered by their first request.
func GroupRequests(reqs []Request) []Group {
	var groups []Group
	index := map[groupKey]int{}
	for i, r := range reqs {
		key := groupKey{r.Intersection, r.Downsampling}
		g, ok := index[key]
		if !ok {
			g = len(groups)
			index[key] = g
			groups = append(groups, Group{Intersection: r.Intersection, Downsampling: r.Downsampling})
		}
		groups[g].Columns = append(groups[g].Columns, i)
	}
	return groups
}
