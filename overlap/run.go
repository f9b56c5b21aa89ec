// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package overlap

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/repdist/repertoire"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// Opts configures Run.
type Opts struct {
	// InputPath is a delimiter-separated repertoire table, optionally
	// gzip-compressed (".gz").
	InputPath string
	// RequestsPath is a JSON array of metric requests.
	RequestsPath string
	// FullOutputPath receives every ordered sample pair.
	FullOutputPath string
	// UniqueOutputPath receives the pairs with sample1 <= sample2.
	UniqueOutputPath string
	// Separator of the input table.  If zero, it is inferred from the file
	// extension (.tsv, .csv) or else detected from the content.
	Separator rune
	Layout    Layout
	Seed      int64
}

// separatorFor returns the separator implied by the extension of path, or
// zero if the extension says nothing.
func separatorFor(path string) rune {
	path = strings.TrimSuffix(path, ".gz")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv":
		return '\t'
	case ".csv":
		return ','
	}
	return 0
}

func readTable(ctx context.Context, opts *Opts) (t *repertoire.Table, err error) {
	in, err := file.Open(ctx, opts.InputPath)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", opts.InputPath)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = errors.Wrapf(e, "close %s", opts.InputPath)
		}
	}()
	var r io.Reader = in.Reader(ctx)
	if strings.HasSuffix(opts.InputPath, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "gunzip %s", opts.InputPath)
		}
		defer gz.Close() // nolint: errcheck
		r = gz
	}
	sep := opts.Separator
	if sep == 0 {
		sep = separatorFor(opts.InputPath)
	}
	t, err = repertoire.ReadTable(r, repertoire.ReadOpts{Separator: sep})
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", opts.InputPath)
	}
	return t, nil
}

func readRequests(ctx context.Context, path string) (reqs []Request, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() {
		if e := in.Close(ctx); e != nil && err == nil {
			err = errors.Wrapf(e, "close %s", path)
		}
	}()
	if reqs, err = ParseRequests(in.Reader(ctx)); err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return reqs, nil
}

func writeRows(ctx context.Context, path string, res *Result, layout Layout, rows []PairRow) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if e := out.Close(ctx); e != nil && err == nil {
			err = errors.Wrapf(e, "close %s", path)
		}
	}()
	if err = res.Write(out.Writer(ctx), layout, rows); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// Run reads the repertoire table and the metric requests named in opts,
// evaluates every request, and writes the full and unique pair tables.
func Run(ctx context.Context, opts *Opts) error {
	reqs, err := readRequests(ctx, opts.RequestsPath)
	if err != nil {
		return err
	}
	t, err := readTable(ctx, opts)
	if err != nil {
		return err
	}
	res, err := Evaluate(t, reqs, EvalOpts{Seed: opts.Seed})
	if err != nil {
		return err
	}
	if err := writeRows(ctx, opts.FullOutputPath, res, opts.Layout, res.Full()); err != nil {
		return err
	}
	if opts.UniqueOutputPath != "" {
		if err := writeRows(ctx, opts.UniqueOutputPath, res, opts.Layout, res.Unique()); err != nil {
			return err
		}
	}
	log.Printf("wrote %d samples x %d metrics", len(res.Samples), len(res.Labels))
	return nil
}
