// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/repdist/overlap"
)

var (
	inputPath        string
	requestsPath     string
	fullOutputPath   string
	uniqueOutputPath string
	separator        = flag.String("sep", "", "Input field separator: 'tab', 'comma' or a single character. By default inferred from the file extension or the content")
	seed             = flag.Int64("seed", overlap.DefaultEvalOpts.Seed, "Seed of the hypergeometric downsampling generator")
	layout           = overlap.Wide
)

func init() {
	for _, name := range []string{"input", "i"} {
		flag.StringVar(&inputPath, name, "", "Input TSV or CSV clonotype table")
	}
	for _, name := range []string{"json", "j"} {
		flag.StringVar(&requestsPath, name, "", "JSON array of metric requests")
	}
	for _, name := range []string{"output-full", "o1"} {
		flag.StringVar(&fullOutputPath, name, "", "Output TSV with all ordered sample pairs")
	}
	for _, name := range []string{"output-unique", "o2"} {
		flag.StringVar(&uniqueOutputPath, name, "", "Output TSV with unique sample pairs (sample1 <= sample2)")
	}
	flag.Var(&layout, "layout", "Output layout: 'wide' (one column per metric) or 'long' (sample1, sample2, metric, value)")
}

func parseSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s -input clones.tsv -json metrics.json -output-full full.tsv -output-unique unique.tsv\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(flag.Args(), " "))
	}
	if inputPath == "" || requestsPath == "" || fullOutputPath == "" || uniqueOutputPath == "" {
		usage()
		log.Fatalf("-input, -json, -output-full and -output-unique are required")
	}
	sep, err := parseSeparator(*separator)
	if err != nil {
		log.Fatalf("-sep: %v", err)
	}
	opts := overlap.Opts{
		InputPath:        inputPath,
		RequestsPath:     requestsPath,
		FullOutputPath:   fullOutputPath,
		UniqueOutputPath: uniqueOutputPath,
		Separator:        sep,
		Layout:           layout,
		Seed:             *seed,
	}
	ctx := vcontext.Background()
	if err := overlap.Run(ctx, &opts); err != nil {
		log.Fatalf(err.Error())
	}
	log.Debug.Printf("exiting")
}
