// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*
bio-repertoire-distance computes pairwise overlap metrics between the
samples of an immune-repertoire clonotype table.

The input table is delimiter-separated (CSV or TSV, optionally gzipped) with
columns sampleId, numberOfreads (or count), CDR3nt, CDR3aa, VGene and JGene.
Single-cell tables instead carry both chains as CDR3ntA ... JGeneA and
CDR3ntB ... JGeneB.

The metric requests are a JSON array, one object per output column:

  [
    {"intersection": "CDR3ntVJ", "type": "F1",
     "downsampling": {"type": "hypergeometric", "valueChooser": "auto"}},
    {"intersection": "CDR3aa", "type": "jaccard",
     "downsampling": {"type": "top", "n": 1000}}
  ]

intersection is one of CDR3nt, CDR3aa, CDR3ntVJ, CDR3aaVJ.  type is one of
F1, F2, D, jaccard, correlation, sharedClonotypes.  downsampling.type is one
of none, top, cumtop, hypergeometric; hypergeometric takes a valueChooser of
auto, fixed, min or max.

Two tab-separated tables are written: every ordered sample pair
(-output-full) and the pairs with sample1 <= sample2 (-output-unique).

Sample usage:
bio-repertoire-distance \
    -input clones.tsv \
    -json metrics.json \
    -output-full full.tsv \
    -output-unique unique.tsv
*/
package main
