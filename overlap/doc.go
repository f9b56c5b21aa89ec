// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package overlap computes pairwise similarity between the samples of a
  repertoire table.

  Each Request names a clonotype identity (repertoire.Intersection), a
  Metric, and a downsampling configuration.  Evaluate groups requests that
  share identity and downsampling, so a group downsamples the table and
  builds per-sample clonotype frequency profiles exactly once:

    requests -> GroupRequests -> downsample.Apply -> NewProfiles -> Compute

  Every metric is symmetric.  It is computed once per unordered sample pair
  and stored in a symmetric matrix, so the (s1, s2) and (s2, s1) values are
  the same float64.

  Metrics over the shared clonotypes of two samples, with f1 and f2 their
  frequencies in each sample:

    F1                sqrt(sum(f1) * sum(f2))
    F2                sum(sqrt(f1 * f2))
    jaccard           |shared| / |union|
    D                 |shared| / (|clonotypes1| * |clonotypes2|)
    correlation       Pearson correlation of f1 and f2
    sharedClonotypes  |shared|

  Result assembles the values into a full table (every ordered pair) and a
  unique table (sample1 <= sample2), in wide or long layout.
*/
package overlap
