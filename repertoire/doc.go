// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

/*Package repertoire holds immune-repertoire tables: one row per clonotype
  observed in a sample, with the read count supporting it.

  Bulk tables carry a single receptor chain per row.  Paired (single-cell)
  tables carry both chains, named A and B.  Clonotype identity between
  samples is decided by an Intersection, which selects the row fields that
  make up the clonotype key (see Key).

  ReadTable parses delimiter-separated text into a Table.  The header is
  normalized the same way for every input: surrounding whitespace, double
  quotes and inner spaces are dropped, "count" is accepted for
  "numberOfreads", and paired columns may be written either as CDR3ntA or
  CDR3nt_A.
*/
package repertoire
