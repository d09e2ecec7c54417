// Package accum defines the mergeable accumulator contract and its closed
// variant set.
//
// A Value is any reduction result with an identity element and an
// associative, commutative merge. Executors fold per-chunk Values into one
// final result; because merge is order-independent, chunks may be processed
// and folded in any order without changing the outcome (modulo floating-point
// rounding).
//
// # Variants
//
//   - Sum: scalar float64 total
//   - Count: int64 event tally
//   - List: append-only sequence (order across merges unspecified)
//   - Set: unique comparable elements
//   - IDSet: uint64 identifiers on a roaring bitmap
//   - Map: string-keyed values merged per key, optionally with a prototype
//     supplying defaults for missing keys
//   - the histogram accumulator in package hist
//
// # Wire transport
//
// Sum, Count, IDSet, Map and histograms can cross a process boundary via
// Encode/Decode; additional kinds hook in through RegisterKind. List and Set
// are in-process accumulators: a generic container cannot name its element
// type on the wire, so distributed processors should return one of the
// encodable kinds instead.
package accum
