// Package axis describes histogram dimensions.
//
// A numeric axis partitions a numeric range into contiguous right-open bins
// [edge[i], edge[i+1]) plus two sentinel cells for values below the first or
// at-or-above the last edge. Its dense index layout is fixed: 0 is the
// underflow cell, 1..B are the bins, B+1 is the overflow cell.
//
// A categorical axis maps labels to stable integer indices in first-seen
// order. Growable categorical axes admit new labels on first use; fixed ones
// reject them with *ErrUnknownLabel.
//
// Rebinnings (NumericCoarsening, LabelGrouping) describe how every dense cell
// of an existing axis folds onto a cell of a coarser replacement axis.
package axis
