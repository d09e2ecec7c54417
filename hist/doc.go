// Package hist implements the N-dimensional weighted histogram accumulator.
//
// A Histogram owns an ordered set of axes and a dense row-major array with
// one weighted-sum cell per combination of axis cells, including the numeric
// sentinel cells. Filling a growable categorical axis with an unseen label is
// not an error: the axis grows and the dense array is re-laid out in place.
//
// Histograms implement the accum.Value contract. Merging requires identical
// numeric axes; growable categorical axes union their label sets, which keeps
// results independent of how events were chunked. A parallel sum-of-squared-
// weights array is maintained from the first weighted fill onward, so
// per-cell variances stay available under merging and scaling.
//
// Fills are columnar: FillBatch binds each axis to the batch column of the
// same name and accumulates every event, or every jagged element in
// lock-step when jagged columns are present. Transformations (SumOver,
// Integrate, Rebin) return new histograms; Scale mutates in place.
package hist
