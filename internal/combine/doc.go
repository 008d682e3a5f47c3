/*
Package combine merges the trace files of one run into a single document.

Every process of a chain writes its own file of newline-separated records,
each holding a resourceSpans array. The combiner discovers those files,
decodes every record and concatenates the resourceSpans entries untouched.
The output carries a top-level resourceSpans array too, so a combined
document can itself be combined again.

Inputs ending in .gz or .zst are decompressed transparently; output can be
written plain, gzip or zstd.
*/
package combine
