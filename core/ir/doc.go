// Package ir provides the in-memory document model shared by every stage of
// the corpus conversion pipeline.
//
// A format reader decodes a CollectedFile into one or more Documents. Each
// Document holds an ordered list of Utterances (one per sentence) plus
// document level metadata. Annotators mutate utterances in place and writers
// serialize the result.
//
// # Core Types
//
//   - CollectedFile: raw file content as produced by a collector
//   - Document: one logical document inside a file
//   - Utterance: a single sentence with its id, metadata and annotations
//   - MetadataValue: a typed metadata value (text, int or date)
//
// # Metadata Merging
//
// Metadata is attached at document, division and utterance granularity.
// Two fixed-precedence merges combine it whenever it crosses a structural
// boundary:
//
//   - MergeChild: child values override parent values, except for the
//     structural keys (see StructuralKeys) where the parent wins
//   - MergeSibling: values of adjacent spans sharing a key are combined into
//     a sorted, de-duplicated " | " separated list
//
// Readers and writers call these functions rather than re-deriving merge
// logic.
package ir
