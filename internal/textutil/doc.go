// Package textutil provides text processing utilities shared across the
// pipeline: transcript segment cleaning, markdown normalization for generated
// documents, and filename sanitization.
package textutil
