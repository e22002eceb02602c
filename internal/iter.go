package internal

import (
	"iter"
)

// IterSeq2Concat concatenates key/value sequences. When used to fill a map,
// a key from a later sequence overrides the same key from an earlier one.
func IterSeq2Concat[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}
