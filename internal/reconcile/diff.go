// Package reconcile turns successive layout passes into an animated scene.
// Diff classifies keyed entities into enter, update and exit; Scene keeps
// the in-flight transitions and samples them at any instant.
package reconcile

// Item is one keyed entry of an ordered sequence.
type Item[K comparable, V any] struct {
	Key   K
	Value V
}

// Change is an entity present in both sequences.
type Change[K comparable, V any] struct {
	Key  K
	Prev V
	Next V
}

// Script is the edit script between two sequences. Enter and Update follow
// the order of the next sequence, Exit the order of the previous one.
type Script[K comparable, V any] struct {
	Enter  []Item[K, V]
	Update []Change[K, V]
	Exit   []Item[K, V]
}

// Empty reports whether the script changes nothing structurally.
func (s Script[K, V]) Empty() bool {
	return len(s.Enter) == 0 && len(s.Exit) == 0
}

// EnterKeys returns the keys of entering entities.
func (s Script[K, V]) EnterKeys() []K { return keys(s.Enter) }

// ExitKeys returns the keys of exiting entities.
func (s Script[K, V]) ExitKeys() []K { return keys(s.Exit) }

// UpdateKeys returns the keys of updated entities.
func (s Script[K, V]) UpdateKeys() []K {
	out := make([]K, len(s.Update))
	for i, c := range s.Update {
		out[i] = c.Key
	}
	return out
}

func keys[K comparable, V any](items []Item[K, V]) []K {
	out := make([]K, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}

// Diff computes the keyed edit script from prev to next. A key repeated
// within one sequence is only considered at its first occurrence.
func Diff[K comparable, V any](prev, next []Item[K, V]) Script[K, V] {
	before := make(map[K]V, len(prev))
	for _, it := range prev {
		if _, dup := before[it.Key]; !dup {
			before[it.Key] = it.Value
		}
	}

	var s Script[K, V]
	seen := make(map[K]bool, len(next))
	for _, it := range next {
		if seen[it.Key] {
			continue
		}
		seen[it.Key] = true
		if old, ok := before[it.Key]; ok {
			s.Update = append(s.Update, Change[K, V]{Key: it.Key, Prev: old, Next: it.Value})
		} else {
			s.Enter = append(s.Enter, it)
		}
	}

	exited := make(map[K]bool)
	for _, it := range prev {
		if seen[it.Key] || exited[it.Key] {
			continue
		}
		exited[it.Key] = true
		s.Exit = append(s.Exit, it)
	}
	return s
}
