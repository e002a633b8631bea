package bootstrap

// Enumerate drives a count-then-fill call: fill(nil) reports how many entries
// exist, then fill is called again with a slice of that size. The result is
// truncated to the number of entries the second call wrote.
func Enumerate[T any](fill func(out []T) (int, error)) ([]T, error) {
	count, err := fill(nil)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	out := make([]T, count)
	written, err := fill(out)
	if err != nil {
		return nil, err
	}
	if written < count {
		out = out[:written]
	}

	return out, nil
}
