package bootstrap

// MissingExtensions returns the requested names that do not appear in
// available, in request order. Matching is exact.
func MissingExtensions(available, requested []string) []string {
	availableSet := make(map[string]struct{}, len(available))
	for _, name := range available {
		availableSet[name] = struct{}{}
	}

	var missing []string
	for _, name := range requested {
		if _, hasExt := availableSet[name]; !hasExt {
			missing = append(missing, name)
		}
	}
	return missing
}

// SupportsExtensions reports whether every requested instance extension is
// available from the runtime. A missing extension is not an error; err is only
// set when the runtime could not be queried.
func SupportsExtensions(rt Runtime, requested []string) (bool, error) {
	missing, err := missingInstanceExtensions(rt, requested)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func missingInstanceExtensions(rt Runtime, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return nil, nil
	}

	available, err := Enumerate(rt.EnumerateInstanceExtensions)
	if err != nil {
		return nil, err
	}

	return MissingExtensions(available, requested), nil
}
