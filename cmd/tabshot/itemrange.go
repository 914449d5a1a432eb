package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseItemRange converts an item range string to 0-based indices in the
// order given. Supported formats: "3" (single item), "1-5" (range),
// "1,3,5" (list) and combinations. Repeated items are kept once.
func parseItemRange(spec string, total int) ([]int, error) {
	var indices []int
	seen := make(map[int]bool)
	add := func(n int) {
		if !seen[n] {
			indices = append(indices, n-1)
			seen[n] = true
		}
	}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("empty item in list")
		}
		if strings.Contains(part, "-") {
			bounds := strings.SplitN(part, "-", 2)
			start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
			if err != nil {
				return nil, fmt.Errorf("invalid item number: %s", bounds[0])
			}
			end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
			if err != nil {
				return nil, fmt.Errorf("invalid item number: %s", bounds[1])
			}
			if start < 1 || end > total || start > end {
				return nil, fmt.Errorf("item range %d-%d out of bounds (1-%d)", start, end, total)
			}
			for n := start; n <= end; n++ {
				add(n)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid item number: %s", part)
		}
		if n < 1 || n > total {
			return nil, fmt.Errorf("item %d out of bounds (1-%d)", n, total)
		}
		add(n)
	}
	return indices, nil
}
