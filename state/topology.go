package state

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrBadTopology = errors.New("malformed topology entry")

type Pair[Ty1, Ty2 any] struct {
	V1 Ty1
	V2 Ty2
}

/*
ParseTopology reads a link descriptor such as

	1-2, 5-4, 3-2, 5-1

Each entry links two routers by their 1-based creation index. Malformed entries are
skipped and reported in the returned error; the well-formed pairs are always returned.
*/
func ParseTopology(descriptor string) ([]Pair[int, int], error) {
	pairs := make([]Pair[int, int], 0)
	var errs []error
	for _, raw := range strings.Split(descriptor, ",") {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		spl := strings.Split(entry, "-")
		if len(spl) != 2 {
			errs = append(errs, fmt.Errorf("%w %q: expected a-b", ErrBadTopology, entry))
			continue
		}
		a, errA := strconv.Atoi(strings.TrimSpace(spl[0]))
		b, errB := strconv.Atoi(strings.TrimSpace(spl[1]))
		if errA != nil || errB != nil {
			errs = append(errs, fmt.Errorf("%w %q: indexes must be integers", ErrBadTopology, entry))
			continue
		}
		if a < 1 || b < 1 {
			errs = append(errs, fmt.Errorf("%w %q: indexes start at 1", ErrBadTopology, entry))
			continue
		}
		pairs = append(pairs, Pair[int, int]{a, b})
	}
	return pairs, errors.Join(errs...)
}
