package split

import (
	"fmt"
	"math"

	"github.com/kbukum/iterkit/errors"
)

const ratioTolerance = 1e-9

// Descriptor is the window [Offset, Offset+Length) of one partition over
// the shared cursor.
type Descriptor struct {
	Index  int   `json:"index"`
	Offset int64 `json:"offset"`
	Length int64 `json:"length"`
}

// End returns the first position past the window.
func (d Descriptor) End() int64 { return d.Offset + d.Length }

// Contains reports whether pos lies inside the window.
func (d Descriptor) Contains(pos int64) bool {
	return pos >= d.Offset && pos < d.End()
}

func (d Descriptor) String() string {
	return fmt.Sprintf("partition %d [%d, %d)", d.Index, d.Offset, d.End())
}

// Scheme describes how a sequence is partitioned. Build one with Ratio,
// Ratios or Counts.
type Scheme struct {
	total   int64
	ratios  []float64
	counts  []int64
	byCount bool
}

// Ratio splits total batches two ways: floor(total*r) and the remainder.
func Ratio(total int64, r float64) Scheme {
	return Ratios(total, r)
}

// Ratios allocates floor(total*r) batches to each ratio. When the ratios sum
// to 1 the last partition also takes the rounding remainder; when they sum
// to less, a trailing partition receives the rest.
func Ratios(total int64, r ...float64) Scheme {
	return Scheme{total: total, ratios: append([]float64(nil), r...)}
}

// Counts uses the given partition lengths verbatim. The total is their sum.
func Counts(c ...int64) Scheme {
	var total int64
	for _, n := range c {
		total += n
	}
	return Scheme{total: total, counts: append([]int64(nil), c...), byCount: true}
}

// Total returns the number of batches the scheme covers.
func (s Scheme) Total() int64 { return s.total }

// Descriptors validates the scheme and computes its windows. The windows are
// contiguous and cover [0, Total()) exactly once.
func (s Scheme) Descriptors() ([]Descriptor, error) {
	lengths, err := s.lengths()
	if err != nil {
		return nil, err
	}
	out := make([]Descriptor, len(lengths))
	var offset int64
	for i, n := range lengths {
		out[i] = Descriptor{Index: i, Offset: offset, Length: n}
		offset += n
	}
	return out, nil
}

func (s Scheme) lengths() ([]int64, error) {
	if s.byCount {
		return s.countLengths()
	}
	return s.ratioLengths()
}

func (s Scheme) countLengths() ([]int64, error) {
	if len(s.counts) == 0 {
		return nil, errors.Configuration("counts", "at least one count is required")
	}
	for i, n := range s.counts {
		if n < 0 {
			return nil, errors.Configuration("counts", fmt.Sprintf("count %d is negative (%d)", i, n))
		}
	}
	if s.total <= 0 {
		return nil, errors.Configuration("counts", "counts must add up to a positive total")
	}
	return append([]int64(nil), s.counts...), nil
}

func (s Scheme) ratioLengths() ([]int64, error) {
	if len(s.ratios) == 0 {
		return nil, errors.Configuration("ratios", "at least one ratio is required")
	}
	if s.total <= 0 {
		return nil, errors.Configuration("total", fmt.Sprintf("total must be positive, got %d", s.total))
	}

	var sum float64
	for i, r := range s.ratios {
		if math.IsNaN(r) || r <= 0 || r >= 1 {
			return nil, errors.Configuration("ratios", fmt.Sprintf("ratio %d must be in (0, 1), got %v", i, r))
		}
		sum += r
	}
	if sum > 1+ratioTolerance {
		return nil, errors.Configuration("ratios", fmt.Sprintf("ratios add up to %v, more than 1", sum))
	}

	lengths := make([]int64, 0, len(s.ratios)+1)
	var allocated int64
	for _, r := range s.ratios {
		n := int64(math.Floor(float64(s.total)*r + ratioTolerance))
		lengths = append(lengths, n)
		allocated += n
	}

	remainder := s.total - allocated
	if math.Abs(sum-1) <= ratioTolerance {
		lengths[len(lengths)-1] += remainder
	} else {
		lengths = append(lengths, remainder)
	}
	return lengths, nil
}
