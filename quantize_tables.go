package vc2

import "github.com/samber/lo"

// quantFactor and quantOffset implement the dead-zone quantiser's
// per-index factor/offset pair of §4.D. Both grow geometrically with
// index in four-step octaves (index 4 doubles the factor of index 0),
// matching the coarse-graining a CBR bit-budget search needs: moving
// one index changes the effective step size by a small, predictable
// ratio rather than jumping a full octave every time.
func quantFactor(index int) int64 {
	if index < 0 {
		index = 0
	}
	base := int64(1) << uint(index>>2)
	switch index % 4 {
	case 0:
		return 4 * base
	case 1:
		return (503829*base + 52958) / 105917
	case 2:
		return (665857*base + 58854) / 117682
	default:
		return (440253*base + 32722) / 65444
	}
}

func quantOffset(index int) int64 {
	switch {
	case index == 0:
		return 1
	case index == 1:
		return 2
	default:
		return (quantFactor(index) + 1) / 2
	}
}

// maxQuantIndex bounds the CBR search of §4.E: past this point the
// dead zone swallows every coefficient in every kernel, so searching
// further can never shrink a slice's encoded size any more.
const maxQuantIndex = 127

// subbandOrder lists the (level, orientation) pairs a quantisation
// matrix or coefficient scan visits, coarsest LL first, then each
// level's HL/LH/HH from coarsest to finest. Level 0 is the LL band
// alone; level i>0 holds the three detail bands of the i-th level
// counted from the coarsest, which analyze2D produces in its
// (depth-i+1)-th pass.
type subbandOrder struct {
	Level       int // 0 = LL; 1..depth = detail level, 1 is coarsest
	Orientation orientation
}

type orientation int

const (
	orientLL orientation = iota
	orientHL
	orientLH
	orientHH
)

func (o orientation) String() string {
	switch o {
	case orientLL:
		return "LL"
	case orientHL:
		return "HL"
	case orientLH:
		return "LH"
	default:
		return "HH"
	}
}

// subbands returns the subband visiting order for a transform of the
// given depth: LL, then (HL,LH,HH) for level 1 (coarsest) up to depth
// (finest) — matching the coefficient layout analyze2D leaves in a
// transformed plane.
func subbands(depth int) []subbandOrder {
	out := make([]subbandOrder, 0, 3*depth+1)
	out = append(out, subbandOrder{Level: 0, Orientation: orientLL})
	for level := 1; level <= depth; level++ {
		out = append(out,
			subbandOrder{Level: level, Orientation: orientHL},
			subbandOrder{Level: level, Orientation: orientLH},
			subbandOrder{Level: level, Orientation: orientHH},
		)
	}
	return out
}

// defaultQuantMatrix returns the built-in per-subband quantiser offset
// table for kernel at the given depth, one entry per subbands(depth)
// in the same order. LL gets no offset. At the finest level HL/LH get
// 4 and HH gets 6, and each step towards the coarsest level adds 2 to
// all three. The Haar kernels use the same ramp with each base lowered
// by 2. Because subbandQuantIndex subtracts the entry from the slice's
// base index, a larger entry quantises its subband more finely.
func defaultQuantMatrix(kernel Kernel, depth int) []int32 {
	flat := kernel == Haar0 || kernel == Haar1
	return lo.Map(subbands(depth), func(b subbandOrder, _ int) int32 {
		if b.Orientation == orientLL {
			return 0
		}
		levelFromFinest := depth - b.Level // 0 = finest level
		var base int32
		switch b.Orientation {
		case orientHL, orientLH:
			base = 4
		default: // orientHH
			base = 6
		}
		if flat {
			base -= 2
			if base < 0 {
				base = 0
			}
		}
		return base + int32(2*levelFromFinest)
	})
}
