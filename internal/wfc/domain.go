package wfc

import "math/bits"

// Domain is a set of pattern IDs in [0, n) kept as a bitset.
type Domain []uint64

func NewDomain(n int) Domain {
	return make(Domain, (n+63)/64)
}

// FullDomain contains every ID in [0, n).
func FullDomain(n int) Domain {
	d := NewDomain(n)
	for i := range d {
		d[i] = ^uint64(0)
	}
	if rem := n % 64; rem != 0 {
		d[len(d)-1] = 1<<rem - 1
	}
	return d
}

func (d Domain) Has(id int) bool {
	return d[id/64]&(1<<(id%64)) != 0
}

func (d Domain) Add(id int) {
	d[id/64] |= 1 << (id % 64)
}

func (d Domain) Remove(id int) {
	d[id/64] &^= 1 << (id % 64)
}

func (d Domain) Len() (n int) {
	for _, w := range d {
		n += bits.OnesCount64(w)
	}
	return
}

func (d Domain) Empty() bool {
	for _, w := range d {
		if w != 0 {
			return false
		}
	}
	return true
}

func (d Domain) Clear() {
	for i := range d {
		d[i] = 0
	}
}

func (d Domain) Clone() Domain {
	c := make(Domain, len(d))
	copy(c, d)
	return c
}

// UnionWith adds every member of o to d.
func (d Domain) UnionWith(o Domain) {
	for i := range d {
		d[i] |= o[i]
	}
}

// IntersectWith keeps only the members of d that are also in o and
// reports whether d lost any.
func (d Domain) IntersectWith(o Domain) (changed bool) {
	for i := range d {
		w := d[i] & o[i]
		if w != d[i] {
			d[i] = w
			changed = true
		}
	}
	return
}

// Set makes d contain exactly id.
func (d Domain) Set(id int) {
	d.Clear()
	d.Add(id)
}

// First returns the smallest member, or -1 for an empty domain.
func (d Domain) First() int {
	for i, w := range d {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w)
		}
	}
	return -1
}

// IDs lists the members in ascending order.
func (d Domain) IDs() []int {
	return d.AppendIDs(make([]int, 0, d.Len()))
}

// AppendIDs appends the members to dst in ascending order.
func (d Domain) AppendIDs(dst []int) []int {
	for i, w := range d {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			dst = append(dst, i*64+b)
			w &= w - 1
		}
	}
	return dst
}

// Nth returns the k-th smallest member (0-based), or -1 if there is none.
func (d Domain) Nth(k int) int {
	for i, w := range d {
		c := bits.OnesCount64(w)
		if k >= c {
			k -= c
			continue
		}
		for range k {
			w &= w - 1
		}
		return i*64 + bits.TrailingZeros64(w)
	}
	return -1
}
