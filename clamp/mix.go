package clamp

const (
	mixC1 uint64 = 0xFF51AFD7ED558CCD
	mixC2 uint64 = 0xC4CEB9FE1A85EC53
)

// Mix is the 64-bit MurmurHash3 finalizer. Small input changes flip about half
// of the output bits.
func Mix(v uint64) uint64 {
	v ^= v >> 33
	v *= mixC1
	v ^= v >> 33
	v *= mixC2
	v ^= v >> 33
	return v
}
