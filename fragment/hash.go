package fragment

import (
	"crypto/sha256"

	"github.com/cespare/xxhash/v2"
)

// Hasher computes the content-derived identifier of a fragment's
// encoded bytes. It must be deterministic and pure; the core requires
// nothing stronger, but §6.2 prefers cryptographic strength, which is
// why SHA256Hasher is the default.
type Hasher interface {
	Hash(data []byte) FID
}

// SHA256Hasher is the default Hasher: collision-resistant, suitable
// for production stores where fragments from untrusted or long-lived
// data must never collide.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(data []byte) FID {
	return sha256.Sum256(data)
}

// XXHasher is a fast, non-cryptographic Hasher. It is not
// collision-resistant in the adversarial sense and is intended for
// tests and throwaway fixtures, not for stores holding data from
// untrusted sources. The 64-bit digest occupies the first 8 bytes of
// the FID; the remainder stays zero.
type XXHasher struct{}

func (XXHasher) Hash(data []byte) FID {
	var fid FID
	h := xxhash.Sum64(data)
	fid[0] = byte(h >> 56)
	fid[1] = byte(h >> 48)
	fid[2] = byte(h >> 40)
	fid[3] = byte(h >> 32)
	fid[4] = byte(h >> 24)
	fid[5] = byte(h >> 16)
	fid[6] = byte(h >> 8)
	fid[7] = byte(h)
	return fid
}
