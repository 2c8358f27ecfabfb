package fragment

import "encoding/hex"

// FID is an opaque, fixed-width, content-derived identifier for one
// immutable fragment. Two fragments with identical encoded content
// share an FID; hashers that produce fewer than 32 bytes (xxhash, for
// instance) left-align into the array and leave the remainder zero.
type FID [32]byte

// String renders the FID as a lowercase hex string, used as the
// literal key under which the fragment is stored in the KV store.
func (f FID) String() string {
	return hex.EncodeToString(f[:])
}

// IsZero reports whether f is the zero FID, used to represent "no
// fragment" (an empty subtree) without a pointer.
func (f FID) IsZero() bool {
	return f == FID{}
}

// ParseFID decodes the hex form produced by FID.String.
func ParseFID(s string) (FID, error) {
	var fid FID
	b, err := hex.DecodeString(s)
	if err != nil {
		return fid, err
	}
	if len(b) != len(fid) {
		return fid, hex.ErrLength
	}
	copy(fid[:], b)
	return fid, nil
}

// Ref is a lightweight handle carrying only an FID, standing in for a
// child fragment that has been persisted but not (yet) resolved.
type Ref struct {
	fid FID
}

// NewRef wraps an FID as a reference.
func NewRef(fid FID) Ref {
	return Ref{fid: fid}
}

// FID returns the referenced fragment's identifier.
func (r Ref) FID() FID {
	return r.fid
}

func (r Ref) String() string {
	return r.fid.String()
}
