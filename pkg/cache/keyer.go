package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// keyVersion changes whenever the cached value format or the crop
// algorithm changes, so stale entries are simply never read again.
const keyVersion = "v1"

// Keyer builds cache keys.
type Keyer interface {
	// CropKey returns the key for the cropped viewBox of a document whose
	// source hashes to docHash.
	CropKey(docHash string, opts CropKeyOpts) string
}

// CropKeyOpts holds every option that changes a crop result.
type CropKeyOpts struct {
	Size     int
	Scale    float64
	Renderer string
}

// DefaultKeyer produces readable, unprefixed keys of the form
//
//	crop:v1:<renderer>:<size>:<scale>:<docHash>
type DefaultKeyer struct{}

// NewDefaultKeyer creates a keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CropKey implements Keyer.
func (DefaultKeyer) CropKey(docHash string, opts CropKeyOpts) string {
	return strings.Join([]string{
		"crop",
		keyVersion,
		opts.Renderer,
		strconv.Itoa(opts.Size),
		strconv.FormatFloat(opts.Scale, 'g', -1, 64),
		docHash,
	}, ":")
}

// Hash returns the hex SHA-256 digest of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
