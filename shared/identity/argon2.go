package identity

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Params defines the memory and CPU cost factors for Argon2id.
type Params struct {
	Memory      uint32 // RAM usage in KB (e.g., 64*1024 = 64MB)
	Iterations  uint32 // Number of passes over the memory
	Parallelism uint8  // Number of threads/cores to use
	SaltLength  uint32 // Random salt length in bytes
	KeyLength   uint32 // Final hash length in bytes
}

// DefaultParams are sized for a container with 0.5 - 1 CPU core.
var DefaultParams = &Params{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// HashSecret derives an Argon2id hash of secret and encodes it in PHC format,
// so the parameters travel with the hash.
func HashSecret(secret string, p *Params) (string, error) {
	if p == nil {
		p = DefaultParams
	}
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("crypto/rand failed: %w", err)
	}

	hash := argon2.IDKey([]byte(secret), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifySecret checks secret against a PHC encoded Argon2id hash in constant time.
func VerifySecret(secret, encodedHash string) (bool, error) {
	p, salt, hash, err := decodeHash(encodedHash)
	if err != nil {
		return false, fmt.Errorf("invalid hash format: %w", err)
	}

	otherHash := argon2.IDKey([]byte(secret), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)

	return subtle.ConstantTimeCompare(hash, otherHash) == 1, nil
}

// decodeHash parses the "$argon2id$v=19$m=65536,t=3,p=2$salt$hash" string.
func decodeHash(encodedHash string) (p *Params, salt, hash []byte, err error) {
	vals := strings.Split(encodedHash, "$")
	if len(vals) != 6 || vals[1] != "argon2id" {
		return nil, nil, nil, fmt.Errorf("hash has wrong parts")
	}

	var version int
	if _, err = fmt.Sscanf(vals[2], "v=%d", &version); err != nil {
		return nil, nil, nil, err
	}
	if version != argon2.Version {
		return nil, nil, nil, fmt.Errorf("incompatible version")
	}

	p = &Params{}
	if _, err = fmt.Sscanf(vals[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return nil, nil, nil, err
	}

	if salt, err = base64.RawStdEncoding.DecodeString(vals[4]); err != nil {
		return nil, nil, nil, err
	}
	if hash, err = base64.RawStdEncoding.DecodeString(vals[5]); err != nil {
		return nil, nil, nil, err
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(hash))

	return p, salt, hash, nil
}
