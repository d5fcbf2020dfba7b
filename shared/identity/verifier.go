package identity

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Verifier turns a presented credential into an Identity.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Identity, error)
}

// APIKey is one entry of the key file. Only the Argon2id hash of the secret is stored.
type APIKey struct {
	ID        string    `yaml:"id"`
	UserID    uuid.UUID `yaml:"userID"`
	CompanyID string    `yaml:"companyID"`
	Role      string    `yaml:"role"`
	Hash      string    `yaml:"hash"`
}

type keyFile struct {
	Keys []APIKey `yaml:"keys"`
}

// KeyVerifier validates "<keyID>.<secret>" API keys.
type KeyVerifier struct {
	keys map[string]APIKey
}

// NewKeyVerifier indexes keys by ID. Duplicate IDs are rejected.
func NewKeyVerifier(keys []APIKey) (*KeyVerifier, error) {
	idx := make(map[string]APIKey, len(keys))
	for _, k := range keys {
		if k.ID == "" || k.Hash == "" {
			return nil, fmt.Errorf("api key entry needs id and hash")
		}
		if _, dup := idx[k.ID]; dup {
			return nil, fmt.Errorf("duplicate api key id %q", k.ID)
		}
		idx[k.ID] = k
	}
	return &KeyVerifier{keys: idx}, nil
}

// LoadKeyVerifier reads the YAML key file at path. An empty path yields a
// verifier that rejects every credential.
func LoadKeyVerifier(path string) (*KeyVerifier, error) {
	if path == "" {
		return NewKeyVerifier(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read api key file: %w", err)
	}
	var kf keyFile
	if err := yaml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("failed to parse api key file %s: %w", path, err)
	}
	return NewKeyVerifier(kf.Keys)
}

// ParseCredential splits "<keyID>.<secret>".
func ParseCredential(credential string) (keyID, secret string, err error) {
	keyID, secret, ok := strings.Cut(strings.TrimSpace(credential), ".")
	if !ok || keyID == "" || secret == "" {
		return "", "", ErrMalformedToken
	}
	return keyID, secret, nil
}

// Verify implements Verifier.
func (v *KeyVerifier) Verify(ctx context.Context, credential string) (*Identity, error) {
	keyID, secret, err := ParseCredential(credential)
	if err != nil {
		return nil, err
	}
	key, ok := v.keys[keyID]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	match, err := VerifySecret(secret, key.Hash)
	if err != nil || !match {
		return nil, ErrInvalidCredentials
	}
	return &Identity{
		UserID:    key.UserID,
		CompanyID: key.CompanyID,
		Role:      key.Role,
	}, nil
}
