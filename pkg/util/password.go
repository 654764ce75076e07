package util

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

var (
	ErrPasswordTooLong   = errors.New("password exceeds the maximum hashable length")
	ErrUnsupportedHasher = errors.New("unsupported password hasher")
)

// PasswordHasher produces salted one-way digests. Verify accepts every digest
// format this package understands, so switching hashers never locks out
// existing accounts.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hashedPassword, password string) bool
}

// NewPasswordHasher returns the hasher registered under name ("bcrypt" or "argon2id")
func NewPasswordHasher(name string) (PasswordHasher, error) {
	switch name {
	case "", "bcrypt":
		return NewBcryptHasher(bcryptCost), nil
	case "argon2id":
		return Argon2idHasher{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedHasher, name)
	}
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) BcryptHasher {
	return BcryptHasher{cost: cost}
}

func (h BcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(bytes), nil
}

func (BcryptHasher) Verify(hashedPassword, password string) bool {
	return VerifyPassword(hashedPassword, password)
}

// Argon2idHasher encodes digests in the PHC string format:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2idHasher struct{}

func (Argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (Argon2idHasher) Verify(hashedPassword, password string) bool {
	return VerifyPassword(hashedPassword, password)
}

// VerifyPassword checks a plain text password against a bcrypt, argon2id or
// legacy unsalted SHA-256 hex digest.
func VerifyPassword(hashedPassword, password string) bool {
	switch {
	case strings.HasPrefix(hashedPassword, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
	case strings.HasPrefix(hashedPassword, "$argon2id$"):
		return verifyArgon2id(hashedPassword, password)
	case isLegacyDigest(hashedPassword):
		sum := sha256.Sum256([]byte(password))
		expected, _ := hex.DecodeString(strings.ToLower(hashedPassword))
		return subtle.ConstantTimeCompare(sum[:], expected) == 1
	default:
		return false
	}
}

// IsLegacyDigest reports whether the digest predates salted hashing
func IsLegacyDigest(hashedPassword string) bool {
	return isLegacyDigest(hashedPassword)
}

func isLegacyDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func verifyArgon2id(encoded, password string) bool {
	parts := strings.Split(encoded, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1
}
