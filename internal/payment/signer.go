package payment

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

type Signer interface {
	Sign(canonical string) string
	Verify(canonical, supplied string) bool
}

// HMACSHA1Hex signs with a hex-encoded key and emits lowercase hex.
// Verification ignores case.
type HMACSHA1Hex struct {
	key []byte
}

func NewHMACSHA1Hex(hexKey string) (*HMACSHA1Hex, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("%w: empty signing key", ErrConfiguration)
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: signing key is not hex", ErrConfiguration)
	}
	return &HMACSHA1Hex{key: key}, nil
}

func (s *HMACSHA1Hex) Sign(canonical string) string {
	mac := hmac.New(sha1.New, s.key)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *HMACSHA1Hex) Verify(canonical, supplied string) bool {
	return constantTimeEqual(s.Sign(canonical), strings.ToLower(supplied))
}

// HMACSHA1Base64 signs with a raw secret and emits standard base64.
type HMACSHA1Base64 struct {
	secret []byte
}

func NewHMACSHA1Base64(secret string) (*HMACSHA1Base64, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty signing secret", ErrConfiguration)
	}
	return &HMACSHA1Base64{secret: []byte(secret)}, nil
}

func (s *HMACSHA1Base64) Sign(canonical string) string {
	mac := hmac.New(sha1.New, s.secret)
	mac.Write([]byte(canonical))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (s *HMACSHA1Base64) Verify(canonical, supplied string) bool {
	return constantTimeEqual(s.Sign(canonical), supplied)
}

// KeyedMD5 hashes a canonical string that already embeds the password.
// Output is lowercase hex; verification ignores case.
type KeyedMD5 struct{}

func (KeyedMD5) Sign(canonical string) string {
	sum := md5.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

func (s KeyedMD5) Verify(canonical, supplied string) bool {
	return constantTimeEqual(s.Sign(canonical), strings.ToLower(supplied))
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
