package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTokenInvalid = errors.New("invalid download token")
	ErrTokenExpired = errors.New("download token expired")
)

// DownloadToken is the payload carried by a signed download link.
type DownloadToken struct {
	RunID     string
	File      string
	ExpiresAt time.Time
}

// SignedURLSigner creates and validates HMAC signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long generated tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration {
	return s.ttl
}

// Generate signs a token for file produced by run runID.
func (s *SignedURLSigner) Generate(runID, file string) (string, time.Time, error) {
	if runID == "" || file == "" {
		return "", time.Time{}, fmt.Errorf("run id and file required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	parts := []string{
		runID,
		strconv.FormatInt(expiresAt.Unix(), 10),
		base64.RawURLEncoding.EncodeToString([]byte(file)),
	}
	parts = append(parts, s.sign(parts))
	return strings.Join(parts, "."), expiresAt, nil
}

// Parse validates a token. Expiry is checked only after the signature matches.
func (s *SignedURLSigner) Parse(token string) (DownloadToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return DownloadToken{}, ErrTokenInvalid
	}
	if !hmac.Equal([]byte(s.sign(parts[:3])), []byte(parts[3])) {
		return DownloadToken{}, ErrTokenInvalid
	}

	expUnix, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return DownloadToken{}, ErrTokenInvalid
	}
	file, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return DownloadToken{}, ErrTokenInvalid
	}

	tok := DownloadToken{RunID: parts[0], File: string(file), ExpiresAt: time.Unix(expUnix, 0)}
	if !s.now().Before(tok.ExpiresAt) {
		return tok, ErrTokenExpired
	}
	return tok, nil
}

func (s *SignedURLSigner) sign(parts []string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}
