// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Headers carrying the caller identity established by the authentication
// layer in front of this service.
const (
	HeaderIdentity  = "X-Identity"
	HeaderSignature = "X-Identity-Signature"
)

var (
	ErrMissingIdentity  = errors.New("missing caller identity")
	ErrInvalidSignature = errors.New("invalid identity signature")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SignIdentity creates the HMAC signature that vouches for an identity.
// This is deterministic and verifiable
func SignIdentity(identity, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(identity))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner headers
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// VerifyIdentity checks the signature presented with an identity
func VerifyIdentity(identity, signature, salt string) error {
	if identity == "" {
		return ErrMissingIdentity
	}
	expected := SignIdentity(identity, salt)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrInvalidSignature
	}
	return nil
}
