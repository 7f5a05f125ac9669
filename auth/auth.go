// Copyright (c) 2025 DaBaiHeDaBaiCai.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid admin credentials")

// GenerateSessionToken creates a random secure token for a browser session.
// The token is the only key to the server-side session state.
func GenerateSessionToken() (string, error) {
	b := make([]byte, 24) // 24 bytes = 192 bits of entropy
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	// URL-safe base64 without padding
	return strings.TrimRight(base64.URLEncoding.EncodeToString(b), "="), nil
}

// NewParticipantID returns a short anonymous participant identifier.
// Eight hex chars of a UUID, matching what ends up in exported data.
func NewParticipantID() string {
	return uuid.NewString()[:8]
}

// NewRunID returns the identifier shared by every row of one run.
func NewRunID() string {
	return uuid.NewString()
}

// CheckCredentials compares a submitted username/password pair against the
// configured admin credentials in constant time.
func CheckCredentials(username, password, wantUser, wantPass string) error {
	// Hash both sides so comparison time does not depend on input length
	userOK := hmac.Equal(hashCred(username), hashCred(wantUser))
	passOK := hmac.Equal(hashCred(password), hashCred(wantPass))
	if !userOK || !passOK {
		return ErrInvalidCredentials
	}
	return nil
}

func hashCred(s string) []byte {
	sum := sha256.Sum256([]byte(s))
	return sum[:]
}
