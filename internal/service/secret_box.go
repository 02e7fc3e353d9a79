package service

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealedPrefix = "sealed:v1:"

var ErrSecretCorrupted = errors.New("sealed secret corrupted")

// SecretSealer protege secretos (la API key) antes de persistirlos.
type SecretSealer interface {
	Seal(plain string) (string, error)
	Open(stored string) (string, error)
}

// SecretBox sella con XChaCha20-Poly1305; la clave se deriva con HKDF-SHA256.
type SecretBox struct {
	aead cipher.AEAD
}

func NewSecretBox(secret string) (*SecretBox, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("secret is required")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("lofty-chat settings api key"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &SecretBox{aead: aead}, nil
}

func (b *SecretBox) Seal(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	out := b.aead.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open acepta valores en texto plano guardados antes de configurar el secreto.
func (b *SecretBox) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil || len(raw) < b.aead.NonceSize() {
		return "", ErrSecretCorrupted
	}
	nonce, ciphertext := raw[:b.aead.NonceSize()], raw[b.aead.NonceSize():]
	plain, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrSecretCorrupted
	}
	return string(plain), nil
}

// PlainSealer no transforma nada; se usa cuando SETTINGS_SECRET no está configurado.
type PlainSealer struct{}

func (PlainSealer) Seal(plain string) (string, error) { return plain, nil }

func (PlainSealer) Open(stored string) (string, error) {
	if strings.HasPrefix(stored, sealedPrefix) {
		return "", ErrSecretCorrupted
	}
	return stored, nil
}
