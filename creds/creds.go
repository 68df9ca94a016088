package creds

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/MrEthical07/authstate/codec"
	"golang.org/x/crypto/curve25519"
)

// keyTypeDJB prefixes Curve25519 public keys when they are signed.
const keyTypeDJB = 0x05

// registrationIDMask keeps registration ids within 14 bits.
const registrationIDMask = 16383

// KeyPair is a public/private key pair.
type KeyPair struct {
	Public  codec.Bytes `json:"public"`
	Private codec.Bytes `json:"private"`
}

// SignedKeyPair is a pre-key pair plus the identity signature over its
// public half.
type SignedKeyPair struct {
	KeyPair    KeyPair     `json:"keyPair"`
	Signature  codec.Bytes `json:"signature"`
	KeyID      uint32      `json:"keyId"`
	TimestampS int64       `json:"timestampS,omitempty"`
}

// Contact identifies the paired account once registration completes.
type Contact struct {
	ID   string `json:"id"`
	LID  string `json:"lid,omitempty"`
	Name string `json:"name,omitempty"`
}

// AccountSettings holds account-level flags synced from the server.
type AccountSettings struct {
	UnarchiveChats bool `json:"unarchiveChats"`
}

// Credentials is the long-lived identity state of one session.
//
// It is held in memory and mutated in place by its owner; it is persisted
// only when the owner calls SaveCreds or Flush.
type Credentials struct {
	NoiseKey                KeyPair         `json:"noiseKey"`
	PairingEphemeralKeyPair KeyPair         `json:"pairingEphemeralKeyPair"`
	SignedIdentityKey       KeyPair         `json:"signedIdentityKey"`
	SigningKey              KeyPair         `json:"signingKey"`
	SignedPreKey            SignedKeyPair   `json:"signedPreKey"`
	RegistrationID          uint16          `json:"registrationId"`
	AdvSecretKey            string          `json:"advSecretKey"`
	Me                      *Contact        `json:"me,omitempty"`
	NextPreKeyID            uint32          `json:"nextPreKeyId"`
	FirstUnuploadedPreKeyID uint32          `json:"firstUnuploadedPreKeyId"`
	AccountSyncCounter      uint32          `json:"accountSyncCounter"`
	AccountSettings         AccountSettings `json:"accountSettings"`
	Registered              bool            `json:"registered"`
	PairingCode             string          `json:"pairingCode,omitempty"`
	LastPropHash            string          `json:"lastPropHash,omitempty"`
	RoutingInfo             codec.Bytes     `json:"routingInfo,omitempty"`
}

// Initializer produces fresh credentials for a session that has none.
type Initializer func() (*Credentials, error)

// New generates fresh credentials: Curve25519 noise, pairing and identity
// keys, an Ed25519 signing key, signed pre-key 1, a random 14-bit
// registration id and a random 32-byte adv secret.
func New() (*Credentials, error) {
	noise, err := GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("noise key: %w", err)
	}
	pairing, err := GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("pairing key: %w", err)
	}
	identity, err := GenerateKeyPair()
	if err != nil {
		return nil, fmt.Errorf("identity key: %w", err)
	}

	edPub, edPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	signing := KeyPair{Public: codec.Bytes(edPub), Private: codec.Bytes(edPriv)}

	signedPreKey, err := NewSignedKeyPair(signing, 1)
	if err != nil {
		return nil, fmt.Errorf("signed pre-key: %w", err)
	}

	var reg [2]byte
	if _, err := rand.Read(reg[:]); err != nil {
		return nil, fmt.Errorf("registration id: %w", err)
	}

	adv := make([]byte, 32)
	if _, err := rand.Read(adv); err != nil {
		return nil, fmt.Errorf("adv secret: %w", err)
	}

	return &Credentials{
		NoiseKey:                noise,
		PairingEphemeralKeyPair: pairing,
		SignedIdentityKey:       identity,
		SigningKey:              signing,
		SignedPreKey:            signedPreKey,
		RegistrationID:          binary.BigEndian.Uint16(reg[:]) & registrationIDMask,
		AdvSecretKey:            base64.StdEncoding.EncodeToString(adv),
		NextPreKeyID:            1,
		FirstUnuploadedPreKeyID: 1,
	}, nil
}

// GenerateKeyPair returns a fresh Curve25519 key pair. The private key is
// clamped per RFC 7748.
func GenerateKeyPair() (KeyPair, error) {
	priv := make([]byte, curve25519.ScalarSize)
	if _, err := rand.Read(priv); err != nil {
		return KeyPair{}, err
	}
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return KeyPair{}, err
	}
	return KeyPair{Public: codec.Bytes(pub), Private: codec.Bytes(priv)}, nil
}

// NewSignedKeyPair generates a Curve25519 pre-key and signs its
// type-prefixed public key with the Ed25519 signing pair.
func NewSignedKeyPair(signing KeyPair, keyID uint32) (SignedKeyPair, error) {
	if len(signing.Private) != ed25519.PrivateKeySize {
		return SignedKeyPair{}, fmt.Errorf("signing key: want %d bytes, got %d", ed25519.PrivateKeySize, len(signing.Private))
	}
	pre, err := GenerateKeyPair()
	if err != nil {
		return SignedKeyPair{}, err
	}
	sig := ed25519.Sign(ed25519.PrivateKey(signing.Private), signedMessage(pre.Public))
	return SignedKeyPair{KeyPair: pre, Signature: codec.Bytes(sig), KeyID: keyID}, nil
}

// VerifySignedKeyPair reports whether spk carries a valid signature by the
// Ed25519 public key signingPub.
func VerifySignedKeyPair(signingPub []byte, spk SignedKeyPair) bool {
	if len(signingPub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(signingPub), signedMessage(spk.KeyPair.Public), spk.Signature)
}

func signedMessage(pub []byte) []byte {
	msg := make([]byte, 0, len(pub)+1)
	msg = append(msg, keyTypeDJB)
	return append(msg, pub...)
}
