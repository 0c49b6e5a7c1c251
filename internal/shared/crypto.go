package shared

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// NewEnrollmentKey generates the ed25519 keypair a machine identifies itself
// with, both halves base64-encoded.
func NewEnrollmentKey() (pubB64 string, privB64 string, err error) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return "", "", err
	}
	return base64.StdEncoding.EncodeToString(pub), base64.StdEncoding.EncodeToString(priv), nil
}

func DecodePubKey(b64 string) (ed25519.PublicKey, error) {
	b, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	if len(b) != ed25519.PublicKeySize {
		return nil, errors.New("invalid public key size")
	}
	return ed25519.PublicKey(b), nil
}

func DecodePrivKey(b64 string) (ed25519.PrivateKey, error) {
	b, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	if len(b) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid private key size")
	}
	return ed25519.PrivateKey(b), nil
}

// Fingerprint is the short hex digest of an encoded public key, used as the
// stable machine identity in the enrollment store.
func Fingerprint(pubB64 string) string {
	h := sha256.Sum256([]byte(pubB64))
	return hex.EncodeToString(h[:8])
}

func BodySHA256(body []byte) string {
	h := sha256.Sum256(body)
	return base64.StdEncoding.EncodeToString(h[:])
}

func signedMessage(timestamp, method, path, bodySha string) []byte {
	return []byte(timestamp + "\n" + method + "\n" + path + "\n" + bodySha)
}

// SignRequest covers timestamp + method + path + body digest so a captured
// signature cannot be replayed against another endpoint or payload.
func SignRequest(priv ed25519.PrivateKey, timestamp, method, path, bodySha string) string {
	sig := ed25519.Sign(priv, signedMessage(timestamp, method, path, bodySha))
	return base64.StdEncoding.EncodeToString(sig)
}

func VerifyRequest(pub ed25519.PublicKey, signatureB64, timestamp, method, path, bodySha string) bool {
	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, signedMessage(timestamp, method, path, bodySha), sig)
}
