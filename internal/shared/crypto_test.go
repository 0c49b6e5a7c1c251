package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	pubB64, privB64, err := NewEnrollmentKey()
	require.NoError(t, err)

	priv, err := DecodePrivKey(privB64)
	require.NoError(t, err)
	pub, err := DecodePubKey(pubB64)
	require.NoError(t, err)

	sha := BodySHA256([]byte(`{"hostname":"web1"}`))
	sig := SignRequest(priv, "1700000000", "POST", "/v1/heartbeat", sha)

	require.True(t, VerifyRequest(pub, sig, "1700000000", "POST", "/v1/heartbeat", sha))
	require.False(t, VerifyRequest(pub, sig, "1700000001", "POST", "/v1/heartbeat", sha), "timestamp is covered")
	require.False(t, VerifyRequest(pub, sig, "1700000000", "POST", "/v1/enroll", sha), "path is covered")
}

func TestDecodeRejectsWrongSizes(t *testing.T) {
	_, err := DecodePubKey("AAAA")
	require.Error(t, err)
	_, err = DecodePrivKey("AAAA")
	require.Error(t, err)
}

func TestFingerprintIsStable(t *testing.T) {
	pubB64, _, err := NewEnrollmentKey()
	require.NoError(t, err)
	require.Equal(t, Fingerprint(pubB64), Fingerprint(pubB64))
	require.Len(t, Fingerprint(pubB64), 16)
}
