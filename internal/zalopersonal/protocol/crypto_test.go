package protocol

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"testing"
)

// The ZCID/session encrypt key and every API body Zalo accepts ride on
// EncodeAESCBC/DecodeAESCBC, so a roundtrip break here breaks login end to
// end — these stay close to the wire, not to any gateway abstraction.
func TestAESCBC_Roundtrip(t *testing.T) {
	key := []byte("0123456789ABCDEF")
	cases := map[string]string{
		"short":       "hi",
		"exact block": "0123456789ABCDEF",
		"multi block": "spans more than one AES block of plaintext",
		"json":        `{"imei":"abc","ts":12345}`,
		"empty":       "",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			enc, err := EncodeAESCBC(key, data, false)
			if err != nil {
				t.Fatalf("EncodeAESCBC: %v", err)
			}
			dec, err := DecodeAESCBC(key, enc)
			if err != nil {
				t.Fatalf("DecodeAESCBC: %v", err)
			}
			if string(dec) != data {
				t.Errorf("roundtrip = %q, want %q", dec, data)
			}
		})
	}
}

func TestAESCBC_ZeroIVIsDeterministicAndEncodingDiffers(t *testing.T) {
	key := []byte("0123456789ABCDEF")
	data := "zcid uses a fixed all-zero IV"

	a, _ := EncodeAESCBC(key, data, false)
	b, _ := EncodeAESCBC(key, data, false)
	if a != b {
		t.Error("zero-IV AES-CBC must be deterministic (ZCID derivation depends on this)")
	}

	hexForm, _ := EncodeAESCBC(key, data, true)
	if hexForm == a {
		t.Error("hex and base64 output forms should not match")
	}
	if raw, err := base64.StdEncoding.DecodeString(a); err != nil || len(raw) == 0 {
		t.Error("base64 form did not decode to ciphertext")
	}
}

func TestAESCBC_RejectsBadInput(t *testing.T) {
	if _, err := EncodeAESCBC([]byte("tooshort"), "x", false); err == nil {
		t.Error("expected error for a non-16/24/32-byte key")
	}
	if _, err := DecodeAESCBC([]byte("0123456789ABCDEF"), "not base64!!"); err == nil {
		t.Error("expected error for invalid base64 ciphertext")
	}
}

func TestAESCBC_WrongKeyRarelyDecodesCleanly(t *testing.T) {
	k1, k2 := []byte("0123456789ABCDEF"), []byte("FEDCBA9876543210")
	enc, err := EncodeAESCBC(k1, "secret data", false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeAESCBC(k2, enc); err == nil {
		t.Log("wrong key happened to produce valid PKCS7 padding; not itself a failure")
	}
}

// DecodeAESGCM covers the socket-frame envelope, which Zalo encrypts with a
// 16-byte-nonce variant of GCM rather than the library default of 12.
func TestDecodeAESGCM_Roundtrip(t *testing.T) {
	key := make([]byte, 32)
	iv := make([]byte, 16)
	aad := make([]byte, 16)
	for i := range key {
		key[i] = byte(i)
	}
	for i := range iv {
		iv[i] = byte(i + 0x10)
	}
	for i := range aad {
		aad[i] = byte(i + 0x20)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatal(err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, 16)
	if err != nil {
		t.Fatal(err)
	}
	plaintext := []byte("socket frame payload")
	ct := gcm.Seal(nil, iv, plaintext, aad)

	got, err := DecodeAESGCM(key, iv, aad, ct)
	if err != nil {
		t.Fatalf("DecodeAESGCM: %v", err)
	}
	if string(got) != string(plaintext) {
		t.Errorf("decrypted = %q, want %q", got, plaintext)
	}

	ct[0] ^= 0xFF
	if _, err := DecodeAESGCM(key, iv, aad, ct); err == nil {
		t.Error("tampered ciphertext should fail the GCM tag check")
	}
	if _, err := DecodeAESGCM([]byte("short"), iv, aad, ct); err == nil {
		t.Error("expected error for a bad key size")
	}
}

func TestPKCS7_PadUnpadRoundtrip(t *testing.T) {
	for _, n := range []int{0, 1, 15, 16, 17, 31} {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i)
		}
		padded, err := pkcs7Pad(data, aes.BlockSize)
		if err != nil {
			t.Fatalf("pkcs7Pad(len=%d): %v", n, err)
		}
		if len(padded)%aes.BlockSize != 0 {
			t.Errorf("len=%d: padded length %d not block-aligned", n, len(padded))
		}
		unpadded, err := pkcs7Unpad(padded, aes.BlockSize)
		if err != nil {
			t.Fatalf("pkcs7Unpad(len=%d): %v", n, err)
		}
		if len(unpadded) != n {
			t.Errorf("len=%d: unpadded length %d", n, len(unpadded))
		}
	}
}

func TestPKCS7Unpad_RejectsMalformedPadding(t *testing.T) {
	bad := map[string][]byte{
		"empty":          {},
		"not blocksize":  {1, 2, 3},
		"zero pad byte":  make([]byte, 16),
		"pad exceeds len": append(make([]byte, 15), 17),
	}
	for name, data := range bad {
		if _, err := pkcs7Unpad(data, 16); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPKCS7Pad_RejectsNonPositiveBlockSize(t *testing.T) {
	if _, err := pkcs7Pad([]byte("x"), 0); err == nil {
		t.Error("expected error for blockSize 0")
	}
	if _, err := pkcs7Pad([]byte("x"), -1); err == nil {
		t.Error("expected error for negative blockSize")
	}
}
