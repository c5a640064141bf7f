package cipher

import (
	"encoding/base64"
	"testing"
)

func testKey(t *testing.T) string {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestRoundTrip(t *testing.T) {
	key := testKey(t)

	blob, err := Encrypt(key, "hello room")
	if err != nil {
		t.Fatal(err)
	}
	pt, err := Decrypt(key, blob)
	if err != nil {
		t.Fatal(err)
	}
	if pt != "hello room" {
		t.Fatalf("expected 'hello room', got %q", pt)
	}
}

func TestGenerateKeyFormat(t *testing.T) {
	k1 := testKey(t)
	k2 := testKey(t)

	if !ValidKey(k1) || !ValidKey(k2) {
		t.Fatalf("generated keys should be 32 lowercase hex chars, got %q and %q", k1, k2)
	}
	if k1 == k2 {
		t.Fatal("two generated keys should never collide")
	}
}

func TestValidKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{
		"",
		"short",
		"../../../etc/passwd",
		"ABCDEF00112233445566778899AABBCC",  // uppercase
		"0123456789abcdef0123456789abcde",   // 31 chars
		"0123456789abcdef0123456789abcdef0", // 33 chars
	} {
		if ValidKey(key) {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestDistinctBlobs(t *testing.T) {
	key := testKey(t)

	b1, _ := Encrypt(key, "same")
	b2, _ := Encrypt(key, "same")
	if b1 == b2 {
		t.Fatal("blobs should differ for the same plaintext")
	}

	p1, _ := Decrypt(key, b1)
	p2, _ := Decrypt(key, b2)
	if p1 != "same" || p2 != "same" {
		t.Fatal("both blobs should decrypt to 'same'")
	}
}

func TestWrongKeyFails(t *testing.T) {
	blob, _ := Encrypt(testKey(t), "secret")

	pt, err := Decrypt(testKey(t), blob)
	if err == nil {
		t.Fatalf("expected error with wrong key, got plaintext %q", pt)
	}
	if !IsDecryptionError(err) {
		t.Fatalf("expected DecryptionError, got %T", err)
	}
}

func TestTamperedBlob(t *testing.T) {
	key := testKey(t)
	blob, _ := Encrypt(key, "secret")

	raw, _ := base64.StdEncoding.DecodeString(blob)
	raw[len(raw)-1] ^= 0xFF
	tampered := base64.StdEncoding.EncodeToString(raw)

	if _, err := Decrypt(key, tampered); err == nil {
		t.Fatal("expected error with tampered blob")
	}
}

func TestTruncatedBlob(t *testing.T) {
	short := base64.StdEncoding.EncodeToString(make([]byte, 10))

	_, err := Decrypt(testKey(t), short)
	if err == nil {
		t.Fatal("expected error with truncated blob")
	}
	if !IsDecryptionError(err) {
		t.Fatalf("expected DecryptionError, got %T", err)
	}
}

func TestInvalidBase64(t *testing.T) {
	_, err := Decrypt(testKey(t), "not base64 at all!!!")
	if err == nil {
		t.Fatal("expected error with invalid base64")
	}
	if !IsDecryptionError(err) {
		t.Fatalf("expected DecryptionError, got %T", err)
	}
}

func TestEmptyPlaintext(t *testing.T) {
	key := testKey(t)

	blob, err := Encrypt(key, "")
	if err != nil {
		t.Fatal(err)
	}
	pt, err := Decrypt(key, blob)
	if err != nil {
		t.Fatal(err)
	}
	if pt != "" {
		t.Fatalf("expected empty string, got %q", pt)
	}
}

func TestUnicodePlaintext(t *testing.T) {
	key := testKey(t)

	msg := "Hej \U0001F30D❤️ 日本語"
	blob, err := Encrypt(key, msg)
	if err != nil {
		t.Fatal(err)
	}
	pt, err := Decrypt(key, blob)
	if err != nil {
		t.Fatal(err)
	}
	if pt != msg {
		t.Fatalf("expected %q, got %q", msg, pt)
	}
}

func TestLargeMessage(t *testing.T) {
	key := testKey(t)

	msg := make([]byte, 8000)
	for i := range msg {
		msg[i] = 'A'
	}
	blob, err := Encrypt(key, string(msg))
	if err != nil {
		t.Fatal(err)
	}
	pt, err := Decrypt(key, blob)
	if err != nil {
		t.Fatal(err)
	}
	if pt != string(msg) {
		t.Fatal("large message round-trip failed")
	}
}
