package utils

import (
	"errors"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestEncryptDecrypt(t *testing.T) {
	sealed, err := Encrypt(testKey, []byte("JBSWY3DPEHPK3PXP"))
	if err != nil {
		t.Fatal(err)
	}
	again, _ := Encrypt(testKey, []byte("JBSWY3DPEHPK3PXP"))
	if sealed == again {
		t.Error("nonce should make every ciphertext unique")
	}

	plain, err := Decrypt(testKey, sealed)
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != "JBSWY3DPEHPK3PXP" {
		t.Errorf("plain = %q", plain)
	}

	if _, err := Decrypt("ffffffffffffffffffffffffffffffff", sealed); err == nil {
		t.Error("wrong key should fail authentication")
	}
	if _, err := Decrypt(testKey, "c2hvcnQ="); err == nil {
		t.Error("short ciphertext should fail")
	}
}

func TestEncryptKeyLength(t *testing.T) {
	if _, err := Encrypt("short", []byte("x")); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("err = %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!!")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword("s3cret!!", hash) {
		t.Error("correct password rejected")
	}
	if CheckPassword("S3cret!!", hash) {
		t.Error("wrong password accepted")
	}
}
