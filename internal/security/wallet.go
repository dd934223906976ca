package security

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

var ErrInvalidWalletAddress = errors.New("invalid wallet address")

// ChecksumAddress returns the EIP-55 mixed-case form of a 20-byte hex
// address. Input may be any case, with or without the 0x prefix. Mixed-case
// input must already carry a valid checksum.
func ChecksumAddress(addr string) (string, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(addr), "0x"), "0X")
	if len(raw) != 40 {
		return "", ErrInvalidWalletAddress
	}
	if _, err := hex.DecodeString(raw); err != nil {
		return "", ErrInvalidWalletAddress
	}

	lower := strings.ToLower(raw)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - 'a' + 'A'
		}
	}
	checksummed := "0x" + string(out)

	mixed := raw != lower && raw != strings.ToUpper(raw)
	if mixed && "0x"+raw != checksummed {
		return "", ErrInvalidWalletAddress
	}
	return checksummed, nil
}

var ErrInvalidSignature = errors.New("wallet signature does not match")

// SignInMessage is the text a wallet signs with personal_sign to prove it
// controls address. The nonce and issue time come from a challenge token.
func SignInMessage(address, nonce string, issuedAt time.Time) string {
	return fmt.Sprintf("LendLocal wants you to sign in with your wallet:\n%s\n\nNonce: %s\nIssued At: %s",
		address, nonce, issuedAt.UTC().Format(time.RFC3339))
}

// personalHash is the EIP-191 version 0x45 digest used by personal_sign.
func personalHash(message string) []byte {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "\x19Ethereum Signed Message:\n%d%s", len(message), message)
	return h.Sum(nil)
}

// RecoverAddress returns the checksummed address that produced a
// personal_sign signature over message. The signature is 65 bytes of hex,
// R || S || V, with V either 0/1 or 27/28.
func RecoverAddress(message, signature string) (string, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(signature), "0x"))
	if err != nil || len(raw) != 65 {
		return "", ErrInvalidSignature
	}
	v := raw[64]
	if v < 27 {
		v += 27
	}
	if v != 27 && v != 28 {
		return "", ErrInvalidSignature
	}

	compact := make([]byte, 65)
	compact[0] = v
	copy(compact[1:], raw[:64])
	pub, _, err := ecdsa.RecoverCompact(compact, personalHash(message))
	if err != nil {
		return "", ErrInvalidSignature
	}
	return AddressFromPublicKey(pub), nil
}

// AddressFromPublicKey derives the checksummed Ethereum address of pub.
func AddressFromPublicKey(pub *secp256k1.PublicKey) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(pub.SerializeUncompressed()[1:])
	addr, _ := ChecksumAddress(hex.EncodeToString(h.Sum(nil)[12:]))
	return addr
}

// SignMessage produces the personal_sign signature a wallet holding key
// would return for message.
func SignMessage(key *secp256k1.PrivateKey, message string) string {
	compact := ecdsa.SignCompact(key, personalHash(message), false)
	sig := make([]byte, 65)
	copy(sig, compact[1:])
	sig[64] = compact[0]
	return "0x" + hex.EncodeToString(sig)
}
