// Package signing provides ed25519 signing and verification for cells.
// Signatures bind cells to key holders via did:key identifiers. The ledger
// core only stores signature bytes and calls Verify; bridges additionally
// carry a counter-signature from the receiving namespace's owner.
package signing

import (
	"crypto/ed25519"
	"crypto/rand"

	"github.com/mr-tron/base58"

	"github.com/verigraph/verigraph/cell"
	"github.com/verigraph/verigraph/errors"
)

// Signer holds one signing identity.
type Signer struct {
	PrivateKey ed25519.PrivateKey
	KeyID      string // did:key:z...
}

// NewSigner generates a fresh ed25519 identity.
func NewSigner() (*Signer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate signing key")
	}
	return &Signer{PrivateKey: priv, KeyID: EncodeDIDKey(pub)}, nil
}

// sealBytes produces the deterministic byte representation signed for a
// cell: the same canonical seal the content hash is computed over. Proof
// fields themselves are excluded, so signing never changes the cell's
// identity.
func sealBytes(c *cell.Cell) ([]byte, error) {
	b, err := cell.CanonicalBytes(c.Header, c.Fact, c.LogicAnchor)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to produce seal bytes for %s", c.ID.Short())
	}
	return b, nil
}

// Sign populates Signature and SignerKeyID on the cell's proof. Only signs
// if the cell is not already signed.
func (s *Signer) Sign(c *cell.Cell) error {
	if c.Proof != nil && len(c.Proof.Signature) > 0 {
		return nil // already signed
	}

	b, err := sealBytes(c)
	if err != nil {
		return err
	}

	if c.Proof == nil {
		c.Proof = &cell.Proof{}
	}
	c.Proof.Signature = ed25519.Sign(s.PrivateKey, b)
	c.Proof.SignerKeyID = s.KeyID
	return nil
}

// CounterSign populates the counter-signature pair on the cell's proof.
// Bridge cells require both parties' signatures to be usable.
func (s *Signer) CounterSign(c *cell.Cell) error {
	if c.Proof != nil && len(c.Proof.CounterSignature) > 0 {
		return nil
	}

	b, err := sealBytes(c)
	if err != nil {
		return err
	}

	if c.Proof == nil {
		c.Proof = &cell.Proof{}
	}
	c.Proof.CounterSignature = ed25519.Sign(s.PrivateKey, b)
	c.Proof.CounterSignerKeyID = s.KeyID
	return nil
}

// Verify checks every signature present on the cell's proof against the
// signer's public key extracted from their did:key. Returns nil for an
// unsigned cell; returns an error if any present signature is invalid or
// its signer id is missing or malformed.
func Verify(c *cell.Cell) error {
	if c.Proof == nil {
		return nil
	}

	b, err := sealBytes(c)
	if err != nil {
		return err
	}

	if len(c.Proof.Signature) > 0 {
		if err := verifyOne(c, c.Proof.SignerKeyID, b, c.Proof.Signature); err != nil {
			return err
		}
	}
	if len(c.Proof.CounterSignature) > 0 {
		if err := verifyOne(c, c.Proof.CounterSignerKeyID, b, c.Proof.CounterSignature); err != nil {
			return err
		}
	}
	return nil
}

func verifyOne(c *cell.Cell, keyID string, msg, sig []byte) error {
	if keyID == "" {
		return errors.Newf("cell %s has a signature but no signer key id", c.ID.Short())
	}
	pub, err := DecodeDIDKey(keyID)
	if err != nil {
		return errors.Wrapf(err, "failed to decode signer key %s for cell %s", keyID, c.ID.Short())
	}
	if !ed25519.Verify(pub, msg, sig) {
		return errors.Newf("invalid signature on cell %s from %s", c.ID.Short(), keyID)
	}
	return nil
}

// EncodeDIDKey encodes an ed25519 public key as a did:key identifier:
// did:key:z + base58btc(0xed 0x01 + 32-byte pubkey)
func EncodeDIDKey(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, len(pub)+2)
	buf = append(buf, 0xed, 0x01)
	buf = append(buf, pub...)
	return "did:key:z" + base58.Encode(buf)
}

// DecodeDIDKey extracts the ed25519 public key from a did:key:z... identifier.
func DecodeDIDKey(did string) (ed25519.PublicKey, error) {
	const prefix = "did:key:z"
	if len(did) < len(prefix) || did[:len(prefix)] != prefix {
		return nil, errors.Newf("invalid did:key format: %s", did)
	}

	decoded, err := base58.Decode(did[len(prefix):])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to base58-decode did:key %s", did)
	}

	// Expect multicodec prefix 0xed 0x01 followed by 32-byte ed25519 public key
	if len(decoded) != 34 {
		return nil, errors.Newf("unexpected decoded length %d for did:key %s (expected 34)", len(decoded), did)
	}
	if decoded[0] != 0xed || decoded[1] != 0x01 {
		return nil, errors.Newf("unexpected multicodec prefix [%x %x] for did:key %s", decoded[0], decoded[1], did)
	}

	return ed25519.PublicKey(decoded[2:]), nil
}
