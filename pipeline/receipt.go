package pipeline

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// ReceiptFile is the receipt's filename inside the scratch directory.
const ReceiptFile = "receipt.cbor"

// Receipt records what a build consumed and produced. It is written after
// every successful build so repeated builds can be compared byte-for-byte:
// identical input with an identical profile should reproduce the same blob
// hash unless the bytecode compiler itself is non-deterministic.
type Receipt struct {
	Input          string   `cbor:"input"`
	Profile        string   `cbor:"profile"`
	Methods        []string `cbor:"methods"`
	BytecodeSHA256 []byte   `cbor:"bytecode_sha256"`
	BytecodeSize   int64    `cbor:"bytecode_size"`
	ArtifactSHA256 []byte   `cbor:"artifact_sha256"`
	ArtifactSize   int64    `cbor:"artifact_size"`
	BuiltAt        int64    `cbor:"built_at"` // unix seconds
}

// Canonical mode keeps the encoding deterministic for identical receipts.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("pipeline: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// WriteReceipt serializes r to path.
func WriteReceipt(path string, r *Receipt) error {
	data, err := cborEncMode.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding receipt: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing receipt: %w", err)
	}
	return nil
}

// ReadReceipt deserializes the receipt at path.
func ReadReceipt(path string) (*Receipt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading receipt: %w", err)
	}
	var r Receipt
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding receipt: %w", err)
	}
	return &r, nil
}
