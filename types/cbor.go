package types

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Cbor is the canonical CBOR codec used for everything that is hashed, stored or
// measured (ie the serialized length of an extrinsic).
var Cbor = newCborHandler()

type cborHandler struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

func newCborHandler() cborHandler {
	enc, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("creating canonical CBOR encoder: %w", err))
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Errorf("creating CBOR decoder: %w", err))
	}
	return cborHandler{encMode: enc, decMode: dec}
}

func (c cborHandler) Marshal(v any) ([]byte, error) {
	return c.encMode.Marshal(v)
}

func (c cborHandler) Unmarshal(data []byte, v any) error {
	return c.decMode.Unmarshal(data, v)
}

func (c cborHandler) GetEncoder(w io.Writer) *cbor.Encoder {
	return c.encMode.NewEncoder(w)
}

func (c cborHandler) GetDecoder(r io.Reader) *cbor.Decoder {
	return c.decMode.NewDecoder(r)
}

// Encode writes the CBOR encoding of v into w.
func (c cborHandler) Encode(w io.Writer, v any) error {
	return c.GetEncoder(w).Encode(v)
}

// Decode reads the next CBOR encoded value from r and stores it in v.
func (c cborHandler) Decode(r io.Reader, v any) error {
	return c.GetDecoder(r).Decode(v)
}
