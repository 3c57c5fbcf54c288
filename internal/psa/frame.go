package psa

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Message is a request as seen by the service.
type Message struct {
	Type Type `cbor:"1,keyasint"`
	// In holds the caller's input vectors.
	In [][]byte `cbor:"2,keyasint,omitempty"`
	// OutLen holds the size of each output vector the caller provided.
	OutLen []int `cbor:"3,keyasint,omitempty"`
}

// Reply is the service's answer to a Message.
type Reply struct {
	Status Status   `cbor:"1,keyasint"`
	Out    [][]byte `cbor:"2,keyasint,omitempty"`
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("psa: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		MaxArrayElements: 16,
	}.DecMode()
	if err != nil {
		panic("psa: CBOR decoder initialization failed: " + err.Error())
	}
}

func encode(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return b, nil
}

func decode(frame []byte, v any) error {
	if err := decMode.Unmarshal(frame, v); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	return nil
}
