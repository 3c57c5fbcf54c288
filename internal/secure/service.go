package secure

import (
	"encoding/binary"

	"github.com/sweeney/sleepwake/internal/psa"
)

// wakeSourceSize is the exact size of the GET_WAKEUP_SOURCE output buffer.
const wakeSourceSize = 4

// serve handles one boundary message against the register.
func (p *Partition) serve(msg *psa.Message) (psa.Status, [][]byte) {
	switch msg.Type {
	case psa.GetWakeupSource:
		if len(msg.OutLen) != 1 || msg.OutLen[0] != wakeSourceSize {
			return psa.ErrInvalidArgument, nil
		}
		out := make([]byte, wakeSourceSize)
		binary.LittleEndian.PutUint32(out, uint32(p.reg.load()))
		return psa.Success, [][]byte{out}

	case psa.ClearWakeupSource:
		p.reg.clear()
		return psa.Success, nil

	default:
		return psa.ErrNotSupported, nil
	}
}
