package bus

import (
	"bytes"
	"time"

	"github.com/google/uuid"

	"github.com/crystaldolphin/buswriter/internal/shared/stringutils"
)

// Batch is one flushed buffer as it travels over the in-process bus.
type Batch struct {
	id        string    // unique batch identifier
	payload   []byte    // concatenated message bytes, owned by the batch
	createdAt time.Time // when the batch was handed to the bus
}

// NewBatch copies payload into a new Batch with a fresh id and CreatedAt set to now.
func NewBatch(payload []byte) Batch {
	return Batch{
		id:        uuid.NewString(),
		payload:   bytes.Clone(payload),
		createdAt: time.Now(),
	}
}

func (b Batch) ID() string           { return b.id }
func (b Batch) Payload() []byte      { return b.payload }
func (b Batch) Len() int             { return len(b.payload) }
func (b Batch) CreatedAt() time.Time { return b.createdAt }

// Preview returns a short snippet of the payload for logging.
func (b Batch) Preview() string {
	return stringutils.Preview(b.payload)
}
