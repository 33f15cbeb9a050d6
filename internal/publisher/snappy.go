package publisher

import (
	"context"

	"github.com/golang/snappy"

	"github.com/crystaldolphin/buswriter/internal/bus"
)

// Snappy block-encodes every batch before handing it to next.
// Consumers decode with snappy.Decode.
type Snappy struct {
	next bus.Publisher
}

func NewSnappy(next bus.Publisher) *Snappy {
	return &Snappy{next: next}
}

func (s *Snappy) Publish(ctx context.Context, batch []byte) error {
	return s.next.Publish(ctx, snappy.Encode(nil, batch))
}
