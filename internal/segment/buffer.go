package segment

import "bytes"

// Buffer accumulates markup received since the last boundary.
type Buffer struct {
	b bytes.Buffer
}

func (b *Buffer) Append(p []byte) { b.b.Write(p) }

func (b *Buffer) Len() int { return b.b.Len() }

// Bytes aliases the buffer contents until the next mutation.
func (b *Buffer) Bytes() []byte { return b.b.Bytes() }

// Take returns a copy of everything buffered and empties the buffer.
func (b *Buffer) Take() []byte {
	out := bytes.Clone(b.b.Bytes())
	if out == nil {
		out = []byte{}
	}
	b.b.Reset()
	return out
}

func (b *Buffer) Reset() { b.b.Reset() }
