// https://github.com/usbarmory/microbits
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package buffer implements a fixed-capacity circular byte FIFO, used by
// the CDC-ACM data plane (and any other byte-stream USB function) to
// queue bytes between the USB packet boundary and the application's
// producer/consumer calls.
package buffer

// Circular is a fixed-capacity byte FIFO. The zero value is not usable;
// call SetBuffer to bind a backing array before use.
//
// Head and tail track absolute byte counts (bytes ever popped, bytes ever
// pushed), not just positions modulo capacity, so callers can correlate
// out-of-band events (e.g. a USB frame boundary) with the byte stream.
type Circular struct {
	buf  []byte
	head uint64
	tail uint64
}

// SetBuffer binds buf as the backing array, discarding any pending data.
// Head is bumped so that tail == head + pending is preserved (pending
// becomes 0).
func (c *Circular) SetBuffer(buf []byte) {
	c.buf = buf
	c.head = c.tail
}

// Capacity returns the size of the backing array.
func (c *Circular) Capacity() int {
	return len(c.buf)
}

// Pending returns the number of bytes queued for reading.
func (c *Circular) Pending() int {
	return int(c.tail - c.head)
}

// Free returns the number of bytes available for writing.
func (c *Circular) Free() int {
	return len(c.buf) - c.Pending()
}

// Head returns the absolute count of bytes ever popped from the FIFO.
func (c *Circular) Head() uint64 {
	return c.head
}

// Tail returns the absolute count of bytes ever pushed into the FIFO.
func (c *Circular) Tail() uint64 {
	return c.tail
}

func (c *Circular) pos(abs uint64) int {
	return int(abs % uint64(len(c.buf)))
}

// WritePointer returns a contiguous slice of the backing array available
// for a zero-copy write, truncated at the physical end of the buffer, and
// its size. Callers must follow up with Advance(n) after copying n bytes
// into it.
func (c *Circular) WritePointer() []byte {
	if c.Free() == 0 {
		return nil
	}

	start := c.pos(c.tail)
	end := start + c.Free()

	if end > len(c.buf) {
		end = len(c.buf)
	}

	return c.buf[start:end]
}

// ReadPointer returns a contiguous slice of the backing array available
// for a zero-copy read, truncated at the physical end of the buffer.
// Callers must follow up with Advance(n) after consuming n bytes from it.
func (c *Circular) ReadPointer() []byte {
	if c.Pending() == 0 {
		return nil
	}

	start := c.pos(c.head)
	end := start + c.Pending()

	if end > len(c.buf) {
		end = len(c.buf)
	}

	return c.buf[start:end]
}

// AdvanceTail marks n bytes, already written via WritePointer or WriteBytes,
// as pending for reading.
func (c *Circular) AdvanceTail(n int) {
	c.tail += uint64(n)
}

// AdvanceHead marks n bytes, already consumed via ReadPointer or
// ReadBytes, as free for writing.
func (c *Circular) AdvanceHead(n int) {
	c.head += uint64(n)
}

// WriteBytes copies as much of p as fits into the FIFO, returning the
// number of bytes copied.
func (c *Circular) WriteBytes(p []byte) int {
	n := len(p)

	if n > c.Free() {
		n = c.Free()
	}

	written := 0

	for written < n {
		dst := c.WritePointer()

		if len(dst) == 0 {
			break
		}

		chunk := copy(dst, p[written:n])
		c.AdvanceTail(chunk)
		written += chunk
	}

	return written
}

// ReadBytes copies up to len(p) pending bytes into p, returning the
// number of bytes copied.
func (c *Circular) ReadBytes(p []byte) int {
	n := len(p)

	if n > c.Pending() {
		n = c.Pending()
	}

	read := 0

	for read < n {
		src := c.ReadPointer()

		if len(src) == 0 {
			break
		}

		chunk := copy(p[read:n], src)
		c.AdvanceHead(chunk)
		read += chunk
	}

	return read
}

// Discard drops up to n pending bytes without copying them out, returning
// the number of bytes actually discarded.
func (c *Circular) Discard(n int) int {
	if n > c.Pending() {
		n = c.Pending()
	}

	c.AdvanceHead(n)

	return n
}
