package api

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/bz888/schedchat/internal/logger"
	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// StreamReader is one open streaming session. Each Next performs exactly one
// read on the response body and returns what it decoded, so chunk boundaries
// follow the transport. It is single pass and not safe for concurrent use.
type StreamReader struct {
	id   string
	body io.ReadCloser
	buf  []byte
	dec  *chunkDecoder
	log  *logger.Logger

	// pending is a read error that arrived together with data.
	pending error
	err     error
	chunks  int

	closeOnce sync.Once
}

// Open posts message to the streaming endpoint and returns a reader bound to
// the response body. The caller must Close it.
func (c *Client) Open(ctx context.Context, message string) (*StreamReader, error) {
	id := uuid.NewString()
	c.log.Info("Stream ", id, " opening: ", message)

	resp, err := c.post(ctx, c.streamURL, id, "text/plain", message)
	if err != nil {
		c.log.Error("Failed to open stream: ", err)
		return nil, &Error{Kind: KindConnection, Op: StreamPath, Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		c.log.Error("Stream request rejected: ", resp.Status)
		return nil, &Error{
			Kind:       KindRemote,
			Op:         StreamPath,
			StatusCode: resp.StatusCode,
			Body:       body,
			Err:        errors.New(resp.Status),
		}
	}

	return &StreamReader{
		id:   id,
		body: resp.Body,
		buf:  make([]byte, c.readSize),
		dec:  newChunkDecoder(c.raw),
		log:  c.log,
	}, nil
}

// Stream delivers every chunk of the response to onChunk, in arrival order,
// one call at a time. It returns nil once the service ends the stream. A read
// failure ends the call with an error; chunks already delivered stand.
func (c *Client) Stream(ctx context.Context, message string, onChunk func(text string)) error {
	sr, err := c.Open(ctx, message)
	if err != nil {
		return err
	}
	defer sr.Close()

	for {
		text, err := sr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if onChunk != nil {
			onChunk(text)
		}
	}
}

func (s *StreamReader) ID() string {
	return s.id
}

// Next returns the next decoded chunk, io.EOF once the stream has ended, or
// the read error that broke it. Both terminal results repeat on later calls.
// A zero-length read yields an empty chunk.
func (s *StreamReader) Next() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.pending != nil {
		return s.finish(s.pending)
	}

	n, err := s.body.Read(s.buf)
	if n > 0 || err == nil {
		if err != nil {
			s.pending = err
		}
		s.chunks++
		return s.dec.decode(s.buf[:n], false), nil
	}
	return s.finish(err)
}

func (s *StreamReader) finish(err error) (string, error) {
	s.pending = nil
	if errors.Is(err, io.EOF) {
		s.err = io.EOF
		s.Close()
		s.log.Info("Stream ", s.id, " completed after ", s.chunks, " chunks")
		// bytes of an unfinished character are flushed as one replacement rune
		if tail := s.dec.decode(nil, true); tail != "" {
			return tail, nil
		}
		return "", io.EOF
	}

	s.log.Error("Failed to read stream ", s.id, ": ", err)
	s.err = &Error{Kind: KindStream, Op: StreamPath, Err: err}
	s.Close()
	return "", s.err
}

// Close releases the connection. Next returns io.EOF afterwards unless the
// stream already failed.
func (s *StreamReader) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.err == nil {
			s.err = io.EOF
		}
		err = s.body.Close()
	})
	return err
}

// chunkDecoder turns raw reads into UTF-8 text. Unless raw is set, the bytes
// of a character cut off at the end of a read are carried into the next one.
type chunkDecoder struct {
	t     transform.Transformer
	raw   bool
	carry []byte
}

func newChunkDecoder(raw bool) *chunkDecoder {
	return &chunkDecoder{t: unicode.UTF8.NewDecoder(), raw: raw}
}

func (d *chunkDecoder) decode(p []byte, atEOF bool) string {
	if d.raw {
		atEOF = true
	}
	src := make([]byte, 0, len(d.carry)+len(p))
	src = append(append(src, d.carry...), p...)
	d.carry = nil
	if len(src) == 0 {
		return ""
	}

	// every source byte expands to at most one replacement rune
	dst := make([]byte, 3*len(src))
	var out []byte
	for {
		nDst, nSrc, err := d.t.Transform(dst, src, atEOF)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]
		if err == transform.ErrShortDst {
			continue
		}
		if err == transform.ErrShortSrc {
			d.carry = append(d.carry, src...)
		}
		break
	}
	return string(out)
}
