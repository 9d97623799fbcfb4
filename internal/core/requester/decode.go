package requester

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// decodeBody reads r, undoing the Content-Encoding chain (e.g. "gzip" or "deflate, br").
// Unknown encodings are passed through untouched.
func decodeBody(encoding string, r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	codings := strings.Split(encoding, ",")
	// Encodings are listed in the order they were applied
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))
		if coding == "" || coding == "identity" {
			continue
		}
		raw, err = decodeOne(coding, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", coding, err)
		}
	}
	return raw, nil
}

func decodeOne(coding string, data []byte) ([]byte, error) {
	switch coding {
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return readLimited(zr)
	case "deflate":
		return inflate(data)
	case "br":
		return readLimited(brotli.NewReader(bytes.NewReader(data)))
	default:
		return data, nil
	}
}

// inflate handles both zlib-wrapped and raw deflate streams; servers send either.
func inflate(data []byte) ([]byte, error) {
	br := bufio.NewReader(bytes.NewReader(data))
	header, err := br.Peek(2)
	if err == nil && isZlibHeader(header) {
		zr, err := zlib.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return readLimited(zr)
	}

	fr := flate.NewReader(br)
	defer fr.Close()
	return readLimited(fr)
}

func isZlibHeader(h []byte) bool {
	return h[0]&0x0f == 8 && (uint16(h[0])<<8|uint16(h[1]))%31 == 0
}

func readLimited(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxBodySize))
}
