package resp_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/switchback/http/resp"
)

func TestEncode(t *testing.T) {
	body := strings.Repeat("compress me, ", 512)
	tcs := []struct {
		codec  resp.Codec
		decode func(*testing.T, []byte) string
	}{
		{resp.NoCodec, func(_ *testing.T, b []byte) string { return string(b) }},
		{resp.Gzip, gunzip},
		{resp.Deflate, inflate},
	}

	for _, tc := range tcs {
		t.Run(string(tc.codec), func(t *testing.T) {
			// Act
			rc, err := resp.Encode(strings.NewReader(body), tc.codec)
			require.NoError(t, err)
			out, err := io.ReadAll(rc)
			require.NoError(t, err)
			require.NoError(t, rc.Close())

			// Assert
			require.Equal(t, body, tc.decode(t, out))
			if tc.codec != resp.NoCodec {
				require.Less(t, len(out), len(body))
			}
		})
	}
}

func TestEncodeUnknownCodec(t *testing.T) {
	rc, err := resp.Encode(strings.NewReader("x"), resp.Codec("br"))
	require.ErrorIs(t, err, resp.ErrUnknownCodec)
	require.Nil(t, rc)
}

func TestEncodeCloseEarly(t *testing.T) {
	rc, err := resp.Encode(strings.NewReader(strings.Repeat("x", 1<<20)), resp.Gzip)
	require.NoError(t, err)

	buf := make([]byte, 8)
	_, err = rc.Read(buf)
	require.NoError(t, err)
	require.NoError(t, rc.Close())

	_, err = rc.Read(buf)
	require.ErrorIs(t, err, io.ErrClosedPipe)
}

func TestAcceptEncoding(t *testing.T) {
	tcs := []struct {
		header string
		want   resp.Codec
	}{
		{"", resp.NoCodec},
		{"identity", resp.NoCodec},
		{"br", resp.NoCodec},
		{"gzip", resp.Gzip},
		{"deflate", resp.Deflate},
		{"deflate, gzip", resp.Gzip},
		{"GZIP", resp.Gzip},
		{"gzip;q=0.5, deflate", resp.Deflate},
		{"gzip;q=0, deflate;q=0", resp.NoCodec},
		{"gzip;q=nope, deflate;q=0.1", resp.Deflate},
		{"br;q=1.0, gzip;q=0.8, *;q=0.1", resp.Gzip},
	}

	for _, tc := range tcs {
		t.Run(tc.header, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Accept-Encoding", tc.header)

			// Act
			sel := resp.AcceptEncoding(r)

			// Assert
			require.Equal(t, tc.want, sel())
		})
	}
}

func TestWriterCompress(t *testing.T) {
	tcs := []struct {
		name     string
		sel      resp.CodecSelector
		encoding string
		err      error
	}{
		{"Nil", nil, "", nil},
		{"Falsy", func() resp.Codec { return resp.NoCodec }, "", nil},
		{"Gzip", func() resp.Codec { return resp.Gzip }, "gzip", nil},
		{"Deflate", func() resp.Codec { return resp.Deflate }, "deflate", nil},
		{"Unknown", func() resp.Codec { return "br" }, "", resp.ErrUnknownCodec},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w, rec := decorate(http.MethodGet)

			// Act
			rc, err := w.Compress(strings.NewReader("bytes"), tc.sel)

			// Assert
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.encoding, rec.Header().Get("Content-Encoding"))
			if err != nil {
				return
			}

			out, err := io.ReadAll(rc)
			require.NoError(t, err)
			if tc.encoding == "" {
				require.Equal(t, "bytes", string(out))
			}
		})
	}
}

func TestWriterCompressAfterSend(t *testing.T) {
	w, rec := decorate(http.MethodGet)
	require.NoError(t, w.Text("sent"))

	_, err := w.Compress(strings.NewReader("bytes"), func() resp.Codec { return resp.Gzip })

	require.ErrorIs(t, err, resp.ErrDoubleSend)
	require.Empty(t, rec.Header().Get("Content-Encoding"))
}
