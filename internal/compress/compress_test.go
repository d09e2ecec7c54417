package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	compressible := bytes.Repeat([]byte("histogram cells travel well "), 256)
	incompressible := make([]byte, 512)
	for i := range incompressible {
		incompressible[i] = byte(i*7919 + i>>3)
	}

	tests := []struct {
		name string
		typ  Type
		data []byte
	}{
		{name: "NonePassthrough", typ: None, data: compressible},
		{name: "LZ4", typ: LZ4, data: compressible},
		{name: "Zstd", typ: Zstd, data: compressible},
		{name: "LZ4Incompressible", typ: LZ4, data: incompressible},
		{name: "ZstdIncompressible", typ: Zstd, data: incompressible},
		{name: "LZ4Empty", typ: LZ4, data: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packed, err := Compress(tt.data, tt.typ)
			require.NoError(t, err)

			got, err := Decompress(packed, tt.typ)
			require.NoError(t, err)

			assert.Equal(t, tt.data, got)
		})
	}
}

func TestCompressShrinksRepetitiveData(t *testing.T) {
	data := bytes.Repeat([]byte("0.00,0.25,0.50,"), 1024)

	for _, typ := range []Type{LZ4, Zstd} {
		packed, err := Compress(data, typ)
		require.NoError(t, err)
		assert.Less(t, len(packed), len(data), "%s must shrink repetitive payloads", typ)
	}
}

func TestDecompressRejectsTruncated(t *testing.T) {
	data := bytes.Repeat([]byte("cells"), 200)

	packed, err := Compress(data, Zstd)
	require.NoError(t, err)

	_, err = Decompress(packed[:4], Zstd)
	require.Error(t, err)

	_, err = Decompress(packed[:len(packed)-3], Zstd)
	require.Error(t, err)
}

func TestParseType(t *testing.T) {
	tests := []struct {
		name    string
		want    Type
		wantErr bool
	}{
		{name: "", want: None},
		{name: "none", want: None},
		{name: "lz4", want: LZ4},
		{name: "zstd", want: Zstd},
		{name: "brotli", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("Name_"+tt.name, func(t *testing.T) {
			got, err := ParseType(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.name != "" {
				assert.Equal(t, tt.name, got.String())
			}
		})
	}
}
