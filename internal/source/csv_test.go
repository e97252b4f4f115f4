package source

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadCSV_RaggedAndBlank(t *testing.T) {
	in := "CODGEO;TP6017;MED17\n33063;16,5;22000\n\n33394;;\n33001;9\n;;\n33002;1;2;extra\n"
	table, err := ReadCSV(strings.NewReader(in), DefaultCSVOptions)
	require.NoError(t, err)

	assert.Equal(t, []string{"CODGEO", "TP6017", "MED17"}, table.Header)
	require.Equal(t, 4, table.Len())
	assert.Equal(t, "16,5", table.Records[0]["TP6017"])
	assert.Equal(t, "", table.Records[1].Get("TP6017"))
	assert.Equal(t, "", table.Records[2]["MED17"])
	assert.Equal(t, "2", table.Records[3]["MED17"])
}

func TestReadCSV_SkipLines(t *testing.T) {
	in := "Export BDIFF\nGénéré le 01/01/2025\n\nAnnée;Département;Code INSEE;Nom de la commune\n2024;33;33063;Bordeaux\n"
	table, err := ReadCSV(strings.NewReader(in), OptionsFor(Fire))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "33063", table.Records[0]["Code INSEE"])
	assert.Equal(t, "Bordeaux", table.Records[0]["Nom de la commune"])
}

func TestReadCSV_ShorterThanSkip(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("only one line\n"), OptionsFor(Fire))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestReadCSV_QuotedGeometry(t *testing.T) {
	in := "Geo Shape;alea\n\"{\"\"type\"\":\"\"Polygon\"\",\"\"coordinates\"\":[[[0,0],[1,0],[1,1],[0,0]]]}\";Fort\n"
	table, err := ReadCSV(strings.NewReader(in), DefaultCSVOptions)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`, table.Records[0]["Geo Shape"])
}

func TestReadCSV_Windows1252(t *testing.T) {
	utf := "Département;Nom de la commune\n33;Saint-Émilion\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(utf)
	require.NoError(t, err)

	table, err := ReadCSV(strings.NewReader(encoded), DefaultCSVOptions)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Saint-Émilion", table.Records[0]["Nom de la commune"])
	assert.Equal(t, "33", table.Records[0]["Département"])
}

func TestReadCSV_BOM(t *testing.T) {
	in := append([]byte{0xEF, 0xBB, 0xBF}, []byte("CODGEO;MED17\n33063;1\n")...)
	table, err := ReadCSV(bytes.NewReader(in), DefaultCSVOptions)
	require.NoError(t, err)
	assert.Equal(t, "33063", table.Records[0]["CODGEO"])
}

func TestStreamCSV_StopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	seen := 0
	err := StreamCSV(strings.NewReader("a\n1\n2\n3\n"), DefaultCSVOptions, func(_ []string, _ Record) error {
		seen++
		if seen == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)
}

func TestStreamCSV_EmptyInput(t *testing.T) {
	called := false
	err := StreamCSV(strings.NewReader(""), DefaultCSVOptions, func(_ []string, _ Record) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestDecodeText_ReadError(t *testing.T) {
	_, err := DecodeText(failingReader{})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRecord_Get(t *testing.T) {
	r := Record{"alea": "  ", "cl_alea": "Moyen"}
	assert.Equal(t, "Moyen", r.Get("alea", "cl_alea"))
	assert.Equal(t, "", r.Get("missing"))
}
