package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

func TestParseBasic(t *testing.T) {
	raw := []byte("상권명,임대료\n강남대로,50\n\n가로수길,35\n")

	rows, err := Parse(raw, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, RawRow{"상권명": "강남대로", "임대료": "50"}, rows[0])
	assert.Equal(t, RawRow{"상권명": "가로수길", "임대료": "35"}, rows[1])
}

func TestParseLegacyEncoding(t *testing.T) {
	text := "행정동_코드_명,총_유동인구_수\n역삼1동,1200\n서교동,900\n"
	encoded, err := korean.EUCKR.NewEncoder().String(text)
	require.NoError(t, err)

	for _, enc := range []string{"euc-kr", "EUC-KR", "cp949", "ms949"} {
		t.Run(enc, func(t *testing.T) {
			rows, err := Parse([]byte(encoded), Options{Encoding: enc})
			require.NoError(t, err)
			require.Len(t, rows, 2)
			assert.Equal(t, "역삼1동", rows[0]["행정동_코드_명"])
			assert.Equal(t, "900", rows[1]["총_유동인구_수"])
		})
	}

	t.Run("decoding as utf-8 does not recover the text", func(t *testing.T) {
		rows, err := Parse([]byte(encoded), Options{Encoding: "utf-8"})
		require.NoError(t, err)
		for _, row := range rows {
			_, ok := row["행정동_코드_명"]
			assert.False(t, ok)
		}
	})
}

func TestParseStripsBOM(t *testing.T) {
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("업종,합계금액\n커피,9800\n")...)
	rows, err := Parse(raw, Options{Encoding: "utf-8-sig"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "커피", rows[0]["업종"])

	rows, err = Parse(raw, Options{})
	require.NoError(t, err)
	assert.Equal(t, "커피", rows[0]["업종"])
}

func TestParseRowShapes(t *testing.T) {
	raw := []byte("a,b,c\n1\n1,2,3,4,5\n")
	rows, err := Parse(raw, Options{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, RawRow{"a": "1", "b": "", "c": ""}, rows[0])
	assert.Equal(t, RawRow{"a": "1", "b": "2", "c": "3"}, rows[1])
}

func TestParseHeaderAndDataIndexes(t *testing.T) {
	raw := []byte("Report title\n업종,합계금액\n(단위),만원\n커피,9800\n한식,12500\n")

	t.Run("explicit start skips noise rows", func(t *testing.T) {
		rows, err := Parse(raw, Options{HeaderRow: 1, DataStartRow: 3})
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "커피", rows[0]["업종"])
	})

	t.Run("default start is the row after the header", func(t *testing.T) {
		rows, err := Parse(raw, Options{HeaderRow: 1})
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "(단위)", rows[0]["업종"])
	})

	t.Run("header beyond the file", func(t *testing.T) {
		_, err := Parse(raw, Options{HeaderRow: 10})
		assert.ErrorIs(t, err, ErrHeaderNotFound)
	})

	t.Run("start beyond the file yields no rows", func(t *testing.T) {
		rows, err := Parse(raw, Options{HeaderRow: 1, DataStartRow: 50})
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Parse(nil, Options{})
		assert.ErrorIs(t, err, ErrHeaderNotFound)
	})
}

func TestParseHeaders(t *testing.T) {
	raw := []byte("\" 상권명 \",,상권명,\"2024년\n2분기\"\n강남대로,x,dup,50\n")
	table, err := ParseTable(raw, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"상권명", "column_2", "2024년 2분기"}, table.Headers)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "강남대로", table.Rows[0]["상권명"])
	assert.Equal(t, "50", table.Rows[0]["2024년 2분기"])
}

func TestParseIsDeterministic(t *testing.T) {
	raw := []byte("k,v\na,1\nb,2\nc,3\n")
	first, err := Parse(raw, Options{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Parse(raw, Options{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "utf-8", "UTF8", "utf-8-sig", "euc-kr", "cp949", "windows-949", "ks_c_5601-1987", "iso-8859-1"} {
		_, err := LookupEncoding(name)
		assert.NoError(t, err, name)
	}

	_, err := LookupEncoding("klingon-7")
	assert.ErrorIs(t, err, ErrUnknownEncoding)

	_, err = Parse([]byte("a\n1\n"), Options{Encoding: "klingon-7"})
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}
