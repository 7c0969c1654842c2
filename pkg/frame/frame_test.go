package frame

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverdb/quiver/pkg/compress"
	"github.com/quiverdb/quiver/pkg/errors"
	"github.com/quiverdb/quiver/pkg/groupby"
	"github.com/quiverdb/quiver/pkg/series"
	"github.com/quiverdb/quiver/pkg/testutil"
)

func testFrame(t *testing.T) *Frame {
	t.Helper()
	group := testutil.Int32Series(t, "group", []int32{1, 2, 1, 3, 2}, nil)
	value := testutil.Float64Series(t, "value", []float64{10, 20, 30, 40, 50}, nil)
	f, err := New(group, value)
	require.NoError(t, err)
	return f
}

func TestNewValidation(t *testing.T) {
	a := testutil.Int32Series(t, "a", []int32{1, 2}, nil)
	b := testutil.Int32Series(t, "b", []int32{1, 2, 3}, nil)
	dup := testutil.Int32Series(t, "a", []int32{3, 4}, nil)
	anon := testutil.Int32Series(t, "", []int32{1, 2}, nil)

	_, err := New(a, b)
	assert.Error(t, err, "row count mismatch")

	_, err = New(a, dup)
	assert.Error(t, err, "duplicate name")

	_, err = New(anon)
	assert.Error(t, err, "empty name")
}

func TestColumnLookup(t *testing.T) {
	f := testFrame(t)
	assert.Equal(t, 5, f.NumRows())
	assert.Equal(t, 2, f.NumColumns())
	assert.Equal(t, []string{"group", "value"}, f.ColumnNames())

	col, err := f.Column("value")
	require.NoError(t, err)
	assert.Equal(t, series.Float64, col.Type())

	_, err = f.Column("missing")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))
}

func TestSelectAndWithColumn(t *testing.T) {
	f := testFrame(t)

	sel, err := f.Select("value")
	require.NoError(t, err)
	assert.Equal(t, []string{"value"}, sel.ColumnNames())

	doubled, err := mustCol(t, f, "value").Add(mustCol(t, f, "value"))
	require.NoError(t, err)
	g, err := f.WithColumn(doubled.Rename("doubled"))
	require.NoError(t, err)
	assert.Equal(t, []string{"group", "value", "doubled"}, g.ColumnNames())

	vals, err := mustCol(t, g, "doubled").Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 40, 60, 80, 100}, vals)
}

func mustCol(t *testing.T, f *Frame, name string) *series.Series {
	t.Helper()
	col, err := f.Column(name)
	require.NoError(t, err)
	return col
}

func TestDropNulls(t *testing.T) {
	a := testutil.Int32Series(t, "a", []int32{1, 2, 3}, []bool{true, false, true})
	b := testutil.Float64Series(t, "b", []float64{1, 2, 3}, []bool{true, true, false})
	f, err := New(a, b)
	require.NoError(t, err)

	clean, err := f.DropNulls()
	require.NoError(t, err)
	assert.Equal(t, 1, clean.NumRows())
	assert.Equal(t, int32(1), mustCol(t, clean, "a").ValueAt(0))
}

func TestGroupBy(t *testing.T) {
	f := testFrame(t)

	out, err := f.GroupBy("group", []groupby.Aggregation{
		{Column: "value", Func: groupby.FuncSum},
		{Column: "value", Func: groupby.FuncCount},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"group", "value_sum", "value_count"}, out.ColumnNames())
	assert.Equal(t, 3, out.NumRows())

	keys, err := mustCol(t, out, "group").Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, keys)

	sums, err := mustCol(t, out, "value_sum").Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 70, 40}, sums)

	counts, err := mustCol(t, out, "value_count").Int32s()
	require.NoError(t, err)
	assert.Equal(t, []int32{2, 2, 1}, counts)
}

func TestGroupByErrors(t *testing.T) {
	f := testFrame(t)

	_, err := f.GroupBy("missing", []groupby.Aggregation{{Column: "value", Func: groupby.FuncSum}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))

	_, err = f.GroupBy("group", []groupby.Aggregation{{Column: "missing", Func: groupby.FuncSum}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))

	_, err = f.GroupBy("group", nil)
	assert.Error(t, err)
}

func TestWriteJSON(t *testing.T) {
	a := testutil.Int32Series(t, "id", []int32{1, 2}, []bool{true, false})
	b := testutil.StringSeries(t, "name", []string{"x", "y"}, nil)
	f, err := New(a, b)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.WriteJSON(&buf))

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, float64(1), rows[0]["id"])
	assert.Equal(t, "x", rows[0]["name"])
	assert.Nil(t, rows[1]["id"], "null values export as JSON null")
}

func TestReadCSVInference(t *testing.T) {
	input := strings.Join([]string{
		"id,score,active,label",
		"1,2.5,true,alpha",
		"2,,false,beta",
		"3,7.25,true,",
	}, "\n")

	f, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 3, f.NumRows())

	assert.Equal(t, series.Int32, mustCol(t, f, "id").Type())
	assert.Equal(t, series.Float64, mustCol(t, f, "score").Type())
	assert.Equal(t, series.Bool, mustCol(t, f, "active").Type())
	assert.Equal(t, series.String, mustCol(t, f, "label").Type())

	assert.False(t, mustCol(t, f, "score").IsValid(1), "empty cell is null")
	assert.False(t, mustCol(t, f, "label").IsValid(2))
}

func TestCSVRoundTrip(t *testing.T) {
	group := testutil.Int32Series(t, "group", []int32{1, 2, 1}, nil)
	value := testutil.Float64Series(t, "value", []float64{10.5, 20.25, 30.125}, nil)
	f, err := New(group, value)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.WriteCSV(&buf))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, f.NumRows(), back.NumRows())
	assert.Equal(t, f.ColumnNames(), back.ColumnNames())

	vals, err := mustCol(t, back, "value").Float64s()
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, 20.25, 30.125}, vals)
}

func TestSnapshotRoundTrip(t *testing.T) {
	a := testutil.Int32Series(t, "id", []int32{1, 2, 3}, []bool{true, false, true})
	b := testutil.StringSeries(t, "name", []string{"x", "y", "z"}, nil)
	c, err := series.NewDateTime("seen", []int64{1700000000, 1700000060, 0}, []bool{true, true, false})
	require.NoError(t, err)
	f, err := New(a, b, c)
	require.NoError(t, err)

	for _, algorithm := range []compress.Algorithm{compress.None, compress.LZ4, compress.Zstd} {
		t.Run(string(algorithm), func(t *testing.T) {
			codec, err := compress.NewCodec(algorithm)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, f.WriteSnapshot(&buf, codec))

			back, err := ReadSnapshot(&buf)
			require.NoError(t, err)
			assert.Equal(t, f.ColumnNames(), back.ColumnNames())
			assert.Equal(t, f.NumRows(), back.NumRows())

			ids, err := mustCol(t, back, "id").Int32s()
			require.NoError(t, err)
			assert.Equal(t, []int32{1, 2, 3}, ids)
			assert.False(t, mustCol(t, back, "id").IsValid(1))
			assert.False(t, mustCol(t, back, "seen").IsValid(2))
		})
	}
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	_, err := ReadSnapshot(strings.NewReader("definitely not a snapshot"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}
