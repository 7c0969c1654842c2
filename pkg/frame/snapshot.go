package frame

import (
	"encoding/binary"
	"io"

	"github.com/goccy/go-json"

	"github.com/quiverdb/quiver/pkg/compress"
	"github.com/quiverdb/quiver/pkg/errors"
	"github.com/quiverdb/quiver/pkg/series"
)

// snapshotMagic prefixes every snapshot stream, followed by one byte of
// algorithm-token length, the token, a 4-byte little-endian payload
// length, and the compressed columnar JSON payload.
var snapshotMagic = []byte("QVS1")

type snapshotColumn struct {
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Int32s    []int32   `json:"int32s,omitempty"`
	Float64s  []float64 `json:"float64s,omitempty"`
	Bools     []bool    `json:"bools,omitempty"`
	Strings   []string  `json:"strings,omitempty"`
	DateTimes []int64   `json:"datetimes,omitempty"`
	Validity  []bool    `json:"validity"`
}

type snapshot struct {
	Columns []snapshotColumn `json:"columns"`
}

// WriteSnapshot writes the frame to w as a compressed columnar snapshot.
// The codec's algorithm is recorded in the stream header, so readers do
// not need to know it in advance.
func (f *Frame) WriteSnapshot(w io.Writer, codec compress.Codec) error {
	snap := snapshot{Columns: make([]snapshotColumn, len(f.columns))}
	for i, col := range f.columns {
		sc := snapshotColumn{
			Name:     col.Name(),
			Type:     col.Type().String(),
			Validity: col.Validity(),
		}
		switch col.Type() {
		case series.Int32:
			sc.Int32s, _ = col.Int32s()
		case series.Float64:
			sc.Float64s, _ = col.Float64s()
		case series.Bool:
			sc.Bools, _ = col.Bools()
		case series.String:
			sc.Strings, _ = col.Strings()
		case series.DateTime:
			sc.DateTimes, _ = col.DateTimes()
		}
		snap.Columns[i] = sc
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode snapshot")
	}
	compressed, err := codec.Compress(payload)
	if err != nil {
		return err
	}

	token := []byte(codec.Algorithm())
	header := make([]byte, 0, len(snapshotMagic)+1+len(token)+4)
	header = append(header, snapshotMagic...)
	header = append(header, byte(len(token)))
	header = append(header, token...)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(compressed)))
	if _, err := w.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write snapshot header")
	}
	if _, err := w.Write(compressed); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write snapshot payload")
	}
	return nil
}

// ReadSnapshot reads a compressed columnar snapshot written by
// WriteSnapshot, selecting the codec from the stream header.
func ReadSnapshot(r io.Reader) (*Frame, error) {
	magic := make([]byte, len(snapshotMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to read snapshot header")
	}
	if string(magic) != string(snapshotMagic) {
		return nil, errors.New(errors.ErrorTypeParse, "not a snapshot stream")
	}

	var tokenLen [1]byte
	if _, err := io.ReadFull(r, tokenLen[:]); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to read snapshot header")
	}
	token := make([]byte, tokenLen[0])
	if _, err := io.ReadFull(r, token); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to read snapshot header")
	}
	codec, err := compress.NewCodec(compress.Algorithm(token))
	if err != nil {
		return nil, err
	}

	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to read snapshot header")
	}
	compressed := make([]byte, binary.LittleEndian.Uint32(sizeBuf[:]))
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to read snapshot payload")
	}

	payload, err := codec.Decompress(compressed)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to decode snapshot")
	}

	cols := make([]*series.Series, len(snap.Columns))
	for i, sc := range snap.Columns {
		col, err := restoreColumn(sc)
		if err != nil {
			return nil, err
		}
		cols[i] = col
	}
	return New(cols...)
}

func restoreColumn(sc snapshotColumn) (*series.Series, error) {
	switch sc.Type {
	case series.Int32.String():
		return series.NewInt32(sc.Name, sc.Int32s, sc.Validity)
	case series.Float64.String():
		return series.NewFloat64(sc.Name, sc.Float64s, sc.Validity)
	case series.Bool.String():
		return series.NewBool(sc.Name, sc.Bools, sc.Validity)
	case series.String.String():
		return series.NewString(sc.Name, sc.Strings, sc.Validity)
	case series.DateTime.String():
		return series.NewDateTime(sc.Name, sc.DateTimes, sc.Validity)
	default:
		return nil, errors.Newf(errors.ErrorTypeParse, "unknown column type %q", sc.Type)
	}
}
