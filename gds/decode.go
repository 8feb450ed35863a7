// Package gds decodes GDSII stream-format layout files into the model.
//
// The decoder reads the big-endian record stream sequentially and feeds
// a model.Builder. Geometry and placements are kept; array references
// and text elements are not part of the data model and are skipped
// silently, node and box elements are skipped with a warning. Decoding
// is all or nothing: any malformed record fails the whole file.
package gds

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/javagg/layoutview"
	"github.com/javagg/layoutview/model"
)

// ErrFormat reports a malformed or truncated stream.
var ErrFormat = errors.New("gds: invalid stream format")

// maxRecordSize guards against corrupt length fields. The format caps
// records at 65534 bytes anyway.
const maxRecordSize = 65534

// record is one decoded stream record.
type record struct {
	id   uint16
	data []byte
}

// Decode reads a GDSII stream and returns the library it describes.
func Decode(r io.Reader) (*model.Library, error) {
	d := &decoder{
		r:    bufio.NewReader(r),
		logr: layoutview.Logger(),
	}
	return d.run()
}

type decoder struct {
	r    *bufio.Reader
	logr *slog.Logger
	b    *model.Builder
}

func (d *decoder) run() (*model.Library, error) {
	rec, err := d.next()
	if err != nil {
		return nil, err
	}
	if rec.id != recHEADER {
		return nil, fmt.Errorf("%w: expected HEADER, got %s", ErrFormat, recordName(rec.id))
	}

	d.b = model.NewBuilder("")
	for {
		rec, err := d.next()
		if err != nil {
			return nil, err
		}

		switch rec.id {
		case recBGNLIB, recENDSTR:
			// Timestamps and structure ends carry no model state.

		case recLIBNAME:
			d.b.SetName(decodeString(rec.data))

		case recUNITS:
			units, err := decodeUnits(rec.data)
			if err != nil {
				return nil, err
			}
			d.b.SetUnits(units)

		case recBGNSTR:
			if err := d.decodeStructure(); err != nil {
				return nil, err
			}

		case recENDLIB:
			return d.b.Build(), nil

		default:
			return nil, fmt.Errorf("%w: unexpected %s record at library level",
				ErrFormat, recordName(rec.id))
		}
	}
}

// decodeStructure consumes records from BGNSTR (already read) to ENDSTR.
func (d *decoder) decodeStructure() error {
	rec, err := d.next()
	if err != nil {
		return err
	}
	if rec.id != recSTRNAME {
		return fmt.Errorf("%w: expected STRNAME, got %s", ErrFormat, recordName(rec.id))
	}
	name := decodeString(rec.data)
	if err := d.b.BeginStructure(name); err != nil {
		return err
	}

	for {
		rec, err := d.next()
		if err != nil {
			return err
		}

		switch rec.id {
		case recENDSTR:
			return nil
		case recBOUNDARY:
			if err := d.decodeBoundary(); err != nil {
				return err
			}
		case recPATH:
			if err := d.decodePath(); err != nil {
				return err
			}
		case recSREF:
			if err := d.decodeSREF(name); err != nil {
				return err
			}
		case recAREF, recTEXT:
			// Not part of the data model; skipped without comment.
			if err := d.skipElement(); err != nil {
				return err
			}
		case recNODE, recBOX:
			d.logr.Warn("unsupported element skipped",
				slog.String("structure", name),
				slog.String("element", recordName(rec.id)))
			if err := d.skipElement(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unexpected %s record in structure %q",
				ErrFormat, recordName(rec.id), name)
		}
	}
}

func (d *decoder) decodeBoundary() error {
	var poly model.Polygon
	for {
		rec, err := d.next()
		if err != nil {
			return err
		}
		switch rec.id {
		case recENDEL:
			// The stream repeats the first vertex to close the loop;
			// the model stores the open outline.
			if n := len(poly.Points); n > 1 && poly.Points[0] == poly.Points[n-1] {
				poly.Points = poly.Points[:n-1]
			}
			d.b.AddPolygon(poly)
			return nil
		case recLAYER:
			poly.Layer.Layer, err = decodeInt16(rec.data)
		case recDATATYPE:
			poly.Layer.Datatype, err = decodeInt16(rec.data)
		case recXY:
			poly.Points, err = decodeXY(rec.data)
		default:
			// Property and elflag records are carried by real files;
			// they do not affect geometry.
		}
		if err != nil {
			return err
		}
	}
}

func (d *decoder) decodePath() error {
	var path model.Path
	for {
		rec, err := d.next()
		if err != nil {
			return err
		}
		switch rec.id {
		case recENDEL:
			d.b.AddPath(path)
			return nil
		case recLAYER:
			path.Layer.Layer, err = decodeInt16(rec.data)
		case recDATATYPE:
			path.Layer.Datatype, err = decodeInt16(rec.data)
		case recWIDTH:
			var w int32
			w, err = decodeInt32(rec.data)
			path.Width = w
		case recPATHTYPE:
			var pt int16
			pt, err = decodeInt16(rec.data)
			switch pt {
			case 0:
				path.Cap = model.CapFlush
			case 1:
				path.Cap = model.CapRound
			case 2:
				path.Cap = model.CapSquare
			default:
				d.logr.Warn("unsupported path type treated as flush",
					slog.Int("pathtype", int(pt)))
				path.Cap = model.CapFlush
			}
		case recXY:
			path.Points, err = decodeXY(rec.data)
		default:
		}
		if err != nil {
			return err
		}
	}
}

func (d *decoder) decodeSREF(structure string) error {
	var in model.Instance
	for {
		rec, err := d.next()
		if err != nil {
			return err
		}
		switch rec.id {
		case recENDEL:
			d.b.AddInstance(in)
			return nil
		case recSNAME:
			in.Structure = decodeString(rec.data)
		case recSTRANS:
			var flags int16
			flags, err = decodeInt16(rec.data)
			in.Reflect = uint16(flags)&stransReflect != 0
			if uint16(flags)&(stransAbsMag|stransAbsAngle) != 0 {
				d.logr.Warn("absolute transform flags unsupported, treated as relative",
					slog.String("structure", structure))
			}
		case recMAG:
			var mag float64
			mag, err = decodeReal8(rec.data)
			if err == nil && mag != 1 {
				d.logr.Warn("magnification unsupported, treated as 1",
					slog.String("structure", structure),
					slog.Float64("mag", mag))
			}
		case recANGLE:
			in.RotationDegrees, err = decodeReal8(rec.data)
		case recXY:
			var pts []model.XY
			pts, err = decodeXY(rec.data)
			if err == nil && len(pts) > 0 {
				in.X, in.Y = pts[0].X, pts[0].Y
			}
		default:
		}
		if err != nil {
			return err
		}
	}
}

// skipElement consumes records until ENDEL.
func (d *decoder) skipElement() error {
	for {
		rec, err := d.next()
		if err != nil {
			return err
		}
		if rec.id == recENDEL {
			return nil
		}
	}
}

// next reads one record.
func (d *decoder) next() (record, error) {
	var header [4]byte
	if _, err := io.ReadFull(d.r, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return record{}, fmt.Errorf("%w: truncated stream", ErrFormat)
		}
		return record{}, fmt.Errorf("gds: reading record: %w", err)
	}

	length := int(binary.BigEndian.Uint16(header[:2]))
	if length < 4 || length > maxRecordSize {
		return record{}, fmt.Errorf("%w: record length %d", ErrFormat, length)
	}

	rec := record{id: uint16(header[2])<<8 | uint16(header[3])}
	if length > 4 {
		rec.data = make([]byte, length-4)
		if _, err := io.ReadFull(d.r, rec.data); err != nil {
			return record{}, fmt.Errorf("%w: truncated %s record", ErrFormat, recordName(rec.id))
		}
	}
	return rec, nil
}

func decodeString(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}

func decodeInt16(data []byte) (int16, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("%w: short int16", ErrFormat)
	}
	return int16(binary.BigEndian.Uint16(data)), nil
}

func decodeInt32(data []byte) (int32, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: short int32", ErrFormat)
	}
	return int32(binary.BigEndian.Uint32(data)), nil
}

// decodeXY unpacks pairs of big-endian int32 coordinates.
func decodeXY(data []byte) ([]model.XY, error) {
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("%w: XY record length %d", ErrFormat, len(data))
	}
	pts := make([]model.XY, len(data)/8)
	for i := range pts {
		pts[i].X = int32(binary.BigEndian.Uint32(data[i*8:]))
		pts[i].Y = int32(binary.BigEndian.Uint32(data[i*8+4:]))
	}
	return pts, nil
}

// decodeReal8 parses the excess-64 floating point format: a sign bit,
// a 7-bit base-16 exponent biased by 64, and a 56-bit fraction.
func decodeReal8(data []byte) (float64, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("%w: short real8", ErrFormat)
	}
	sign := data[0]&0x80 != 0
	exp := int(data[0]&0x7f) - 64

	var mantissa uint64
	for _, b := range data[1:8] {
		mantissa = mantissa<<8 | uint64(b)
	}

	v := float64(mantissa) / math.Pow(2, 56) * math.Pow(16, float64(exp))
	if sign {
		v = -v
	}
	return v, nil
}

// decodeUnits parses the UNITS record: user units per database unit,
// then meters per database unit.
func decodeUnits(data []byte) (model.Units, error) {
	if len(data) < 16 {
		return model.Units{}, fmt.Errorf("%w: short UNITS record", ErrFormat)
	}
	uuPerDBU, err := decodeReal8(data[:8])
	if err != nil {
		return model.Units{}, err
	}
	metersPerDBU, err := decodeReal8(data[8:16])
	if err != nil {
		return model.Units{}, err
	}
	if uuPerDBU <= 0 || metersPerDBU <= 0 {
		return model.Units{}, fmt.Errorf("%w: non-positive units", ErrFormat)
	}
	return model.Units{DBUPerUU: 1 / uuPerDBU, MetersPerDBU: metersPerDBU}, nil
}
