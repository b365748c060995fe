package scene

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

type compression uint16

const (
	compressionRaw compression = iota
	compressionRLE
	compressionZip
	compressionZipPrediction
)

type sectionType uint32

const (
	sectionOther sectionType = iota
	sectionOpenFolder
	sectionClosedFolder
	sectionBoundingDivider
)

const (
	channelRed          = 0
	channelGreen        = 1
	channelBlue         = 2
	channelAlpha        = -1
	channelUserMask     = -2
	channelRealUserMask = -3
)

type channelInfo struct {
	id     int16
	length uint32
}

type layerRecord struct {
	layer    *Layer
	channels []channelInfo
	flags    byte
	divider  sectionType
	data     map[int16][]byte
}

// SceneReader decodes the layer tree of a Photoshop document.
type SceneReader struct {
	d      *BinaryDeserializer
	header Header
}

// ReadFile opens and decodes the document at path.
func ReadFile(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	sceneParser := SceneReader{}
	return sceneParser.ExtractScene(file, path)
}

// ExtractScene decodes a document; filename names the resulting scene.
func (s *SceneReader) ExtractScene(r io.Reader, filename string) (*Scene, error) {
	buffer, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.d = NewDeserializer(buffer)

	s.header, err = ReadHeader(s.d)
	if err != nil {
		return nil, err
	}
	log.Debugf("%v, position:\t0x%-x", s.header, s.d.Pos())

	scene := New(filename, s.header.Bounds())
	scene.Header = s.header

	// color mode data, image resources
	for _, section := range []string{"color mode data", "image resources"} {
		if err := s.skipSection(); err != nil {
			return nil, fmt.Errorf("%s: %w", section, err)
		}
	}

	records, err := s.readLayerAndMask()
	if err != nil {
		return nil, fmt.Errorf("layer info: %w", err)
	}

	tree := NewTree()
	for _, rec := range records {
		switch rec.divider {
		case sectionBoundingDivider:
			tree.Open()
		case sectionOpenFolder, sectionClosedFolder:
			tree.Close(rec.layer)
		default:
			tree.Add(rec.layer)
		}
	}
	scene.Layers = tree.Root()
	return scene, nil
}

func (s *SceneReader) skipSection() error {
	length, err := s.d.GetUInt32()
	if err != nil {
		return err
	}
	return s.d.Skip(int(length))
}

func (s *SceneReader) readLayerAndMask() ([]*layerRecord, error) {
	length, err := s.d.GetUInt32()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	section, err := s.d.GetBytes(int(length))
	if err != nil {
		return nil, err
	}
	d := NewDeserializer(section)

	infoLength, err := d.GetUInt32()
	if err != nil {
		return nil, err
	}
	if infoLength == 0 {
		return nil, nil
	}
	info, err := d.GetBytes(int(infoLength))
	if err != nil {
		return nil, err
	}
	return s.readLayerInfo(NewDeserializer(info))
}

func (s *SceneReader) readLayerInfo(d *BinaryDeserializer) ([]*layerRecord, error) {
	count, err := d.GetInt16()
	if err != nil {
		return nil, err
	}
	// negative means the first alpha channel holds the merged transparency
	if count < 0 {
		count = -count
	}
	records := make([]*layerRecord, 0, count)
	for i := 0; i < int(count); i++ {
		rec, err := readLayerRecord(d)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		log.Tracef("record %d: %v", i, rec.layer)
		records = append(records, rec)
	}
	for i, rec := range records {
		if err := s.readChannelData(d, rec); err != nil {
			return nil, fmt.Errorf("channel data of %q (%d): %w", rec.layer.name, i, err)
		}
	}
	return records, nil
}

func readLayerRecord(d *BinaryDeserializer) (rec *layerRecord, err error) {
	var top, left, bottom, right int32
	for _, v := range []*int32{&top, &left, &bottom, &right} {
		if *v, err = d.GetInt32(); err != nil {
			return
		}
	}
	rec = &layerRecord{
		layer: &Layer{Rect: image.Rect(int(left), int(top), int(right), int(bottom))},
		data:  map[int16][]byte{},
	}

	numChannels, err := d.GetUInt16()
	if err != nil {
		return
	}
	for i := 0; i < int(numChannels); i++ {
		var ch channelInfo
		if ch.id, err = d.GetInt16(); err != nil {
			return
		}
		if ch.length, err = d.GetUInt32(); err != nil {
			return
		}
		rec.channels = append(rec.channels, ch)
	}

	sig, err := d.GetSignature()
	if err != nil {
		return
	}
	if sig != "8BIM" {
		err = fmt.Errorf("%w: blend mode signature %q at %d", ErrCorrupt, sig, d.Pos())
		return
	}
	// blend mode key
	if err = d.Skip(4); err != nil {
		return
	}
	if rec.layer.Opacity, err = d.ReadByte(); err != nil {
		return
	}
	// clipping
	if _, err = d.ReadByte(); err != nil {
		return
	}
	if rec.flags, err = d.ReadByte(); err != nil {
		return
	}
	// bit 1 set means hidden
	rec.layer.IsVisible = rec.flags&0x02 == 0
	// filler
	if _, err = d.ReadByte(); err != nil {
		return
	}

	extraLength, err := d.GetUInt32()
	if err != nil {
		return
	}
	extra, err := d.GetBytes(int(extraLength))
	if err != nil {
		return
	}
	err = readLayerExtra(NewDeserializer(extra), rec)
	return
}

func readLayerExtra(d *BinaryDeserializer, rec *layerRecord) (err error) {
	// layer mask, blending ranges
	for i := 0; i < 2; i++ {
		var length uint32
		if length, err = d.GetUInt32(); err != nil {
			return
		}
		if err = d.Skip(int(length)); err != nil {
			return
		}
	}
	if rec.layer.name, err = d.GetPascalString(4); err != nil {
		return
	}

	for d.Remaining() >= 12 {
		var sig, key string
		if sig, err = d.GetSignature(); err != nil {
			return
		}
		if sig != "8BIM" && sig != "8B64" {
			return fmt.Errorf("%w: additional info signature %q", ErrCorrupt, sig)
		}
		if key, err = d.GetSignature(); err != nil {
			return
		}
		var length uint32
		if length, err = d.GetUInt32(); err != nil {
			return
		}
		var data []byte
		if data, err = d.GetBytes(int(length)); err != nil {
			return
		}
		switch key {
		case "luni":
			var name string
			if name, err = NewDeserializer(data).GetUnicodeString(); err != nil {
				return
			}
			if name != "" {
				rec.layer.name = name
			}
		case "lsct", "lsdk":
			if len(data) < 4 {
				return fmt.Errorf("%w: short section divider", ErrCorrupt)
			}
			rec.divider = sectionType(binary.BigEndian.Uint32(data))
		}
	}
	return nil
}

func (s *SceneReader) readChannelData(d *BinaryDeserializer, rec *layerRecord) error {
	w, h := rec.layer.Rect.Dx(), rec.layer.Rect.Dy()
	for _, ch := range rec.channels {
		if ch.length < 2 {
			if err := d.Skip(int(ch.length)); err != nil {
				return err
			}
			continue
		}
		c, err := d.GetUInt16()
		if err != nil {
			return err
		}
		data, err := d.GetBytes(int(ch.length) - 2)
		if err != nil {
			return err
		}
		// masks have their own rectangle and do not take part in the composite
		if ch.id == channelUserMask || ch.id == channelRealUserMask || w <= 0 || h <= 0 {
			continue
		}
		pixels, err := decodeChannel(data, compression(c), w, h)
		if err != nil {
			return fmt.Errorf("channel %d: %w", ch.id, err)
		}
		rec.data[ch.id] = pixels
	}
	rec.layer.Image = s.assemble(rec)
	return nil
}

func (s *SceneReader) assemble(rec *layerRecord) image.Image {
	r := rec.layer.Rect
	if r.Empty() || len(rec.data) == 0 {
		return nil
	}
	img := image.NewNRGBA(r)
	red, green, blue := rec.data[channelRed], rec.data[channelGreen], rec.data[channelBlue]
	if s.header.ColorMode == ColorModeGrayscale {
		green, blue = red, red
	}
	alpha := rec.data[channelAlpha]
	n := r.Dx() * r.Dy()
	for i := 0; i < n; i++ {
		o := i * 4
		if red != nil {
			img.Pix[o] = red[i]
		}
		if green != nil {
			img.Pix[o+1] = green[i]
		}
		if blue != nil {
			img.Pix[o+2] = blue[i]
		}
		if alpha != nil {
			img.Pix[o+3] = alpha[i]
		} else {
			img.Pix[o+3] = 0xff
		}
	}
	return img
}

func decodeChannel(data []byte, c compression, w, h int) ([]byte, error) {
	size := w * h
	switch c {
	case compressionRaw:
		if len(data) < size {
			return nil, fmt.Errorf("%w: raw channel has %d of %d bytes", ErrCorrupt, len(data), size)
		}
		return data[:size], nil
	case compressionRLE:
		return decodeRLE(data, w, h)
	case compressionZip, compressionZipPrediction:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		out := make([]byte, size)
		if _, err := io.ReadFull(zr, out); err != nil {
			return nil, fmt.Errorf("inflate: %w", err)
		}
		if c == compressionZipPrediction {
			for y := 0; y < h; y++ {
				row := out[y*w : (y+1)*w]
				for x := 1; x < w; x++ {
					row[x] += row[x-1]
				}
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, c)
}

func decodeRLE(data []byte, w, h int) ([]byte, error) {
	if len(data) < 2*h {
		return nil, fmt.Errorf("%w: rle row table", ErrCorrupt)
	}
	out := make([]byte, w*h)
	pos := 2 * h
	for y := 0; y < h; y++ {
		n := int(binary.BigEndian.Uint16(data[2*y:]))
		if pos+n > len(data) {
			return nil, fmt.Errorf("%w: rle row %d overruns data", ErrCorrupt, y)
		}
		if err := unpackBits(out[y*w:(y+1)*w], data[pos:pos+n]); err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		pos += n
	}
	return out, nil
}

// unpackBits expands PackBits encoded src into dst, which must be filled exactly.
func unpackBits(dst, src []byte) error {
	i, j := 0, 0
	for i < len(src) && j < len(dst) {
		n := int(int8(src[i]))
		i++
		switch {
		case n >= 0:
			count := n + 1
			if i+count > len(src) || j+count > len(dst) {
				return fmt.Errorf("%w: literal run of %d", ErrCorrupt, count)
			}
			copy(dst[j:], src[i:i+count])
			i += count
			j += count
		case n == -128:
			// no-op
		default:
			count := 1 - n
			if i >= len(src) || j+count > len(dst) {
				return fmt.Errorf("%w: repeat run of %d", ErrCorrupt, count)
			}
			for k := 0; k < count; k++ {
				dst[j+k] = src[i]
			}
			i++
			j += count
		}
	}
	if j != len(dst) {
		return fmt.Errorf("%w: row has %d of %d bytes", ErrCorrupt, j, len(dst))
	}
	return nil
}
