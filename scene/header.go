package scene

import (
	"errors"
	"fmt"
	"image"
)

var ErrCorrupt = errors.New("corrupt document")
var ErrUnsupported = errors.New("unsupported document")

const psdSignature = "8BPS"

type ColorMode uint16

const (
	ColorModeBitmap    ColorMode = 0
	ColorModeGrayscale ColorMode = 1
	ColorModeIndexed   ColorMode = 2
	ColorModeRGB       ColorMode = 3
	ColorModeCMYK      ColorMode = 4
)

func (c ColorMode) String() string {
	switch c {
	case ColorModeBitmap:
		return "bitmap"
	case ColorModeGrayscale:
		return "grayscale"
	case ColorModeIndexed:
		return "indexed"
	case ColorModeRGB:
		return "rgb"
	case ColorModeCMYK:
		return "cmyk"
	}
	return fmt.Sprintf("mode(%d)", uint16(c))
}

type Header struct {
	Version   uint16
	Channels  uint16
	Height    uint32
	Width     uint32
	Depth     uint16
	ColorMode ColorMode
}

func (h Header) String() string {
	return fmt.Sprintf("PSD v%d %dx%d depth:%d channels:%d %v", h.Version, h.Width, h.Height, h.Depth, h.Channels, h.ColorMode)
}

func (h Header) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(h.Width), int(h.Height))
}

func ReadHeader(d *BinaryDeserializer) (h Header, err error) {
	sig, err := d.GetSignature()
	if err != nil {
		return
	}
	if sig != psdSignature {
		err = fmt.Errorf("%w: bad signature %q", ErrCorrupt, sig)
		return
	}
	if h.Version, err = d.GetUInt16(); err != nil {
		return
	}
	if h.Version != 1 {
		// version 2 is the large document format
		err = fmt.Errorf("%w: version %d", ErrUnsupported, h.Version)
		return
	}
	// reserved
	if err = d.Skip(6); err != nil {
		return
	}
	if h.Channels, err = d.GetUInt16(); err != nil {
		return
	}
	if h.Height, err = d.GetUInt32(); err != nil {
		return
	}
	if h.Width, err = d.GetUInt32(); err != nil {
		return
	}
	if h.Depth, err = d.GetUInt16(); err != nil {
		return
	}
	var mode uint16
	if mode, err = d.GetUInt16(); err != nil {
		return
	}
	h.ColorMode = ColorMode(mode)

	if h.Depth != 8 {
		err = fmt.Errorf("%w: depth %d", ErrUnsupported, h.Depth)
		return
	}
	if h.ColorMode != ColorModeRGB && h.ColorMode != ColorModeGrayscale {
		err = fmt.Errorf("%w: color mode %v", ErrUnsupported, h.ColorMode)
	}
	return
}
