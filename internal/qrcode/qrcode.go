// Package qrcode draws QR codes in the terminal with half-block characters.
package qrcode

import (
	"fmt"
	"io"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

const quietZone = 2

// Encode returns the QR code for text.
func Encode(text string) (barcode.Barcode, error) {
	code, err := qr.Encode(text, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return code, nil
}

// Render writes text as a QR code. Light modules are drawn as blocks so the
// code scans on dark terminals; two module rows share one text line.
func Render(w io.Writer, text string) error {
	code, err := Encode(text)
	if err != nil {
		return err
	}

	size := code.Bounds().Dx()
	light := func(x, y int) bool {
		if x < 0 || y < 0 || x >= size || y >= size {
			return true
		}
		r, _, _, _ := code.At(x, y).RGBA()
		return r != 0
	}

	var b strings.Builder
	for y := -quietZone; y < size+quietZone; y += 2 {
		for x := -quietZone; x < size+quietZone; x++ {
			top, bottom := light(x, y), light(x, y+1)
			switch {
			case top && bottom:
				b.WriteString("█")
			case top:
				b.WriteString("▀")
			case bottom:
				b.WriteString("▄")
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString("\n")
	}

	_, err = io.WriteString(w, b.String())
	return err
}
