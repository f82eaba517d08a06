package utils

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

func ConvertSVGToPNG(in []byte) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("SVG format error, %w", err)
	}

	width, height := int(icon.ViewBox.W), int(icon.ViewBox.H)

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	rasterizer := rasterx.NewDasher(width, height, scanner)

	icon.SetTarget(0, 0, float64(width), float64(height))
	icon.Draw(rasterizer, 1.0)

	var f bytes.Buffer
	w := bufio.NewWriter(&f)
	if err = png.Encode(w, img); err != nil {
		return nil, err
	}
	if err = w.Flush(); err != nil {
		return nil, err
	}

	return f.Bytes(), nil
}
