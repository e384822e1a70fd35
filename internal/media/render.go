package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/blacktop/go-termimg"
	"github.com/nfnt/resize"
)

// ErrGraphicsUnsupported means the terminal cannot display inline images.
var ErrGraphicsUnsupported = errors.New("terminal does not support inline images")

// KittySupported checks if the terminal supports the Kitty graphics protocol
func KittySupported() bool {
	if os.Getenv("KITTY_WINDOW_ID") != "" {
		return true
	}
	if strings.Contains(os.Getenv("TERM"), "kitty") {
		return true
	}
	if os.Getenv("TERM_PROGRAM") == "kitty" {
		return true
	}
	return termimg.DetectProtocol() == termimg.Kitty
}

// ScaleImage fits img into a box widthCells wide, keeping its aspect ratio.
// Terminal cells are roughly twice as tall as they are wide.
func ScaleImage(img image.Image, widthCells int) (image.Image, int) {
	if widthCells < 2 {
		widthCells = 2
	}
	bounds := img.Bounds()
	aspectRatio := float64(bounds.Dx()) / float64(bounds.Dy())

	heightCells := int(float64(widthCells) / aspectRatio / 2.0)
	if heightCells < 1 {
		heightCells = 1
	}

	pixelWidth := uint(widthCells * 8)
	pixelHeight := uint(float64(pixelWidth) / aspectRatio)
	if pixelHeight < 8 {
		pixelHeight = 8
	}
	return resize.Resize(pixelWidth, pixelHeight, img, resize.Lanczos3), heightCells
}

// RenderTerminal renders the preview thumbnail as an inline Kitty image.
func RenderTerminal(p *Preview, widthCells int) (string, error) {
	if !KittySupported() {
		return "", ErrGraphicsUnsupported
	}

	path, err := p.Path()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read thumbnail: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to decode thumbnail: %w", err)
	}

	scaled, heightCells := ScaleImage(img, widthCells)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	ti, err := termimg.From(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", err
	}
	ti.Protocol(termimg.Kitty).
		Width(widthCells).
		Height(heightCells).
		Scale(termimg.ScaleFit)

	return ti.Render()
}
