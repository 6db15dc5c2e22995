package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

var ErrEmptyImage = errors.New("empty image")

// Reader 从账单照片里读出文字
type Reader interface {
	Read(ctx context.Context, img []byte) (string, error)
}

// TesseractReader 本地 tesseract，识别前做灰度、对比度、锐化预处理
type TesseractReader struct {
	language string
}

func NewTesseractReader(language string) *TesseractReader {
	if language == "" {
		language = "eng"
	}
	return &TesseractReader{language: language}
}

func (r *TesseractReader) Read(ctx context.Context, img []byte) (string, error) {
	if len(img) == 0 {
		return "", ErrEmptyImage
	}
	prepared, err := Preprocess(img)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(r.language); err != nil {
		return "", fmt.Errorf("ocr language: %w", err)
	}
	if err := client.SetImageFromBytes(prepared); err != nil {
		return "", fmt.Errorf("ocr image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	return NormalizeText(text), nil
}

// Preprocess 解码任意常见格式，输出适合 OCR 的 PNG
func Preprocess(raw []byte) ([]byte, error) {
	src, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var img image.Image = imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 15)
	img = imaging.Sharpen(img, 0.7)
	// 小图放大后 tesseract 识别率明显更好
	if img.Bounds().Dy() < 900 {
		img = imaging.Resize(img, 0, 1300, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// NormalizeText 去掉空行和多余空白
func NormalizeText(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
