package slides

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
)

// BuildPDF writes one page per image, in the given order, to output. Each
// page is sized to its image at dpi. The document is written to a temporary
// file and renamed into place so output never holds a partial PDF.
func BuildPDF(output string, images []string, dpi float64) error {
	if len(images) == 0 {
		return errors.New("pdf has no pages")
	}
	if dpi <= 0 {
		dpi = 100
	}

	doc := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt"})
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCompression(true)

	for _, path := range images {
		w, h, kind, err := imageInfo(path)
		if err != nil {
			return err
		}
		size := fpdf.SizeType{Wd: float64(w) * 72 / dpi, Ht: float64(h) * 72 / dpi}
		doc.AddPageFormat("P", size)
		doc.ImageOptions(path, 0, 0, size.Wd, size.Ht, false, fpdf.ImageOptions{ImageType: kind}, 0, "")
		if err := doc.Error(); err != nil {
			return fmt.Errorf("add page %s: %w", filepath.Base(path), err)
		}
	}

	tmp := output + ".partial"
	if err := doc.OutputFileAndClose(tmp); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := os.Rename(tmp, output); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize pdf: %w", err)
	}
	return nil
}

// imageInfo sniffs the real encoding since covers are saved as .jpg
// regardless of what the server sent.
func imageInfo(path string) (int, int, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", fmt.Errorf("open page image: %w", err)
	}
	defer f.Close()
	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode page image %s: %w", filepath.Base(path), err)
	}
	var kind string
	switch format {
	case "jpeg":
		kind = "JPG"
	case "png":
		kind = "PNG"
	case "gif":
		kind = "GIF"
	default:
		return 0, 0, "", fmt.Errorf("page image %s has unsupported format %q", filepath.Base(path), format)
	}
	return cfg.Width, cfg.Height, kind, nil
}
