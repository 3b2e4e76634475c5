package extraction

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	popplerTextTool  = "pdftotext"
	popplerFontsTool = "pdffonts"
	popplerInfoTool  = "pdfinfo"
)

// popplerExtractor implements LayoutExtractor by driving the poppler
// command-line tools: pdftotext -bbox for positioned words, pdffonts for the
// font table, and pdfinfo for the metadata dictionary.
type popplerExtractor struct{}

func (p *popplerExtractor) Layout(ctx context.Context, data []byte) (*TextLayout, error) {
	dir, err := os.MkdirTemp("", "lendguard-layout-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(src, data, 0600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	pages, err := extractWords(ctx, src)
	if err != nil {
		return nil, err
	}

	text, err := extractText(ctx, src)
	if err != nil {
		return nil, err
	}

	fonts, err := extractFonts(ctx, src)
	if err != nil {
		return nil, err
	}

	return &TextLayout{Pages: pages, Fonts: fonts, Text: text}, nil
}

func (p *popplerExtractor) Metadata(ctx context.Context, data []byte) (*DocumentInfo, error) {
	dir, err := os.MkdirTemp("", "lendguard-info-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "source.pdf")
	if err := os.WriteFile(src, data, 0600); err != nil {
		return nil, fmt.Errorf("write temp pdf: %w", err)
	}

	out, err := runTool(ctx, popplerInfoTool, src)
	if err != nil {
		return nil, err
	}

	return parseInfo(out), nil
}

// bbox output of pdftotext: an XHTML document of <page> elements containing
// <word> elements with xMin/yMin/xMax/yMax attributes in page points.
type bboxDoc struct {
	Pages []bboxPage `xml:"body>doc>page"`
}

type bboxPage struct {
	Width  float64    `xml:"width,attr"`
	Height float64    `xml:"height,attr"`
	Words  []bboxWord `xml:"word"`
}

type bboxWord struct {
	XMin float64 `xml:"xMin,attr"`
	YMin float64 `xml:"yMin,attr"`
	XMax float64 `xml:"xMax,attr"`
	YMax float64 `xml:"yMax,attr"`
	Text string  `xml:",chardata"`
}

func extractWords(ctx context.Context, src string) ([]PageText, error) {
	out, err := runTool(ctx, popplerTextTool, "-bbox", src, "-")
	if err != nil {
		return nil, err
	}

	var doc bboxDoc
	if err := xml.Unmarshal(out, &doc); err != nil {
		return nil, fmt.Errorf("parse bbox output: %w", err)
	}

	pages := make([]PageText, 0, len(doc.Pages))
	for i, p := range doc.Pages {
		page := PageText{
			Number: i + 1,
			Width:  p.Width,
			Height: p.Height,
			Words:  make([]Word, 0, len(p.Words)),
		}
		for _, w := range p.Words {
			text := strings.TrimSpace(w.Text)
			if text == "" {
				continue
			}
			page.Words = append(page.Words, Word{
				Text:   text,
				Left:   w.XMin,
				Top:    w.YMin,
				Right:  w.XMax,
				Bottom: w.YMax,
			})
		}
		pages = append(pages, page)
	}

	return pages, nil
}

func extractText(ctx context.Context, src string) (string, error) {
	out, err := runTool(ctx, popplerTextTool, "-layout", src, "-")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func extractFonts(ctx context.Context, src string) ([]FontUsage, error) {
	out, err := runTool(ctx, popplerFontsTool, src)
	if err != nil {
		return nil, err
	}
	return parseFonts(out), nil
}

// parseFonts reads the tabular pdffonts output. The first two lines are
// the header and separator; column boundaries come from the header, since
// type values contain spaces ("Type 1", "CID Type 0C").
func parseFonts(out []byte) []FontUsage {
	lines := strings.Split(string(out), "\n")
	if len(lines) <= 2 {
		return nil
	}

	header := lines[0]
	typeCol := strings.Index(header, "type")
	encCol := strings.Index(header, "encoding")
	embCol := strings.Index(header, "emb")
	if typeCol < 0 || encCol < 0 || embCol < 0 {
		return nil
	}

	fonts := make([]FontUsage, 0, len(lines)-2)
	for _, line := range lines[2:] {
		if len(line) <= embCol {
			continue
		}
		name := strings.TrimSpace(line[:typeCol])
		if name == "" {
			continue
		}
		fonts = append(fonts, FontUsage{
			Name:     name,
			Type:     strings.TrimSpace(line[typeCol:encCol]),
			Embedded: strings.HasPrefix(line[embCol:], "yes"),
		})
	}
	return fonts
}

func parseInfo(out []byte) *DocumentInfo {
	info := &DocumentInfo{}
	for _, line := range strings.Split(string(out), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Producer":
			info.Producer = value
			info.Present = true
		case "Creator":
			info.Creator = value
			info.Present = true
		case "CreationDate":
			info.CreationDate = value
			info.Present = true
		case "ModDate":
			info.ModDate = value
			info.Present = true
		}
	}
	return info
}

func runTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.Bytes(), nil
}
