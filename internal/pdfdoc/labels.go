package pdfdoc

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// Label is a line of printed text near which form widgets usually sit
type Label struct {
	Text   string  `json:"text"`
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ListLabels extracts the text lines of every page in reading order of the
// content stream. Glyphs sharing a baseline without a wide gap form one line.
func (i *Inspector) ListLabels(doc []byte) (labels []Label, err error) {
	if len(doc) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrNotPDF)
	}

	// the text extractor panics on some malformed content streams
	defer func() {
		if r := recover(); r != nil {
			labels = nil
			err = fmt.Errorf("failed to extract text: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	for pageNr := 1; pageNr <= reader.NumPage(); pageNr++ {
		page := reader.Page(pageNr)
		if page.V.IsNull() {
			continue
		}
		labels = append(labels, groupLines(page.Content().Text, pageNr)...)
	}

	i.logger.Debug("Extracted text labels", zap.Int("count", len(labels)))
	return labels, nil
}

func groupLines(glyphs []pdf.Text, pageNr int) []Label {
	var (
		labels []Label
		cur    *Label
		text   strings.Builder
		end    float64
	)

	flush := func() {
		if cur == nil {
			return
		}
		if s := strings.TrimSpace(text.String()); s != "" {
			cur.Text = s
			cur.Width = end - cur.X
			labels = append(labels, *cur)
		}
		cur = nil
		text.Reset()
	}

	for _, g := range glyphs {
		height := g.FontSize
		if height == 0 {
			height = 12
		}
		if cur != nil && (math.Abs(g.Y-cur.Y) > height/2 || g.X > end+2*height || g.X < cur.X-height) {
			flush()
		}
		if cur == nil {
			cur = &Label{Page: pageNr, X: g.X, Y: g.Y, Height: height}
			end = g.X
		}
		text.WriteString(g.S)
		end = math.Max(end, g.X+g.W)
		cur.Height = math.Max(cur.Height, height)
	}
	flush()

	return labels
}
