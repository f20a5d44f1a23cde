package pdf

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// textExtractionConfig controls how glyphs are grouped into lines and words
type textExtractionConfig struct {
	XTolerance float64 // minimum horizontal gap that separates words
	YTolerance float64 // maximum baseline difference within a line
	BlockGap   float64 // maximum vertical gap between lines of one block, in line heights
}

func defaultTextConfig() textExtractionConfig {
	return textExtractionConfig{
		XTolerance: 3.0,
		YTolerance: 3.0,
		BlockGap:   0.6,
	}
}

// NormalizeText applies NFKC so ligatures and compatibility forms match their plain spelling
func NormalizeText(s string) string {
	return norm.NFKC.String(s)
}

// groupLines sorts characters top to bottom and left to right and
// joins characters whose baselines are within the tolerance into lines.
func groupLines(chars []CharObject, config textExtractionConfig) []TextLine {
	if len(chars) == 0 {
		return nil
	}

	sortedChars := make([]CharObject, len(chars))
	copy(sortedChars, chars)
	sort.SliceStable(sortedChars, func(i, j int) bool {
		if abs(sortedChars[i].Y1-sortedChars[j].Y1) > config.YTolerance {
			return sortedChars[i].Y1 < sortedChars[j].Y1
		}
		return sortedChars[i].X0 < sortedChars[j].X0
	})

	var rows [][]CharObject
	var currentRow []CharObject
	currentBaseline := sortedChars[0].Y1

	for _, char := range sortedChars {
		if abs(char.Y1-currentBaseline) > config.YTolerance {
			if len(currentRow) > 0 {
				rows = append(rows, currentRow)
			}
			currentRow = []CharObject{char}
			currentBaseline = char.Y1
			continue
		}
		currentRow = append(currentRow, char)
	}
	if len(currentRow) > 0 {
		rows = append(rows, currentRow)
	}

	lines := make([]TextLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, buildLine(row, config.XTolerance))
	}
	return lines
}

// buildLine concatenates a row of characters into a TextLine, inserting a
// space wherever the horizontal gap between two glyphs is wide enough to
// separate words and no space glyph is already present.
func buildLine(row []CharObject, xTolerance float64) TextLine {
	sort.SliceStable(row, func(i, j int) bool {
		return row[i].X0 < row[j].X0
	})

	var text strings.Builder
	var boxes []BoundingBox
	var bbox BoundingBox

	for i, char := range row {
		box := char.GetBBox()
		if i > 0 {
			prev := row[i-1]
			gap := char.X0 - prev.X1
			if gap > wordGap(prev, xTolerance) && !isBlank(prev.Text) && !isBlank(char.Text) {
				text.WriteByte(' ')
				boxes = append(boxes, BoundingBox{X0: prev.X1, Y0: min(prev.Y0, char.Y0), X1: char.X0, Y1: max(prev.Y1, char.Y1)})
			}
		}
		for _, r := range char.Text {
			text.WriteRune(r)
			boxes = append(boxes, box)
		}
		bbox = bbox.Union(box)
	}

	return TextLine{Text: text.String(), Boxes: boxes, BBox: bbox}
}

// wordGap is the gap after prev beyond which a new word starts
func wordGap(prev CharObject, xTolerance float64) float64 {
	if prev.FontSize > 0 {
		return min(xTolerance, prev.FontSize*0.25)
	}
	return xTolerance
}

// wordsFromLines splits every line on whitespace and returns one Word per run
func wordsFromLines(lines []TextLine) []Word {
	var words []Word
	for _, line := range lines {
		var current strings.Builder
		var box BoundingBox
		flush := func() {
			if current.Len() > 0 {
				words = append(words, Word{Text: current.String(), X0: box.X0, Y0: box.Y0, X1: box.X1, Y1: box.Y1})
			}
			current.Reset()
			box = BoundingBox{}
		}

		i := 0
		for _, r := range line.Text {
			if unicode.IsSpace(r) {
				flush()
			} else {
				current.WriteRune(r)
				box = box.Union(line.Boxes[i])
			}
			i++
		}
		flush()
	}
	return words
}

// blocksFromLines merges vertically adjacent, horizontally overlapping lines into blocks
func blocksFromLines(lines []TextLine, gapRatio float64) []BoundingBox {
	if len(lines) == 0 {
		return nil
	}

	sorted := make([]TextLine, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Y0 < sorted[j].BBox.Y0
	})

	var blocks []BoundingBox
	for _, line := range sorted {
		if line.BBox.IsEmpty() {
			continue
		}
		merged := false
		for i := range blocks {
			b := blocks[i]
			gap := line.BBox.Y0 - b.Y1
			overlapsX := line.BBox.X0 <= b.X1 && line.BBox.X1 >= b.X0
			if overlapsX && gap <= line.BBox.Height()*gapRatio && line.BBox.Y1 >= b.Y0 {
				blocks[i] = b.Union(line.BBox)
				merged = true
				break
			}
		}
		if !merged {
			blocks = append(blocks, line.BBox)
		}
	}
	return blocks
}

// searchLines returns one rectangle per occurrence of needle inside a single line.
// Matches never span lines.
func searchLines(lines []TextLine, needle string) []BoundingBox {
	needle = NormalizeText(needle)
	if strings.TrimSpace(needle) == "" {
		return nil
	}
	needleRunes := utf8.RuneCountInString(needle)

	var hits []BoundingBox
	for _, line := range lines {
		offset := 0
		for {
			idx := strings.Index(line.Text[offset:], needle)
			if idx < 0 {
				break
			}
			start := utf8.RuneCountInString(line.Text[:offset+idx])
			var box BoundingBox
			for _, b := range line.Boxes[start : start+needleRunes] {
				box = box.Union(b)
			}
			if !box.IsEmpty() {
				hits = append(hits, box)
			}
			_, size := utf8.DecodeRuneInString(line.Text[offset+idx:])
			offset += idx + size
		}
	}
	return hits
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
