package preview

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Slide is the extracted text of one slide: the title placeholder's text
// and every other text run in document order.
type Slide struct {
	ID      int
	Title   string
	Content []string
}

// Deck is a parsed slide deck: slides in numeric slide order plus the
// packaged thumbnail image when the archive carries one.
type Deck struct {
	Slides        []Slide
	Thumbnail     []byte
	ThumbnailName string
}

// Empty reports whether no text was extracted from any slide. This is a
// non-fatal "nothing to preview" condition, not an error; decks made of
// pure imagery are legitimate.
func (d *Deck) Empty() bool {
	for _, slide := range d.Slides {
		if slide.Title != "" || len(slide.Content) > 0 {
			return false
		}
	}

	return true
}

// slidePattern matches packaged slide parts and captures the slide number.
var slidePattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// thumbnailNames are the packaged thumbnail locations, in preference order.
var thumbnailNames = []string{
	"docProps/thumbnail.jpeg",
	"docProps/thumbnail.jpg",
	"docProps/thumbnail.png",
}

// OpenDeck treats the file at path as a slide-deck archive and extracts
// its text. Slides are ordered by their numeric index: slide10 sorts after
// slide2, not between slide1 and slide2.
func OpenDeck(path string) (*Deck, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("preview: opening slide deck archive: %w", err)
	}
	defer archive.Close()

	type numbered struct {
		num  int
		file *zip.File
	}

	var slides []numbered

	byName := make(map[string]*zip.File, len(archive.File))

	for _, f := range archive.File {
		byName[f.Name] = f

		m := slidePattern.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}

		num, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			continue
		}

		slides = append(slides, numbered{num: num, file: f})
	}

	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	deck := &Deck{}

	for _, s := range slides {
		slide, parseErr := parseSlide(s.file, s.num)
		if parseErr != nil {
			return nil, fmt.Errorf("preview: parsing slide %d: %w", s.num, parseErr)
		}

		deck.Slides = append(deck.Slides, slide)
	}

	for _, name := range thumbnailNames {
		f, ok := byName[name]
		if !ok {
			continue
		}

		data, readErr := readZipFile(f)
		if readErr != nil {
			return nil, fmt.Errorf("preview: reading thumbnail: %w", readErr)
		}

		deck.Thumbnail = data
		deck.ThumbnailName = name

		break
	}

	return deck, nil
}

// parseSlide extracts the text runs of one slide part. Text nodes are
// concatenated in document order; runs inside a title placeholder shape
// become the slide title instead of content.
func parseSlide(f *zip.File, num int) (Slide, error) {
	rc, err := f.Open()
	if err != nil {
		return Slide{}, err
	}
	defer rc.Close()

	slide := Slide{ID: num}

	type shape struct {
		isTitle bool
		texts   []string
	}

	var shapes []*shape

	decoder := xml.NewDecoder(rc)

	for {
		tok, tokErr := decoder.Token()
		if tokErr == io.EOF {
			break
		}

		if tokErr != nil {
			return Slide{}, tokErr
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp":
				shapes = append(shapes, &shape{})

			case "ph":
				if len(shapes) == 0 {
					continue
				}

				for _, attr := range t.Attr {
					if attr.Name.Local == "type" && (attr.Value == "title" || attr.Value == "ctrTitle") {
						shapes[len(shapes)-1].isTitle = true
					}
				}

			case "t":
				var text string
				if decodeErr := decoder.DecodeElement(&text, &t); decodeErr != nil {
					return Slide{}, decodeErr
				}

				if strings.TrimSpace(text) == "" {
					continue
				}

				if len(shapes) > 0 {
					sh := shapes[len(shapes)-1]
					sh.texts = append(sh.texts, text)
				} else {
					// Text outside any shape (tables, graphic frames).
					slide.Content = append(slide.Content, text)
				}
			}

		case xml.EndElement:
			if t.Name.Local != "sp" || len(shapes) == 0 {
				continue
			}

			sh := shapes[len(shapes)-1]
			shapes = shapes[:len(shapes)-1]

			if sh.isTitle && slide.Title == "" {
				slide.Title = strings.Join(sh.texts, " ")
				continue
			}

			slide.Content = append(slide.Content, sh.texts...)
		}
	}

	return slide, nil
}

// readZipFile reads one archive member fully.
func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
