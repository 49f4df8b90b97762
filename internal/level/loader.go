package level

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/xml"

	"github.com/tomz197/airclash/internal/physics"
)

// ErrInvalidGeometry reports a level file that could not be decoded.
var ErrInvalidGeometry = errors.New("invalid level geometry")

// floorID is the id of the SVG path holding the floor profile.
const floorID = "floor"

// Load reads the SVG level at path. The level is named after the file.
func Load(path string) (Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return Description{}, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return Description{}, fmt.Errorf("load %s: %w", path, err)
	}
	d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return d, nil
}

// Parse decodes an SVG document: the root height attribute and the path
// with id "floor", whose d attribute is a list of absolute M/L points.
// SVG y grows downwards; the result is flipped so y grows upwards.
func Parse(r io.Reader) (Description, error) {
	var (
		height    string
		floor     string
		haveFloor bool
		tag       string
		id, d     string
	)
	l := xml.NewLexer(parse.NewInput(r))
	for {
		tt, _ := l.Next()
		switch tt {
		case xml.ErrorToken:
			if err := l.Err(); err != io.EOF {
				return Description{}, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
			}
			if height == "" {
				return Description{}, fmt.Errorf("%w: svg height missing", ErrInvalidGeometry)
			}
			if !haveFloor {
				return Description{}, fmt.Errorf("%w: no path with id %q", ErrInvalidGeometry, floorID)
			}
			return parseFloor(floor, height)
		case xml.StartTagToken:
			tag = string(l.Text())
			id, d = "", ""
		case xml.AttributeToken:
			val := string(bytes.Trim(l.AttrVal(), `"'`))
			switch name := string(l.Text()); {
			case tag == "svg" && name == "height" && height == "":
				height = val
			case tag == "path" && name == "id":
				id = val
			case tag == "path" && name == "d":
				d = val
			}
		case xml.StartTagCloseToken, xml.StartTagCloseVoidToken:
			if tag == "path" && id == floorID && !haveFloor {
				floor, haveFloor = d, true
			}
			tag = ""
		}
	}
}

func parseFloor(path, height string) (Description, error) {
	h, err := strconv.ParseFloat(strings.TrimFunc(height, unicode.IsLetter), 64)
	if err != nil {
		return Description{}, fmt.Errorf("%w: svg height %q", ErrInvalidGeometry, height)
	}
	top := int(h)

	var (
		desc         Description
		prevX, prevY int
		havePoints   bool
	)
	fields := strings.FieldsFunc(path, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	for i := 0; i < len(fields); i++ {
		tok := strings.TrimLeft(fields[i], "ML")
		if tok == "" || tok == "Z" || tok == "z" {
			continue
		}
		if unicode.IsLetter(rune(tok[0])) {
			return Description{}, fmt.Errorf("%w: unsupported path command %q", ErrInvalidGeometry, tok)
		}
		if i+1 >= len(fields) {
			return Description{}, fmt.Errorf("%w: dangling coordinate %q", ErrInvalidGeometry, tok)
		}
		fx, errX := strconv.ParseFloat(tok, 64)
		fy, errY := strconv.ParseFloat(fields[i+1], 64)
		if err := errors.Join(errX, errY); err != nil {
			return Description{}, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		i++
		x, y := int(fx), int(fy)
		if havePoints && x == prevX && y == prevY {
			continue
		}
		prevX, prevY, havePoints = x, y, true
		desc.Geometry = append(desc.Geometry, physics.Vec(float64(x), float64(top-y)))
		desc.Width = x
	}
	if len(desc.Geometry) == 0 {
		return Description{}, fmt.Errorf("%w: floor path has no points", ErrInvalidGeometry)
	}
	return desc, nil
}
