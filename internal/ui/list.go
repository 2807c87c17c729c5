package ui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = fileItem{}
	_ list.Item = styleItem{}
)

// fileItem wraps an image path to implement [list.Item].
type fileItem struct {
	path string
	size int64
}

func (i fileItem) FilterValue() string { return filepath.Base(i.path) }
func (i fileItem) Title() string       { return filepath.Base(i.path) }
func (i fileItem) Description() string {
	return fmt.Sprintf("%.1f KiB", float64(i.size)/1024)
}

// styleItem wraps a style preset to implement [list.Item].
type styleItem struct {
	name string
	desc string
}

func (i styleItem) FilterValue() string { return i.name }
func (i styleItem) Title() string       { return i.name }
func (i styleItem) Description() string { return i.desc }

// stylePresets mirrors the presets offered by the styling backend.
var stylePresets = []styleItem{
	{name: "minimal", desc: "Clean lines, neutral palette"},
	{name: "scandinavian", desc: "Light woods, airy and bright"},
	{name: "industrial", desc: "Exposed brick, metal accents"},
	{name: "bohemian", desc: "Layered textiles, warm tones"},
	{name: "rustic", desc: "Natural materials, cozy finish"},
	{name: "modern", desc: "Bold contrast, sculptural shapes"},
	{name: "coastal", desc: "Sea blues, weathered whites"},
	{name: "vintage", desc: "Mid-century shapes, muted color"},
}
