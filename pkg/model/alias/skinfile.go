package alias

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/Faultbox/midgard-models/pkg/model"
)

// ErrSkinSyntax is returned for a skin file line that cannot be parsed.
var ErrSkinSyntax = errors.New("skin file syntax error")

// SkinFileItem replaces the texture of the mesh called Name.
type SkinFileItem struct {
	Name        string
	Replacement string
}

// SkinFile is one parsed .skin file. Tags lists the tag names the skin
// declares, in order.
type SkinFile struct {
	Items []SkinFileItem
	Tags  []string
}

// ParseSkinFile reads lines of the forms
//
//	mesh,texture
//	replace mesh texture
//	tag_name,
//
// Blank lines and // comments are ignored.
func ParseSkinFile(r io.Reader) (*SkinFile, error) {
	sf := &SkinFile{}
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}
		if rest, ok := strings.CutPrefix(text, "replace "); ok {
			fields := strings.Fields(rest)
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: %w: %q", line, ErrSkinSyntax, text)
			}
			sf.Items = append(sf.Items, SkinFileItem{Name: fields[0], Replacement: fields[1]})
			continue
		}
		name, replacement, ok := strings.Cut(text, ",")
		if !ok {
			return nil, fmt.Errorf("line %d: %w: %q", line, ErrSkinSyntax, text)
		}
		name, replacement = strings.TrimSpace(name), strings.TrimSpace(replacement)
		switch {
		case name == "":
			return nil, fmt.Errorf("line %d: %w: %q", line, ErrSkinSyntax, text)
		case replacement == "":
			sf.Tags = append(sf.Tags, name)
		default:
			sf.Items = append(sf.Items, SkinFileItem{Name: name, Replacement: replacement})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sf, nil
}

// Replacement returns the texture name the file assigns to mesh.
func (sf *SkinFile) Replacement(mesh string) (string, bool) {
	for _, it := range sf.Items {
		if strings.EqualFold(it.Name, mesh) {
			return it.Replacement, true
		}
	}
	return "", false
}

// LoadSkinFiles reads modelName_0.skin, modelName_1.skin, ... from fsys
// until one is missing.
func LoadSkinFiles(fsys fs.FS, modelName string) ([]*SkinFile, error) {
	var files []*SkinFile
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s_%d.skin", modelName, i)
		data, err := fs.ReadFile(fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			return files, nil
		}
		if err != nil {
			return nil, err
		}
		sf, err := ParseSkinFile(strings.NewReader(string(data)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		files = append(files, sf)
	}
}

// ApplySkinFiles turns each skin file into a skin of m: surface textures
// named by the file are resolved through resolve and its tags become the
// skin's override tag names. Without files m keeps its skins.
func (d *Data) ApplySkinFiles(m *model.Model, files []*SkinFile, resolve func(name string) *model.Texture) {
	if len(files) == 0 {
		return
	}
	d.SkinTextures = make([][]*model.Texture, len(files))
	d.OverrideTagNames = make([][]string, len(files))
	m.SkinScenes = make([]model.AnimScene, len(files))
	for skin, sf := range files {
		textures := make([]*model.Texture, len(d.SurfaceNames))
		for i, name := range d.SurfaceNames {
			if repl, ok := sf.Replacement(name); ok && resolve != nil {
				textures[i] = resolve(repl)
			}
		}
		d.SkinTextures[skin] = textures
		d.OverrideTagNames[skin] = sf.Tags
		m.SkinScenes[skin] = model.AnimScene{
			Name:       fmt.Sprintf("skin %d", skin),
			FirstFrame: skin,
			FrameCount: 1,
			Loop:       true,
			FrameRate:  10,
		}
	}
	m.NumSkins = len(files)
}
