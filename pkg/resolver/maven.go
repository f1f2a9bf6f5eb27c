package resolver

import (
	"fmt"
	"path"
	"strings"

	"github.com/hashicorp/go-version"
)

// DefaultMavenURL is used for libraries whose metadata omits a repository.
const DefaultMavenURL = "https://libraries.minecraft.net/"

// Coordinate is a parsed maven coordinate group:name:version[:classifier][@ext].
type Coordinate struct {
	Group      string
	Name       string
	Version    string
	Classifier string
	Ext        string
}

// ParseCoordinate parses a maven coordinate string.
func ParseCoordinate(s string) (Coordinate, error) {
	c := Coordinate{Ext: "jar"}
	body := s
	if i := strings.LastIndex(body, "@"); i >= 0 {
		c.Ext = body[i+1:]
		body = body[:i]
	}
	parts := strings.Split(body, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return Coordinate{}, fmt.Errorf("invalid maven coordinate %q", s)
	}
	c.Group, c.Name, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	if c.Group == "" || c.Name == "" || c.Version == "" || c.Ext == "" {
		return Coordinate{}, fmt.Errorf("invalid maven coordinate %q", s)
	}
	return c, nil
}

// Key identifies the artifact independent of its version.
func (c Coordinate) Key() string {
	if c.Classifier != "" {
		return c.Group + ":" + c.Name + ":" + c.Classifier
	}
	return c.Group + ":" + c.Name
}

// String formats the coordinate back to group:name:version[:classifier].
func (c Coordinate) String() string {
	s := c.Group + ":" + c.Name + ":" + c.Version
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	return s
}

// Path returns the repository-relative path, e.g. org/ow2/asm/asm/9.6/asm-9.6.jar.
func (c Coordinate) Path() string {
	file := c.Name + "-" + c.Version
	if c.Classifier != "" {
		file += "-" + c.Classifier
	}
	file += "." + c.Ext
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Name, c.Version, file)
}

// URL joins the coordinate path onto a repository base URL.
func (c Coordinate) URL(repo string) string {
	if repo == "" {
		repo = DefaultMavenURL
	}
	return strings.TrimRight(repo, "/") + "/" + c.Path()
}

// newer reports whether version a sorts after b. Unparsable versions compare lexically.
func newer(a, b string) bool {
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	if errA != nil || errB != nil {
		return a > b
	}
	return va.GreaterThan(vb)
}

// dedupe collapses libraries sharing a Key to the newest version, keeping the
// position of the first occurrence.
func dedupe(libs []library) ([]library, error) {
	out := make([]library, 0, len(libs))
	index := make(map[string]int, len(libs))
	for _, lib := range libs {
		coord, err := ParseCoordinate(lib.Name)
		if err != nil {
			return nil, err
		}
		lib.coord = coord
		if i, ok := index[coord.Key()]; ok {
			if newer(coord.Version, out[i].coord.Version) {
				out[i] = lib
			}
			continue
		}
		index[coord.Key()] = len(out)
		out = append(out, lib)
	}
	return out, nil
}
