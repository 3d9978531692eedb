package organism

import (
	"strings"

	"github.com/chaosgarden/ecosim/internal/rng"
)

// namePrefixes and nameSuffixes are concatenated per kind to produce a
// stable, type-recognizable name. Species is derived from the prefix, so
// renderers can classify an entity from its name alone.
var namePrefixes = map[Kind][]string{
	KindPlant:     {"Fern", "Moss", "Bramble", "Clover", "Thistle", "Reed", "Lichen", "Ivy"},
	KindHerbivore: {"Hare", "Doe", "Vole", "Finch", "Lamb", "Roe", "Wren", "Fawn"},
	KindCarnivore: {"Lynx", "Fox", "Kestrel", "Marten", "Viper", "Shrike", "Weasel", "Harrier"},
	KindFungus:    {"Spore", "Puffball", "Bracket", "Cap", "Mycel", "Truffle", "Toadstool", "Morel"},
}

var nameSuffixes = []string{
	"of the Glade", "of Dawn", "of Dusk", "the Quiet", "the Swift", "the Old",
	"of the Hollow", "the Young", "of the Thicket", "the Wanderer",
}

// GenerateName returns a type-recognizable name drawn from the prefix and
// suffix lists for kind.
func GenerateName(src rng.Source, k Kind) string {
	prefixes := namePrefixes[k]
	prefix, _ := pickString(src, prefixes)
	suffix, _ := pickString(src, nameSuffixes)
	return prefix + " " + suffix
}

func pickString(src rng.Source, seq []string) (string, bool) {
	if len(seq) == 0 {
		return "", false
	}
	return seq[src.IntN(len(seq))], true
}

// SpeciesFromName derives the canonical species classifier from name's
// prefix (the word before the first space). Stable for the entity's
// lifetime since name never changes after creation.
func SpeciesFromName(name string) string {
	if idx := strings.IndexByte(name, ' '); idx >= 0 {
		return name[:idx]
	}
	return name
}
